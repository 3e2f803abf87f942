package core

import (
	"errors"
	"fmt"
)

// Module is whatever resolution produces: a value returned by a registered
// module body, or a stand-in when interception substitutes one.
type Module = any

// ResolveFunc turns a module name into a loaded module object.
type ResolveFunc func(name string) (Module, error)

// ErrNoStandIn is returned when a name was declared substitutable but never
// actually requested while interception was active.
var ErrNoStandIn = errors.New("no stand-in recorded")

// Interceptor scopes import substitution to explicit operations. It holds
// the fixed set of names eligible for substitution, the stand-ins created so
// far, and the resolver that was active when it was constructed.
//
// Every operation installs the interception function as the host's active
// resolver only for its own duration; the previous resolver is restored on
// every exit path, including panics.
type Interceptor struct {
	host     *Host
	names    map[string]struct{}
	standIns map[string]*StandIn
	original ResolveFunc
}

// NewInterceptor creates an interceptor over the given host that substitutes
// the given names. The host's current resolver is captured exactly once,
// before any substitution, and is the fallback for every non-substituted
// name for the life of the interceptor. No substitution happens until one of
// the import operations runs.
func NewInterceptor(host *Host, names ...string) *Interceptor {
	nameSet := make(map[string]struct{}, len(names))
	for _, name := range names {
		nameSet[name] = struct{}{}
	}

	return &Interceptor{
		host:     host,
		names:    nameSet,
		standIns: make(map[string]*StandIn),
		original: host.Resolver(),
	}
}

// Execute runs op with interception active, so imports performed inside the
// operation's body observe substitution. op's error is returned unchanged;
// interception is deactivated before Execute returns, whether op succeeds,
// fails, or panics.
//
// A module loaded before this interceptor existed is served from the
// registry when imported inside op and does not pass through interception.
// Only names not yet in the loaded-module registry, or explicitly reloaded
// with ImportOne, are guaranteed to observe substitution.
func (ic *Interceptor) Execute(op func() error) error {
	restore := ic.host.Install(ic.intercept)
	defer restore()

	return op()
}

// ImportMany applies ImportOne to each name in order and returns the modules
// in the same order. Each import is its own scoped operation. The first
// failure stops the batch and propagates.
func (ic *Interceptor) ImportMany(names ...string) ([]Module, error) {
	modules := make([]Module, 0, len(names))

	for _, name := range names {
		mod, err := ic.ImportOne(name)
		if err != nil {
			return nil, err
		}

		modules = append(modules, mod)
	}

	return modules, nil
}

// ImportOne resolves name with interception active for the duration of the
// call. Any resolution request made while the import runs, including
// transitive ones from the module body, yields the cached-or-fresh stand-in
// for substituted names and forwards unchanged to the original resolver for
// everything else.
//
// If name was already loaded, the module is reloaded rather than returned
// from the registry, so its import statements re-execute under the current
// interception. If name is itself in the substitution set, the stand-in is
// returned as the imported module.
func (ic *Interceptor) ImportOne(name string) (Module, error) {
	restore := ic.host.Install(ic.intercept)
	defer restore()

	if _, ok := ic.names[name]; ok {
		return ic.intercept(name)
	}

	if _, ok := ic.host.Loaded(name); ok {
		return ic.host.Reload(name)
	}

	return ic.original(name)
}

// Reset clears the recorded history of the named stand-in. The stand-in
// keeps its identity and stays in the mapping; only its history goes. Fails
// with ErrNoStandIn when name was never substituted.
func (ic *Interceptor) Reset(name string) error {
	standIn, err := ic.StandIn(name)
	if err != nil {
		return err
	}

	standIn.Reset()

	return nil
}

// ResetAll clears the recorded history of every stand-in created so far.
func (ic *Interceptor) ResetAll() {
	for _, standIn := range ic.standIns {
		standIn.Reset()
	}
}

// StandIn returns the stand-in created for name. It fails with ErrNoStandIn
// when name has never been requested while interception was active, which
// distinguishes "declared substitutable" from "actually requested".
func (ic *Interceptor) StandIn(name string) (*StandIn, error) {
	standIn, ok := ic.standIns[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNoStandIn)
	}

	return standIn, nil
}

// StandIns returns a copy of the stand-in mapping. Mutating the returned map
// does not affect the interceptor; the stand-ins themselves are shared.
func (ic *Interceptor) StandIns() map[string]*StandIn {
	standIns := make(map[string]*StandIn, len(ic.standIns))
	for name, standIn := range ic.standIns {
		standIns[name] = standIn
	}

	return standIns
}

// intercept is the interception function. Substituted names yield the cached
// stand-in, created and cached on first request; all other names forward
// unchanged to the resolver captured at construction. It is reentrant: the
// host calls back into it for nested resolution mid-load.
func (ic *Interceptor) intercept(name string) (Module, error) {
	if _, ok := ic.names[name]; ok {
		standIn, ok := ic.standIns[name]
		if !ok {
			standIn = NewStandIn(name)
			ic.standIns[name] = standIn
		}

		return standIn, nil
	}

	return ic.original(name)
}
