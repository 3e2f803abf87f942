// Package core provides the internal implementation of importmock's host
// registry and interception infrastructure.
package core

import (
	"errors"
	"fmt"
	"sync"
)

// Definition is a module body. It runs once per load (and again on every
// reload), performs its own imports through the host, and returns the module
// object.
type Definition func(host *Host) (Module, error)

// ErrUnknownModule is returned when a name has no registered definition.
var ErrUnknownModule = errors.New("no module registered")

// Host models the process-wide module resolution mechanism: a registry of
// loaded modules, a reload primitive, and the single active-resolver slot
// that interception swaps.
type Host struct {
	mu     sync.Mutex
	defs   map[string]Definition
	loaded map[string]Module
	active ResolveFunc
}

// NewHost creates a host whose active resolver is the default loader.
func NewHost() *Host {
	host := &Host{
		defs:   make(map[string]Definition),
		loaded: make(map[string]Module),
	}
	host.active = host.load

	return host
}

// Import resolves name through the currently active resolver. Module bodies
// and code under test call this for their imports, which is what lets an
// installed interception observe them.
func (h *Host) Import(name string) (Module, error) {
	return h.Resolver()(name)
}

// Install swaps fn into the active-resolver slot and returns the function
// that restores the previous resolver. Callers must pair the two with defer
// so the slot is released on every exit path.
func (h *Host) Install(fn ResolveFunc) (restore func()) {
	h.mu.Lock()
	prev := h.active
	h.active = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		h.active = prev
		h.mu.Unlock()
	}
}

// Loaded reports whether name is present in the loaded-module registry, and
// returns the module if so.
func (h *Host) Loaded(name string) (Module, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	mod, ok := h.loaded[name]

	return mod, ok
}

// Register declares an importable module under the given name. Registering a
// name again replaces the definition; a previously loaded module stays in
// the registry until the name is reloaded.
func (h *Host) Register(name string, def Definition) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.defs[name] = def
}

// Reload re-executes the module body for name regardless of the registry and
// replaces the registry entry with the result. The body's imports dispatch
// through the active resolver, so reloading under interception lets an
// already-loaded module re-observe substitution.
func (h *Host) Reload(name string) (Module, error) {
	h.mu.Lock()
	def, ok := h.defs[name]
	h.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownModule)
	}

	// The body runs without the lock held: it may import other modules,
	// which re-enters the host.
	mod, err := def(h)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.loaded[name] = mod
	h.mu.Unlock()

	return mod, nil
}

// Resolver returns the currently active resolver. Interceptors capture this
// once at construction as their fallback for non-substituted names.
func (h *Host) Resolver() ResolveFunc {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.active
}

// load is the default resolver: an already-loaded module is returned from
// the registry, otherwise the body runs and the result is cached.
func (h *Host) load(name string) (Module, error) {
	h.mu.Lock()

	if mod, ok := h.loaded[name]; ok {
		h.mu.Unlock()

		return mod, nil
	}

	h.mu.Unlock()

	return h.Reload(name)
}

// Default returns the process-wide host shared by interceptors created with
// the package-level constructors.
func Default() *Host {
	return defaultHost
}

// unexported variables.
var (
	//nolint:gochecknoglobals // Process-wide default host mirrors the process-wide resolver it models
	defaultHost = NewHost()
)
