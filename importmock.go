// Package importmock provides scoped import interception for test isolation.
// A test imports a module under test while chosen dependency modules are
// substituted with recording stand-ins, without altering the host's module
// registry for other tests and without leaving interception active once an
// operation returns.
//
// This is the public API entry point. Implementation lives in internal/core.
package importmock

import (
	"github.com/toejough/importmock/internal/core"
)

// Definition is a module body registered with a Host. It runs on load and
// on reload, importing its own dependencies through the host.
type Definition = core.Definition

// Host models the module resolution mechanism: the loaded-module registry,
// the reload primitive, and the single active-resolver slot that
// interception swaps for the duration of an operation.
type Host = core.Host

// Interceptor manages which names get substituted and caches their
// stand-ins. One stand-in exists per substituted name for the lifetime of
// the interceptor.
type Interceptor = core.Interceptor

// Invocation records the arguments of a single stand-in call.
type Invocation = core.Invocation

// Module is whatever resolution produces.
type Module = core.Module

// ResolveFunc turns a module name into a loaded module object.
type ResolveFunc = core.ResolveFunc

// StandIn is a recording substitute for a module or one of its attributes.
type StandIn = core.StandIn

// Errors re-exported from internal/core.
var (
	// ErrNoStandIn is returned by StandIn and Reset lookups when the name
	// was never substituted.
	ErrNoStandIn = core.ErrNoStandIn

	// ErrUnknownModule is returned when a name has no registered definition.
	ErrUnknownModule = core.ErrUnknownModule
)

// Default returns the process-wide host used by New.
func Default() *Host {
	return core.Default()
}

// New creates an interceptor over the process-wide default host.
func New(names ...string) *Interceptor {
	return core.NewInterceptor(core.Default(), names...)
}

// NewHost creates an isolated host. Tests that register their own fixture
// modules should prefer this over the process-wide default.
func NewHost() *Host {
	return core.NewHost()
}

// NewInterceptor creates an interceptor over the given host, substituting
// the given names.
func NewInterceptor(host *Host, names ...string) *Interceptor {
	return core.NewInterceptor(host, names...)
}

// NewStandIn creates a fresh, empty stand-in.
func NewStandIn(path string) *StandIn {
	return core.NewStandIn(path)
}
