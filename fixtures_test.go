package importmock_test

import (
	"fmt"

	"github.com/toejough/importmock"
)

// The fixture modules form a small dependency graph:
//
//	module_a imports module_b and module_c at load time, and imports
//	module_d dynamically inside one of its functions.
//	module_b imports module_c at load time.
//	module_c and module_d are leaves.

type moduleA struct {
	host *importmock.Host
	b    importmock.Module
	c    importmock.Module
}

func (a *moduleA) FunctionThatCallsB() {
	mustStandIn(a.b).Attr("function_b").Call()
}

func (a *moduleA) FunctionThatCallsC() {
	mustStandIn(a.c).Attr("function_c").Call()
}

func (a *moduleA) FunctionThatImportsAndCallsD() error {
	d, err := a.host.Import("module_d")
	if err != nil {
		return err
	}

	mustStandIn(d).Attr("function_d").Call()

	return nil
}

type moduleB struct {
	c importmock.Module
}

func (b *moduleB) FunctionThatCallsC() {
	mustStandIn(b.c).Attr("function_c").Call()
}

type leafModule struct {
	name string
}

// mustStandIn asserts that a dependency was substituted. The fixtures only
// call through a dependency in scenarios that substitute it.
func mustStandIn(mod importmock.Module) *importmock.StandIn {
	standIn, ok := mod.(*importmock.StandIn)
	if !ok {
		panic(fmt.Sprintf("expected a stand-in, got %T", mod))
	}

	return standIn
}

// newFixtureHost returns an isolated host with the fixture modules
// registered, so tests don't share loaded-module state.
func newFixtureHost() *importmock.Host {
	host := importmock.NewHost()

	host.Register("module_a", func(h *importmock.Host) (importmock.Module, error) {
		b, err := h.Import("module_b")
		if err != nil {
			return nil, err
		}

		c, err := h.Import("module_c")
		if err != nil {
			return nil, err
		}

		return &moduleA{host: h, b: b, c: c}, nil
	})

	host.Register("module_b", func(h *importmock.Host) (importmock.Module, error) {
		c, err := h.Import("module_c")
		if err != nil {
			return nil, err
		}

		return &moduleB{c: c}, nil
	})

	host.Register("module_c", func(*importmock.Host) (importmock.Module, error) {
		return &leafModule{name: "module_c"}, nil
	})

	host.Register("module_d", func(*importmock.Host) (importmock.Module, error) {
		return &leafModule{name: "module_d"}, nil
	})

	return host
}
