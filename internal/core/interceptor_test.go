package core_test

import (
	"errors"
	"testing"

	"github.com/toejough/importmock/internal/core"
)

func TestImportOneSubstitutesTransitiveImports(t *testing.T) {
	t.Parallel()

	host := core.NewHost()
	host.Register("app", func(h *core.Host) (core.Module, error) {
		return h.Import("dep")
	})
	host.Register("dep", func(*core.Host) (core.Module, error) {
		return "real dep", nil
	})

	interceptor := core.NewInterceptor(host, "dep")

	mod, err := interceptor.ImportOne("app")
	if err != nil {
		t.Fatalf("unexpected import error: %v", err)
	}

	standIn, err := interceptor.StandIn("dep")
	if err != nil {
		t.Fatalf("expected a stand-in for the substituted name: %v", err)
	}

	if mod != core.Module(standIn) {
		t.Error("expected the app body to receive the stand-in for its dependency")
	}
}

func TestImportOneOfSubstitutedNameReturnsStandIn(t *testing.T) {
	t.Parallel()

	host := core.NewHost()
	interceptor := core.NewInterceptor(host, "dep")

	mod, err := interceptor.ImportOne("dep")
	if err != nil {
		t.Fatalf("unexpected import error: %v", err)
	}

	standIn, err := interceptor.StandIn("dep")
	if err != nil {
		t.Fatalf("expected a stand-in to have been created: %v", err)
	}

	if mod != core.Module(standIn) {
		t.Error("expected the stand-in itself as the imported module")
	}
}

func TestImportOneDeactivatesInterceptionOnReturn(t *testing.T) {
	t.Parallel()

	host := core.NewHost()
	host.Register("dep", func(*core.Host) (core.Module, error) {
		return "real dep", nil
	})

	interceptor := core.NewInterceptor(host, "dep")

	if _, err := interceptor.ImportOne("dep"); err != nil {
		t.Fatalf("unexpected import error: %v", err)
	}

	mod, err := host.Import("dep")
	if err != nil {
		t.Fatalf("unexpected import error: %v", err)
	}

	if mod != "real dep" {
		t.Errorf("expected the real module once interception deactivated, got %v", mod)
	}
}

func TestImportOneDeactivatesInterceptionOnError(t *testing.T) {
	t.Parallel()

	host := core.NewHost()
	host.Register("dep", func(*core.Host) (core.Module, error) {
		return "real dep", nil
	})

	interceptor := core.NewInterceptor(host, "dep")

	_, err := interceptor.ImportOne("missing")
	if !errors.Is(err, core.ErrUnknownModule) {
		t.Fatalf("expected ErrUnknownModule, got %v", err)
	}

	mod, err := host.Import("dep")
	if err != nil {
		t.Fatalf("unexpected import error: %v", err)
	}

	if mod != "real dep" {
		t.Errorf("expected the real module after a failed import, got %v", mod)
	}
}

func TestExecuteDeactivatesInterceptionOnPanic(t *testing.T) {
	t.Parallel()

	host := core.NewHost()
	host.Register("dep", func(*core.Host) (core.Module, error) {
		return "real dep", nil
	})

	interceptor := core.NewInterceptor(host, "dep")

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected the operation's panic to propagate")
			}
		}()

		_ = interceptor.Execute(func() error {
			panic("boom")
		})
	}()

	mod, err := host.Import("dep")
	if err != nil {
		t.Fatalf("unexpected import error: %v", err)
	}

	if mod != "real dep" {
		t.Errorf("expected the real module after the panic, got %v", mod)
	}
}

func TestExecutePropagatesOperationError(t *testing.T) {
	t.Parallel()

	host := core.NewHost()
	interceptor := core.NewInterceptor(host)
	opErr := errors.New("operation failed")

	err := interceptor.Execute(func() error {
		return opErr
	})
	if !errors.Is(err, opErr) {
		t.Fatalf("expected the operation error unchanged, got %v", err)
	}
}

func TestImportManyStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	host := core.NewHost()
	host.Register("good", func(*core.Host) (core.Module, error) {
		return "good", nil
	})

	interceptor := core.NewInterceptor(host)

	_, err := interceptor.ImportMany("good", "missing", "good")
	if !errors.Is(err, core.ErrUnknownModule) {
		t.Fatalf("expected ErrUnknownModule, got %v", err)
	}
}

func TestStandInLookupFailsForNeverSubstitutedName(t *testing.T) {
	t.Parallel()

	host := core.NewHost()
	host.Register("dep", func(*core.Host) (core.Module, error) {
		return "real dep", nil
	})

	// "dep" is declared substitutable but never requested.
	interceptor := core.NewInterceptor(host, "dep")

	if _, err := interceptor.StandIn("dep"); !errors.Is(err, core.ErrNoStandIn) {
		t.Errorf("expected ErrNoStandIn for a declared-but-unrequested name, got %v", err)
	}

	if err := interceptor.Reset("dep"); !errors.Is(err, core.ErrNoStandIn) {
		t.Errorf("expected ErrNoStandIn from Reset, got %v", err)
	}
}

func TestStandInsReturnsADefensiveCopy(t *testing.T) {
	t.Parallel()

	host := core.NewHost()
	interceptor := core.NewInterceptor(host, "dep")

	if _, err := interceptor.ImportOne("dep"); err != nil {
		t.Fatalf("unexpected import error: %v", err)
	}

	copied := interceptor.StandIns()
	delete(copied, "dep")

	if _, err := interceptor.StandIn("dep"); err != nil {
		t.Error("expected mutating the returned map to leave the interceptor untouched")
	}
}

func TestOriginalResolverIsCapturedOnce(t *testing.T) {
	t.Parallel()

	host := core.NewHost()
	host.Register("dep", func(*core.Host) (core.Module, error) {
		return "real dep", nil
	})

	interceptor := core.NewInterceptor(host, "other")

	// A resolver installed after construction must not become the
	// interceptor's fallback.
	restore := host.Install(func(string) (core.Module, error) {
		return "late override", nil
	})
	defer restore()

	mod, err := interceptor.ImportOne("dep")
	if err != nil {
		t.Fatalf("unexpected import error: %v", err)
	}

	if mod != "real dep" {
		t.Errorf("expected the resolver captured at construction, got %v", mod)
	}
}
