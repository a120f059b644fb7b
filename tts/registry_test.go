package tts_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/tts"
	"github.com/chriswiese59-rgb/WowQuestTtsTool-sub003/tts/providers/mock"
)

func newRegistry(t *testing.T, cfg tts.Config, factory tts.Factory) (*tts.Registry, *tts.Store) {
	t.Helper()
	store := tts.NewStore(cfg, nil)
	return tts.NewRegistry(store, factory, log.New(io.Discard)), store
}

func TestRegistryFactoryPopulates(t *testing.T) {
	factory := func(tts.Config) []tts.Provider {
		return []tts.Provider{mock.New("alpha"), mock.New("beta")}
	}
	r, _ := newRegistry(t, tts.DefaultConfig(), factory)

	ids := r.IDs()
	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "alpha" || ids[1] != "beta" {
		t.Errorf("expected [alpha beta], got %v", ids)
	}
}

func TestRegistryRegisterRejectsNil(t *testing.T) {
	r, _ := newRegistry(t, tts.DefaultConfig(), nil)
	if err := r.Register(nil); !errors.Is(err, tts.ErrNilProvider) {
		t.Errorf("expected ErrNilProvider, got %v", err)
	}
}

func TestRegistryGetEmptyResolvesActive(t *testing.T) {
	cfg := tts.DefaultConfig()
	cfg.ActiveProvider = "beta"
	r, _ := newRegistry(t, cfg, nil)
	if err := r.Register(mock.New("alpha")); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(mock.New("beta")); err != nil {
		t.Fatal(err)
	}

	p, ok := r.Get("")
	if !ok || p.ID() != "beta" {
		t.Errorf("expected active provider beta, got %v ok=%v", p, ok)
	}
}

func TestRegistrySetActive(t *testing.T) {
	cfg := tts.DefaultConfig()
	cfg.ActiveProvider = "alpha"
	r, store := newRegistry(t, cfg, nil)
	if err := r.Register(mock.New("alpha")); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(mock.New("beta")); err != nil {
		t.Fatal(err)
	}

	if err := r.SetActive("beta"); err != nil {
		t.Fatalf("SetActive(beta) failed: %v", err)
	}
	if got := store.Config().ActiveProvider; got != "beta" {
		t.Errorf("active provider not persisted, got %q", got)
	}

	if err := r.SetActive("ghost"); !errors.Is(err, tts.ErrProviderNotRegistered) {
		t.Errorf("expected ErrProviderNotRegistered, got %v", err)
	}
}

func TestRegistrySetActiveIgnoresAvailability(t *testing.T) {
	cfg := tts.DefaultConfig()
	cfg.ActiveProvider = "alpha"
	r, _ := newRegistry(t, cfg, nil)
	if err := r.Register(mock.New("alpha")); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(mock.New("beta").SetAvailable(false)); err != nil {
		t.Fatal(err)
	}

	// Selecting a registered-but-unavailable provider is allowed, so keys
	// can be configured after the selection is made.
	if err := r.SetActive("beta"); err != nil {
		t.Errorf("unexpected error selecting unavailable provider: %v", err)
	}
}

func TestRegistryRefreshRebuilds(t *testing.T) {
	factory := func(cfg tts.Config) []tts.Provider {
		return []tts.Provider{mock.New(cfg.ActiveProvider)}
	}
	cfg := tts.DefaultConfig()
	cfg.ActiveProvider = "alpha"
	r, store := newRegistry(t, cfg, factory)

	store.Replace(func() tts.Config {
		c := store.Config()
		c.ActiveProvider = "beta"
		return c
	}())
	r.Refresh()

	ids := r.IDs()
	if len(ids) != 1 || ids[0] != "beta" {
		t.Errorf("expected rebuilt registry with [beta], got %v", ids)
	}
}

// panicValidator panics inside ValidateConfiguration.
type panicValidator struct {
	*mock.Provider
}

func (panicValidator) ValidateConfiguration(context.Context) tts.Validation {
	panic("validator exploded")
}

func TestRegistryValidateAllCapturesPanic(t *testing.T) {
	r, _ := newRegistry(t, tts.DefaultConfig(), nil)
	if err := r.Register(panicValidator{mock.New("broken")}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(mock.New("healthy")); err != nil {
		t.Fatal(err)
	}

	results := r.ValidateAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected results for both providers, got %d", len(results))
	}
	if results["broken"].Valid {
		t.Error("panicking provider should report invalid")
	}
	if !results["healthy"].Valid {
		t.Errorf("healthy provider should report valid: %s", results["healthy"].Message)
	}
}

func TestRegistryCloseEmpties(t *testing.T) {
	r, _ := newRegistry(t, tts.DefaultConfig(), nil)
	if err := r.Register(mock.New("alpha")); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if ids := r.IDs(); len(ids) != 0 {
		t.Errorf("registry not emptied, got %v", ids)
	}
}
