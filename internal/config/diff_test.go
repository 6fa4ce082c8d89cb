package config_test

import (
	"testing"

	"github.com/littlejunkers/leadchat/internal/config"
	"github.com/littlejunkers/leadchat/internal/orchestrator"
)

func baseConfig() *config.Config {
	cat := orchestrator.DefaultCatalog()
	return &config.Config{
		Server: config.ServerConfig{
			ListenAddr: ":8080",
			LogLevel:   config.LogInfo,
		},
		Persona: orchestrator.Persona{
			AgentName:    "Randy Miller",
			BusinessName: "Little Junkers",
			Phone:        "470-548-4733",
		},
		Catalog: &cat,
		Limits:  config.LimitsConfig{MaxMessages: 50, KeepRecent: 30},
	}
}

func TestDiff_NoChanges(t *testing.T) {
	t.Parallel()
	old, new := baseConfig(), baseConfig()
	d := config.Diff(old, new)
	if d.Any() {
		t.Errorf("Diff of identical configs = %+v", d)
	}
}

func TestDiff_LogLevel(t *testing.T) {
	t.Parallel()
	old, new := baseConfig(), baseConfig()
	new.Server.LogLevel = config.LogDebug

	d := config.Diff(old, new)
	if !d.LogLevelChanged {
		t.Error("LogLevelChanged should be true")
	}
	if d.NewLogLevel != config.LogDebug {
		t.Errorf("NewLogLevel = %q", d.NewLogLevel)
	}
	if d.PersonaChanged || d.CatalogChanged || d.LimitsChanged {
		t.Errorf("unrelated flags set: %+v", d)
	}
}

func TestDiff_Persona(t *testing.T) {
	t.Parallel()
	old, new := baseConfig(), baseConfig()
	new.Persona.AgentName = "Dana Brooks"

	d := config.Diff(old, new)
	if !d.PersonaChanged {
		t.Error("PersonaChanged should be true")
	}
}

func TestDiff_Catalog(t *testing.T) {
	t.Parallel()
	old, new := baseConfig(), baseConfig()
	changed := orchestrator.DefaultCatalog()
	changed.Tiers[0].URL = "https://www.littlejunkersllc.com/shop/new-page"
	new.Catalog = &changed

	d := config.Diff(old, new)
	if !d.CatalogChanged {
		t.Error("CatalogChanged should be true")
	}
}

func TestDiff_CatalogNilVsSet(t *testing.T) {
	t.Parallel()
	old, new := baseConfig(), baseConfig()
	new.Catalog = nil

	d := config.Diff(old, new)
	if !d.CatalogChanged {
		t.Error("CatalogChanged should be true when catalog is dropped")
	}

	bothNil := config.Diff(new, new)
	if bothNil.CatalogChanged {
		t.Error("two nil catalogs should be equal")
	}
}

func TestDiff_Limits(t *testing.T) {
	t.Parallel()
	old, new := baseConfig(), baseConfig()
	new.Limits.KeepRecent = 20

	d := config.Diff(old, new)
	if !d.LimitsChanged {
		t.Error("LimitsChanged should be true")
	}
	if !d.Any() {
		t.Error("Any() should be true")
	}
}
