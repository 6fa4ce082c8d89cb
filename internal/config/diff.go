package config

import "github.com/littlejunkers/leadchat/internal/orchestrator"

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked; provider and
// sink credential changes still require a restart.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// PersonaChanged means the system prompt and fixed replies must be
	// rebuilt.
	PersonaChanged bool

	// CatalogChanged means tier matching and reply links must be rebuilt.
	CatalogChanged bool

	// LimitsChanged means the transcript trim bounds changed.
	LimitsChanged bool
}

// Any reports whether the diff contains at least one change.
func (d ConfigDiff) Any() bool {
	return d.LogLevelChanged || d.PersonaChanged || d.CatalogChanged || d.LimitsChanged
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Persona != new.Persona {
		d.PersonaChanged = true
	}

	if !catalogEqual(old.Catalog, new.Catalog) {
		d.CatalogChanged = true
	}

	if old.Limits != new.Limits {
		d.LimitsChanged = true
	}

	return d
}

func catalogEqual(a, b *orchestrator.Catalog) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	if a.OverviewURL != b.OverviewURL || len(a.Tiers) != len(b.Tiers) {
		return false
	}
	for i := range a.Tiers {
		if a.Tiers[i] != b.Tiers[i] {
			return false
		}
	}
	return true
}
