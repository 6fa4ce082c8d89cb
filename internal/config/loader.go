package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known completion provider names. Used by
// [Validate] to warn about unrecognised names without rejecting them, so
// third-party backends remain usable.
var ValidProviderNames = []string{
	"openai", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq",
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	for i, origin := range cfg.Server.AllowedOrigins {
		if origin == "*" {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			errs = append(errs, fmt.Errorf("server.allowed_origins[%d] %q must be an origin like https://example.com", i, origin))
		}
	}

	// Providers
	if cfg.Providers.Completion.Name == "" {
		errs = append(errs, errors.New("providers.completion.name is required"))
	}
	validateProviderName("completion", cfg.Providers.Completion.Name)
	validateProviderName("extraction", cfg.Providers.Extraction.Name)

	// Sinks: at least one delivery target, or captured leads vanish.
	if !cfg.Sinks.Odoo.Configured() && !cfg.Sinks.Resend.Configured() && !cfg.Sinks.Postgres.Configured() {
		errs = append(errs, errors.New("sinks: at least one of odoo, resend, or postgres must be configured"))
	}
	if cfg.Sinks.Odoo.BaseURL != "" && !cfg.Sinks.Odoo.Configured() {
		errs = append(errs, errors.New("sinks.odoo: base_url is set but database or api_key is missing"))
	}
	if cfg.Sinks.Resend.APIKey != "" && !cfg.Sinks.Resend.Configured() {
		errs = append(errs, errors.New("sinks.resend: api_key is set but from or to is missing"))
	}

	// Catalog
	if cfg.Catalog != nil {
		for i, tier := range cfg.Catalog.Tiers {
			prefix := fmt.Sprintf("catalog.tiers[%d]", i)
			if tier.Name == "" {
				errs = append(errs, fmt.Errorf("%s.name is required", prefix))
			}
			if tier.Yards <= 0 {
				errs = append(errs, fmt.Errorf("%s.yards must be positive", prefix))
			}
			if tier.URL == "" {
				errs = append(errs, fmt.Errorf("%s.url is required", prefix))
			}
		}
		if len(cfg.Catalog.Tiers) > 0 && cfg.Catalog.OverviewURL == "" {
			errs = append(errs, errors.New("catalog.overview_url is required when tiers are set"))
		}
	}

	// Limits
	if cfg.Limits.MaxMessages < 0 {
		errs = append(errs, errors.New("limits.max_messages must not be negative"))
	}
	if cfg.Limits.KeepRecent < 0 {
		errs = append(errs, errors.New("limits.keep_recent must not be negative"))
	}
	if cfg.Limits.MaxMessages > 0 && cfg.Limits.KeepRecent > cfg.Limits.MaxMessages {
		errs = append(errs, fmt.Errorf("limits.keep_recent (%d) must not exceed limits.max_messages (%d)", cfg.Limits.KeepRecent, cfg.Limits.MaxMessages))
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// [ValidProviderNames].
func validateProviderName(kind, name string) {
	if name == "" || slices.Contains(ValidProviderNames, name) {
		return
	}
	slog.Warn("unknown provider name, may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", ValidProviderNames,
	)
}
