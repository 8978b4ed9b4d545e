// Package config loads the optional templint.toml that tunes a lint
// run: per-code severity overrides, suppressed codes, and whether the
// schema layer runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	"templint/internal/lint"
)

// Config is the decoded templint.toml.
type Config struct {
	// Schema toggles JSON Schema validation; nil means enabled.
	Schema *bool `toml:"schema"`
	// Suppress lists diagnostic codes to drop entirely.
	Suppress []string `toml:"suppress"`
	// Severity remaps codes to "error", "warning", "info" or "hint".
	Severity map[string]string `toml:"severity"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{}
}

// Load reads and validates a configuration file. A missing file is not
// an error; the default configuration is returned instead.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for _, code := range c.Suppress {
		if !knownCode(code) {
			return fmt.Errorf("suppress: unknown diagnostic code %q", code)
		}
	}
	for code, name := range c.Severity {
		if !knownCode(code) {
			return fmt.Errorf("severity: unknown diagnostic code %q", code)
		}
		if _, ok := parseSeverity(name); !ok {
			return fmt.Errorf("severity: %s: unknown severity %q (want error, warning, info or hint)", code, name)
		}
	}
	return nil
}

func knownCode(code string) bool {
	return slices.Contains(lint.AllCodes, lint.Code(code))
}

func parseSeverity(name string) (lint.Severity, bool) {
	switch name {
	case "error":
		return lint.SeverityError, true
	case "warning":
		return lint.SeverityWarning, true
	case "info":
		return lint.SeverityInformation, true
	case "hint":
		return lint.SeverityHint, true
	}
	return 0, false
}

// SchemaEnabled reports whether the schema layer should run.
func (c *Config) SchemaEnabled() bool {
	return c.Schema == nil || *c.Schema
}

// Apply filters and remaps a pass's diagnostics per the configuration,
// preserving order.
func (c *Config) Apply(diags []lint.Diagnostic) []lint.Diagnostic {
	out := make([]lint.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if slices.Contains(c.Suppress, string(d.Code)) {
			continue
		}
		if name, ok := c.Severity[string(d.Code)]; ok {
			if sev, ok := parseSeverity(name); ok {
				d.Severity = sev
			}
		}
		out = append(out, d)
	}
	return out
}
