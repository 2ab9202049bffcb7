// Package provider loads and indexes external tool-provider configuration:
// which backends exist, what capabilities they offer, and in which priority
// order they should be selected. Concrete backend adapters live in the
// subpackages (anthropic, openai) and are attached through build hooks.
package provider

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Config describes one external provider instance. Configs are pure data;
// the registry turns them into live tools through type-specific builders.
type Config struct {
	// ID uniquely identifies the provider instance.
	ID string `yaml:"id"`

	// Type selects the backend adapter, e.g. "anthropic" or "openai".
	Type string `yaml:"type"`

	// APIKey is the credential passed to the backend client. Empty means the
	// adapter falls back to its SDK default resolution.
	APIKey string `yaml:"api_key,omitempty"`

	// Endpoint overrides the backend base URL, if the adapter supports it.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Model is the backend-specific model identifier.
	Model string `yaml:"model,omitempty"`

	// Capabilities tags what this provider can do, e.g. "completion".
	Capabilities []string `yaml:"capabilities,omitempty"`

	// Priority orders providers offering the same capability; higher wins.
	Priority int `yaml:"priority,omitempty"`
}

// HasCapability reports whether the config carries the capability tag.
func (c Config) HasCapability(capability string) bool {
	for _, cap := range c.Capabilities {
		if cap == capability {
			return true
		}
	}
	return false
}

// configFile is the YAML document layout accepted by LoadConfig.
type configFile struct {
	Providers []Config `yaml:"providers"`
}

// LoadConfig parses provider configuration from YAML. The document holds a
// single `providers` list; ids must be non-empty and unique, types non-empty.
//
//	providers:
//	  - id: claude-main
//	    type: anthropic
//	    model: claude-3-5-sonnet-20241022
//	    capabilities: [completion]
//	    priority: 10
func LoadConfig(r io.Reader) ([]Config, error) {
	var file configFile

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse provider config: %w", err)
	}

	seen := make(map[string]bool, len(file.Providers))
	for i, cfg := range file.Providers {
		if cfg.ID == "" {
			return nil, fmt.Errorf("provider %d: missing id", i)
		}
		if cfg.Type == "" {
			return nil, fmt.Errorf("provider %q: missing type", cfg.ID)
		}
		if seen[cfg.ID] {
			return nil, fmt.Errorf("provider %q: duplicate id", cfg.ID)
		}
		seen[cfg.ID] = true
	}

	return file.Providers, nil
}
