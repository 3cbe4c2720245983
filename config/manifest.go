package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-ioc/container"
)

// ── Service manifest ──────────────────────────────────────────────────────────

// Manifest is the external wiring file: a mapping from service key to either
// an implementation locator or an explicit "no real implementation — use
// mock" marker (a null value). A key absent from the manifest is simply not
// registered, and resolving it is a hard failure — absence and an explicit
// mock request are two different states.
//
//	services:
//	  logger: report.ConsoleLogger      # locator shorthand, Singleton
//	  request-context:
//	    locator: app.RequestContext
//	    lifetime: scoped
//	  clock:
//	    locator: app.SystemClock
//	    lifetime: transient
//	  mailer:                           # null → use the built-in mock
//	critical:
//	  - logger
//	  - mailer
type Manifest struct {
	Services map[string]Entry `yaml:"services"`
	Critical []string         `yaml:"critical"`
}

// Entry is one manifest line. It unmarshals from three YAML shapes: a null
// (explicit mock request), a bare locator string (Singleton), or a mapping
// with locator and lifetime.
type Entry struct {
	Locator  string `yaml:"locator"`
	Lifetime string `yaml:"lifetime"`
	Mock     bool   `yaml:"-"`
}

// UnmarshalYAML implements yaml.Unmarshaler for the three entry shapes.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			e.Mock = true
			return nil
		}
		e.Locator = node.Value
		return nil
	case yaml.MappingNode:
		type plain Entry // avoid recursing into UnmarshalYAML
		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}
		*e = Entry(p)
		return nil
	default:
		return fmt.Errorf("manifest: unsupported entry shape (line %d)", node.Line)
	}
}

// Parse decodes a manifest from YAML bytes and validates lifetimes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	for key, entry := range m.Services {
		if entry.Mock {
			continue
		}
		if entry.Locator == "" {
			return nil, fmt.Errorf("manifest: service %q has no locator", key)
		}
		if _, ok := container.ParseLifetime(entry.Lifetime); !ok {
			return nil, fmt.Errorf("manifest: service %q has unknown lifetime %q", key, entry.Lifetime)
		}
	}
	return &m, nil
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return Parse(data)
}

// Apply registers every manifest entry into c. Locator strings are not
// checked against the constructor set here; a bad locator surfaces at
// resolution time, which is what the verifier is for.
func (m *Manifest) Apply(c *container.Container) {
	for key, entry := range m.Services {
		k := container.ServiceKey(key)
		if entry.Mock {
			c.UseMock(k)
			continue
		}
		lifetime, _ := container.ParseLifetime(entry.Lifetime)
		c.Register(k, entry.Locator, lifetime)
	}
}

// CriticalKeys returns the verifier probe list as service keys.
func (m *Manifest) CriticalKeys() []container.ServiceKey {
	keys := make([]container.ServiceKey, 0, len(m.Critical))
	for _, k := range m.Critical {
		keys = append(keys, container.ServiceKey(k))
	}
	return keys
}
