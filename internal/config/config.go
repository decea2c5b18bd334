// Package config loads and validates the declarative action manifest.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Kind discriminates the action types a manifest item may declare.
type Kind string

const (
	KindLink     Kind = "link"
	KindCopy     Kind = "copy"
	KindAppend   Kind = "append"
	KindMkdir    Kind = "mkdir"
	KindUserPath Kind = "setUserPath"
	KindUserEnv  Kind = "setUserEnv"
)

// Kinds lists every valid action kind.
var Kinds = []Kind{KindLink, KindCopy, KindAppend, KindMkdir, KindUserPath, KindUserEnv}

// Manifest is the top-level config file: the configuration repository root
// plus the ordered list of declared actions.
type Manifest struct {
	// Repo is the configuration repository root that relative sources are
	// resolved against. Defaults to the manifest file's directory.
	Repo    string `yaml:"repo,omitempty"`
	Age     AgeKey `yaml:"age,omitempty"`
	Actions []Item `yaml:"actions"`
}

// AgeKey configures the credential for encrypted copy items.
type AgeKey struct {
	Identity   string `yaml:"identity,omitempty"`
	Passphrase string `yaml:"passphrase,omitempty"`
}

// Item is one declared action. Items are immutable once loaded; the runner
// only reads them in declaration order.
type Item struct {
	Kind        Kind     `yaml:"kind"`
	Source      string   `yaml:"source,omitempty"`    // relative to the repo root
	Destination string   `yaml:"destination"`         // relative to home unless absolute
	Absolute    bool     `yaml:"absolute,omitempty"`  // destination is used as-is
	Optional    bool     `yaml:"optional,omitempty"`  // skip silently when source is absent
	Keyword     string   `yaml:"keyword,omitempty"`   // append: directive keyword, default "source"
	Value       string   `yaml:"value,omitempty"`     // setUserEnv: the value to set
	Override    bool     `yaml:"override,omitempty"`  // setUserEnv: overwrite a differing value
	Encrypted   bool     `yaml:"encrypted,omitempty"` // copy: source is stored age-encrypted
	Persist     bool     `yaml:"persist,omitempty"`   // setUserPath/setUserEnv: persistent store instead of process env
	Tags        []string `yaml:"tags,omitempty"`      // apply only on machines carrying one of these tags
	SkipIf      string   `yaml:"skipIf,omitempty"`    // shell guard; exit 0 skips the item
}

// Validate checks that the item declares a known kind and the fields that
// kind requires. Unknown kinds and missing fields are caught here, at
// construction time, not at dispatch time.
func (i Item) Validate() error {
	switch i.Kind {
	case KindLink, KindCopy, KindAppend:
		if i.Source == "" {
			return fmt.Errorf("%s item requires a source", i.Kind)
		}
		if i.Destination == "" {
			return fmt.Errorf("%s item requires a destination", i.Kind)
		}
	case KindMkdir, KindUserPath:
		if i.Destination == "" {
			return fmt.Errorf("%s item requires a destination", i.Kind)
		}
	case KindUserEnv:
		if i.Destination == "" {
			return fmt.Errorf("%s item requires a destination (the variable name)", i.Kind)
		}
		if i.Value == "" {
			return fmt.Errorf("%s item requires a value", i.Kind)
		}
	case "":
		return fmt.Errorf("item is missing a kind (one of %v)", Kinds)
	default:
		return fmt.Errorf("unknown action kind %q (one of %v)", i.Kind, Kinds)
	}
	if i.Encrypted && i.Kind != KindCopy {
		return fmt.Errorf("encrypted is only valid on copy items")
	}
	return nil
}

// Load reads and validates a manifest file. The repo root defaults to the
// manifest's own directory and is made absolute.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	for idx, item := range m.Actions {
		if err := item.Validate(); err != nil {
			return Manifest{}, fmt.Errorf("manifest %s: action %d: %w", path, idx, err)
		}
	}

	if m.Repo == "" {
		m.Repo = filepath.Dir(path)
	}
	if !filepath.IsAbs(m.Repo) {
		base, err := filepath.Abs(filepath.Dir(path))
		if err != nil {
			return Manifest{}, fmt.Errorf("resolve repo root: %w", err)
		}
		m.Repo = filepath.Join(base, m.Repo)
	}
	return m, nil
}

// Save writes the manifest to path.
func Save(path string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
