// Package envstore abstracts the user-scoped key-value store that backs the
// setUserPath and setUserEnv actions. Executors are written against the Store
// interface so tests can substitute an in-memory double, and so the process
// environment and the persistent per-user store are interchangeable backends.
package envstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Store is a user-scoped key-value store for environment-like settings.
type Store interface {
	// Get returns the value of name and whether it is set.
	Get(name string) (value string, ok bool, err error)
	// Set writes name=value to the store.
	Set(name, value string) error
}

// Process reads and writes the environment of the current process.
type Process struct{}

func (Process) Get(name string) (string, bool, error) {
	v, ok := os.LookupEnv(name)
	return v, ok, nil
}

func (Process) Set(name, value string) error {
	return os.Setenv(name, value)
}

// File is a persistent per-user store backed by a YAML file, the portable
// stand-in for a registry hive or launchctl user environment. Every Get and
// Set re-reads the file so a write never clobbers keys written by another
// run between our read and our write.
type File struct {
	Path string
}

// NewFile returns a File store at the default location under the XDG state
// directory.
func NewFile() *File {
	return &File{Path: filepath.Join(xdg.StateHome, "roost", "env.yaml")}
}

func (f *File) Get(name string) (string, bool, error) {
	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[name]
	return v, ok, nil
}

func (f *File) Set(name, value string) error {
	values, err := f.load()
	if err != nil {
		return err
	}
	values[name] = value
	return f.save(values)
}

// All returns every stored key-value pair, keys sorted.
func (f *File) All() ([]string, map[string]string, error) {
	values, err := f.load()
	if err != nil {
		return nil, nil, err
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, values, nil
}

func (f *File) load() (map[string]string, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store %s: %w", f.Path, err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse store %s: %w", f.Path, err)
	}
	return values, nil
}

func (f *File) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	data, err := yaml.Marshal(values)
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0o600)
}

// Memory is an in-memory Store for tests.
type Memory struct {
	Values map[string]string
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{Values: map[string]string{}}
}

func (m *Memory) Get(name string) (string, bool, error) {
	v, ok := m.Values[name]
	return v, ok, nil
}

func (m *Memory) Set(name, value string) error {
	if m.Values == nil {
		m.Values = map[string]string{}
	}
	m.Values[name] = value
	return nil
}
