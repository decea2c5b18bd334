package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
repo: dotfiles
actions:
  - kind: mkdir
    destination: .local/share/tools
  - kind: link
    source: vimrc
    destination: .vimrc
  - kind: copy
    source: gitconfig
    destination: .gitconfig
    optional: true
  - kind: append
    source: shell/aliases.sh
    destination: .bashrc
    keyword: source
  - kind: setUserPath
    destination: bin
    persist: true
  - kind: setUserEnv
    destination: EDITOR
    value: nvim
    override: true
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roost.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	m, err := Load(path)
	require.NoError(t, err)

	require.Len(t, m.Actions, 6)
	assert.Equal(t, KindMkdir, m.Actions[0].Kind)
	assert.Equal(t, KindLink, m.Actions[1].Kind)
	assert.True(t, m.Actions[2].Optional)
	assert.Equal(t, "source", m.Actions[3].Keyword)
	assert.True(t, m.Actions[4].Persist)
	assert.Equal(t, "nvim", m.Actions[5].Value)
	assert.True(t, m.Actions[5].Override)

	// Relative repo resolves under the manifest directory.
	assert.Equal(t, filepath.Join(filepath.Dir(path), "dotfiles"), m.Repo)
}

func TestLoadDefaultsRepoToManifestDir(t *testing.T) {
	path := writeManifest(t, "actions:\n  - kind: mkdir\n    destination: .cache\n")
	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(path), m.Repo)
}

func TestLoadRejectsUnknownKind(t *testing.T) {
	path := writeManifest(t, "actions:\n  - kind: teleport\n    destination: x\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action kind")
	assert.Contains(t, err.Error(), "action 0")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    Item
		wantErr string
	}{
		{"link without source", Item{Kind: KindLink, Destination: ".vimrc"}, "requires a source"},
		{"copy without destination", Item{Kind: KindCopy, Source: "x"}, "requires a destination"},
		{"mkdir ok", Item{Kind: KindMkdir, Destination: ".cache"}, ""},
		{"env without value", Item{Kind: KindUserEnv, Destination: "EDITOR"}, "requires a value"},
		{"missing kind", Item{Destination: "x"}, "missing a kind"},
		{"encrypted link", Item{Kind: KindLink, Source: "a", Destination: "b", Encrypted: true}, "only valid on copy"},
		{"path ok", Item{Kind: KindUserPath, Destination: "bin"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roost.yaml")
	m := Manifest{
		Repo: "/srv/dotfiles",
		Actions: []Item{
			{Kind: KindLink, Source: "vimrc", Destination: ".vimrc"},
		},
	}
	require.NoError(t, Save(path, m))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, m.Repo, got.Repo)
	assert.Equal(t, m.Actions, got.Actions)
}
