package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roostdev/roost/internal/config"
	"github.com/roostdev/roost/internal/envstore"
	"github.com/roostdev/roost/internal/report"
)

// newTestRunner wires a Runner against temp dirs and in-memory stores.
func newTestRunner(t *testing.T) (*Runner, string, string) {
	t.Helper()
	repo := t.TempDir()
	home := t.TempDir()
	r := &Runner{
		RepoRoot: repo,
		HomeDir:  home,
		Proc:     envstore.NewMemory(),
		User:     envstore.NewMemory(),
		NoAudit:  true,
		log:      zerolog.Nop(),
	}
	return r, repo, home
}

func seed(t *testing.T, repo, name, content string) {
	t.Helper()
	path := filepath.Join(repo, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func statuses(rep report.Report) map[report.Status]int {
	out := map[report.Status]int{}
	for _, res := range rep.Results {
		out[res.Status]++
	}
	return out
}

func TestRunAppliesInDeclarationOrder(t *testing.T) {
	r, repo, home := newTestRunner(t)
	seed(t, repo, "vimrc", "set number\n")

	items := []config.Item{
		{Kind: config.KindMkdir, Destination: ".config/nvim"},
		{Kind: config.KindLink, Source: "vimrc", Destination: ".config/nvim/init.vim"},
	}
	rep := r.Run(context.Background(), items)

	require.Len(t, rep.Results, 2)
	assert.False(t, rep.HasFailures())
	assert.DirExists(t, filepath.Join(home, ".config", "nvim"))

	target, err := os.Readlink(filepath.Join(home, ".config", "nvim", "init.vim"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repo, "vimrc"), target)
}

func TestRunIsIdempotent(t *testing.T) {
	r, repo, _ := newTestRunner(t)
	seed(t, repo, "vimrc", "x")
	seed(t, repo, "aliases.sh", "alias ll='ls -l'\n")

	items := []config.Item{
		{Kind: config.KindLink, Source: "vimrc", Destination: ".vimrc"},
		{Kind: config.KindAppend, Source: "aliases.sh", Destination: ".bashrc"},
		{Kind: config.KindMkdir, Destination: ".cache/roost"},
		{Kind: config.KindUserPath, Destination: "bin"},
		{Kind: config.KindUserEnv, Destination: "EDITOR", Value: "nvim"},
	}

	first := r.Run(context.Background(), items)
	require.False(t, first.HasFailures(), "first run: %+v", first.Results)

	second := r.Run(context.Background(), items)
	require.Len(t, second.Results, len(items))
	assert.False(t, second.HasFailures(), "second run must succeed via no-ops: %+v", second.Results)
}

func TestRunFailureIsolation(t *testing.T) {
	r, repo, home := newTestRunner(t)
	seed(t, repo, "a", "a")
	seed(t, repo, "b", "b")
	seed(t, repo, "c", "c")

	// Engineer a ConflictingEntry for the middle action.
	require.NoError(t, os.WriteFile(filepath.Join(home, ".b"), []byte("user data"), 0o644))

	items := []config.Item{
		{Kind: config.KindLink, Source: "a", Destination: ".a"},
		{Kind: config.KindLink, Source: "b", Destination: ".b"},
		{Kind: config.KindLink, Source: "c", Destination: ".c"},
	}
	rep := r.Run(context.Background(), items)

	require.Len(t, rep.Results, 3, "all three actions must be attempted")
	counts := statuses(rep)
	assert.Equal(t, 1, counts[report.StatusFailed])
	assert.Equal(t, 2, counts[report.StatusSuccess])

	// Failures are grouped first in the report.
	assert.Equal(t, report.StatusFailed, rep.Results[0].Status)
	assert.Equal(t, 1, rep.Results[0].Index)
}

func TestRunOptionalMissingSourceIsOmitted(t *testing.T) {
	r, repo, _ := newTestRunner(t)
	seed(t, repo, "present", "x")

	items := []config.Item{
		{Kind: config.KindLink, Source: "present", Destination: ".present"},
		{Kind: config.KindLink, Source: "absent", Destination: ".absent", Optional: true},
	}
	rep := r.Run(context.Background(), items)

	require.Len(t, rep.Results, 1, "optional-and-absent items are omitted, not reported")
	assert.Equal(t, "present", rep.Results[0].Source)
}

func TestRunNonOptionalMissingSourceFails(t *testing.T) {
	r, _, _ := newTestRunner(t)
	items := []config.Item{
		{Kind: config.KindLink, Source: "absent", Destination: ".absent"},
	}
	rep := r.Run(context.Background(), items)
	require.Len(t, rep.Results, 1)
	assert.Equal(t, report.StatusFailed, rep.Results[0].Status)
	assert.Contains(t, rep.Results[0].Message, "SOURCE_MISSING")
}

func TestRunUnknownKindFailsWithoutAborting(t *testing.T) {
	r, repo, _ := newTestRunner(t)
	seed(t, repo, "a", "a")

	items := []config.Item{
		{Kind: "teleport", Destination: "somewhere"},
		{Kind: config.KindLink, Source: "a", Destination: ".a"},
	}
	rep := r.Run(context.Background(), items)

	require.Len(t, rep.Results, 2)
	counts := statuses(rep)
	assert.Equal(t, 1, counts[report.StatusFailed])
	assert.Equal(t, 1, counts[report.StatusSuccess])
	assert.Contains(t, rep.Results[0].Message, "UNKNOWN_ACTION")
}

func TestRunProvisionScenario(t *testing.T) {
	// mkdir + setUserEnv against an unset variable: two successes and the
	// store ends up holding the configured value.
	r, _, home := newTestRunner(t)
	dataDir := filepath.Join(home, "llm-models")

	items := []config.Item{
		{Kind: config.KindMkdir, Destination: dataDir, Absolute: true},
		{Kind: config.KindUserEnv, Destination: "OLLAMA_MODELS", Value: dataDir, Override: true, Persist: true},
	}
	rep := r.Run(context.Background(), items)

	require.Len(t, rep.Results, 2)
	assert.False(t, rep.HasFailures())
	assert.DirExists(t, dataDir)

	got, ok, err := r.User.Get("OLLAMA_MODELS")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, dataDir, got)
}

func TestRunPersistFlagSelectsStore(t *testing.T) {
	r, _, _ := newTestRunner(t)
	items := []config.Item{
		{Kind: config.KindUserEnv, Destination: "A", Value: "proc"},
		{Kind: config.KindUserEnv, Destination: "B", Value: "user", Persist: true},
	}
	rep := r.Run(context.Background(), items)
	require.False(t, rep.HasFailures())

	_, inProc, _ := r.Proc.Get("A")
	_, inUser, _ := r.User.Get("A")
	assert.True(t, inProc)
	assert.False(t, inUser)

	_, inProc, _ = r.Proc.Get("B")
	_, inUser, _ = r.User.Get("B")
	assert.False(t, inProc)
	assert.True(t, inUser)
}

func TestRunTagGate(t *testing.T) {
	r, repo, _ := newTestRunner(t)
	r.MachineTags = []string{"laptop"}
	seed(t, repo, "a", "a")
	seed(t, repo, "b", "b")

	items := []config.Item{
		{Kind: config.KindLink, Source: "a", Destination: ".a", Tags: []string{"laptop"}},
		{Kind: config.KindLink, Source: "b", Destination: ".b", Tags: []string{"server"}},
	}
	rep := r.Run(context.Background(), items)

	require.Len(t, rep.Results, 1, "non-matching tag gate omits the item")
	assert.Equal(t, "a", rep.Results[0].Source)
}

func TestRunDryRunMutatesNothing(t *testing.T) {
	r, repo, home := newTestRunner(t)
	r.DryRun = true
	seed(t, repo, "vimrc", "x")

	items := []config.Item{
		{Kind: config.KindLink, Source: "vimrc", Destination: ".vimrc"},
		{Kind: config.KindUserEnv, Destination: "EDITOR", Value: "nvim"},
	}
	rep := r.Run(context.Background(), items)

	require.Len(t, rep.Results, 2)
	assert.False(t, rep.HasFailures())
	assert.NoFileExists(t, filepath.Join(home, ".vimrc"))
	_, ok, _ := r.Proc.Get("EDITOR")
	assert.False(t, ok)
}

func TestStatus(t *testing.T) {
	r, repo, home := newTestRunner(t)
	seed(t, repo, "vimrc", "x")
	require.NoError(t, os.Symlink(filepath.Join(repo, "vimrc"), filepath.Join(home, ".vimrc")))

	items := []config.Item{
		{Kind: config.KindLink, Source: "vimrc", Destination: ".vimrc"},
		{Kind: config.KindMkdir, Destination: ".cache/roost"},
		{Kind: config.KindLink, Source: "absent", Destination: ".absent", Optional: true},
	}
	got := r.Status(context.Background(), items)

	require.Len(t, got, 3)
	assert.Equal(t, "applied", got[0].State)
	assert.Equal(t, "pending", got[1].State)
	assert.Equal(t, "skipped", got[2].State)

	// Status must not create anything.
	assert.NoDirExists(t, filepath.Join(home, ".cache", "roost"))
}
