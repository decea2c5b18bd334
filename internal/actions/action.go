// Package actions implements one executor per manifest action kind. Each
// executor holds fully resolved absolute paths (resolution happens in the
// runner), inspects current state, and performs at most one mutation per run
// under an idempotency contract specific to its kind. Conflicting
// pre-existing state is reported as a typed failure, never auto-repaired.
package actions

import (
	"context"
	"io"
	"os"

	"github.com/roostdev/roost/internal/failure"
)

// Action is a single executable convergence step.
type Action interface {
	// Kind returns the manifest kind string the action was built from.
	Kind() string
	// Describe returns a human-readable summary of the action.
	Describe() string
	// Run applies the action. Expected conflicts come back as
	// *failure.Failure values with a stable kind.
	Run(ctx context.Context) error
}

// Idempotent is implemented by actions that can self-check whether their
// desired state is already in place, without side effects. Used by the
// status command.
type Idempotent interface {
	IsApplied(ctx context.Context) (bool, error)
}

// ensureDir creates path and any missing ancestors. Already existing is a
// no-op, not an error.
func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return failure.Wrapf(err, failure.IO, "create directory %s", path)
	}
	return nil
}

// copyFile copies src to dst, unconditionally overwriting dst and carrying
// over the source's permission bits.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return failure.Wrapf(err, failure.IO, "open source %s", src)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return failure.Wrapf(err, failure.IO, "stat source %s", src)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return failure.Wrapf(err, failure.IO, "create destination %s", dst)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return failure.Wrapf(err, failure.IO, "copy %s to %s", src, dst)
	}
	if err := out.Close(); err != nil {
		return failure.Wrapf(err, failure.IO, "flush destination %s", dst)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// SourceExists reports whether an action's resolved source path is present,
// used by the runner for optional-item skip logic.
func SourceExists(path string) bool {
	return fileExists(path)
}
