package actions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roostdev/roost/internal/failure"
)

// Link ensures a symbolic link at Target pointing to Source. Both paths are
// absolute.
//
// Idempotency contract: an existing link whose stored target string equals
// Source exactly is already converged and left untouched. Any other existing
// entry is a conflict, reported and never corrected. The destination lives in
// the user's home directory and may hold unrelated data.
type Link struct {
	Source string
	Target string
}

func (a *Link) Kind() string { return "link" }

func (a *Link) Describe() string {
	return fmt.Sprintf("link   %s -> %s", a.Target, a.Source)
}

func (a *Link) Run(ctx context.Context) error {
	info, err := os.Stat(a.Source)
	if os.IsNotExist(err) {
		return failure.Newf(failure.SourceMissing, "link source %s does not exist", a.Source)
	}
	if err != nil {
		return failure.Wrapf(err, failure.IO, "stat link source %s", a.Source)
	}

	if err := ensureDir(filepath.Dir(a.Target)); err != nil {
		return err
	}

	fi, lerr := os.Lstat(a.Target)
	switch {
	case os.IsNotExist(lerr):
		return a.create(ctx, info.IsDir())

	case lerr != nil:
		return failure.Wrapf(lerr, failure.IO, "inspect destination %s", a.Target)

	case fi.Mode()&os.ModeSymlink != 0:
		existing, err := os.Readlink(a.Target)
		if err != nil {
			return failure.Wrapf(err, failure.IO, "read link target of %s", a.Target)
		}
		// Literal string comparison: some platforms store exactly the
		// string given at creation time, so canonicalising here would
		// mask real differences.
		if existing == a.Source {
			return nil
		}
		return failure.Newf(failure.ConflictingLink,
			"%s already links to %s, not %s; resolve manually", a.Target, existing, a.Source)

	default:
		return failure.Newf(failure.ConflictingEntry,
			"%s exists and is not a link; refusing to replace it", a.Target)
	}
}

// create makes the symlink, falling back to a directory junction when the
// platform refuses unprivileged symlinks and the source is a directory.
// There is no fallback for files.
func (a *Link) create(ctx context.Context, sourceIsDir bool) error {
	err := os.Symlink(a.Source, a.Target)
	if err == nil {
		return nil
	}
	if sourceIsDir {
		if jerr := createJunction(ctx, a.Target, a.Source); jerr == nil {
			return nil
		}
	}
	if isPrivilegeError(err) {
		return failure.Wrapf(err, failure.PrivilegeRequired,
			"creating link %s requires elevated privileges", a.Target)
	}
	return failure.Wrapf(err, failure.IO, "create link %s", a.Target)
}

// IsApplied implements Idempotent: true when the destination is a link whose
// stored target equals the source exactly.
func (a *Link) IsApplied(ctx context.Context) (bool, error) {
	existing, err := os.Readlink(a.Target)
	if err != nil {
		return false, nil // absent or not a link
	}
	return existing == a.Source, nil
}
