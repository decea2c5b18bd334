package actions

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roostdev/roost/internal/agecrypt"
	"github.com/roostdev/roost/internal/failure"
)

// Copy replicates a repository file to Target, unconditionally overwriting
// whatever is there. Unlike Link there is no conflict detection: copy is
// explicitly last-write-wins.
//
// When Encrypted is set the repository stores the file with an ".age"
// extension and the copy decrypts it on the way out.
type Copy struct {
	Source    string
	Target    string
	Encrypted bool
	Key       *agecrypt.Key
}

func (a *Copy) Kind() string { return "copy" }

func (a *Copy) Describe() string {
	if a.Encrypted {
		return fmt.Sprintf("copy   %s -> %s [encrypted]", a.storedSource(), a.Target)
	}
	return fmt.Sprintf("copy   %s -> %s", a.Source, a.Target)
}

// storedSource is the on-disk repository path, which differs from the
// declared source for encrypted items.
func (a *Copy) storedSource() string {
	if a.Encrypted {
		return agecrypt.StoredPath(a.Source)
	}
	return a.Source
}

func (a *Copy) Run(ctx context.Context) error {
	src := a.storedSource()
	if !fileExists(src) {
		return failure.Newf(failure.SourceMissing, "copy source %s does not exist", src)
	}
	if err := ensureDir(filepath.Dir(a.Target)); err != nil {
		return err
	}
	if a.Encrypted {
		if a.Key == nil {
			return failure.Newf(failure.IO,
				"encrypted copy of %s requires an age key (set age.identity or age.passphrase in the manifest)", src)
		}
		if err := a.Key.DecryptFile(src, a.Target); err != nil {
			return failure.Wrapf(err, failure.IO, "decrypt %s", src)
		}
		return nil
	}
	return copyFile(src, a.Target)
}

// IsApplied implements Idempotent: true when the destination exists with
// contents identical to the (decrypted) source.
func (a *Copy) IsApplied(ctx context.Context) (bool, error) {
	if !fileExists(a.Target) {
		return false, nil
	}
	if a.Encrypted {
		if a.Key == nil {
			return false, nil
		}
		tmp, err := os.CreateTemp("", "roost-cmp-*")
		if err != nil {
			return false, err
		}
		tmpPath := tmp.Name()
		tmp.Close()
		defer os.Remove(tmpPath)
		if err := a.Key.DecryptFile(a.storedSource(), tmpPath); err != nil {
			return false, err
		}
		return filesEqual(tmpPath, a.Target)
	}
	return filesEqual(a.Source, a.Target)
}

func filesEqual(a, b string) (bool, error) {
	aData, err := os.ReadFile(a)
	if err != nil {
		return false, err
	}
	bData, err := os.ReadFile(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(aData, bData), nil
}
