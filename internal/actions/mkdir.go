package actions

import (
	"context"
	"fmt"
	"os"
)

// Mkdir ensures the directory at Target exists, creating missing ancestors.
// A first-class action so manifests can provision data directories for other
// tools without needing a link or copy.
type Mkdir struct {
	Target string
}

func (a *Mkdir) Kind() string { return "mkdir" }

func (a *Mkdir) Describe() string {
	return fmt.Sprintf("mkdir  %s", a.Target)
}

func (a *Mkdir) Run(ctx context.Context) error {
	return ensureDir(a.Target)
}

// IsApplied implements Idempotent.
func (a *Mkdir) IsApplied(ctx context.Context) (bool, error) {
	fi, err := os.Stat(a.Target)
	if err != nil {
		return false, nil
	}
	return fi.IsDir(), nil
}
