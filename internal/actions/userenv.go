package actions

import (
	"context"
	"fmt"

	"github.com/roostdev/roost/internal/envstore"
	"github.com/roostdev/roost/internal/failure"
)

// UserEnv ensures the user-scoped variable Name equals Value in Store.
//
// Like Link this detects and refuses conflicts, but it exposes an explicit
// escape hatch: a differing existing value fails with VALUE_CONFLICT unless
// Override is set, in which case it is overwritten unconditionally.
type UserEnv struct {
	Name     string
	Value    string
	Override bool
	Store    envstore.Store
}

func (a *UserEnv) Kind() string { return "setUserEnv" }

func (a *UserEnv) Describe() string {
	return fmt.Sprintf("env    %s = %s", a.Name, a.Value)
}

func (a *UserEnv) Run(ctx context.Context) error {
	current, ok, err := a.Store.Get(a.Name)
	if err != nil {
		return failure.Wrapf(err, failure.IO, "read %s from store", a.Name)
	}
	if ok && current == a.Value {
		return nil
	}
	if ok && !a.Override {
		return failure.Newf(failure.ValueConflict,
			"%s is already set to %q, not %q; declare override to replace it", a.Name, current, a.Value)
	}
	if err := a.Store.Set(a.Name, a.Value); err != nil {
		return failure.Wrapf(err, failure.IO, "write %s to store", a.Name)
	}
	return nil
}

// IsApplied implements Idempotent.
func (a *UserEnv) IsApplied(ctx context.Context) (bool, error) {
	current, ok, err := a.Store.Get(a.Name)
	if err != nil {
		return false, err
	}
	return ok && current == a.Value, nil
}
