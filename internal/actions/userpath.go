package actions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roostdev/roost/internal/envstore"
	"github.com/roostdev/roost/internal/failure"
)

// UserPath ensures Entry is an element of the user-scoped PATH list held in
// Store.
//
// Idempotency contract: the list is split on the platform separator and
// compared element-by-element; an exact match means no write happens at all.
// The store is re-read immediately before the write so a concurrent run's
// additions are not lost.
type UserPath struct {
	Entry string
	Store envstore.Store
}

func (a *UserPath) Kind() string { return "setUserPath" }

func (a *UserPath) Describe() string {
	return fmt.Sprintf("path   + %s", a.Entry)
}

func (a *UserPath) Run(ctx context.Context) error {
	current, _, err := a.Store.Get("PATH")
	if err != nil {
		return failure.Wrap(err, failure.IO, "read PATH from store")
	}
	if containsEntry(current, a.Entry) {
		return nil
	}
	updated := a.Entry
	if current != "" {
		updated = current + string(os.PathListSeparator) + a.Entry
	}
	if err := a.Store.Set("PATH", updated); err != nil {
		return failure.Wrap(err, failure.IO, "write PATH to store")
	}
	return nil
}

// IsApplied implements Idempotent.
func (a *UserPath) IsApplied(ctx context.Context) (bool, error) {
	current, _, err := a.Store.Get("PATH")
	if err != nil {
		return false, err
	}
	return containsEntry(current, a.Entry), nil
}

func containsEntry(list, entry string) bool {
	for _, p := range filepath.SplitList(list) {
		if p == entry {
			return true
		}
	}
	return false
}
