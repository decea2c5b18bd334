//go:build !windows

package actions

import (
	"context"
	"errors"
)

// createJunction is the directory-link fallback used when symlink creation is
// refused for privilege reasons. Junctions only exist on Windows.
func createJunction(ctx context.Context, path, target string) error {
	return errors.New("directory junctions are not supported on this platform")
}
