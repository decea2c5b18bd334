//go:build windows

package actions

import (
	"context"
	"fmt"
	"os/exec"
)

// createJunction creates a directory junction at path pointing to target.
// Junctions, unlike symlinks, do not require elevation on Windows.
func createJunction(ctx context.Context, path, target string) error {
	out, err := exec.CommandContext(ctx, "cmd", "/c", "mklink", "/J", path, target).CombinedOutput()
	if err != nil {
		return fmt.Errorf("mklink /J %s %s: %v: %s", path, target, err, out)
	}
	return nil
}
