//go:build !windows

package actions

import (
	"errors"
	"os"
)

// isPrivilegeError reports whether a link-creation failure is a permissions
// problem rather than a generic I/O error.
func isPrivilegeError(err error) bool {
	return errors.Is(err, os.ErrPermission)
}
