//go:build windows

package actions

import (
	"errors"
	"os"

	"golang.org/x/sys/windows"
)

// isPrivilegeError reports whether a link-creation failure is a permissions
// problem rather than a generic I/O error. Unprivileged symlink creation on
// Windows fails with ERROR_PRIVILEGE_NOT_HELD, which the os package does not
// fold into ErrPermission.
func isPrivilegeError(err error) bool {
	return errors.Is(err, os.ErrPermission) || errors.Is(err, windows.ERROR_PRIVILEGE_NOT_HELD)
}
