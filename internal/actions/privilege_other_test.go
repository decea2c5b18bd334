//go:build !windows

package actions

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPrivilegeError(t *testing.T) {
	assert.True(t, isPrivilegeError(os.ErrPermission))
	assert.True(t, isPrivilegeError(fmt.Errorf("symlink: %w", os.ErrPermission)))
	assert.False(t, isPrivilegeError(errors.New("disk full")))
	assert.False(t, isPrivilegeError(os.ErrNotExist))
}
