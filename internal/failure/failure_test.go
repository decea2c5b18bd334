package failure

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormat(t *testing.T) {
	err := Newf(SourceMissing, "source %s does not exist", "/repo/vimrc")
	assert.Equal(t, "[SOURCE_MISSING] source /repo/vimrc does not exist", err.Error())

	wrapped := Wrap(os.ErrPermission, PrivilegeRequired, "create link")
	assert.Contains(t, wrapped.Error(), "[PRIVILEGE_REQUIRED] create link")
	assert.Contains(t, wrapped.Error(), os.ErrPermission.Error())
}

func TestWrapNilIsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, IO, "x"))
	assert.NoError(t, Wrapf(nil, IO, "x %d", 1))
}

func TestUnwrapChain(t *testing.T) {
	cause := os.ErrNotExist
	err := Wrapf(cause, IO, "stat")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestIsMatchesOnKind(t *testing.T) {
	err := Newf(ConflictingLink, "points elsewhere")
	assert.True(t, errors.Is(err, &Failure{Kind: ConflictingLink}))
	assert.False(t, errors.Is(err, &Failure{Kind: ConflictingEntry}))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, IO, KindOf(errors.New("plain")))
	assert.Equal(t, ValueConflict, KindOf(New(ValueConflict, "differs")))

	// Kind survives further %w wrapping.
	outer := fmt.Errorf("action 3: %w", New(UnknownAction, "teleport"))
	assert.Equal(t, UnknownAction, KindOf(outer))
}

func TestIsKind(t *testing.T) {
	err := New(ConflictingEntry, "not a link")
	require.Error(t, err)
	assert.True(t, IsKind(err, ConflictingEntry))
	assert.False(t, IsKind(err, ConflictingLink))
	assert.False(t, IsKind(nil, ConflictingLink))
}
