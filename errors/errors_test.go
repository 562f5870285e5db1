package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	u6errors "github.com/WesLeeO/unixv6fs/errors"
)

func TestCode_WithMessage(t *testing.T) {
	err := u6errors.ErrNoSuchFile.WithMessage("/tmp/missing")
	assert.Equal(t, "no such file or directory: /tmp/missing", err.Error())
	assert.True(t, stderrors.Is(err, u6errors.ErrNoSuchFile))
}

func TestCode_Wrap(t *testing.T) {
	cause := stderrors.New("disk read failed")
	err := u6errors.ErrIO.Wrap(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk read failed")
}

func TestCode_ExitStatus(t *testing.T) {
	require.Equal(t, -14, u6errors.ErrNoSuchFile.ExitStatus())
	require.Equal(t, -1, u6errors.ErrInvalidCommand.ExitStatus())
	require.Negative(t, u6errors.ErrBitmapFull.ExitStatus())
}

func TestDetailedError_WithMessage_Chains(t *testing.T) {
	err := u6errors.ErrFileTooLarge.WithMessage("first").WithMessage("second")
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
}
