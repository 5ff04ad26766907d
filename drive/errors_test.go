package drive_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive"
)

func Test_PathError_MatchesTheSentinelForItsCode(t *testing.T) {
	testCases := []struct {
		code     string
		sentinel error
	}{
		{code: "ENOENT", sentinel: drive.ErrNotFound},
		{code: "EEXIST", sentinel: drive.ErrExists},
		{code: "EBADF", sentinel: drive.ErrBadDescriptor},
		{code: "ENOTDIR", sentinel: drive.ErrNotDirectory},
		{code: "ENOTEMPTY", sentinel: drive.ErrNotEmpty},
		{code: "EPERM", sentinel: drive.ErrNotWritable},
	}

	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			// act
			err := fmt.Errorf("wrapped: %w", drive.NewPathError(tc.code, "stat", "/a"))

			// assert
			assert.ErrorIs(t, err, tc.sentinel)
			assert.NotErrorIs(t, err, drive.ErrClosed)
		})
	}
}

func Test_PathError_UnknownCode_MatchesNoSentinel(t *testing.T) {
	// act
	err := drive.NewPathError("EISDIR", "readFile", "/dir")

	// assert
	assert.NotErrorIs(t, err, drive.ErrNotFound)
	assert.Equal(t, "EISDIR: readFile /dir", err.Error())

	var pathErr *drive.PathError
	assert.True(t, errors.As(err, &pathErr))
	assert.Equal(t, "/dir", pathErr.Path)
}
