// pkg/mmapcache/result_test.go
// Tests for the optional result.Result[[]byte]-returning wrapper
// around Get.

package mmapcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryGetOk(t *testing.T) {
	content := sequentialBytes(pageSize())
	f := writeTempFile(t, content)
	fi, err := f.Stat()
	require.NoError(t, err)

	c, err := New()
	require.NoError(t, err)
	defer c.Unref()

	fd := c.AddFD(int(f.Fd()), ProtRead)
	res := fd.TryGet(0, false, 0, 16, fi)

	assert.True(t, res.IsOk())
	value, err := res.Unwrap()
	require.NoError(t, err)
	assert.Equal(t, content[0:16], value)
}

func TestTryGetErr(t *testing.T) {
	content := sequentialBytes(pageSize())
	f := writeTempFile(t, content)
	fi, err := f.Stat()
	require.NoError(t, err)

	c, err := New()
	require.NoError(t, err)
	defer c.Unref()

	fd := c.AddFD(int(f.Fd()), ProtRead)
	res := fd.TryGet(0, false, 0, 0, fi)

	assert.True(t, res.IsErr())
	assert.ErrorIs(t, res.Error(), ErrInvalidSize)
}
