// pkg/mmapcache/sigbus_test.go
// Tests for SIGBUS attribution and poisoning, using a fake SigbusSource
// instead of an actual signal handler.

package mmapcache

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSigbusSource replays a fixed queue of addresses, then a terminal
// error if one was configured.
type fakeSigbusSource struct {
	addrs   []uintptr
	failErr error
}

func (s *fakeSigbusSource) Pop() (uintptr, bool, error) {
	if len(s.addrs) == 0 {
		if s.failErr != nil {
			err := s.failErr
			s.failErr = nil
			return 0, false, err
		}
		return 0, false, nil
	}
	addr := s.addrs[0]
	s.addrs = s.addrs[1:]
	return addr, true, nil
}

func TestProcessSigbusPoisonsOwningFD(t *testing.T) {
	content := sequentialBytes(4 * pageSize())
	f := writeTempFile(t, content)
	fi, err := f.Stat()
	require.NoError(t, err)

	src := &fakeSigbusSource{}
	c, err := New(WithSigbusSource(src))
	require.NoError(t, err)
	defer c.Unref()

	fd := c.AddFD(int(f.Fd()), ProtRead)
	data, err := fd.Get(0, true, 0, 16, fi)
	require.NoError(t, err)

	src.addrs = []uintptr{uintptr(unsafe.Pointer(&data[0]))}
	c.ProcessSigbus()

	assert.True(t, fd.Sigbus())
	assert.Equal(t, uint64(1), c.Stats().Faults)

	_, err = fd.Get(0, false, 0, 16, fi)
	assert.ErrorIs(t, err, ErrPoisoned)
}

func TestProcessSigbusUnattributedAddressIsFatal(t *testing.T) {
	content := sequentialBytes(pageSize())
	f := writeTempFile(t, content)
	fi, err := f.Stat()
	require.NoError(t, err)

	src := &fakeSigbusSource{addrs: []uintptr{0xdeadbeef}}

	var fatalMsg string
	c, err := New(
		WithSigbusSource(src),
		WithFatalFunc(func(format string, args ...any) { fatalMsg = format }),
	)
	require.NoError(t, err)
	defer c.Unref()

	fd := c.AddFD(int(f.Fd()), ProtRead)
	_, err = fd.Get(0, false, 0, 16, fi)
	require.NoError(t, err)

	c.ProcessSigbus()

	assert.NotEmpty(t, fatalMsg)
	assert.False(t, fd.Sigbus(), "a fault that could not be attributed must not poison an unrelated descriptor")
}

func TestProcessSigbusSourceErrorIsFatal(t *testing.T) {
	src := &fakeSigbusSource{failErr: errors.New("signal queue corrupted")}

	var fatalCalled bool
	c, err := New(
		WithSigbusSource(src),
		WithFatalFunc(func(format string, args ...any) { fatalCalled = true }),
	)
	require.NoError(t, err)
	defer c.Unref()

	c.ProcessSigbus()
	assert.True(t, fatalCalled)
}

func TestProcessSigbusNoSourceIsNoop(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	defer c.Unref()

	c.ProcessSigbus() // must not panic with no SigbusSource installed
}
