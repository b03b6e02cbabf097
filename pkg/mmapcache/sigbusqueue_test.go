// pkg/mmapcache/sigbusqueue_test.go
// Tests for InMemoryQueue's non-blocking push/pop and batch drain.

package mmapcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryQueuePushPop(t *testing.T) {
	q := NewInMemoryQueue(2)

	assert.True(t, q.Push(0x1000))
	assert.True(t, q.Push(0x2000))
	assert.False(t, q.Push(0x3000), "a full queue must report failure rather than block")

	addr, ok, err := q.Pop()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uintptr(0x1000), addr)

	assert.True(t, q.Push(0x3000))
}

func TestInMemoryQueuePopEmpty(t *testing.T) {
	q := NewInMemoryQueue(1)
	_, ok, err := q.Pop()
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestInMemoryQueueDrainBatch(t *testing.T) {
	q := NewInMemoryQueue(4)
	q.Push(0x10)
	q.Push(0x20)
	q.Push(0x30)

	batch := q.DrainBatch()
	assert.Equal(t, []uintptr{0x10, 0x20, 0x30}, batch)

	empty := q.DrainBatch()
	assert.Empty(t, empty)
}

func TestNewInMemoryQueueDefaultCapacity(t *testing.T) {
	q := NewInMemoryQueue(0)
	for i := 0; i < 64; i++ {
		assert.True(t, q.Push(uintptr(i)), "default capacity should hold at least 64 entries")
	}
}
