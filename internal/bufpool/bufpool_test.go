// internal/bufpool/bufpool_test.go
// Tests for the generic sync.Pool wrapper.

package bufpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolGetCreatesViaFactory(t *testing.T) {
	created := 0
	p := New(func() *[]int {
		created++
		s := make([]int, 0, 4)
		return &s
	}, nil)

	got := p.Get()
	assert.Equal(t, 1, created)
	assert.Equal(t, 0, len(*got))
}

func TestPoolPutAppliesReset(t *testing.T) {
	p := New(
		func() *[]int { s := make([]int, 0, 4); return &s },
		func(s *[]int) { *s = (*s)[:0] },
	)

	buf := p.Get()
	*buf = append(*buf, 1, 2, 3)
	p.Put(buf)

	reused := p.Get()
	assert.Equal(t, 0, len(*reused), "Put must reset the slice before it returns to the pool")
}
