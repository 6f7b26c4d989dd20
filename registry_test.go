package xapiand

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handle struct{ n int }

func TestRegistry_GetOrCreate(t *testing.T) {
	t.Run("OpensOnce", func(t *testing.T) {
		r := newRegistry[string, *handle]()
		var calls atomic.Int32
		open := func() (*handle, error) {
			return &handle{n: int(calls.Add(1))}, nil
		}

		var wg sync.WaitGroup
		got := make([]*handle, 16)
		for i := range got {
			wg.Add(1)
			go func() {
				defer wg.Done()
				h, _, err := r.getOrCreate("k", open)
				assert.NoError(t, err)
				got[i] = h
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
		for _, h := range got {
			assert.Same(t, got[0], h)
		}
	})

	t.Run("FailureLeavesKeyAbsent", func(t *testing.T) {
		r := newRegistry[string, *handle]()
		boom := errors.New("boom")
		_, created, err := r.getOrCreate("k", func() (*handle, error) { return nil, boom })
		require.ErrorIs(t, err, boom)
		assert.False(t, created)
		assert.Equal(t, 0, r.len())

		_, ok := r.get("k")
		assert.False(t, ok)

		h, created, err := r.getOrCreate("k", func() (*handle, error) { return &handle{n: 2}, nil })
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, 2, h.n)
	})
}

func TestRegistry_Remove(t *testing.T) {
	r := newRegistry[string, *handle]()
	first, _, err := r.getOrCreate("k", func() (*handle, error) { return &handle{n: 1}, nil })
	require.NoError(t, err)

	removed, ok := r.remove("k")
	require.True(t, ok)
	assert.Same(t, first, removed)

	second, created, err := r.getOrCreate("k", func() (*handle, error) { return &handle{n: 2}, nil })
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotSame(t, first, second)

	// removeIf only evicts the expected value.
	assert.False(t, r.removeIf("k", func(h *handle) bool { return h == first }))
	assert.True(t, r.removeIf("k", func(h *handle) bool { return h == second }))
	assert.Equal(t, 0, r.len())
}

func TestRegistry_Drain(t *testing.T) {
	r := newRegistry[int, *handle]()
	for i := range 3 {
		_, _, err := r.getOrCreate(i, func() (*handle, error) { return &handle{n: i}, nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 3, r.len())
	assert.Len(t, r.drain(), 3)
	assert.Equal(t, 0, r.len())
}
