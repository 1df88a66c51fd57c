package intern

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternRoundTrip(t *testing.T) {
	in := New()
	id := in.Intern("apple")

	s, ok := in.Get(id)
	require.True(t, ok)
	assert.Equal(t, "apple", s)

	gotID, ok := in.GetID("apple")
	require.True(t, ok)
	assert.Equal(t, id, gotID)
}

func TestInternIdempotent(t *testing.T) {
	in := New()
	id1 := in.Intern("apple")
	id2 := in.Intern("apple")
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, in.Len())
}

func TestInternAssignsDenseIDs(t *testing.T) {
	in := New()
	a := in.Intern("a")
	b := in.Intern("b")
	c := in.Intern("c")
	assert.Equal(t, ID(0), a)
	assert.Equal(t, ID(1), b)
	assert.Equal(t, ID(2), c)
}

func TestGetUnknownID(t *testing.T) {
	in := New()
	_, ok := in.Get(ID(99))
	assert.False(t, ok)
}

func TestClearResetsCounter(t *testing.T) {
	in := New()
	in.Intern("apple")
	in.Clear()
	assert.Equal(t, 0, in.Len())

	id := in.Intern("banana")
	assert.Equal(t, ID(0), id)
}

func TestInternConcurrentSafe(t *testing.T) {
	in := New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in.Intern("shared")
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, in.Len())
}

func TestEach(t *testing.T) {
	in := New()
	in.Intern("a")
	in.Intern("b")

	seen := make(map[string]ID)
	in.Each(func(id ID, s string) { seen[s] = id })
	assert.Len(t, seen, 2)
}
