package memstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tigercache/internal/storage"
)

func TestPutGetDelete(t *testing.T) {
	e, err := New(storage.Config{})
	require.NoError(t, err)

	require.NoError(t, e.Put([]byte("doc:1"), []byte("hello")))

	v, ok, err := e.Get([]byte("doc:1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello", string(v))

	require.NoError(t, e.Delete([]byte("doc:1")))
	_, ok, err = e.Get([]byte("doc:1"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExists(t *testing.T) {
	e, _ := New(storage.Config{})
	ok, err := e.Exists([]byte("missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	_ = e.Put([]byte("k"), []byte("v"))
	ok, err = e.Exists([]byte("k"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTransactionCommitAppliesChanges(t *testing.T) {
	e, _ := New(storage.Config{})
	tx, err := e.BeginTransaction()
	require.NoError(t, err)

	require.NoError(t, tx.Put([]byte("k"), []byte("v")))
	// read-your-writes before commit
	v, ok, err := tx.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", string(v))

	// not visible to the engine until commit
	_, ok, _ = e.Get([]byte("k"))
	assert.False(t, ok)

	require.NoError(t, tx.Commit())
	_, ok, _ = e.Get([]byte("k"))
	assert.True(t, ok)
}

func TestTransactionAbortDiscardsChanges(t *testing.T) {
	e, _ := New(storage.Config{})
	tx, _ := e.BeginTransaction()
	_ = tx.Put([]byte("k"), []byte("v"))
	require.NoError(t, tx.Abort())

	_, ok, _ := e.Get([]byte("k"))
	assert.False(t, ok)
}

func TestPutPageAndGetPage(t *testing.T) {
	e, _ := New(storage.Config{})
	require.NoError(t, e.PutPage(storage.NewPage(7, []byte("pagedata"))))

	p, ok, err := e.GetPage(7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("pagedata"), p.Data)
}

func TestStatsTracksKeysAndIO(t *testing.T) {
	e, _ := New(storage.Config{})
	_ = e.Put([]byte("a"), []byte("12345"))
	_, _, _ = e.Get([]byte("a"))

	stats, err := e.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.KeyCount)
	assert.Equal(t, 5, stats.TotalValueSize)
	assert.EqualValues(t, 1, stats.ReadCount)
	assert.EqualValues(t, 1, stats.WriteCount)
}

func TestRegisteredUnderMemory(t *testing.T) {
	e, err := storage.Open("memory", storage.Config{})
	require.NoError(t, err)
	assert.Equal(t, "memory", e.Type())
}
