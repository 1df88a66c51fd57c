package badgerstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tigercache/internal/storage"
)

func tempEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(storage.Config{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestPutGetDelete(t *testing.T) {
	e := tempEngine(t)

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
	e := tempEngine(t)

	ok, err := e.Exists([]byte("missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, e.Put([]byte("k"), []byte("v")))
	ok, err = e.Exists([]byte("k"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTransactionCommitAndAbort(t *testing.T) {
	e := tempEngine(t)

	tx, err := e.BeginTransaction()
	require.NoError(t, err)
	require.NoError(t, tx.Put([]byte("k"), []byte("v")))
	require.NoError(t, tx.Commit())

	_, ok, _ := e.Get([]byte("k"))
	assert.True(t, ok)

	tx2, err := e.BeginTransaction()
	require.NoError(t, err)
	require.NoError(t, tx2.Delete([]byte("k")))
	require.NoError(t, tx2.Abort())

	_, ok, _ = e.Get([]byte("k"))
	assert.True(t, ok, "abort must discard the delete")
}

func TestPutPageAndGetPage(t *testing.T) {
	e := tempEngine(t)

	require.NoError(t, e.PutPage(storage.NewPage(9, []byte("pagedata"))))
	p, ok, err := e.GetPage(9)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("pagedata"), p.Data)
}

func TestRegisteredUnderBadger(t *testing.T) {
	e, err := storage.Open("badger", storage.Config{Path: t.TempDir()})
	require.NoError(t, err)
	defer e.Close()
	assert.Equal(t, "badger", e.Type())
}
