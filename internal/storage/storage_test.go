package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageDirtyTracking(t *testing.T) {
	p := NewPage(1, []byte("data"))
	assert.False(t, p.IsDirty())

	p.MarkDirty()
	assert.True(t, p.IsDirty())

	p.MarkClean()
	assert.False(t, p.IsDirty())
}

func TestPageSize(t *testing.T) {
	p := NewPage(1, []byte("hello"))
	assert.Equal(t, 5, p.Size())
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("does-not-exist", DefaultConfig())
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 4096, cfg.PageSize)
	assert.True(t, cfg.CreateIfMissing)
}
