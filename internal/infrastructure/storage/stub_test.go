package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStubObjectStorage(t *testing.T) {
	s := NewStubObjectStorage()
	require.NotNil(t, s)
	assert.Equal(t, "https://storage.example.com", s.BaseURL)
}

func TestStubObjectStorage_Upload(t *testing.T) {
	s := NewStubObjectStorage()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		url, err := s.Upload(ctx, "invoices/org-1/inv-1.pdf", []byte("%PDF-1.4"), "application/pdf")
		require.NoError(t, err)
		assert.Equal(t, "https://storage.example.com/invoices/org-1/inv-1.pdf", url)
	})

	t.Run("empty storage key", func(t *testing.T) {
		_, err := s.Upload(ctx, "", nil, "application/pdf")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage key is required")
	})
}

func TestStubObjectStorage_Delete(t *testing.T) {
	s := NewStubObjectStorage()
	ctx := context.Background()

	t.Run("success - no-op", func(t *testing.T) {
		err := s.Delete(ctx, "invoices/org-1/inv-1.pdf")
		require.NoError(t, err)
	})

	t.Run("empty storage key", func(t *testing.T) {
		err := s.Delete(ctx, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage key is required")
	})
}
