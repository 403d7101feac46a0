// Package storage provides object storage implementations for file operations.
package storage

import (
	"context"
	"errors"

	billingapp "github.com/invoicing/backend/internal/application/billing"
)

// StubObjectStorage is a placeholder implementation of ObjectStorage.
// Use this for development when no S3-compatible backend is configured;
// uploads succeed but nothing is stored.
type StubObjectStorage struct {
	// BaseURL is the base URL for generated object URLs.
	// Defaults to "https://storage.example.com" if not set.
	BaseURL string
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL: "https://storage.example.com",
	}
}

// Ensure StubObjectStorage implements ObjectStorage
var _ billingapp.ObjectStorage = (*StubObjectStorage)(nil)

// Upload pretends to store the data and returns a deterministic URL
func (s *StubObjectStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	return s.BaseURL + "/" + key, nil
}

// Delete is a no-op stub that always succeeds
func (s *StubObjectStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	return nil
}
