package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/crosslist/backend/internal/application/publish"
)

// Ensure MemoryObjectStorage implements the ObjectStorage port
var _ publish.ObjectStorage = (*MemoryObjectStorage)(nil)

// memoryObject is one stored object
type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryObjectStorage is an in-memory ObjectStorage used in tests and local
// development without an S3 backend.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject

	// BaseURL is used to build fake presigned URLs
	BaseURL string
}

// NewMemoryObjectStorage creates an empty in-memory store
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{
		objects: make(map[string]memoryObject),
		BaseURL: "https://storage.local",
	}
}

// Fetch returns the object's bytes and content type
func (s *MemoryObjectStorage) Fetch(ctx context.Context, storageKey string) ([]byte, string, error) {
	if storageKey == "" {
		return nil, "", errors.New("storage key is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[storageKey]
	if !ok {
		return nil, "", fmt.Errorf("object %q not found", storageKey)
	}
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	return data, obj.contentType, nil
}

// Upload stores data in memory
func (s *MemoryObjectStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.objects[storageKey] = memoryObject{data: stored, contentType: contentType}
	return nil
}

// PresignDownload builds a fake presigned URL for the object
func (s *MemoryObjectStorage) PresignDownload(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	s.mu.RLock()
	_, ok := s.objects[storageKey]
	s.mu.RUnlock()
	if !ok {
		return "", time.Time{}, fmt.Errorf("object %q not found", storageKey)
	}

	expiresAt := time.Now().Add(expiresIn)
	url := s.BaseURL + "/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339)
	return url, expiresAt, nil
}

// DeleteObject removes an object from memory
func (s *MemoryObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, storageKey)
	return nil
}

// ObjectExists checks if an object is stored
func (s *MemoryObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[storageKey]
	return ok, nil
}
