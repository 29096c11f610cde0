package publish

import (
	"context"
	"time"
)

// ObjectStorage is the port for the S3-compatible media store. Listing photos
// are referenced by storage key; the image pipeline fetches the original
// bytes, and the bulk-export family writes its CSV artifacts back.
type ObjectStorage interface {
	// Fetch returns the object's bytes and content type
	Fetch(ctx context.Context, storageKey string) ([]byte, string, error)

	// Upload writes data directly to storage
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// PresignDownload generates a presigned GET URL for the object
	PresignDownload(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}
