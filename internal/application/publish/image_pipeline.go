package publish

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/crosslist/backend/internal/domain/channel"
)

// ImageProcessor transforms one photo's bytes to satisfy platform limits
type ImageProcessor interface {
	Prepare(data []byte, limits channel.PlatformImageLimits) (*channel.PreparedPhoto, error)
}

// PreparedPhotoSet is the result of preparing a listing's photos for one
// platform. Photos that could not be fetched or decoded are skipped, not
// fatal; each skip leaves a warning.
type PreparedPhotoSet struct {
	Photos   []channel.PreparedPhoto
	Warnings []string
}

// ImagePipeline fetches listing photos from object storage and transforms
// them to a platform's constraints
type ImagePipeline struct {
	storage      ObjectStorage
	processor    ImageProcessor
	fetchTimeout time.Duration
	logger       *zap.Logger
}

// NewImagePipeline creates a new image pipeline
func NewImagePipeline(storage ObjectStorage, processor ImageProcessor, fetchTimeout time.Duration, logger *zap.Logger) *ImagePipeline {
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	return &ImagePipeline{
		storage:      storage,
		processor:    processor,
		fetchTimeout: fetchTimeout,
		logger:       logger,
	}
}

// Prepare fetches and transforms the photos behind the given references.
// The list is truncated to the platform's MaxCount keeping the primary
// photo first; truncation and per-photo failures are warnings, not errors.
// The returned error is non-nil only when the context is done.
func (p *ImagePipeline) Prepare(ctx context.Context, refs []string, limits channel.PlatformImageLimits) (*PreparedPhotoSet, error) {
	set := &PreparedPhotoSet{
		Photos:   make([]channel.PreparedPhoto, 0, len(refs)),
		Warnings: make([]string, 0),
	}

	if limits.MaxCount > 0 && len(refs) > limits.MaxCount {
		set.Warnings = append(set.Warnings,
			fmt.Sprintf("photo count %d exceeds platform limit %d, keeping the first %d", len(refs), limits.MaxCount, limits.MaxCount))
		refs = refs[:limits.MaxCount]
	}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		photo, err := p.prepareOne(ctx, ref, limits)
		if err != nil {
			set.Warnings = append(set.Warnings, fmt.Sprintf("photo %s skipped: %v", ref, err))
			p.logger.Warn("Photo skipped during preparation",
				zap.String("photo_ref", ref),
				zap.Error(err),
			)
			continue
		}
		set.Photos = append(set.Photos, *photo)
	}

	return set, nil
}

// prepareOne fetches and transforms a single photo under the fetch timeout
func (p *ImagePipeline) prepareOne(ctx context.Context, ref string, limits channel.PlatformImageLimits) (*channel.PreparedPhoto, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	data, _, err := p.storage.Fetch(fetchCtx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	photo, err := p.processor.Prepare(data, limits)
	if err != nil {
		return nil, err
	}
	photo.SourceRef = ref
	return photo, nil
}
