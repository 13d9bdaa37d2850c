package service

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/anime-shed/image-descriptor-go/internal/descriptor"
	apperrors "github.com/anime-shed/image-descriptor-go/internal/errors"
	"github.com/anime-shed/image-descriptor-go/internal/observer"
	"github.com/anime-shed/image-descriptor-go/internal/repository"
	"github.com/anime-shed/image-descriptor-go/pkg/models"
	"github.com/anime-shed/image-descriptor-go/pkg/validation"
)

// DescriptorService computes descriptors for images behind a repository
type DescriptorService interface {
	ComputeDescriptor(ctx context.Context, ref string) (*models.DescriptorResponse, error)
	ValidateImageRef(ref string) error
}

// Options bound the time and size spent on a single request
type Options struct {
	FetchTimeout    time.Duration
	AnalysisTimeout time.Duration
	MaxPixels       int64
}

type descriptorService struct {
	imageRepo repository.ImageRepository
	events    observer.Subject
	images    *validation.ImageValidator
	opts      Options
}

// NewDescriptorService wires a repository and an event publisher. events may be nil.
func NewDescriptorService(
	imageRepository repository.ImageRepository,
	events observer.Subject,
	opts Options,
) DescriptorService {
	return &descriptorService{
		imageRepo: imageRepository,
		events:    events,
		images:    validation.NewImageValidator(opts.MaxPixels),
		opts:      opts,
	}
}

func (s *descriptorService) ValidateImageRef(ref string) error {
	return s.imageRepo.ValidateImageRef(ref)
}

func (s *descriptorService) ComputeDescriptor(ctx context.Context, ref string) (*models.DescriptorResponse, error) {
	start := time.Now()
	id := uuid.NewString()

	if err := s.ValidateImageRef(ref); err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			return nil, err
		}
		return nil, apperrors.NewValidationError("invalid image reference", err)
	}

	s.publish(ctx, observer.DescriptorEvent{EventType: observer.DescriptorStarted, RequestID: id, ImageRef: ref})

	img, err := s.fetch(ctx, ref)
	if err != nil {
		s.publish(ctx, observer.DescriptorEvent{
			EventType:    observer.ImageFetchFailed,
			RequestID:    id,
			ImageRef:     ref,
			Duration:     time.Since(start),
			ErrorMessage: err.Error(),
		})
		return nil, s.fail(ctx, id, ref, start, classifyFetchError(err))
	}

	b := img.Bounds()
	s.publish(ctx, observer.DescriptorEvent{
		EventType: observer.ImageFetched,
		RequestID: id,
		ImageRef:  ref,
		Duration:  time.Since(start),
		Width:     b.Dx(),
		Height:    b.Dy(),
	})

	if err := s.images.Validate(b.Dx(), b.Dy()); err != nil {
		return nil, s.fail(ctx, id, ref, start, err)
	}

	d, err := s.compute(ctx, img)
	if err != nil {
		return nil, s.fail(ctx, id, ref, start, err)
	}

	elapsed := time.Since(start)
	s.publish(ctx, observer.DescriptorEvent{
		EventType: observer.DescriptorCompleted,
		RequestID: id,
		ImageRef:  ref,
		Duration:  elapsed,
		Width:     b.Dx(),
		Height:    b.Dy(),
	})

	return &models.DescriptorResponse{
		ID:                id,
		ImageRef:          ref,
		Timestamp:         start.UTC().Format(time.RFC3339),
		ProcessingTimeSec: elapsed.Seconds(),
		Width:             b.Dx(),
		Height:            b.Dy(),
		Length:            len(d),
		Descriptor:        d,
	}, nil
}

func (s *descriptorService) fetch(ctx context.Context, ref string) (image.Image, error) {
	if s.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.FetchTimeout)
		defer cancel()
	}
	return s.imageRepo.FetchImage(ctx, ref)
}

// compute runs the pipeline under the analysis deadline. The pipeline itself
// cannot be interrupted; on timeout its result is discarded.
func (s *descriptorService) compute(ctx context.Context, img image.Image) (descriptor.Descriptor, error) {
	if s.opts.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.AnalysisTimeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTimeoutError("descriptor computation timed out", err)
	}

	type outcome struct {
		d   descriptor.Descriptor
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		d, err := descriptor.Compute(descriptor.FromImage(img))
		done <- outcome{d, err}
	}()

	select {
	case <-ctx.Done():
		return nil, apperrors.NewTimeoutError("descriptor computation timed out", ctx.Err())
	case o := <-done:
		if o.err != nil {
			return nil, apperrors.NewProcessingError("descriptor computation failed", o.err)
		}
		return o.d, nil
	}
}

func (s *descriptorService) fail(ctx context.Context, id, ref string, start time.Time, err error) error {
	s.publish(ctx, observer.DescriptorEvent{
		EventType:    observer.DescriptorFailed,
		RequestID:    id,
		ImageRef:     ref,
		Duration:     time.Since(start),
		ErrorMessage: err.Error(),
	})
	return err
}

func (s *descriptorService) publish(ctx context.Context, e observer.DescriptorEvent) {
	if s.events != nil {
		s.events.NotifyObservers(ctx, e)
	}
}

func classifyFetchError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("image fetch timed out", err)
	case errors.Is(err, repository.ErrImageNotFound):
		return apperrors.NewNotFoundError("image not found", err)
	case errors.Is(err, image.ErrFormat):
		return apperrors.NewProcessingError("unsupported image format", err)
	default:
		return apperrors.NewNetworkError("failed to fetch image", err)
	}
}
