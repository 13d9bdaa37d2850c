package repository

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"

	"github.com/anime-shed/image-descriptor-go/internal/storage"
	"github.com/anime-shed/image-descriptor-go/pkg/validation"
)

// ImageRepository is the data access boundary for source images
type ImageRepository interface {
	// FetchImage retrieves and decodes the image behind ref
	FetchImage(ctx context.Context, ref string) (image.Image, error)

	// ValidateImageRef checks ref without touching the source
	ValidateImageRef(ref string) error
}

type imageRepository struct {
	fetcher   storage.ImageFetcher
	validator validation.RefValidator
}

// NewImageRepository pairs a fetcher with the validator for its reference format
func NewImageRepository(fetcher storage.ImageFetcher, validator validation.RefValidator) ImageRepository {
	return &imageRepository{
		fetcher:   fetcher,
		validator: validator,
	}
}

func (r *imageRepository) FetchImage(ctx context.Context, ref string) (image.Image, error) {
	img, err := r.fetcher.FetchImage(ctx, ref)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, ref)
		}
		return nil, err
	}
	return img, nil
}

func (r *imageRepository) ValidateImageRef(ref string) error {
	if r.validator == nil {
		if ref == "" {
			return ErrInvalidImageRef
		}
		return nil
	}
	return r.validator.ValidateImageRef(ref)
}
