package validation

import (
	"fmt"

	apperrors "github.com/anime-shed/image-descriptor-go/internal/errors"
)

// ImageValidator rejects decoded images the descriptor cannot or should not process.
type ImageValidator struct {
	MaxPixels int64
}

func NewImageValidator(maxPixels int64) *ImageValidator {
	return &ImageValidator{MaxPixels: maxPixels}
}

// Validate checks that both extents are positive and the pixel count is within MaxPixels.
// A non-positive MaxPixels disables the size limit.
func (v *ImageValidator) Validate(width, height int) error {
	if width < 1 || height < 1 {
		return apperrors.NewValidationError(
			fmt.Sprintf("image dimensions must be positive (got %dx%d)", width, height), nil)
	}
	if v.MaxPixels > 0 && int64(width)*int64(height) > v.MaxPixels {
		return apperrors.NewValidationError(
			fmt.Sprintf("image too large: %dx%d exceeds %d pixels", width, height, v.MaxPixels), nil)
	}
	return nil
}
