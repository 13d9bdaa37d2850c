package repository

import "errors"

var (
	// ErrInvalidImageRef indicates a reference rejected by the validator
	ErrInvalidImageRef = errors.New("invalid image reference")

	// ErrImageNotFound indicates the source has no image under the reference
	ErrImageNotFound = errors.New("image not found")
)
