package validation

import (
	"testing"

	apperrors "github.com/anime-shed/image-descriptor-go/internal/errors"
)

func TestImageValidator_Validate(t *testing.T) {
	v := NewImageValidator(100)

	tests := []struct {
		name          string
		width, height int
		expectError   bool
	}{
		{"single pixel", 1, 1, false},
		{"at limit", 10, 10, false},
		{"over limit", 11, 10, true},
		{"zero width", 0, 5, true},
		{"negative height", 5, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.width, tt.height)
			if tt.expectError {
				if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
					t.Errorf("Expected validation error, got %v", err)
				}
			} else if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestImageValidator_NoLimit(t *testing.T) {
	v := NewImageValidator(0)
	if err := v.Validate(100000, 100000); err != nil {
		t.Errorf("Expected no limit with MaxPixels=0, got %v", err)
	}
	if err := v.Validate(0, 1); err == nil {
		t.Error("Expected error for zero width even without a pixel limit")
	}
}
