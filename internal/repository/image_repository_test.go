package repository

import (
	"context"
	"errors"
	"image"
	"io/fs"
	"testing"

	"github.com/anime-shed/image-descriptor-go/pkg/validation"
)

type stubFetcher struct {
	img image.Image
	err error
	ref string
}

func (s *stubFetcher) FetchImage(ctx context.Context, ref string) (image.Image, error) {
	s.ref = ref
	return s.img, s.err
}

func TestFetchImage_Passthrough(t *testing.T) {
	want := image.NewGray(image.Rect(0, 0, 2, 2))
	f := &stubFetcher{img: want}
	repo := NewImageRepository(f, validation.PathRefValidator{})

	got, err := repo.FetchImage(context.Background(), "a.bmp")
	if err != nil {
		t.Fatalf("FetchImage failed: %v", err)
	}
	if got != want || f.ref != "a.bmp" {
		t.Errorf("Expected passthrough of image and ref, got %v %q", got, f.ref)
	}
}

func TestFetchImage_NotFound(t *testing.T) {
	f := &stubFetcher{err: &fs.PathError{Op: "open", Path: "x.bmp", Err: fs.ErrNotExist}}
	repo := NewImageRepository(f, nil)

	_, err := repo.FetchImage(context.Background(), "x.bmp")
	if !errors.Is(err, ErrImageNotFound) {
		t.Errorf("Expected ErrImageNotFound, got %v", err)
	}

	other := errors.New("connection reset")
	f.err = other
	if _, err := repo.FetchImage(context.Background(), "x.bmp"); !errors.Is(err, other) {
		t.Errorf("Expected original error, got %v", err)
	}
}

func TestValidateImageRef(t *testing.T) {
	repo := NewImageRepository(&stubFetcher{}, validation.NewURLValidator())
	if err := repo.ValidateImageRef("https://example.com/a.png"); err != nil {
		t.Errorf("Expected valid URL, got %v", err)
	}
	if err := repo.ValidateImageRef("a.png"); err == nil {
		t.Error("Expected relative path to fail URL validation")
	}

	bare := NewImageRepository(&stubFetcher{}, nil)
	if err := bare.ValidateImageRef(""); !errors.Is(err, ErrInvalidImageRef) {
		t.Errorf("Expected ErrInvalidImageRef, got %v", err)
	}
}
