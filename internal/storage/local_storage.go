package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned for paths that resolve outside the fetcher's root.
var ErrOutsideRoot = errors.New("path escapes image root")

// LocalImageFetcher reads images from the file system. Relative references
// are resolved against root; absolute references must lie inside it.
type LocalImageFetcher struct {
	root string
}

func NewLocalImageFetcher(root string) (*LocalImageFetcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid image root %q: %w", root, err)
	}
	return &LocalImageFetcher{root: abs}, nil
}

func (l *LocalImageFetcher) Root() string { return l.root }

// FetchImage opens and decodes the file at ref.
func (l *LocalImageFetcher) FetchImage(ctx context.Context, ref string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := l.resolve(ref)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

func (l *LocalImageFetcher) resolve(ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", fmt.Errorf("%w: empty path", ErrOutsideRoot)
	}
	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.root, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(l.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, ref)
	}
	return path, nil
}
