// Package extractor computes descriptors for a whole dataset on a worker pool.
package extractor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/anime-shed/image-descriptor-go/internal/dataset"
	"github.com/anime-shed/image-descriptor-go/internal/descriptor"
	"github.com/anime-shed/image-descriptor-go/internal/logger"
	"github.com/anime-shed/image-descriptor-go/internal/storage"
	"github.com/anime-shed/image-descriptor-go/pkg/validation"
)

// Feature is the descriptor of one dataset image together with its label
type Feature struct {
	Descriptor descriptor.Descriptor
	Label      int
}

// ImageError reports a failure for a single dataset image
type ImageError struct {
	Index int
	Path  string
	Err   error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("image %d (%s): %v", e.Index, e.Path, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// Summary describes a finished extraction
type Summary struct {
	Images   int
	Failures int
	MeanNorm float64
	StdNorm  float64
	Elapsed  time.Duration
}

// Result holds the features keyed by dataset index and the per-image errors
// sorted by index.
type Result struct {
	Features map[int]Feature
	Errors   []*ImageError
	Summary  Summary
}

// Indices returns the indices of successfully processed images in ascending order.
func (r *Result) Indices() []int {
	idx := make([]int, 0, len(r.Features))
	for i := range r.Features {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// Options configure an Extractor
type Options struct {
	// Workers is the pool size; 0 means one per CPU
	Workers int
	// MaxPixels bounds the accepted image size; 0 disables the check
	MaxPixels int64
	// Root, when set, makes entry paths relative to it before fetching
	Root string
}

type Extractor struct {
	fetcher   storage.ImageFetcher
	validator *validation.ImageValidator
	opts      Options
}

func New(fetcher storage.ImageFetcher, opts Options) *Extractor {
	return &Extractor{
		fetcher:   fetcher,
		validator: validation.NewImageValidator(opts.MaxPixels),
		opts:      opts,
	}
}

// Extract computes a descriptor for every entry. Failing images are reported
// in Result.Errors and do not stop the others. When ctx is cancelled no new
// images are started and the partial result is returned with ctx.Err().
func (x *Extractor) Extract(ctx context.Context, entries []dataset.Entry) (*Result, error) {
	start := time.Now()
	result := &Result{Features: make(map[int]Feature, len(entries))}

	pool := NewWorkerPool(x.opts.Workers)
	pool.Start()
	defer pool.Close()

	var mu sync.Mutex
	for i, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		pool.Submit(func() {
			d, err := x.process(ctx, entry)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, &ImageError{Index: i, Path: entry.Path, Err: err})
				return
			}
			result.Features[i] = Feature{Descriptor: d, Label: entry.Label}
		})
	}
	pool.Wait()

	sort.Slice(result.Errors, func(a, b int) bool {
		return result.Errors[a].Index < result.Errors[b].Index
	})
	result.Summary = x.summarize(result, time.Since(start))

	for _, e := range result.Errors {
		logger.WithFields(logrus.Fields{
			"image_index": e.Index,
			"path":        e.Path,
		}).WithError(e.Err).Warn("Descriptor extraction failed")
	}
	logger.WithFields(logrus.Fields{
		"images":             result.Summary.Images,
		"failures":           result.Summary.Failures,
		"workers":            pool.Workers(),
		"processing_time_ms": result.Summary.Elapsed.Milliseconds(),
	}).Info("Descriptor extraction finished")

	return result, ctx.Err()
}

func (x *Extractor) process(ctx context.Context, entry dataset.Entry) (descriptor.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ref := entry.Path
	if x.opts.Root != "" {
		ref = entry.Rel(x.opts.Root)
	}
	img, err := x.fetcher.FetchImage(ctx, ref)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	if err := x.validator.Validate(b.Dx(), b.Dy()); err != nil {
		return nil, err
	}
	return descriptor.Compute(descriptor.FromImage(img))
}

func (x *Extractor) summarize(r *Result, elapsed time.Duration) Summary {
	s := Summary{
		Images:   len(r.Features),
		Failures: len(r.Errors),
		Elapsed:  elapsed,
	}

	norms := make([]float64, 0, len(r.Features))
	for _, i := range r.Indices() {
		norms = append(norms, floats.Norm(r.Features[i].Descriptor, 2))
	}
	switch len(norms) {
	case 0:
	case 1:
		s.MeanNorm = norms[0]
	default:
		s.MeanNorm, s.StdNorm = stat.MeanStdDev(norms, nil)
	}
	return s
}
