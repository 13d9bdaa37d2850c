// Package classifier trains and applies models over image descriptors.
package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/anime-shed/image-descriptor-go/internal/descriptor"
	"github.com/anime-shed/image-descriptor-go/internal/extractor"
)

var (
	ErrNoSamples      = errors.New("classifier: no training samples")
	ErrDimension      = errors.New("classifier: descriptor length mismatch")
	ErrUnknownKind    = errors.New("classifier: unknown model kind")
	ErrModelUntrained = errors.New("classifier: model has no classes")
)

// Classifier turns labelled descriptors into a Model and applies it
type Classifier interface {
	Train(features []extractor.Feature) (*Model, error)
	Predict(model *Model, descriptors []descriptor.Descriptor) ([]int, error)
}

// Model is the persisted state of a trained classifier
type Model struct {
	Kind      string      `json:"kind"`
	Dimension int         `json:"dimension"`
	Classes   []int       `json:"classes"`
	Centroids [][]float64 `json:"centroids"`
}

const kindNearestCentroid = "nearest_centroid"

// NearestCentroid assigns each descriptor the label of the closest class mean
type NearestCentroid struct{}

func NewNearestCentroid() *NearestCentroid { return &NearestCentroid{} }

func (NearestCentroid) Train(features []extractor.Feature) (*Model, error) {
	if len(features) == 0 {
		return nil, ErrNoSamples
	}
	dim := len(features[0].Descriptor)

	sums := make(map[int][]float64)
	counts := make(map[int]int)
	for i, f := range features {
		if len(f.Descriptor) != dim {
			return nil, fmt.Errorf("%w: sample %d has %d values, want %d", ErrDimension, i, len(f.Descriptor), dim)
		}
		sum, ok := sums[f.Label]
		if !ok {
			sum = make([]float64, dim)
			sums[f.Label] = sum
		}
		floats.Add(sum, f.Descriptor)
		counts[f.Label]++
	}

	m := &Model{Kind: kindNearestCentroid, Dimension: dim}
	for label := range sums {
		m.Classes = append(m.Classes, label)
	}
	sort.Ints(m.Classes)
	for _, label := range m.Classes {
		c := sums[label]
		floats.Scale(1/float64(counts[label]), c)
		m.Centroids = append(m.Centroids, c)
	}
	return m, nil
}

// Predict returns one label per descriptor. Ties go to the smaller label.
func (NearestCentroid) Predict(model *Model, descriptors []descriptor.Descriptor) ([]int, error) {
	if err := model.check(); err != nil {
		return nil, err
	}

	labels := make([]int, len(descriptors))
	for i, d := range descriptors {
		if len(d) != model.Dimension {
			return nil, fmt.Errorf("%w: descriptor %d has %d values, want %d", ErrDimension, i, len(d), model.Dimension)
		}
		best, bestDist := 0, math.Inf(1)
		for c, centroid := range model.Centroids {
			if dist := floats.Distance(d, centroid, 2); dist < bestDist {
				best, bestDist = c, dist
			}
		}
		labels[i] = model.Classes[best]
	}
	return labels, nil
}

func (m *Model) check() error {
	if m == nil || len(m.Classes) == 0 {
		return ErrModelUntrained
	}
	if m.Kind != kindNearestCentroid {
		return fmt.Errorf("%w: %q", ErrUnknownKind, m.Kind)
	}
	if len(m.Centroids) != len(m.Classes) {
		return fmt.Errorf("classifier: %d centroids for %d classes", len(m.Centroids), len(m.Classes))
	}
	for _, c := range m.Centroids {
		if len(c) != m.Dimension {
			return fmt.Errorf("%w: centroid has %d values, want %d", ErrDimension, len(c), m.Dimension)
		}
	}
	return nil
}

// Save writes the model as JSON
func (m *Model) Save(path string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadModel reads a model written by Save
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	if err := m.check(); err != nil {
		return nil, err
	}
	return &m, nil
}
