// Package descriptor turns an image into a fixed-length feature vector made
// of per-region gradient orientation histograms, local binary pattern
// histograms and colour means.
package descriptor

import (
	"errors"
	"fmt"

	"github.com/anime-shed/image-descriptor-go/internal/grid"
	"github.com/anime-shed/image-descriptor-go/internal/operator"
)

const (
	// RegionsPerSide is the number of regions along each image axis.
	RegionsPerSide = 8
	// RegionCount is the total number of regions per image.
	RegionCount = RegionsPerSide * RegionsPerSide

	HOGBins     = 8
	LBPBins     = 256
	ColorValues = 3

	// Length is the number of values in every descriptor.
	Length = RegionCount * (HOGBins + LBPBins + ColorValues)

	hogOffset   = 0
	lbpOffset   = RegionCount * HOGBins
	colorOffset = lbpOffset + RegionCount*LBPBins
)

// ErrInvalidDimensions indicates an image with a zero or negative extent.
var ErrInvalidDimensions = errors.New("descriptor: invalid image dimensions")

// Descriptor holds all HOG blocks, then all LBP blocks, then all colour
// blocks, each in region scan order.
type Descriptor []float64

// HOG returns the HOG section.
func (d Descriptor) HOG() []float64 { return d[hogOffset:lbpOffset] }

// LBP returns the LBP section.
func (d Descriptor) LBP() []float64 { return d[lbpOffset:colorOffset] }

// Color returns the colour section.
func (d Descriptor) Color() []float64 { return d[colorOffset:] }

// HOGBlock returns the HOG histogram of region r.
func (d Descriptor) HOGBlock(r int) []float64 {
	return d[hogOffset+r*HOGBins : hogOffset+(r+1)*HOGBins]
}

// LBPBlock returns the LBP histogram of region r.
func (d Descriptor) LBPBlock(r int) []float64 {
	return d[lbpOffset+r*LBPBins : lbpOffset+(r+1)*LBPBins]
}

// ColorBlock returns the colour means of region r.
func (d Descriptor) ColorBlock(r int) []float64 {
	return d[colorOffset+r*ColorValues : colorOffset+(r+1)*ColorValues]
}

// Float32 converts the descriptor for classifiers working in single precision.
func (d Descriptor) Float32() []float32 {
	out := make([]float32, len(d))
	for i, v := range d {
		out[i] = float32(v)
	}
	return out
}

// PaddedSize returns the smallest multiple of RegionsPerSide that is >= n.
func PaddedSize(n int) int {
	if rem := n % RegionsPerSide; rem != 0 {
		return n + RegionsPerSide - rem
	}
	return n
}

// Compute builds the descriptor of src. The image is zero-padded on the
// bottom and right so both extents are multiples of RegionsPerSide.
func Compute(src Source) (Descriptor, error) {
	gray, err := Grayscale(src)
	if err != nil {
		return nil, err
	}
	colors, err := Colors(src)
	if err != nil {
		return nil, err
	}

	rows, cols := PaddedSize(gray.Rows()), PaddedSize(gray.Cols())
	paddedGray, err := gray.ResizedCopy(rows, cols)
	if err != nil {
		return nil, fmt.Errorf("pad grayscale: %w", err)
	}
	paddedColors, err := colors.ResizedCopy(rows, cols)
	if err != nil {
		return nil, fmt.Errorf("pad colours: %w", err)
	}
	return fromPadded(paddedGray, paddedColors)
}

// fromPadded computes the descriptor of grids whose extents are already
// multiples of RegionsPerSide.
func fromPadded(gray *grid.Grid[float64], colors *grid.Grid[RGB]) (Descriptor, error) {
	rows, cols := gray.Rows(), gray.Cols()
	if rows < RegionsPerSide || cols < RegionsPerSide ||
		rows%RegionsPerSide != 0 || cols%RegionsPerSide != 0 {
		return nil, fmt.Errorf("%w: padded grid %dx%d is not a multiple of %d",
			ErrInvalidDimensions, rows, cols, RegionsPerSide)
	}
	if colors.Rows() != rows || colors.Cols() != cols {
		return nil, fmt.Errorf("%w: colour grid %dx%d does not match %dx%d",
			ErrInvalidDimensions, colors.Rows(), colors.Cols(), rows, cols)
	}

	magnitude, angle, err := operator.Gradients(gray)
	if err != nil {
		return nil, fmt.Errorf("gradients: %w", err)
	}
	codes, err := operator.TextureCodes(gray)
	if err != nil {
		return nil, fmt.Errorf("texture codes: %w", err)
	}

	desc := make(Descriptor, Length)
	for k, r := range Regions(rows, cols) {
		mv, err := viewOf(magnitude, r)
		if err != nil {
			return nil, err
		}
		av, err := viewOf(angle, r)
		if err != nil {
			return nil, err
		}
		cv, err := viewOf(codes, r)
		if err != nil {
			return nil, err
		}
		rv, err := viewOf(colors, r)
		if err != nil {
			return nil, err
		}

		hog := HOGHistogram(mv, av)
		Normalize(hog)
		copy(desc.HOGBlock(k), hog)

		lbp := LBPHistogram(cv)
		Normalize(lbp)
		copy(desc.LBPBlock(k), lbp)

		copy(desc.ColorBlock(k), ColorHistogram(rv))
	}
	return desc, nil
}
