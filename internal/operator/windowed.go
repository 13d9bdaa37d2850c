// Package operator applies neighbourhood operators over dense grids and
// provides the convolution and texture operators used by the descriptor
// pipeline.
package operator

import (
	"errors"
	"fmt"

	"github.com/anime-shed/image-descriptor-go/internal/grid"
)

var (
	// ErrInvalidRadius indicates an operator declared a negative radius.
	ErrInvalidRadius = errors.New("operator: invalid radius")

	// ErrRadiusMismatch indicates a neighbourhood whose size does not match
	// the operator radius.
	ErrRadiusMismatch = errors.New("operator: neighbourhood does not match radius")
)

// Operator computes one output value from the (2r+1)×(2r+1) neighbourhood
// centred on a cell.
type Operator[In, Out any] interface {
	Radius() int
	Apply(n grid.Matrix[In]) Out
}

// CheckRadius reports whether n is a square neighbourhood of side 2·radius+1.
func CheckRadius[T any](radius int, n grid.Matrix[T]) error {
	side := 2*radius + 1
	if n.Rows() != side || n.Cols() != side {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrRadiusMismatch, n.Rows(), n.Cols(), side, side)
	}
	return nil
}

// Apply runs op over every cell of src and returns a grid of the same
// extents. Cells closer than the radius to an edge see a clamped
// neighbourhood: indices past the border repeat the nearest edge cell.
func Apply[In, Out any](src grid.Matrix[In], op Operator[In, Out]) (*grid.Grid[Out], error) {
	r := op.Radius()
	if r < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRadius, r)
	}
	rows, cols := src.Rows(), src.Cols()
	out, err := grid.New[Out](rows, cols)
	if err != nil {
		return nil, err
	}

	dense, isDense := src.(*grid.Grid[In])
	side := 2*r + 1
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			var n grid.Matrix[In]
			if isDense && i >= r && j >= r && i+r < rows && j+r < cols {
				v, err := dense.View(i-r, j-r, side, side)
				if err != nil {
					return nil, err
				}
				n = v
			} else {
				n = clampedWindow[In]{src: src, top: i - r, left: j - r, side: side}
			}
			out.Set(i, j, op.Apply(n))
		}
	}
	return out, nil
}

// clampedWindow is a side×side window whose out-of-range indices are
// clamped to the nearest valid cell of src.
type clampedWindow[T any] struct {
	src       grid.Matrix[T]
	top, left int
	side      int
}

func (w clampedWindow[T]) Rows() int { return w.side }

func (w clampedWindow[T]) Cols() int { return w.side }

func (w clampedWindow[T]) At(i, j int) T {
	if i < 0 || i >= w.side || j < 0 || j >= w.side {
		panic(fmt.Errorf("%w: (%d,%d) in %dx%d neighbourhood", grid.ErrOutOfRange, i, j, w.side, w.side))
	}
	return w.src.At(clamp(w.top+i, w.src.Rows()), clamp(w.left+j, w.src.Cols()))
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
