package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is returned (or panicked with) when an index or window
	// falls outside the grid.
	ErrOutOfRange = errors.New("grid: index out of range")

	// ErrInvalidShape indicates negative extents, ragged rows or a shrinking resize.
	ErrInvalidShape = errors.New("grid: invalid shape")
)

// Matrix is the read-only indexed access shared by grids and views.
type Matrix[T any] interface {
	Rows() int
	Cols() int
	At(i, j int) T
}

// Grid is a dense row-major 2-D array.
type Grid[T any] struct {
	rows, cols int
	data       []T
}

// New returns a zero-filled grid with the given extents.
func New[T any](rows, cols int) (*Grid[T], error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidShape, rows, cols)
	}
	return &Grid[T]{
		rows: rows,
		cols: cols,
		data: make([]T, rows*cols),
	}, nil
}

// FromRows builds a grid from a slice of equal-length rows.
func FromRows[T any](rows [][]T) (*Grid[T], error) {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	g, _ := New[T](len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidShape, i, len(row), cols)
		}
		copy(g.data[i*cols:(i+1)*cols], row)
	}
	return g, nil
}

// Rows returns the number of rows.
func (g *Grid[T]) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid[T]) Cols() int { return g.cols }

// At returns the element at row i, column j. It panics with an error
// wrapping ErrOutOfRange if the index is outside the grid.
func (g *Grid[T]) At(i, j int) T {
	g.check(i, j)
	return g.data[i*g.cols+j]
}

// Set stores v at row i, column j. Same bounds contract as At.
func (g *Grid[T]) Set(i, j int, v T) {
	g.check(i, j)
	g.data[i*g.cols+j] = v
}

func (g *Grid[T]) check(i, j int) {
	if i < 0 || i >= g.rows || j < 0 || j >= g.cols {
		panic(fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfRange, i, j, g.rows, g.cols))
	}
}

// Copy returns a deep copy of the grid.
func (g *Grid[T]) Copy() *Grid[T] {
	data := make([]T, len(g.data))
	copy(data, g.data)
	return &Grid[T]{rows: g.rows, cols: g.cols, data: data}
}

// View returns a window of height×width starting at (rowOff, colOff).
// The view shares storage with g.
func (g *Grid[T]) View(rowOff, colOff, height, width int) (*View[T], error) {
	if err := checkWindow(g.rows, g.cols, rowOff, colOff, height, width); err != nil {
		return nil, err
	}
	return &View[T]{src: g, rowOff: rowOff, colOff: colOff, rows: height, cols: width}, nil
}

// ResizedCopy copies g into the top-left corner of a rows×cols grid and
// leaves the remaining cells at the zero value of T.
func (g *Grid[T]) ResizedCopy(rows, cols int) (*Grid[T], error) {
	if rows < g.rows || cols < g.cols {
		return nil, fmt.Errorf("%w: cannot resize %dx%d to %dx%d", ErrInvalidShape, g.rows, g.cols, rows, cols)
	}
	out, err := New[T](rows, cols)
	if err != nil {
		return nil, err
	}
	for i := 0; i < g.rows; i++ {
		copy(out.data[i*cols:i*cols+g.cols], g.data[i*g.cols:(i+1)*g.cols])
	}
	return out, nil
}

func checkWindow(rows, cols, rowOff, colOff, height, width int) error {
	if rowOff < 0 || colOff < 0 || height < 0 || width < 0 ||
		rowOff+height > rows || colOff+width > cols {
		return fmt.Errorf("%w: window (%d,%d)+%dx%d exceeds %dx%d",
			ErrOutOfRange, rowOff, colOff, height, width, rows, cols)
	}
	return nil
}
