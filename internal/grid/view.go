package grid

import "fmt"

// View is a rectangular window over a Grid. It does not copy data and
// exposes indices relative to its own origin.
type View[T any] struct {
	src            *Grid[T]
	rowOff, colOff int
	rows, cols     int
}

func (v *View[T]) Rows() int { return v.rows }

func (v *View[T]) Cols() int { return v.cols }

// At returns the element at (i, j) relative to the view origin.
func (v *View[T]) At(i, j int) T {
	if i < 0 || i >= v.rows || j < 0 || j >= v.cols {
		panic(fmt.Errorf("%w: (%d,%d) in %dx%d view", ErrOutOfRange, i, j, v.rows, v.cols))
	}
	return v.src.data[(v.rowOff+i)*v.src.cols+v.colOff+j]
}

// View returns a sub-window of v. Offsets are relative to v.
func (v *View[T]) View(rowOff, colOff, height, width int) (*View[T], error) {
	if err := checkWindow(v.rows, v.cols, rowOff, colOff, height, width); err != nil {
		return nil, err
	}
	return &View[T]{
		src:    v.src,
		rowOff: v.rowOff + rowOff,
		colOff: v.colOff + colOff,
		rows:   height,
		cols:   width,
	}, nil
}

// Materialize copies the viewed window into a new Grid.
func (v *View[T]) Materialize() *Grid[T] {
	out, _ := New[T](v.rows, v.cols)
	for i := 0; i < v.rows; i++ {
		start := (v.rowOff+i)*v.src.cols + v.colOff
		copy(out.data[i*v.cols:(i+1)*v.cols], v.src.data[start:start+v.cols])
	}
	return out
}
