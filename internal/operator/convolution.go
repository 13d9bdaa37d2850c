package operator

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/anime-shed/image-descriptor-go/internal/grid"
)

// ErrInvalidKernel indicates a kernel that is empty, not square or of even side.
var ErrInvalidKernel = errors.New("operator: invalid kernel")

// Kernel is a square matrix of weights with odd side length 2r+1.
type Kernel struct {
	weights *mat.Dense
	radius  int
}

// NewKernel builds a kernel from its rows.
func NewKernel(rows [][]float64) (*Kernel, error) {
	n := len(rows)
	if n == 0 || n%2 == 0 {
		return nil, fmt.Errorf("%w: side %d is not odd", ErrInvalidKernel, n)
	}
	data := make([]float64, 0, n*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d weights, want %d", ErrInvalidKernel, i, len(row), n)
		}
		data = append(data, row...)
	}
	return &Kernel{weights: mat.NewDense(n, n, data), radius: n / 2}, nil
}

func mustKernel(rows [][]float64) *Kernel {
	k, err := NewKernel(rows)
	if err != nil {
		panic(err)
	}
	return k
}

// Radius returns r for a kernel of side 2r+1.
func (k *Kernel) Radius() int { return k.radius }

// At returns the weight at row i, column j.
func (k *Kernel) At(i, j int) float64 { return k.weights.At(i, j) }

var (
	// SobelX responds to horizontal intensity change.
	SobelX = mustKernel([][]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	})

	// SobelY responds to vertical intensity change.
	SobelY = mustKernel([][]float64{
		{1, 2, 1},
		{0, 0, 0},
		{-1, -2, -1},
	})
)

// Convolution multiplies a neighbourhood elementwise with a kernel and sums
// the result. The kernel is not flipped, so this is a correlation.
type Convolution struct {
	kernel *Kernel
}

// NewConvolution returns a convolution operator for k.
func NewConvolution(k *Kernel) Convolution {
	return Convolution{kernel: k}
}

func (c Convolution) Radius() int { return c.kernel.radius }

// Apply panics with ErrRadiusMismatch if n is not the kernel's size.
func (c Convolution) Apply(n grid.Matrix[float64]) float64 {
	if err := CheckRadius(c.kernel.radius, n); err != nil {
		panic(err)
	}
	side := 2*c.kernel.radius + 1
	var sum float64
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			sum += n.At(i, j) * c.kernel.weights.At(i, j)
		}
	}
	return sum
}

// Convolve applies k over every cell of src.
func Convolve(src grid.Matrix[float64], k *Kernel) (*grid.Grid[float64], error) {
	return Apply[float64, float64](src, NewConvolution(k))
}

// Gradients computes per-cell gradient magnitude and angle from the Sobel
// responses. Angles are atan2(dy, dx) in (−π, π].
func Gradients(gray grid.Matrix[float64]) (magnitude, angle *grid.Grid[float64], err error) {
	dx, err := Convolve(gray, SobelX)
	if err != nil {
		return nil, nil, fmt.Errorf("horizontal gradient: %w", err)
	}
	dy, err := Convolve(gray, SobelY)
	if err != nil {
		return nil, nil, fmt.Errorf("vertical gradient: %w", err)
	}

	rows, cols := gray.Rows(), gray.Cols()
	magnitude, _ = grid.New[float64](rows, cols)
	angle, _ = grid.New[float64](rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x, y := dx.At(i, j), dy.At(i, j)
			magnitude.Set(i, j, math.Hypot(x, y))
			angle.Set(i, j, math.Atan2(y, x))
		}
	}
	return magnitude, angle, nil
}
