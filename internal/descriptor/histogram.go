package descriptor

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/anime-shed/image-descriptor-go/internal/grid"
)

// epsilon is the float64 machine epsilon.
var epsilon = math.Nextafter(1, 2) - 1

// Region is a rectangle of the padded image in pixel coordinates.
type Region struct {
	Row, Col      int
	Height, Width int
}

// Regions splits a rows×cols grid into RegionsPerSide×RegionsPerSide equal
// regions in row-major scan order. rows and cols must be multiples of
// RegionsPerSide.
func Regions(rows, cols int) []Region {
	h, w := rows/RegionsPerSide, cols/RegionsPerSide
	out := make([]Region, 0, RegionCount)
	for r := 0; r < RegionsPerSide; r++ {
		for c := 0; c < RegionsPerSide; c++ {
			out = append(out, Region{Row: r * h, Col: c * w, Height: h, Width: w})
		}
	}
	return out
}

func viewOf[T any](g *grid.Grid[T], r Region) (*grid.View[T], error) {
	return g.View(r.Row, r.Col, r.Height, r.Width)
}

// orientationBin maps an angle in (−π, π] to one of HOGBins equal sectors.
func orientationBin(angle float64) int {
	return int(math.Floor((math.Pi+angle)*HOGBins/(2*math.Pi))) % HOGBins
}

// HOGHistogram sums gradient magnitude per orientation bin. magnitude and
// angle must have the same extents.
func HOGHistogram(magnitude, angle grid.Matrix[float64]) []float64 {
	hist := make([]float64, HOGBins)
	for i := 0; i < magnitude.Rows(); i++ {
		for j := 0; j < magnitude.Cols(); j++ {
			hist[orientationBin(angle.At(i, j))] += magnitude.At(i, j)
		}
	}
	return hist
}

// LBPHistogram counts texture codes.
func LBPHistogram(codes grid.Matrix[uint8]) []float64 {
	hist := make([]float64, LBPBins)
	for i := 0; i < codes.Rows(); i++ {
		for j := 0; j < codes.Cols(); j++ {
			hist[codes.At(i, j)]++
		}
	}
	return hist
}

// ColorHistogram returns the mean red, green and blue of the region, each
// scaled into [0, 1]. An empty region yields zeros.
func ColorHistogram(colors grid.Matrix[RGB]) []float64 {
	hist := make([]float64, ColorValues)
	n := colors.Rows() * colors.Cols()
	if n == 0 {
		return hist
	}
	for i := 0; i < colors.Rows(); i++ {
		for j := 0; j < colors.Cols(); j++ {
			p := colors.At(i, j)
			hist[0] += float64(p.R)
			hist[1] += float64(p.G)
			hist[2] += float64(p.B)
		}
	}
	div := float64(n) * 255
	for k := range hist {
		hist[k] /= div
	}
	return hist
}

// Normalize scales hist in place to unit L2 norm. Histograms whose norm does
// not exceed machine epsilon are left unchanged.
func Normalize(hist []float64) {
	norm := floats.Norm(hist, 2)
	if norm <= epsilon {
		return
	}
	for k := range hist {
		hist[k] /= norm
	}
}
