package descriptor

import (
	"fmt"
	"image"

	"github.com/anime-shed/image-descriptor-go/internal/grid"
)

// Grayscale channel weights. They intentionally do not sum to 1; trained
// models depend on these exact values.
const (
	redWeight   = 0.229
	greenWeight = 0.587
	blueWeight  = 0.144
)

// Source is a decoded image. x is the column index and y the row index.
type Source interface {
	Width() int
	Height() int
	Pixel(x, y int) (r, g, b uint8)
}

// RGB is an 8-bit colour triple. The zero value is black.
type RGB struct {
	R, G, B uint8
}

// imageSource adapts an image.Image to Source.
type imageSource struct {
	img    image.Image
	bounds image.Rectangle
}

// FromImage wraps a standard library image.
func FromImage(img image.Image) Source {
	return &imageSource{img: img, bounds: img.Bounds()}
}

func (s *imageSource) Width() int  { return s.bounds.Dx() }
func (s *imageSource) Height() int { return s.bounds.Dy() }

func (s *imageSource) Pixel(x, y int) (r, g, b uint8) {
	cr, cg, cb, _ := s.img.At(s.bounds.Min.X+x, s.bounds.Min.Y+y).RGBA()
	return uint8(cr >> 8), uint8(cg >> 8), uint8(cb >> 8)
}

func checkSource(src Source) error {
	if src == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidDimensions)
	}
	if src.Width() < 1 || src.Height() < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, src.Width(), src.Height())
	}
	return nil
}

// Grayscale converts src to a height×width grid of weighted intensities.
func Grayscale(src Source) (*grid.Grid[float64], error) {
	if err := checkSource(src); err != nil {
		return nil, err
	}
	g, err := grid.New[float64](src.Height(), src.Width())
	if err != nil {
		return nil, err
	}
	for i := 0; i < g.Rows(); i++ {
		for j := 0; j < g.Cols(); j++ {
			r, gr, b := src.Pixel(j, i)
			g.Set(i, j, redWeight*float64(r)+greenWeight*float64(gr)+blueWeight*float64(b))
		}
	}
	return g, nil
}

// Colors copies the pixels of src into a height×width grid.
func Colors(src Source) (*grid.Grid[RGB], error) {
	if err := checkSource(src); err != nil {
		return nil, err
	}
	g, err := grid.New[RGB](src.Height(), src.Width())
	if err != nil {
		return nil, err
	}
	for i := 0; i < g.Rows(); i++ {
		for j := 0; j < g.Cols(); j++ {
			r, gr, b := src.Pixel(j, i)
			g.Set(i, j, RGB{R: r, G: gr, B: b})
		}
	}
	return g, nil
}
