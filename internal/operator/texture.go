package operator

import "github.com/anime-shed/image-descriptor-go/internal/grid"

// neighbours lists the 8 non-centre cells of a 3×3 window in row-major
// order. The first entry ends up in the most significant bit.
var neighbours = [8][2]int{
	{0, 0}, {0, 1}, {0, 2},
	{1, 0}, {1, 2},
	{2, 0}, {2, 1}, {2, 2},
}

// Texture is the local binary pattern operator. Each bit of the code is set
// when the centre is less than or equal to the neighbour.
type Texture struct{}

func (Texture) Radius() int { return 1 }

// Apply panics with ErrRadiusMismatch if n is not 3×3.
func (Texture) Apply(n grid.Matrix[float64]) uint8 {
	if err := CheckRadius(1, n); err != nil {
		panic(err)
	}
	center := n.At(1, 1)
	var code uint8
	for _, p := range neighbours {
		code <<= 1
		if center <= n.At(p[0], p[1]) {
			code |= 1
		}
	}
	return code
}

// TextureCodes computes the LBP code of every cell of gray.
func TextureCodes(gray grid.Matrix[float64]) (*grid.Grid[uint8], error) {
	return Apply[float64, uint8](gray, Texture{})
}
