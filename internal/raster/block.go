package raster

// Block is a half-open pixel rectangle [X0,X1)×[Y0,Y1).
type Block struct {
	X0, Y0, X1, Y1 int
}

func (b Block) Area() int {
	return (b.X1 - b.X0) * (b.Y1 - b.Y0)
}

// Blocks tiles a w×h frame into size×size blocks in row-major order. Blocks
// on the right and bottom edges are cropped to the frame.
func Blocks(w, h, size int) []Block {
	if size <= 0 {
		size = max(w, h)
	}
	var out []Block
	for y := 0; y < h; y += size {
		for x := 0; x < w; x += size {
			out = append(out, Block{X0: x, Y0: y, X1: min(x+size, w), Y1: min(y+size, h)})
		}
	}
	return out
}
