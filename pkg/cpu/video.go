package cpu

import (
	"image"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"

	"hackvm/pkg/grid"
)

// wordsPerRow is the number of screen words covering one row of pixels.
const wordsPerRow = ScreenWidth / 16

// ScreenRGBA decodes the screen memory map into a 512×256 RGBA8888 byte
// slice. A set bit is a black pixel; bit 0 of each word is its leftmost pixel.
func (c *CPU) ScreenRGBA() []byte {
	pixels := make([]byte, ScreenWidth*ScreenHeight*4)
	for i := 0; i < ScreenWords; i++ {
		word := c.RAM[ScreenBase+i]
		col, row := grid.GetGridCoords(i, wordsPerRow)
		for bit := 0; bit < 16; bit++ {
			var v byte = 0xFF
			if word&(1<<bit) != 0 {
				v = 0x00
			}
			p := grid.Index(col*16+bit, row, ScreenWidth) * 4
			pixels[p+0] = v
			pixels[p+1] = v
			pixels[p+2] = v
			pixels[p+3] = 0xFF
		}
	}
	return pixels
}

// Pixel reports whether the screen pixel at (x, y) is black.
func (c *CPU) Pixel(x, y int) bool {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return false
	}
	bit, word := grid.GetGridCoords(grid.Index(x, y, ScreenWidth), 16)
	return c.RAM[ScreenBase+word]&(1<<bit) != 0
}

// ScreenImage returns the screen as an *image.RGBA.
func (c *CPU) ScreenImage() *image.RGBA {
	return &image.RGBA{
		Pix:    c.ScreenRGBA(),
		Stride: ScreenWidth * 4,
		Rect:   image.Rect(0, 0, ScreenWidth, ScreenHeight),
	}
}

// ScaledScreen returns the screen enlarged by an integer factor.
func (c *CPU) ScaledScreen(scale int) *image.RGBA {
	src := c.ScreenImage()
	if scale <= 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, ScreenWidth*scale, ScreenHeight*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// SaveScreenshot encodes the screen, scaled by scale, as a PNG file.
func (c *CPU) SaveScreenshot(filename string, scale int) error {
	img := c.ScaledScreen(scale)
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
