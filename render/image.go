package render

import (
	"errors"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"github.com/pdrpinto/gridastar/grid"
)

var (
	openFill  = color.White
	wallFill  = color.RGBA{60, 60, 60, 255}
	pathFill  = color.RGBA{220, 40, 40, 255}
	startFill = color.RGBA{0, 170, 0, 255}
	destFill  = color.RGBA{0, 0, 220, 255}
)

// PNG draws every cell as a scale x scale square and encodes the image to w.
// Start and destination are drawn as discs over an open cell.
func PNG(w io.Writer, g *grid.Grid, scale int) error {
	if scale <= 0 {
		return errors.New("png scale must be positive")
	}
	width, height := g.MaxWidth()*scale, g.Rows()*scale
	if width == 0 || height == 0 {
		return errors.New("nothing to draw")
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(wallFill)
	dc.Clear()

	size := float64(scale)
	g.Each(func(c grid.Coord, marker rune) {
		x, y := float64(c.Col*scale), float64(c.Row*scale)
		switch marker {
		case grid.Open, grid.Start, grid.Destination:
			dc.SetColor(openFill)
		case grid.PathMark:
			dc.SetColor(pathFill)
		default:
			dc.SetColor(wallFill)
		}
		dc.DrawRectangle(x, y, size, size)
		dc.Fill()

		if marker == grid.Start || marker == grid.Destination {
			dc.SetColor(startFill)
			if marker == grid.Destination {
				dc.SetColor(destFill)
			}
			dc.DrawCircle(x+size/2, y+size/2, size/2)
			dc.Fill()
		}
	})

	return dc.EncodePNG(w)
}
