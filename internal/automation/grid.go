package automation

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	gridLineColor    = color.RGBA{R: 255, G: 0, B: 0, A: 90}
	gridTextColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	gridOutlineColor = color.RGBA{R: 0, G: 0, B: 0, A: 200}
)

// DrawGrid returns a copy of img with grid lines every step pixels, labelled
// with their image-space coordinate along the top and left edges.
func DrawGrid(img image.Image, step int) *image.RGBA {
	rgba := imageToRGBA(img)
	if step <= 0 {
		return rgba
	}
	b := rgba.Bounds()

	for x := b.Min.X + step; x < b.Max.X; x += step {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			blend(rgba, x, y, gridLineColor)
		}
		drawLabel(rgba, fmt.Sprint(x-b.Min.X), x+2, b.Min.Y+11)
	}
	for y := b.Min.Y + step; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x++ {
			blend(rgba, x, y, gridLineColor)
		}
		drawLabel(rgba, fmt.Sprint(y-b.Min.Y), b.Min.X+2, y-2)
	}
	return rgba
}

// imageToRGBA copies any image into a new RGBA image.
func imageToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	return rgba
}

func blend(img *image.RGBA, x, y int, c color.RGBA) {
	draw.Draw(img, image.Rect(x, y, x+1, y+1), image.NewUniform(c), image.Point{}, draw.Over)
}

// drawLabel draws text with a one-pixel outline, baseline at (x, y).
func drawLabel(img *image.RGBA, text string, x, y int) {
	d := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	d.Src = image.NewUniform(gridOutlineColor)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			d.Dot = fixed.P(x+dx, y+dy)
			d.DrawString(text)
		}
	}
	d.Src = image.NewUniform(gridTextColor)
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}
