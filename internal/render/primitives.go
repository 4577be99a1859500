package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Grayscale shades. Frames are drawn in gray and dithered to 1-bit at the
// encoding boundary, so mid-gray survives as a texture rather than a tone.
const (
	shadeWhite = 255
	shadeBlack = 0
	shadeGray  = 80
)

func newCanvas(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = shadeWhite
	}
	return img
}

// drawText draws s with the top of its glyphs at (x, y) and returns the
// advance width in pixels.
func drawText(dst *image.Gray, x, y int, s string, face font.Face, shade uint8) int {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Gray{Y: shade}),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
	return textWidth(face, s)
}

func textWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

func drawTextCentered(dst *image.Gray, cx, y int, s string, face font.Face, shade uint8) {
	drawText(dst, cx-textWidth(face, s)/2, y, s, face, shade)
}

// drawTextRight right-aligns s so it ends at x. Returns the width.
func drawTextRight(dst *image.Gray, x, y int, s string, face font.Face, shade uint8) int {
	w := textWidth(face, s)
	drawText(dst, x-w, y, s, face, shade)
	return w
}

func setPixel(dst *image.Gray, x, y int, shade uint8) {
	if image.Pt(x, y).In(dst.Rect) {
		dst.SetGray(x, y, color.Gray{Y: shade})
	}
}

func fillRect(dst *image.Gray, x0, y0, x1, y1 int, shade uint8) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			setPixel(dst, x, y, shade)
		}
	}
}

func rectOutline(dst *image.Gray, x0, y0, x1, y1, width int, shade uint8) {
	for i := 0; i < width; i++ {
		fillRect(dst, x0+i, y0+i, x1-i, y0+i, shade)
		fillRect(dst, x0+i, y1-i, x1-i, y1-i, shade)
		fillRect(dst, x0+i, y0+i, x0+i, y1-i, shade)
		fillRect(dst, x1-i, y0+i, x1-i, y1-i, shade)
	}
}

func hLine(dst *image.Gray, x0, x1, y, width int, shade uint8) {
	fillRect(dst, x0, y, x1, y+width-1, shade)
}

func vLine(dst *image.Gray, x, y0, y1, width int, shade uint8) {
	fillRect(dst, x, y0, x+width-1, y1, shade)
}

// drawLine is Bresenham, for the few diagonal strokes.
func drawLine(dst *image.Gray, x0, y0, x1, y1 int, shade uint8) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		setPixel(dst, x0, y0, shade)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func fillCircle(dst *image.Gray, cx, cy, r int, shade uint8) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				setPixel(dst, cx+x, cy+y, shade)
			}
		}
	}
}

// fillTriangle draws an isoceles triangle with its horizontal base spanning
// cx±halfW. pointUp puts the apex at top.
func fillTriangle(dst *image.Gray, cx, top, halfW, h int, pointUp bool, shade uint8) {
	if h < 2 {
		fillRect(dst, cx-halfW, top, cx+halfW, top, shade)
		return
	}
	for row := 0; row < h; row++ {
		t := row
		if !pointUp {
			t = h - 1 - row
		}
		half := halfW * t / (h - 1)
		fillRect(dst, cx-half, top+row, cx+half, top+row, shade)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
