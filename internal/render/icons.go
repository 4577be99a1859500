package render

import (
	"image"
	"math"
)

// drawWeatherIcon draws a primitive-art glyph for a WMO weather code,
// centered on (cx, cy) and roughly size pixels tall. Codes group the same
// way weather.Summary groups them.
func drawWeatherIcon(dst *image.Gray, cx, cy, size, code int, shade uint8) {
	switch {
	case code <= 1:
		drawSun(dst, cx, cy, size, shade)
	case code <= 3:
		drawCloud(dst, cx, cy, size, shade)
	case code == 45 || code == 48:
		for i := -1; i <= 1; i++ {
			hLine(dst, cx-size/2, cx+size/2, cy+i*(size/4), 2, shade)
		}
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		drawCloud(dst, cx, cy-size/5, size*3/4, shade)
		for i := -1; i <= 1; i++ {
			fillCircle(dst, cx+i*size/4, cy+size/3, 2, shade)
		}
	case code >= 95:
		drawCloud(dst, cx, cy-size/5, size*3/4, shade)
		bx, by := cx, cy+size/8
		drawLine(dst, bx+3, by, bx-3, by+size/4, shade)
		drawLine(dst, bx-3, by+size/4, bx+2, by+size/4, shade)
		drawLine(dst, bx+2, by+size/4, bx-4, by+size/2, shade)
	case code >= 51:
		drawCloud(dst, cx, cy-size/5, size*3/4, shade)
		for i := -1; i <= 1; i++ {
			x := cx + i*size/4
			drawLine(dst, x+2, cy+size/5, x-2, cy+size/2, shade)
		}
	default:
		drawCloud(dst, cx, cy, size, shade)
	}
}

func drawSun(dst *image.Gray, cx, cy, size int, shade uint8) {
	r := size / 3
	fillCircle(dst, cx, cy, r, shade)
	for i := 0; i < 8; i++ {
		angle := float64(i) * math.Pi / 4
		x0 := cx + int(float64(r+3)*math.Cos(angle))
		y0 := cy + int(float64(r+3)*math.Sin(angle))
		x1 := cx + int(float64(r+3+size/5)*math.Cos(angle))
		y1 := cy + int(float64(r+3+size/5)*math.Sin(angle))
		drawLine(dst, x0, y0, x1, y1, shade)
	}
}

func drawCloud(dst *image.Gray, cx, cy, size int, shade uint8) {
	r := size / 4
	fillCircle(dst, cx-r, cy, r, shade)
	fillCircle(dst, cx, cy-r/2, r+2, shade)
	fillCircle(dst, cx+r, cy, r, shade)
	fillRect(dst, cx-r, cy, cx+r, cy+r-1, shade)
}
