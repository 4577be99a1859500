package render

import (
	"image"
	"strings"
)

// Error renders the bordered panel frame shown when an update fails: an X
// mark, an ERROR heading and the wrapped message.
func (r *Renderer) Error(message string) *image.Gray {
	img := newCanvas(StatsWidth, StatsHeight)

	rectOutline(img, 2, 2, StatsWidth-3, StatsHeight-3, 2, shadeBlack)

	for i := -1; i <= 1; i++ {
		drawLine(img, 20, 20+i, 40, 40+i, shadeBlack)
		drawLine(img, 40, 20+i, 20, 40+i, shadeBlack)
	}
	drawText(img, 50, 16, "ERROR", r.faces.StatsLarge, shadeBlack)

	y := 50
	for i, line := range wrapWords(message, 30) {
		if i == 3 {
			break
		}
		drawText(img, 10, y, line, r.faces.StatsSmall, shadeBlack)
		y += 15
	}
	return img
}

// wrapWords greedily wraps message into lines of at most width characters.
// Words longer than width get a line of their own.
func wrapWords(message string, width int) []string {
	var lines []string
	var current string
	for _, word := range strings.Fields(message) {
		test := word
		if current != "" {
			test = current + " " + word
		}
		if len(test) <= width {
			current = test
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
