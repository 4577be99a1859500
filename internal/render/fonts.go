package render

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Faces holds every size the frames draw with. The Go fonts are embedded in
// the binary, so rendering looks the same on a dev laptop and on the Pi.
type Faces struct {
	Huge   font.Face // dashboard clock and temperature
	Large  font.Face // route bullets
	Medium font.Face // minutes, finance rows, forecast highs
	Header font.Face // direction labels
	Small  font.Face // forecast day names, prices
	Tiny   font.Face // battery, next-update line, forecast lows

	StatsHuge   font.Face // panel clock
	StatsLarge  font.Face // CPU temperature, ERROR heading
	StatsMedium font.Face // SSID, HOME/AWAY
	StatsSmall  font.Face // AM/PM, date, error message
	StatsTiny   font.Face // column labels
}

// NewFaces parses the embedded Go fonts once and builds all sizes.
func NewFaces() (*Faces, error) {
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}

	faces := &Faces{}
	sizes := []struct {
		dst  *font.Face
		src  *opentype.Font
		size float64
	}{
		{&faces.Huge, bold, 68},
		{&faces.Large, bold, 48},
		{&faces.Medium, bold, 28},
		{&faces.Header, bold, 24},
		{&faces.Small, bold, 20},
		{&faces.Tiny, regular, 16},
		{&faces.StatsHuge, bold, 32},
		{&faces.StatsLarge, bold, 24},
		{&faces.StatsMedium, bold, 16},
		{&faces.StatsSmall, regular, 12},
		{&faces.StatsTiny, regular, 10},
	}
	for _, s := range sizes {
		face, err := opentype.NewFace(s.src, &opentype.FaceOptions{
			Size:    s.size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build %gpx face: %w", s.size, err)
		}
		*s.dst = face
	}
	return faces, nil
}
