package render

import (
	"fmt"
	"image"
	"time"

	"github.com/narulaskaran/pi-zero/internal/sysmon"
)

// Panel frame dimensions, the native resolution of the 2.13" hat.
const (
	StatsWidth  = 250
	StatsHeight = 122
)

// StatsData is one panel frame's content.
type StatsData struct {
	Now                time.Time
	Stats              sysmon.Stats
	PresenceConfigured bool
	Present            bool
}

// Stats renders the 250x122 panel frame: clock header, CPU / RAM / WiFi
// columns, presence footer.
func (r *Renderer) Stats(data StatsData) *image.Gray {
	img := newCanvas(StatsWidth, StatsHeight)

	w := drawText(img, 4, 2, data.Now.Format("3:04"), r.faces.StatsHuge, shadeBlack)
	drawText(img, 4+w+8, 8, data.Now.Format("PM"), r.faces.StatsSmall, shadeBlack)
	drawTextRight(img, StatsWidth-4, 4, data.Now.Format("Mon Jan 02"), r.faces.StatsSmall, shadeBlack)

	hLine(img, 0, StatsWidth-1, 37, 1, shadeBlack)

	const middleY = 42
	colW := StatsWidth / 3

	drawText(img, 8, middleY, "CPU", r.faces.StatsTiny, shadeBlack)
	if data.Stats.CPUTempOK {
		drawText(img, 8, middleY+12, fmt.Sprintf("%.1f°C", data.Stats.CPUTempC), r.faces.StatsLarge, shadeBlack)
	} else {
		drawText(img, 8, middleY+12, "N/A", r.faces.StatsMedium, shadeBlack)
	}

	drawText(img, colW+8, middleY, "RAM", r.faces.StatsTiny, shadeBlack)
	var ramPct float64
	if data.Stats.RAMOK {
		ramPct = data.Stats.RAMPercent
	}
	drawText(img, colW+8, middleY+12, fmt.Sprintf("%.0f%%", ramPct), r.faces.StatsLarge, shadeBlack)
	barX, barY := colW+8, middleY+40
	const barW, barH = 50, 8
	rectOutline(img, barX, barY, barX+barW, barY+barH, 1, shadeBlack)
	if fw := int(float64(barW) * ramPct / 100); fw > 1 {
		fillRect(img, barX+1, barY+1, barX+fw-1, barY+barH-1, shadeBlack)
	}

	wifiX := colW*2 + 8
	drawText(img, wifiX, middleY, "WiFi", r.faces.StatsTiny, shadeBlack)
	if data.Stats.WiFiOK && data.Stats.WiFiSSID != "" {
		ssid := data.Stats.WiFiSSID
		if len(ssid) > 8 {
			ssid = ssid[:8]
		}
		drawText(img, wifiX, middleY+12, ssid, r.faces.StatsMedium, shadeBlack)
		if data.Stats.WiFiSignalDBm != 0 {
			r.drawSignalBars(img, wifiX, middleY+35, sysmon.SignalBars(data.Stats.WiFiSignalDBm))
		}
	} else {
		drawText(img, wifiX, middleY+12, "No WiFi", r.faces.StatsSmall, shadeBlack)
	}

	hLine(img, 0, StatsWidth-1, 100, 1, shadeBlack)

	if data.PresenceConfigured {
		status := "AWAY"
		if data.Present {
			status = "HOME"
		}
		drawTextCentered(img, StatsWidth/2, 103, status, r.faces.StatsMedium, shadeBlack)
	} else {
		drawTextCentered(img, StatsWidth/2, 105, "Pi Stats", r.faces.StatsSmall, shadeBlack)
	}
	return img
}

// drawSignalBars draws four rising bars, the first n filled.
func (r *Renderer) drawSignalBars(img *image.Gray, x, base, n int) {
	for i := 0; i < 4; i++ {
		h := 4 + i*3
		bx := x + i*6
		if i < n {
			fillRect(img, bx, base-h, bx+4, base, shadeBlack)
		} else {
			rectOutline(img, bx, base-h, bx+4, base, 1, shadeBlack)
		}
	}
}
