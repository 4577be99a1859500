package render

import (
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	"github.com/narulaskaran/pi-zero/internal/arrivals"
	"github.com/narulaskaran/pi-zero/internal/finance"
	"github.com/narulaskaran/pi-zero/internal/weather"
)

// Dashboard frame dimensions, matching the e-reader panel it is pushed to.
const (
	DashboardWidth  = 800
	DashboardHeight = 480
)

// trainSlots is where the four arrival bullets center horizontally.
var trainSlots = [4]int{75, 225, 375, 525}

// DashboardData is everything one dashboard frame shows. Any field may be
// zero or nil when an upstream fetch failed; the frame leaves that region
// blank instead of erroring.
type DashboardData struct {
	Now        time.Time
	Board      *arrivals.Board
	Weather    *weather.Report
	Quotes     []finance.Quote
	Battery    *int      // 0-100, nil hides the indicator
	NextUpdate time.Time // zero hides the "Next update" line
}

// Renderer draws the dashboard and panel frames.
type Renderer struct {
	faces *Faces
}

func NewRenderer() (*Renderer, error) {
	faces, err := NewFaces()
	if err != nil {
		return nil, err
	}
	return &Renderer{faces: faces}, nil
}

// Dashboard renders the 800x480 frame: clock and weather header, arrival
// bullets per direction, finance column, 7-day forecast footer.
func (r *Renderer) Dashboard(data DashboardData) *image.Gray {
	img := newCanvas(DashboardWidth, DashboardHeight)

	r.drawHeader(img, data)
	hLine(img, 0, DashboardWidth-1, 115, 4, shadeBlack)

	vLine(img, 600, 115, 360, 3, shadeBlack)
	r.drawDirections(img, data.Board)
	r.drawFinance(img, data.Quotes)

	hLine(img, 0, DashboardWidth-1, 360, 3, shadeBlack)
	r.drawForecast(img, data)

	if data.Battery != nil {
		r.drawBattery(img, *data.Battery)
	}
	if !data.NextUpdate.IsZero() {
		line := data.NextUpdate.Format("Next update: 3:04 PM")
		drawTextCentered(img, DashboardWidth/2, 30, line, r.faces.Tiny, shadeBlack)
	}
	return img
}

func (r *Renderer) drawHeader(img *image.Gray, data DashboardData) {
	w := drawText(img, 20, 10, data.Now.Format("3:04"), r.faces.Huge, shadeBlack)
	drawText(img, 20+w+8, 58, data.Now.Format("PM"), r.faces.Medium, shadeGray)
	drawText(img, 22, 80, data.Now.Format("Monday, Jan 02"), r.faces.Medium, shadeBlack)

	if data.Weather != nil {
		temp := fmt.Sprintf("%d°", int(data.Weather.Current.TemperatureF))
		tw := drawTextRight(img, DashboardWidth-20, 20, temp, r.faces.Huge, shadeBlack)
		drawWeatherIcon(img, DashboardWidth-20-tw-40, 48, 56, data.Weather.Current.Code, shadeBlack)
	}
}

func (r *Renderer) drawDirections(img *image.Gray, board *arrivals.Board) {
	uptown := arrivals.DirectionList{Label: "Uptown"}
	downtown := arrivals.DirectionList{Label: "Downtown"}
	if board != nil {
		uptown = board.Uptown
		downtown = board.Downtown
	}

	drawText(img, 20, 122, trimParen(uptown.Label), r.faces.Header, shadeGray)
	for i, a := range uptown.Top(len(trainSlots)) {
		r.drawTrainBlock(img, trainSlots[i]-28, 148, a, i == 0)
	}

	drawText(img, 20, 245, trimParen(downtown.Label), r.faces.Header, shadeGray)
	for i, a := range downtown.Top(len(trainSlots)) {
		r.drawTrainBlock(img, trainSlots[i]-28, 270, a, i == 0)
	}
}

// drawTrainBlock draws one route bullet with the wait underneath. The first
// arrival is emphasized in black, the rest in gray.
func (r *Renderer) drawTrainBlock(img *image.Gray, x, y int, a arrivals.Arrival, first bool) {
	const size = 56
	fillCircle(img, x+size/2, y+size/2, size/2, shadeBlack)
	drawTextCentered(img, x+size/2, y, a.Route, r.faces.Large, shadeWhite)

	shade := uint8(shadeGray)
	if first {
		shade = shadeBlack
	}
	label := "Now"
	if a.MinutesAway > 0 {
		label = fmt.Sprintf("%dm", a.MinutesAway)
	}
	drawTextCentered(img, x+size/2, y+60, label, r.faces.Medium, shade)
}

func (r *Renderer) drawFinance(img *image.Gray, quotes []finance.Quote) {
	const cx = 700
	y := 125
	for _, q := range quotes {
		drawTextCentered(img, cx, y, q.Label, r.faces.Medium, shadeBlack)

		pct := fmt.Sprintf("%.1f%%", math.Abs(q.ChangePercent))
		const triHalf, triH = 9, 13
		pw := textWidth(r.faces.Medium, pct)
		total := 2*triHalf + 1 + 4 + pw
		startX := cx - total/2
		fillTriangle(img, startX+triHalf, y+34, triHalf, triH, q.ChangePercent >= 0, shadeBlack)
		drawText(img, startX+2*triHalf+1+4, y+26, pct, r.faces.Medium, shadeBlack)

		drawTextCentered(img, cx, y+54, priceString(q), r.faces.Small, shadeGray)
		y += 75
	}
}

func (r *Renderer) drawForecast(img *image.Gray, data DashboardData) {
	if data.Weather == nil {
		return
	}
	const fy = 360
	colW := float64(DashboardWidth) / 7
	for i, day := range data.Weather.Daily {
		if i == 7 {
			break
		}
		cx := int(float64(i)*colW + colW/2)
		drawTextCentered(img, cx, fy+10, day.Date.Format("Mon"), r.faces.Small, shadeBlack)
		drawWeatherIcon(img, cx, fy+48, 26, day.Code, shadeBlack)
		drawTextCentered(img, cx-12, fy+75, fmt.Sprintf("%d°", int(day.HighF)), r.faces.Medium, shadeBlack)
		drawText(img, cx+12, fy+82, fmt.Sprintf("%d°", int(day.LowF)), r.faces.Tiny, shadeGray)
	}
}

// drawBattery draws the indicator the battery-powered frame reports into.
func (r *Renderer) drawBattery(img *image.Gray, percent int) {
	const (
		battW = 50
		battH = 20
		termW = 4
		termH = 10
	)
	x := DashboardWidth/2 - 30
	y := 8
	rectOutline(img, x, y, x+battW, y+battH, 2, shadeBlack)
	fillRect(img, x+battW, y+(battH-termH)/2, x+battW+termW, y+(battH+termH)/2, shadeBlack)
	if percent > 0 {
		fw := (battW - 6) * percent / 100
		fillRect(img, x+3, y+3, x+3+fw, y+battH-3, shadeBlack)
	}
	drawText(img, x+battW+termW+6, y+2, fmt.Sprintf("%d%%", percent), r.faces.Tiny, shadeBlack)
}

// trimParen drops a parenthesized suffix, so "Uptown (Manhattan)" labels
// fit as just "Uptown".
func trimParen(label string) string {
	if i := strings.Index(label, "("); i >= 0 {
		label = label[:i]
	}
	return strings.TrimSpace(label)
}

func priceString(q finance.Quote) string {
	switch {
	case q.Label == "BTC":
		return fmt.Sprintf("%.1fk", q.Price/1000)
	case q.Price > 100:
		return fmt.Sprintf("%.0f", q.Price)
	default:
		return fmt.Sprintf("%.1f", q.Price)
	}
}
