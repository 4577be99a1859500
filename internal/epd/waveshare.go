package epd

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/devices/v3/waveshare2in13v4"
	"periph.io/x/host/v3"
)

// Waveshare drives the 2.13" V4 e-paper HAT over SPI. The panel is 122x250
// portrait; frames rendered landscape are rotated on the way in.
type Waveshare struct {
	dev  *waveshare2in13v4.Dev
	port spi.PortCloser
}

// OpenWaveshare initializes the periph host, opens the default SPI port and
// connects the HAT.
func OpenWaveshare() (*Waveshare, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to init periph host: %w", err)
	}

	port, err := spireg.Open("")
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port: %w", err)
	}

	opts := waveshare2in13v4.EPD2in13v4
	dev, err := waveshare2in13v4.NewHat(port, &opts)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to connect e-paper hat: %w", err)
	}

	return &Waveshare{dev: dev, port: port}, nil
}

func (w *Waveshare) Init() error {
	return w.dev.Init()
}

func (w *Waveshare) Clear() error {
	return w.dev.Clear(color.White)
}

func (w *Waveshare) Bounds() image.Rectangle {
	return w.dev.Bounds()
}

func (w *Waveshare) FullRepaint(img image.Image) error {
	return w.dev.Draw(w.dev.Bounds(), w.toPanel(img), image.Point{})
}

// PartialRepaintBase latches the frame partial repaints diff against. On
// this controller a full Draw does both.
func (w *Waveshare) PartialRepaintBase(img image.Image) error {
	return w.dev.Draw(w.dev.Bounds(), w.toPanel(img), image.Point{})
}

func (w *Waveshare) PartialRepaint(img image.Image) error {
	return w.dev.DrawPartial(w.dev.Bounds(), w.toPanel(img), image.Point{})
}

func (w *Waveshare) Sleep() error {
	return w.dev.Sleep()
}

// Halt powers the controller down and releases the SPI port. Call after
// Sleep when the process is done with the panel for good.
func (w *Waveshare) Halt() error {
	if err := w.dev.Halt(); err != nil {
		return err
	}
	return w.port.Close()
}

// toPanel converts a frame to the 1-bit vertical-LSB layout the controller
// wants, rotating landscape frames onto the portrait panel.
func (w *Waveshare) toPanel(img image.Image) *image1bit.VerticalLSB {
	bounds := w.dev.Bounds()
	src := img
	if isRotated(img.Bounds(), bounds) {
		src = rotateToPortrait(img, bounds)
	}
	out := image1bit.NewVerticalLSB(bounds)
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	return out
}

// isRotated reports whether the frame is the panel's geometry turned 90
// degrees.
func isRotated(frame, panel image.Rectangle) bool {
	return frame.Dx() == panel.Dy() && frame.Dy() == panel.Dx() && frame.Dx() != frame.Dy()
}

// rotateToPortrait maps a landscape frame onto the portrait panel, matching
// the HAT's mounting orientation.
func rotateToPortrait(src image.Image, panel image.Rectangle) *image.Gray {
	dst := image.NewGray(panel)
	w, h := panel.Dx(), panel.Dy()
	srcMin := src.Bounds().Min
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx := srcMin.X + y
			sy := srcMin.Y + (w - 1 - x)
			dst.Set(panel.Min.X+x, panel.Min.Y+y, color.GrayModel.Convert(src.At(sx, sy)))
		}
	}
	return dst
}
