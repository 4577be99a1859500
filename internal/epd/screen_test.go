package epd

import (
	"errors"
	"image"
	"testing"
)

type fakeDevice struct {
	calls  []string
	failOn string
}

func (d *fakeDevice) record(op string) error {
	d.calls = append(d.calls, op)
	if d.failOn == op {
		return errors.New("spi write failed")
	}
	return nil
}

func (d *fakeDevice) Init() error                              { return d.record("init") }
func (d *fakeDevice) Clear() error                             { return d.record("clear") }
func (d *fakeDevice) FullRepaint(img image.Image) error        { return d.record("full") }
func (d *fakeDevice) PartialRepaintBase(img image.Image) error { return d.record("base") }
func (d *fakeDevice) PartialRepaint(img image.Image) error     { return d.record("partial") }
func (d *fakeDevice) Sleep() error                             { return d.record("sleep") }
func (d *fakeDevice) Bounds() image.Rectangle                  { return image.Rect(0, 0, 122, 250) }

func frame() image.Image {
	return image.NewGray(image.Rect(0, 0, 250, 122))
}

func TestScreenRenderSequence(t *testing.T) {
	device := &fakeDevice{}
	screen := NewScreen(device, NewPolicy(2, true))

	for i := 0; i < 3; i++ {
		if err := screen.Render(frame(), false); err != nil {
			t.Fatalf("Render %d returned error: %v", i+1, err)
		}
	}

	want := []string{"base", "partial", "full"}
	if len(device.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", device.calls, want)
	}
	for i := range want {
		if device.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i+1, device.calls[i], want[i])
		}
	}
}

func TestScreenRenderWrapsHardwareError(t *testing.T) {
	device := &fakeDevice{failOn: "base"}
	screen := NewScreen(device, NewPolicy(10, true))

	err := screen.Render(frame(), false)

	var hw *HardwareError
	if !errors.As(err, &hw) {
		t.Fatalf("err = %v, want HardwareError", err)
	}
	if hw.Op != "partial base repaint" {
		t.Errorf("Op = %q, want partial base repaint", hw.Op)
	}
	if hw.Unwrap() == nil {
		t.Error("HardwareError does not carry the device error")
	}
}

func TestScreenClearResetsRepaintCycle(t *testing.T) {
	device := &fakeDevice{}
	screen := NewScreen(device, NewPolicy(10, true))

	screen.Render(frame(), false)
	screen.Render(frame(), false)
	if err := screen.Clear(); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	screen.Render(frame(), false)

	last := device.calls[len(device.calls)-1]
	if last != "base" {
		t.Errorf("paint after clear = %q, want base", last)
	}
}

func TestScreenOpenAndClose(t *testing.T) {
	device := &fakeDevice{}
	screen := NewScreen(device, NewPolicy(10, true))

	if err := screen.Open(); err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := screen.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	if device.calls[0] != "init" || device.calls[len(device.calls)-1] != "sleep" {
		t.Errorf("calls = %v, want init first and sleep last", device.calls)
	}
}
