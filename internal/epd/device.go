package epd

import (
	"fmt"
	"image"
)

// Device is the hardware seam for an e-paper panel. Implementations exist
// for the Waveshare 2.13" HAT and for tests.
type Device interface {
	Init() error
	Clear() error
	FullRepaint(img image.Image) error
	PartialRepaintBase(img image.Image) error
	PartialRepaint(img image.Image) error
	Sleep() error
	Bounds() image.Rectangle
}

// HardwareError wraps a panel failure with the operation that hit it.
type HardwareError struct {
	Op  string
	Err error
}

func (e *HardwareError) Error() string {
	return fmt.Sprintf("display %s failed: %v", e.Op, e.Err)
}

func (e *HardwareError) Unwrap() error { return e.Err }

// Screen drives a Device through a repaint Policy. It owns the panel for
// its lifetime: Open it, Render frames, and Close it on every exit path so
// the panel is never left powered.
type Screen struct {
	device Device
	policy *Policy
}

// NewScreen binds a policy to a device.
func NewScreen(device Device, policy *Policy) *Screen {
	return &Screen{device: device, policy: policy}
}

// Open wakes the panel up.
func (s *Screen) Open() error {
	if err := s.device.Init(); err != nil {
		return &HardwareError{Op: "init", Err: err}
	}
	return nil
}

// Render paints a frame, letting the policy choose the repaint kind.
func (s *Screen) Render(img image.Image, forceFull bool) error {
	switch action := s.policy.Next(forceFull); action {
	case ActionFull:
		if err := s.device.FullRepaint(img); err != nil {
			return &HardwareError{Op: "full repaint", Err: err}
		}
	case ActionPartialBase:
		if err := s.device.PartialRepaintBase(img); err != nil {
			return &HardwareError{Op: "partial base repaint", Err: err}
		}
	case ActionPartial:
		if err := s.device.PartialRepaint(img); err != nil {
			return &HardwareError{Op: "partial repaint", Err: err}
		}
	}
	return nil
}

// Clear wipes the panel to white and resets the repaint cycle.
func (s *Screen) Clear() error {
	if err := s.device.Clear(); err != nil {
		return &HardwareError{Op: "clear", Err: err}
	}
	s.policy.Reset()
	return nil
}

// Bounds is the panel's native geometry.
func (s *Screen) Bounds() image.Rectangle {
	return s.device.Bounds()
}

// Close puts the panel into deep sleep. E-paper kept under drive voltage
// degrades, so this must run however the process exits.
func (s *Screen) Close() error {
	if err := s.device.Sleep(); err != nil {
		return &HardwareError{Op: "sleep", Err: err}
	}
	return nil
}
