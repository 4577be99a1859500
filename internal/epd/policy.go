package epd

// DefaultMaxPartials is how many partial repaints the panel takes before
// ghosting builds up enough to warrant a full one.
const DefaultMaxPartials = 10

// Action is the kind of repaint the panel should perform next.
type Action int

const (
	// ActionFull drives the complete waveform: slow and flashy, but the
	// only thing that clears accumulated ghosting.
	ActionFull Action = iota
	// ActionPartialBase paints the whole frame and latches it as the base
	// the controller diffs later partial repaints against.
	ActionPartialBase
	// ActionPartial repaints changed pixels only, against the latched base.
	ActionPartial
)

func (a Action) String() string {
	switch a {
	case ActionFull:
		return "full"
	case ActionPartialBase:
		return "partial-base"
	default:
		return "partial"
	}
}

// Policy decides between full and partial repaints, independent of what is
// being drawn. It counts partial paints since the last full one; when the
// count reaches the limit the next repaint goes full and the count resets.
type Policy struct {
	maxPartials     int
	supportsPartial bool
	painted         int
}

// NewPolicy creates a repaint policy. maxPartials falls back to the default
// when non-positive. Panels without partial support always repaint fully.
func NewPolicy(maxPartials int, supportsPartial bool) *Policy {
	if maxPartials <= 0 {
		maxPartials = DefaultMaxPartials
	}
	return &Policy{
		maxPartials:     maxPartials,
		supportsPartial: supportsPartial,
	}
}

// Next returns the repaint action for the coming paint and advances the
// state. forceFull is for callers that just drew something worth a clean
// flash, like the first frame after boot.
func (p *Policy) Next(forceFull bool) Action {
	if forceFull || !p.supportsPartial || p.painted >= p.maxPartials {
		p.painted = 0
		return ActionFull
	}
	if p.painted == 0 {
		p.painted = 1
		return ActionPartialBase
	}
	p.painted++
	return ActionPartial
}

// Reset forgets partial-paint history, as after a panel clear.
func (p *Policy) Reset() {
	p.painted = 0
}
