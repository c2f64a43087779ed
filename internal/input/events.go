package input

// Vec2 is a point or delta in viewport-local coordinates.
type Vec2 struct {
	X, Y float64
}

// MouseButton identifies a host mouse button.
type MouseButton int

// Host button ids.
const (
	MouseButtonNone MouseButton = iota
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
	MouseButtonWheelUp
	MouseButtonWheelDown
)

// IsWheel reports whether b is a wheel notch rather than a held button.
func (b MouseButton) IsWheel() bool {
	return b == MouseButtonWheelUp || b == MouseButtonWheelDown
}

// Mask returns the held-button bit for b, or 0 for buttons that are never
// held.
func (b MouseButton) Mask() ButtonMask {
	switch b {
	case MouseButtonLeft:
		return MaskLeft
	case MouseButtonRight:
		return MaskRight
	case MouseButtonMiddle:
		return MaskMiddle
	default:
		return 0
	}
}

func (b MouseButton) String() string {
	switch b {
	case MouseButtonLeft:
		return "left"
	case MouseButtonRight:
		return "right"
	case MouseButtonMiddle:
		return "middle"
	case MouseButtonWheelUp:
		return "wheel_up"
	case MouseButtonWheelDown:
		return "wheel_down"
	default:
		return "none"
	}
}

// ButtonMask is the set of currently held buttons.
type ButtonMask uint32

// Held-button bits.
const (
	MaskLeft ButtonMask = 1 << iota
	MaskRight
	MaskMiddle
)

// Event is a host-native input event.
type Event interface {
	EventType() string
}

// PointerMotion is a pointer move.
type PointerMotion struct {
	Position   Vec2
	Relative   Vec2
	ButtonMask ButtonMask
}

// PointerButton is a press or release, including wheel notches.
type PointerButton struct {
	Position   Vec2
	Button     MouseButton
	Pressed    bool
	ButtonMask ButtonMask
}

// Key is a keyboard press or release.
type Key struct {
	Keycode Keycode
	RawCode int
	Pressed bool
}

func (PointerMotion) EventType() string { return "pointer_motion" }
func (PointerButton) EventType() string { return "pointer_button" }
func (Key) EventType() string           { return "key" }

// Pipeline is the host's input entry points. Pointer events are pushed into
// the viewport; key events go through input parsing.
type Pipeline interface {
	PushInput(ev Event)
	ParseInput(ev Event)
}
