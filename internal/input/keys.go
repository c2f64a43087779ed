package input

// Keycode is a host key code. Printable keys use their ASCII code; special
// keys live above the unicode range.
type Keycode int

const (
	KeyNone      Keycode = 0
	KeySpace     Keycode = 32
	KeyEscape    Keycode = 4194305
	KeyTab       Keycode = 4194306
	KeyBackspace Keycode = 4194308
	KeyEnter     Keycode = 4194309
	KeyLeft      Keycode = 4194319
	KeyUp        Keycode = 4194320
	KeyRight     Keycode = 4194321
	KeyDown      Keycode = 4194322
	KeyShift     Keycode = 4194325
	KeyCtrl      Keycode = 4194326
	KeyAlt       Keycode = 4194328
)

//nolint:gochecknoglobals
var namedKeys = map[string]Keycode{
	" ":          KeySpace,
	"Space":      KeySpace,
	"Spacebar":   KeySpace,
	"Escape":     KeyEscape,
	"Esc":        KeyEscape,
	"Tab":        KeyTab,
	"Backspace":  KeyBackspace,
	"Enter":      KeyEnter,
	"ArrowLeft":  KeyLeft,
	"ArrowUp":    KeyUp,
	"ArrowRight": KeyRight,
	"ArrowDown":  KeyDown,
	"Shift":      KeyShift,
	"Control":    KeyCtrl,
	"Alt":        KeyAlt,
}

// LookupKey maps a DOM key name to a host keycode. Letters are matched
// case-insensitively. Unknown names return KeyNone.
func LookupKey(name string) Keycode {
	if code, ok := namedKeys[name]; ok {
		return code
	}
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return Keycode(c - 'a' + 'A')
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			return Keycode(c)
		}
	}
	return KeyNone
}

// KeyName returns a readable name for code.
func KeyName(code Keycode) string {
	switch code {
	case KeyNone:
		return "None"
	case KeySpace:
		return "Space"
	case KeyEscape:
		return "Escape"
	case KeyTab:
		return "Tab"
	case KeyBackspace:
		return "Backspace"
	case KeyEnter:
		return "Enter"
	case KeyLeft:
		return "Left"
	case KeyUp:
		return "Up"
	case KeyRight:
		return "Right"
	case KeyDown:
		return "Down"
	case KeyShift:
		return "Shift"
	case KeyCtrl:
		return "Ctrl"
	case KeyAlt:
		return "Alt"
	}
	if (code >= 'A' && code <= 'Z') || (code >= '0' && code <= '9') {
		return string(rune(code))
	}
	return "Unknown"
}
