package input

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/webbridge/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/monitoring"
)

// Reserved envelope types.
const (
	TypeMouseMove = "mouse_move"
	TypeMouseDown = "mouse_down"
	TypeMouseUp   = "mouse_up"
	TypeKeyDown   = "key_down"
	TypeKeyUp     = "key_up"
)

// ForwardScript captures DOM pointer, wheel and key events in content and
// posts them as envelopes over window.ipc.
//
//go:embed forward.js
var ForwardScript string

var (
	// ErrMalformedEnvelope is returned for bodies that are not JSON objects.
	ErrMalformedEnvelope = errors.New("malformed input envelope")
	// ErrUnhandledType is returned for envelope types outside the reserved set.
	ErrUnhandledType = errors.New("unhandled input event type")
)

// Translator turns content envelopes into host input events.
type Translator struct {
	pipeline Pipeline
	mask     *ButtonMaskRegister
	logger   *logging.Logger
	metrics  *monitoring.Metrics
}

// Option configures a Translator.
type Option func(*Translator)

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(t *Translator) { t.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(t *Translator) { t.metrics = metrics }
}

// NewTranslator injects into pipeline and tracks held buttons in mask. A
// nil mask gets a private register.
func NewTranslator(pipeline Pipeline, mask *ButtonMaskRegister, opts ...Option) *Translator {
	if mask == nil {
		mask = &ButtonMaskRegister{}
	}
	t := &Translator{pipeline: pipeline, mask: mask}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = logging.OrNop(t.logger).Named("input")
	return t
}

// Mask returns the register the translator stamps events with.
func (t *Translator) Mask() *ButtonMaskRegister {
	return t.mask
}

// Handles reports whether eventType is a reserved input type.
func (t *Translator) Handles(eventType string) bool {
	switch eventType {
	case TypeMouseMove, TypeMouseDown, TypeMouseUp, TypeKeyDown, TypeKeyUp:
		return true
	}
	return false
}

// Translate decodes one envelope and injects the resulting event. Missing
// numeric fields read as zero.
func (t *Translator) Translate(body []byte) error {
	if !gjson.ValidBytes(body) {
		return ErrMalformedEnvelope
	}
	env := gjson.ParseBytes(body)
	if !env.IsObject() {
		return ErrMalformedEnvelope
	}

	eventType := env.Get("type").String()
	switch eventType {
	case TypeMouseMove:
		t.pipeline.PushInput(PointerMotion{
			Position:   position(env),
			Relative:   Vec2{X: env.Get("movementX").Float(), Y: env.Get("movementY").Float()},
			ButtonMask: t.mask.Load(),
		})

	case TypeMouseDown, TypeMouseUp:
		pressed := eventType == TypeMouseDown
		button := domButton(env.Get("button").Int())

		var mask ButtonMask
		switch {
		case button.IsWheel():
			mask = t.mask.Load()
		case pressed:
			mask = t.mask.Press(button)
		default:
			mask = t.mask.Release(button)
		}
		t.pipeline.PushInput(PointerButton{
			Position:   position(env),
			Button:     button,
			Pressed:    pressed,
			ButtonMask: mask,
		})

	case TypeKeyDown, TypeKeyUp:
		name := env.Get("key").String()
		code := LookupKey(name)
		if code == KeyNone {
			t.logger.Debug("Unmapped key", zap.String("key", name))
		}
		t.pipeline.ParseInput(Key{
			Keycode: code,
			RawCode: int(env.Get("keyCode").Int()),
			Pressed: eventType == TypeKeyDown,
		})

	default:
		return fmt.Errorf("%w: %q", ErrUnhandledType, eventType)
	}

	t.metrics.RecordInput(eventType)
	return nil
}

// domButton maps MouseEvent.button numbering to host buttons. Unknown values
// are treated as the primary button.
func domButton(n int64) MouseButton {
	switch n {
	case 1:
		return MouseButtonMiddle
	case 2:
		return MouseButtonRight
	case 3:
		return MouseButtonWheelUp
	case 4:
		return MouseButtonWheelDown
	default:
		return MouseButtonLeft
	}
}

func position(env gjson.Result) Vec2 {
	return Vec2{X: env.Get("x").Float(), Y: env.Get("y").Float()}
}
