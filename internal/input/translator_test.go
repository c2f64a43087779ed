package input

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPipeline struct {
	mu     sync.Mutex
	pushed []Event
	parsed []Event
}

func (p *recordingPipeline) PushInput(ev Event) {
	p.mu.Lock()
	p.pushed = append(p.pushed, ev)
	p.mu.Unlock()
}

func (p *recordingPipeline) ParseInput(ev Event) {
	p.mu.Lock()
	p.parsed = append(p.parsed, ev)
	p.mu.Unlock()
}

func newTestTranslator() (*Translator, *recordingPipeline) {
	pipeline := &recordingPipeline{}
	return NewTranslator(pipeline, &ButtonMaskRegister{}), pipeline
}

func translate(t *testing.T, tr *Translator, body string) {
	t.Helper()
	require.NoError(t, tr.Translate([]byte(body)))
}

func TestHandles(t *testing.T) {
	tr, _ := newTestTranslator()
	for _, typ := range []string{"mouse_move", "mouse_down", "mouse_up", "key_down", "key_up"} {
		assert.True(t, tr.Handles(typ), typ)
	}
	for _, typ := range []string{"", "message", "mouse_wheel", "KEY_DOWN"} {
		assert.False(t, tr.Handles(typ), typ)
	}
}

func TestMouseDownUpScenario(t *testing.T) {
	tr, pipeline := newTestTranslator()

	translate(t, tr, `{"type":"mouse_down","x":10,"y":20,"button":0}`)
	translate(t, tr, `{"type":"mouse_up","x":10,"y":20,"button":0}`)

	require.Len(t, pipeline.pushed, 2)
	down := pipeline.pushed[0].(PointerButton)
	assert.Equal(t, Vec2{X: 10, Y: 20}, down.Position)
	assert.Equal(t, MouseButtonLeft, down.Button)
	assert.True(t, down.Pressed)
	assert.Equal(t, MaskLeft, down.ButtonMask)

	up := pipeline.pushed[1].(PointerButton)
	assert.False(t, up.Pressed)
	assert.Equal(t, ButtonMask(0), up.ButtonMask)
	assert.Equal(t, ButtonMask(0), tr.Mask().Load())
	assert.Empty(t, pipeline.parsed)
}

func TestMaskAccumulates(t *testing.T) {
	tr, pipeline := newTestTranslator()

	translate(t, tr, `{"type":"mouse_down","button":0}`)
	translate(t, tr, `{"type":"mouse_down","button":2}`)
	translate(t, tr, `{"type":"mouse_move","x":5,"y":6,"movementX":1,"movementY":-1}`)
	translate(t, tr, `{"type":"mouse_down","button":1}`)
	translate(t, tr, `{"type":"mouse_up","button":0}`)

	masks := make([]ButtonMask, 0, len(pipeline.pushed))
	for _, ev := range pipeline.pushed {
		switch e := ev.(type) {
		case PointerButton:
			masks = append(masks, e.ButtonMask)
		case PointerMotion:
			masks = append(masks, e.ButtonMask)
			assert.Equal(t, Vec2{X: 1, Y: -1}, e.Relative)
		}
	}
	assert.Equal(t, []ButtonMask{
		MaskLeft,
		MaskLeft | MaskRight,
		MaskLeft | MaskRight,
		MaskLeft | MaskRight | MaskMiddle,
		MaskRight | MaskMiddle,
	}, masks)
}

func TestMaskIdempotence(t *testing.T) {
	tests := []struct {
		dom    int
		button MouseButton
		other  int
	}{
		{0, MouseButtonLeft, 2},
		{1, MouseButtonMiddle, 0},
		{2, MouseButtonRight, 0},
	}
	for _, tt := range tests {
		t.Run(tt.button.String(), func(t *testing.T) {
			tr, _ := newTestTranslator()
			translate(t, tr, fmt.Sprintf(`{"type":"mouse_down","button":%d}`, tt.other))
			before := tr.Mask().Load()

			translate(t, tr, fmt.Sprintf(`{"type":"mouse_down","button":%d}`, tt.dom))
			assert.Equal(t, before|tt.button.Mask(), tr.Mask().Load())
			translate(t, tr, fmt.Sprintf(`{"type":"mouse_up","button":%d}`, tt.dom))
			assert.Equal(t, before, tr.Mask().Load())
		})
	}
}

func TestWheelNeverMutatesMask(t *testing.T) {
	tr, pipeline := newTestTranslator()
	translate(t, tr, `{"type":"mouse_down","button":0}`)

	for _, b := range []int{3, 4} {
		translate(t, tr, fmt.Sprintf(`{"type":"mouse_down","button":%d}`, b))
		translate(t, tr, fmt.Sprintf(`{"type":"mouse_up","button":%d}`, b))
	}

	assert.Equal(t, MaskLeft, tr.Mask().Load())
	require.Len(t, pipeline.pushed, 5)
	wheelUp := pipeline.pushed[1].(PointerButton)
	assert.Equal(t, MouseButtonWheelUp, wheelUp.Button)
	assert.Equal(t, MaskLeft, wheelUp.ButtonMask)
	assert.Equal(t, MouseButtonWheelDown, pipeline.pushed[3].(PointerButton).Button)
}

func TestUnknownButtonIsLeft(t *testing.T) {
	tr, pipeline := newTestTranslator()
	translate(t, tr, `{"type":"mouse_down","button":17}`)
	translate(t, tr, `{"type":"mouse_down","button":"x"}`)
	for _, ev := range pipeline.pushed {
		assert.Equal(t, MouseButtonLeft, ev.(PointerButton).Button)
	}
}

func TestMissingFieldsDefaultToZero(t *testing.T) {
	tr, pipeline := newTestTranslator()
	translate(t, tr, `{"type":"mouse_move"}`)
	translate(t, tr, `{"type":"key_down"}`)

	assert.Equal(t, PointerMotion{}, pipeline.pushed[0])
	assert.Equal(t, Key{Keycode: KeyNone, Pressed: true}, pipeline.parsed[0])
}

func TestKeyEventsUseParseInput(t *testing.T) {
	tr, pipeline := newTestTranslator()
	translate(t, tr, `{"type":"key_down","key":"Enter","keyCode":13}`)
	translate(t, tr, `{"type":"key_up","key":"q","keyCode":81}`)
	translate(t, tr, `{"type":"key_down","key":"F13","keyCode":124}`)

	assert.Empty(t, pipeline.pushed)
	assert.Equal(t, []Event{
		Key{Keycode: KeyEnter, RawCode: 13, Pressed: true},
		Key{Keycode: 'Q', RawCode: 81, Pressed: false},
		Key{Keycode: KeyNone, RawCode: 124, Pressed: true},
	}, pipeline.parsed)
}

func TestTranslateErrors(t *testing.T) {
	tr, pipeline := newTestTranslator()
	assert.ErrorIs(t, tr.Translate([]byte("hello")), ErrMalformedEnvelope)
	assert.ErrorIs(t, tr.Translate([]byte(`[1,2]`)), ErrMalformedEnvelope)
	assert.ErrorIs(t, tr.Translate([]byte(`{"type":"scroll"}`)), ErrUnhandledType)
	assert.Empty(t, pipeline.pushed)
}

func TestConcurrentMaskUpdates(t *testing.T) {
	tr, _ := newTestTranslator()
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tr.Translate([]byte(`{"type":"mouse_down","button":1}`))
			_ = tr.Translate([]byte(`{"type":"mouse_up","button":1}`))
		}()
	}
	wg.Wait()
	assert.Equal(t, ButtonMask(0), tr.Mask().Load())
}

func TestForwardScriptEmbedded(t *testing.T) {
	assert.Contains(t, ForwardScript, "window.ipc.postMessage")
	assert.Contains(t, ForwardScript, `"mouse_down"`)
}
