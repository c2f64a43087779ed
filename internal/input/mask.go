package input

import "sync"

// ButtonMaskRegister holds the buttons reported down by content. It is
// owned by one surface and shared with that surface's translator.
type ButtonMaskRegister struct {
	mu   sync.Mutex
	mask ButtonMask
}

// Load returns the current mask.
func (r *ButtonMaskRegister) Load() ButtonMask {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mask
}

// Press sets the bit for b and returns the new mask. Wheel buttons leave
// the mask untouched.
func (r *ButtonMaskRegister) Press(b MouseButton) ButtonMask {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mask |= b.Mask()
	return r.mask
}

// Release clears the bit for b and returns the new mask.
func (r *ButtonMaskRegister) Release(b MouseButton) ButtonMask {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mask &^= b.Mask()
	return r.mask
}

// Reset clears every bit.
func (r *ButtonMaskRegister) Reset() {
	r.mu.Lock()
	r.mask = 0
	r.mu.Unlock()
}
