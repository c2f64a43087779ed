// Package input re-injects pointer and keyboard events captured in web
// content into the host's native input pipeline.
//
// Content posts envelopes such as
//
//	{"type":"mouse_down","x":10,"y":20,"button":0}
//	{"type":"key_up","key":"Enter","keyCode":13}
//
// over the IPC message channel (ForwardScript produces them). Pointer events
// are pushed into the viewport, key events go through input parsing.
//
// Held buttons live in a ButtonMaskRegister owned by the surface: down sets
// a bit, up clears it, and every pointer event is stamped with the mask after
// the update. Wheel notches arrive as a down+up pair and never touch the mask.
package input
