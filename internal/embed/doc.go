// Package embed manages the lifecycle of an embedded web surface.
//
// A Surface moves Uninitialized → Attached → Destroyed and never back. New
// validates the host configuration; Attach builds the renderer with the
// bridge scripts, the res:// and ipc:// protocol handlers and the message
// callback, then pushes the first bounds. Process is called once per host
// frame: it pumps the renderer when the platform needs it, follows control
// movement and reasserts focus when the host window regains it. Destroy
// answers outstanding invokes with 503 and drops the renderer.
//
// Control calls (PostMessage, Eval, SetVisible, ...) are best effort. Before
// Attach and after Destroy they do nothing.
package embed
