// Package hostlink drives surfaces from a host running in another process.
//
// Each WebSocket connection on /ws gets one headless surface. The server
// side of the connection is a Link, which implements embed.Host: page
// messages, invokes and translated input are sent to the client as JSON
// frames, and layout comes from the client's last layout frame.
//
// Frames (Server → Client):
//   - attached: session and surface ids, always first
//   - message: page message text
//   - invoke: token, method, uri, headers, base64 body
//   - input: translated pointer or key event, routed push or parse
//   - error: a rejected inbound frame
//
// Frames (Client → Server):
//   - layout: rect, viewport and focus, applied on receipt
//   - resolve: completes an invoke by token, base64 body
//   - post_message, eval, load_url, load_html: carry text
//   - set_visible, set_full_window, devtools: carry on
//   - resize, reload, clear_browsing_data, focus, focus_parent, print
//
// Commands are rate limited per session and queued. The session frame loop
// applies queued commands on each tick, then calls Surface.Process. A
// disconnect or Shutdown destroys the surface.
//
// Example Usage:
//
//	srv, err := hostlink.NewServer(cfg)
//	go srv.Run()
//	defer srv.Shutdown(ctx)
package hostlink
