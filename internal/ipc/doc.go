// Package ipc routes traffic arriving from embedded web content.
//
// Request-style messages carry a response sink:
//
//	ipc://localhost/plugin:res/<path>   served by the resource resolver (200/404)
//	ipc://localhost/plugin:invoke       forwarded to the host, answered later
//	anything else                       403
//
// An invoke registers its sink in PendingCalls under a fresh UUID token and
// hands the token to the host. The host answers through Router.Resolve. An
// invoke the host never answers stays pending until Expire or Close.
//
// Fire-and-forget messages are peeked for a {"type": ...} envelope. Types the
// input translator claims are consumed as synthetic input; every other body,
// including plain text and malformed JSON, is forwarded to the host unchanged.
// The input type names are therefore reserved on this channel.
package ipc
