// Package headless is a renderer that runs page scripts in a goja VM
// without drawing anything.
//
// It gives scripts a small browser-like global: window and document with
// event listeners, Event and CustomEvent, console, window.ipc.postMessage,
// and window.__bridge.request for custom-scheme requests. Markup is parsed
// with goquery and its <script> elements run in document order; src scripts
// and URL loads are fetched through the protocol handlers in the options, so
// a res:// page loads from the resource resolver. With WithWeb, http and
// https URLs without a registered handler go through a web.Fetcher.
//
// The bridge uses it to run surfaces in the host link server and in tests.
package headless
