// Package web fetches http and https resources for headless views.
//
// Requests go through resty over a pooled transport, with retries for
// transport errors. Every origin has a circuit breaker: after repeated 5xx
// responses or network failures the origin is refused with 503 until a
// cooldown passes and one trial request succeeds.
package web
