/*
Package monitoring provides metrics collection for the bridge.

# Overview

Prometheus metrics are registered on a registry owned by each Metrics value
(not the global default registry), so several bridges or tests can coexist in
one process.

# Metrics

  - bridge_ipc_messages_total{kind}: resource, invoke, forbidden, input, message
  - bridge_resource_requests_total{status}: 200 / 404
  - bridge_pending_calls: outstanding invoke calls
  - bridge_invoke_duration_seconds{outcome}: resolved, expired, drained
  - bridge_input_events_total{type}: injected synthetic input
  - bridge_surfaces_active, bridge_surfaces_total
  - bridge_hostlink_sessions, bridge_hostlink_frames_total{direction,type}
  - bridge_http_requests_total, bridge_http_request_duration_seconds
  - bridge_web_request_duration_seconds{outcome}: ok, error, canceled, circuit_open, invalid

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
