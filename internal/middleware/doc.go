// Package middleware holds the Gin middleware mounted in front of the host link.
//
//   - CORS: cross-origin rules for /healthz, /metrics and the /ws upgrade
//   - RateLimit: per-IP token buckets with idle client eviction
//   - GlobalRateLimit: one bucket shared by every caller
//
// Example:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.FromConfig(cfg.RateLimit)))
package middleware
