// Package config provides 12-factor configuration management for the bridge.
//
// Configuration is loaded from environment variables with sensible defaults,
// or from a TOML/YAML file when the CLI is given --config.
//
// Configuration Sections:
//   - Server: host link listen address
//   - Logging: log level, output format and optional rotating file
//   - Resources: res:// sandbox root, index file, hidden globs, MIME overrides
//   - Hostlink: frame rate, inbound command limits, renderer pumping
//   - RateLimit: per-IP HTTP rate limiting
//   - Surface: the host-facing surface configuration (url/html, flags)
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	warnings, err := cfg.Surface.Validate()
//
// Environment Variables:
//   - PORT, HOST, LOG_LEVEL, LOG_DEV, LOG_FILE
//   - RESOURCE_ROOT, RESOURCE_INDEX, RESOURCE_HIDDEN, RESOURCE_SNIFF, RESOURCE_MIME
//   - HOSTLINK_FPS, HOSTLINK_COMMAND_RPS, HOSTLINK_COMMAND_BURST, HOSTLINK_QUEUE, HOSTLINK_PUMPED
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - BRIDGE_URL, BRIDGE_HTML, BRIDGE_FULL_WINDOW, BRIDGE_DEVTOOLS, BRIDGE_FORWARD_INPUT, ...
package config
