// Package main is the bridge command.
//
// Usage:
//
//	# Host link server, configured from the environment
//	bridge serve
//
//	# Host link server from a file, development logging
//	bridge serve --config bridge.toml --dev
//
//	# Check what a surface would get for a resource
//	bridge resolve res://localhost/index.html --root ./www
//
//	# Everything the sandbox root serves
//	bridge list --root ./www
//
// Signals:
//   - SIGINT, SIGTERM: destroy every surface and shut down
package main
