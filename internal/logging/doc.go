// Package logging provides structured logging using uber/zap.
//
// Two output modes are available:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// When Config.File is set, records are additionally written as JSON to a
// size-rotated file (lumberjack), which is how bridge processes embedded in a
// host engine keep logs without a terminal.
//
// Every bridge component takes a *Logger and derives a named child:
//
//	logger := logging.NewDefault()
//	router := ipc.NewRouter(ipc.RouterDeps{Logger: logger.Named("ipc")})
//	logger.Warn("both url and html configured", zap.String("surface", id))
package logging
