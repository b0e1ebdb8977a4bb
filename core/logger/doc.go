// Package logger builds the zap logger used across the service.
//
// Level accepts any zap level name. Format is json (default) or console.
//
// WithRayID tags a logger with the request id set by the rayid middleware.
// WithSweep tags a logger with the sweep id and channel of a comparison sweep.
//
//	log, _ := logger.New(&cfg.Log)
//	l := logger.WithSweep(log, sweepID, channel)
//	l.Info("sweep finished", zap.Int("mismatch", n))
package logger
