// Package logging provides structured logging configuration for voodoo.
//
// This package wraps log/slog so every component logs the same way. The
// server, router, resolver and config loader all accept a *slog.Logger and
// fall back to Nop() when none is given.
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelDebug,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("server started", "url", "http://127.0.0.1:8080")
//
// Verbose mode on the command line maps to LevelDebug, which is where match
// decisions and response resolution are reported.
package logging
