// Package logging provides structured logging configuration for mockbay.
//
// This package wraps log/slog to provide consistent logging across all
// components. It supports configurable log levels and output formats.
//
// # Usage
//
// Create a logger with desired configuration:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("server started", "port", 3131)
//	logger.Error("failed to connect", "error", err)
//
// # Integration
//
// Components should accept a *slog.Logger in their constructor. If no
// logger is provided, use logging.Nop() for a no-op logger.
//
// Operational logs are for operators; captured endpoint traffic is user
// data and flows through the traffic package instead.
package logging
