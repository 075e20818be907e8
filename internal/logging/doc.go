// Package logging provides structured logging for the switcherctl CLI.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the tool. Logging is silent by default so command
// output stays clean; set SWITCHERCTL_LOG_LEVEL to enable it.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (hex dumps, packet parsing)
//   - Info: Normal operations (connections, discoveries, state changes)
//   - Warn: Non-fatal issues (stale cache entries, skipped datagrams)
//   - Error: Fatal issues (bind failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("discovered device",
//	    zap.String("device_id", "9b5a2c"),
//	    zap.String("ip", "192.168.1.42"),
//	    zap.String("name", "Kitchen Plug"),
//	)
//
// # Specialized Logging
//
// Raw protocol traffic can be dumped at debug level:
//
//	logging.LogRawBytes("login response", resp)
//
// Connection lifecycle events use a common shape:
//
//	logging.LogConnection(remoteAddr, "session_opened")
//	logging.LogConnection(remoteAddr, "session_closed")
//
// # Configuration
//
// Initialize logging at command startup:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
