/*
Package metrics provides Prometheus metrics collection and exposition for driftstore.

The metrics package defines and registers all driftstore metrics using the
Prometheus client library, providing observability into store shape,
integrity-check outcomes, push/pull reconciliation, transaction scopes, and
tenant lifecycle progress. Metrics are exposed via an HTTP endpoint for
scraping by Prometheus servers.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  │  - Automatic Go runtime metrics             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │              Metric Types                   │          │
	│  │                                              │          │
	│  │  Gauge: Instant values (table count)        │          │
	│  │  Counter: Monotonic increases (push/pull)   │          │
	│  │  Histogram: Distributions (durations)       │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Metric Categories                 │          │
	│  │                                              │          │
	│  │  Store: Tables, rows, metadata version      │          │
	│  │  Integrity: Check duration, failures        │          │
	│  │  Reconciliation: Push/pull outcomes          │          │
	│  │  Backend: Save/load duration by scheme      │          │
	│  │  Transaction: Commit/rollback counts         │          │
	│  │  Tenant: Lifecycle transitions               │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          HTTP Metrics Endpoint              │          │
	│  │  - Path: /metrics                           │          │
	│  │  - Format: Prometheus text exposition       │          │
	│  │  - Handler: promhttp.Handler()              │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────────┘

# Core Components

Metric Registry:
  - Global Prometheus DefaultRegistry
  - All metrics registered at package init
  - Thread-safe for concurrent updates

Collector:
  - Samples a *relib.TableStore on a fixed interval
  - Updates table count, per-table row count, and metadata version gauges

Timer Helper:
  - Convenience wrapper for timing operations
  - Start timer, observe duration to a histogram (optionally with labels)

# Metrics Catalog

Store Metrics:

driftstore_tables_total:
  - Type: Gauge
  - Description: Total number of user tables in the loaded store

driftstore_rows_total{table}:
  - Type: Gauge
  - Description: Row count per table
  - Labels: table

driftstore_store_version:
  - Type: Gauge
  - Description: Current metadata version of the loaded store

Integrity Metrics:

driftstore_integrity_check_duration_seconds:
  - Type: Histogram
  - Description: Time taken to run a full integrity check

driftstore_integrity_check_failures_total{kind}:
  - Type: Counter
  - Description: Failed integrity checks by failure kind (checksum, schema, ...)

driftstore_constraint_violations_total{table, kind}:
  - Type: Counter
  - Description: Constraint violations by table and constraint kind (pk, unique, fk, schema)

Reconciliation Metrics:

driftstore_push_total{reason}:
  - Type: Counter
  - Description: Push attempts by outcome reason (pushed_to_origin,
    push_skipped_crc_match, checksum_differ)

driftstore_pull_total{reason}:
  - Type: Counter
  - Description: Pull attempts by outcome reason (pulled_from_origin,
    pull_skipped_crc_match, local_is_modified)

driftstore_push_duration_seconds / driftstore_pull_duration_seconds:
  - Type: Histogram
  - Description: Wall-clock time for a push or pull attempt

Backend Metrics:

driftstore_backend_operations_total{scheme, op, result}:
  - Type: Counter
  - Description: SaveData/LoadData calls by scheme, operation, and result

driftstore_backend_operation_duration_seconds{scheme, op}:
  - Type: Histogram
  - Description: Backend operation duration by scheme and operation

Transaction Metrics:

driftstore_transactions_total{flavor, outcome}:
  - Type: Counter
  - Description: Completed transaction scopes by flavor (transaction, stage)
    and outcome (committed, rolled_back)

driftstore_transaction_duration_seconds{flavor}:
  - Type: Histogram
  - Description: Transaction scope duration by flavor

Tenant Metrics:

driftstore_tenant_transitions_total{state}:
  - Type: Counter
  - Description: Tenant lifecycle transitions by target state

driftstore_tenant_provisioning_callback_duration_seconds:
  - Type: Histogram
  - Description: Time taken by a single provisioning callback invocation

# Usage

Updating Gauge Metrics:

	import "github.com/driftstore/driftstore/pkg/metrics"

	metrics.TablesTotal.Set(12)
	metrics.RowsTotal.WithLabelValues("tenant").Set(42)

Updating Counter Metrics:

	metrics.PushTotal.WithLabelValues("pushed_to_origin").Inc()

Recording Histogram Observations:

	timer := metrics.NewTimer()
	// ... perform a push ...
	timer.ObserveDuration(metrics.PushDuration)

Using Timer with Labels:

	timer := metrics.NewTimer()
	// ... save to a backend ...
	timer.ObserveDurationVec(metrics.BackendOperationDuration, "file", "save")

Complete Example:

	package main

	import (
		"net/http"

		"github.com/driftstore/driftstore/pkg/metrics"
	)

	func main() {
		collector := metrics.NewCollector(store)
		collector.Start()
		defer collector.Stop()

		http.Handle("/metrics", metrics.Handler())
		http.ListenAndServe(":9090", nil)
	}

# Integration Points

This package integrates with:

  - pkg/relib: Collector reads table count, per-table row counts, and the
    metadata version from a *relib.TableStore
  - Prometheus: Scrapes /metrics endpoint

Only the gauges Collector updates (TablesTotal, RowsTotal, StoreVersion)
receive values inside this module. The push/pull, backend, transaction,
tenant and integrity metrics are declared and registered, but no package
in this module records them.

# Design Patterns

Package Init Registration:
  - All metrics registered in init()
  - MustRegister panics on duplicate registration

Label Discipline:
  - Use WithLabelValues for cardinality-bounded labels
  - Avoid high-cardinality labels (row keys, timestamps)
  - Keep label count low

Timer Pattern:
  - Create a timer at operation start
  - Call ObserveDuration or ObserveDurationVec when the operation completes

Global Metrics:
  - Package-level variables for all metrics
  - Accessible from any driftstore package
  - No initialization required by callers

# See Also

  - Prometheus documentation: https://prometheus.io/docs/
  - Prometheus client library: https://github.com/prometheus/client_golang
*/
package metrics
