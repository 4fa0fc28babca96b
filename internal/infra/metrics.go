package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	tradesExecuted atomic.Uint64
	tradesRejected atomic.Uint64
	quoteFetches   atomic.Uint64
	upstreamErrors atomic.Uint64
	broadcastsSent atomic.Uint64

	// Gauges
	activeConnections atomic.Int32
}

// RecordTradeExecuted records a successfully applied buy or sell.
func (m *Metrics) RecordTradeExecuted() {
	m.tradesExecuted.Add(1)
}

// RecordTradeRejected records a trade rejected for insufficient funds.
func (m *Metrics) RecordTradeRejected() {
	m.tradesRejected.Add(1)
}

// RecordQuoteFetch records one live round trip to the market-data provider.
func (m *Metrics) RecordQuoteFetch() {
	m.quoteFetches.Add(1)
}

// RecordUpstreamError records a failed provider call.
func (m *Metrics) RecordUpstreamError() {
	m.upstreamErrors.Add(1)
}

// RecordBroadcast records one fan-out to the real-time clients.
func (m *Metrics) RecordBroadcast() {
	m.broadcastsSent.Add(1)
}

// IncrementConnections increments active websocket connections by 1.
func (m *Metrics) IncrementConnections() {
	m.activeConnections.Add(1)
}

// DecrementConnections decrements active websocket connections by 1.
func (m *Metrics) DecrementConnections() {
	m.activeConnections.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	TradesExecuted    uint64    `json:"trades_executed"`
	TradesRejected    uint64    `json:"trades_rejected"`
	QuoteFetches      uint64    `json:"quote_fetches"`
	UpstreamErrors    uint64    `json:"upstream_errors"`
	BroadcastsSent    uint64    `json:"broadcasts_sent"`
	ActiveConnections int32     `json:"active_connections"`
	Timestamp         time.Time `json:"timestamp"`
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		TradesExecuted:    m.tradesExecuted.Load(),
		TradesRejected:    m.tradesRejected.Load(),
		QuoteFetches:      m.quoteFetches.Load(),
		UpstreamErrors:    m.upstreamErrors.Load(),
		BroadcastsSent:    m.broadcastsSent.Load(),
		ActiveConnections: m.activeConnections.Load(),
		Timestamp:         time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.tradesExecuted.Store(0)
	m.tradesRejected.Store(0)
	m.quoteFetches.Store(0)
	m.upstreamErrors.Store(0)
	m.broadcastsSent.Store(0)
	m.activeConnections.Store(0)
}
