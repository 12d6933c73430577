package telemetry

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// InventoryMetrics records stock ledger activity: receipts, issues, rejected
// issues and commit conflicts.
type InventoryMetrics struct {
	logger *zap.Logger

	documentsTotal  *Counter
	quantityTotal   *FloatCounter
	valueTotal      *FloatCounter
	rejectedTotal   *Counter
	conflictTotal   *Counter
	commitDuration  *Histogram
	lowStockCurrent *Gauge
}

// InventoryMetricsConfig holds configuration for inventory metrics.
type InventoryMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// Document types used as metric labels
const (
	DocumentReceipt = "receipt"
	DocumentIssue   = "issue"
)

// NewInventoryMetrics creates the inventory instruments on the given meter.
func NewInventoryMetrics(cfg InventoryMetricsConfig) (*InventoryMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &InventoryMetrics{logger: logger}
	var err error

	if m.documentsTotal, err = NewCounter(cfg.Meter,
		"buildstock_documents_total", "Receipts and issues recorded", "{documents}"); err != nil {
		return nil, err
	}
	if m.quantityTotal, err = NewFloatCounter(cfg.Meter,
		"buildstock_quantity_total", "Quantity received or issued, in material units", "{units}"); err != nil {
		return nil, err
	}
	if m.valueTotal, err = NewFloatCounter(cfg.Meter,
		"buildstock_value_total", "Value received or issued", "{currency}"); err != nil {
		return nil, err
	}
	if m.rejectedTotal, err = NewCounter(cfg.Meter,
		"buildstock_issue_rejected_total", "Issues that were not committed", "{issues}"); err != nil {
		return nil, err
	}
	if m.conflictTotal, err = NewCounter(cfg.Meter,
		"buildstock_issue_commit_conflicts_total", "Issue commit attempts lost to a concurrent writer", "{attempts}"); err != nil {
		return nil, err
	}
	if m.commitDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "buildstock_issue_commit_duration_seconds",
		Description: "Time to preview, allocate and persist an issue",
		Unit:        "s",
		Boundaries:  CommitDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.lowStockCurrent, err = NewGauge(cfg.Meter,
		"buildstock_low_stock_materials", "Materials below their minimum stock level", "{materials}"); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordReceipt records a new receipt lot
func (m *InventoryMetrics) RecordReceipt(ctx context.Context, quantity, amount decimal.Decimal) {
	m.recordDocument(ctx, DocumentReceipt, quantity, amount)
}

// RecordIssueCreated records a committed issue
func (m *InventoryMetrics) RecordIssueCreated(ctx context.Context, quantity, amount decimal.Decimal) {
	m.recordDocument(ctx, DocumentIssue, quantity, amount)
}

func (m *InventoryMetrics) recordDocument(ctx context.Context, doc string, quantity, amount decimal.Decimal) {
	m.documentsTotal.Inc(ctx, AttrDocument.String(doc))
	m.quantityTotal.Add(ctx, quantity.InexactFloat64(), AttrDocument.String(doc))
	m.valueTotal.Add(ctx, amount.InexactFloat64(), AttrDocument.String(doc))
}

// RecordIssueRejected records an issue that failed, labelled by error category
func (m *InventoryMetrics) RecordIssueRejected(ctx context.Context, category string) {
	m.rejectedTotal.Inc(ctx, AttrCategory.String(category))
}

// RecordCommitConflict records one lost commit attempt
func (m *InventoryMetrics) RecordCommitConflict(ctx context.Context) {
	m.conflictTotal.Inc(ctx)
}

// RecordCommitDuration records how long CreateIssue took end to end
func (m *InventoryMetrics) RecordCommitDuration(ctx context.Context, d time.Duration, outcome string) {
	m.commitDuration.RecordDuration(ctx, d, AttrOutcome.String(outcome))
}

// RecordLowStockCount records how many materials are below threshold
func (m *InventoryMetrics) RecordLowStockCount(ctx context.Context, count int64) {
	m.lowStockCurrent.Record(ctx, count)
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewInventoryMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
