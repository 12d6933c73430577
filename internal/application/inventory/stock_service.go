package inventory

import (
	"context"
	"io"
	"time"

	"github.com/buildstock/backend/internal/domain/catalog"
	"github.com/buildstock/backend/internal/domain/inventory"
	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/buildstock/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// dashboardRecentLimit is how many recent receipts and issues the dashboard shows
const dashboardRecentLimit = 5

// StockReportWriter renders the current stock report into a file format
type StockReportWriter interface {
	WriteStockReport(w io.Writer, rows []StockLevelResponse, generatedAt time.Time) error
	ContentType() string
	FileExtension() string
}

// StockService derives stock positions, valuations and histories from the ledger
type StockService struct {
	materialRepo catalog.MaterialRepository
	lotRepo      inventory.ReceiptLotRepository
	issueRepo    inventory.IssueRecordRepository
	stockRepo    inventory.StockReportRepository
	reportWriter StockReportWriter
	metrics      *telemetry.InventoryMetrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewStockService creates a new StockService
func NewStockService(
	materialRepo catalog.MaterialRepository,
	lotRepo inventory.ReceiptLotRepository,
	issueRepo inventory.IssueRecordRepository,
	stockRepo inventory.StockReportRepository,
	logger *zap.Logger,
) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{
		materialRepo: materialRepo,
		lotRepo:      lotRepo,
		issueRepo:    issueRepo,
		stockRepo:    stockRepo,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetReportWriter sets the stock report exporter (optional)
func (s *StockService) SetReportWriter(w StockReportWriter) {
	s.reportWriter = w
}

// SetMetrics sets the inventory metrics recorder (optional)
func (s *StockService) SetMetrics(m *telemetry.InventoryMetrics) {
	s.metrics = m
}

// AvailableStock returns Σ received − Σ issued for one material
func (s *StockService) AvailableStock(ctx context.Context, materialID uuid.UUID) (decimal.Decimal, error) {
	if _, err := s.materialRepo.FindByID(ctx, materialID); err != nil {
		return decimal.Zero, err
	}
	totals, err := s.stockRepo.TotalsForMaterial(ctx, materialID)
	if err != nil {
		return decimal.Zero, err
	}
	return totals.ReceivedQty.Sub(totals.IssuedQty), nil
}

// StockReport returns one row per material, ordered by name
func (s *StockService) StockReport(ctx context.Context) ([]StockLevelResponse, error) {
	levels, err := s.stockLevels(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]StockLevelResponse, len(levels))
	lowStock := 0
	for i, level := range levels {
		rows[i] = ToStockLevelResponse(level)
		if level.IsLowStock {
			lowStock++
		}
	}
	if s.metrics != nil {
		s.metrics.RecordLowStockCount(ctx, int64(lowStock))
	}
	return rows, nil
}

// ExportStockReport writes the current stock report with the configured writer
func (s *StockService) ExportStockReport(ctx context.Context, w io.Writer) error {
	if s.reportWriter == nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Stock report export is not configured")
	}
	rows, err := s.StockReport(ctx)
	if err != nil {
		return err
	}
	if err := s.reportWriter.WriteStockReport(w, rows, s.now()); err != nil {
		return shared.NewPersistenceError("export stock report", err)
	}
	return nil
}

// ExportFormat returns content type and file extension of the export
func (s *StockService) ExportFormat() (contentType, extension string) {
	if s.reportWriter == nil {
		return "", ""
	}
	return s.reportWriter.ContentType(), s.reportWriter.FileExtension()
}

// MovementHistory lists receipts and issues of a material in ledger order
// with a running balance. The balance starts at zero even when a start date is
// given.
func (s *StockService) MovementHistory(ctx context.Context, materialID uuid.UUID, startDate, endDate *time.Time) (*MovementHistoryResponse, error) {
	r := dateRange(startDate, endDate)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	material, err := s.materialRepo.FindByID(ctx, materialID)
	if err != nil {
		return nil, err
	}

	filter := inventory.DocumentFilter{MaterialID: &materialID, Range: r, Chronological: true}
	lots, err := s.lotRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	issues, err := s.issueRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	movements := inventory.BuildMovementHistory(lots, issues)
	response := &MovementHistoryResponse{
		Material:  ToMaterialRef(material),
		Movements: make([]MovementResponse, len(movements)),
	}
	for i, m := range movements {
		response.Movements[i] = ToMovementResponse(m)
	}
	return response, nil
}

// DashboardSummary returns counts, recent documents and low-stock materials
func (s *StockService) DashboardSummary(ctx context.Context) (*DashboardSummaryResponse, error) {
	counts, err := s.counts(ctx)
	if err != nil {
		return nil, err
	}
	levels, err := s.stockLevels(ctx)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummaryResponse{
		TotalMaterials:  counts.Materials,
		TotalReceipts:   counts.Receipts,
		TotalIssues:     counts.Issues,
		TotalStockValue: decimal.Zero,
		LowStockItems:   []StockLevelResponse{},
	}
	for _, level := range levels {
		summary.TotalStockValue = summary.TotalStockValue.Add(level.StockValue)
		if level.IsLowStock {
			summary.LowStockItems = append(summary.LowStockItems, ToStockLevelResponse(level))
		}
	}
	summary.LowStockCount = len(summary.LowStockItems)

	lots, err := s.lotRepo.FindAll(ctx, inventory.DocumentFilter{Limit: dashboardRecentLimit})
	if err != nil {
		return nil, err
	}
	issues, err := s.issueRepo.FindAll(ctx, inventory.DocumentFilter{Limit: dashboardRecentLimit})
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*catalog.Material, len(levels))
	for i := range levels {
		byID[levels[i].Material.ID] = &levels[i].Material
	}
	summary.RecentReceipts = make([]ReceiptResponse, len(lots))
	for i := range lots {
		summary.RecentReceipts[i] = ToReceiptResponse(&lots[i], byID[lots[i].MaterialID])
	}
	summary.RecentIssues = make([]IssueResponse, len(issues))
	for i := range issues {
		summary.RecentIssues[i] = ToIssueResponse(&issues[i], byID[issues[i].MaterialID])
	}
	return summary, nil
}

func (s *StockService) stockLevels(ctx context.Context) ([]inventory.StockLevel, error) {
	materials, err := s.materialRepo.FindAll(ctx, shared.Filter{Filters: map[string]any{}})
	if err != nil {
		return nil, err
	}
	totals, err := s.stockRepo.TotalsByMaterial(ctx)
	if err != nil {
		return nil, err
	}

	levels := make([]inventory.StockLevel, len(materials))
	for i, m := range materials {
		t, ok := totals[m.ID]
		if !ok {
			t = inventory.MaterialTotals{MaterialID: m.ID}
		}
		levels[i] = inventory.NewStockLevel(m, t)
	}
	return levels, nil
}

func (s *StockService) counts(ctx context.Context) (inventory.DashboardCounts, error) {
	var counts inventory.DashboardCounts
	var err error
	if counts.Materials, err = s.materialRepo.Count(ctx, shared.Filter{}); err != nil {
		return counts, err
	}
	if counts.Receipts, err = s.lotRepo.Count(ctx); err != nil {
		return counts, err
	}
	if counts.Issues, err = s.issueRepo.Count(ctx); err != nil {
		return counts, err
	}
	return counts, nil
}
