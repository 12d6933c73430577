package inventory

import (
	"context"
	"io"
	"time"

	"github.com/buildstock/backend/internal/domain/catalog"
	"github.com/buildstock/backend/internal/domain/inventory"
	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockMaterialRepository is a mock implementation of catalog.MaterialRepository
type MockMaterialRepository struct {
	mock.Mock
}

func (m *MockMaterialRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Material, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Material), args.Error(1)
}

func (m *MockMaterialRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Material, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Material), args.Error(1)
}

func (m *MockMaterialRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Material, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Material), args.Error(1)
}

func (m *MockMaterialRepository) FindByName(ctx context.Context, name string) (*catalog.Material, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Material), args.Error(1)
}

func (m *MockMaterialRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Material, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Material), args.Error(1)
}

func (m *MockMaterialRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMaterialRepository) Save(ctx context.Context, material *catalog.Material) error {
	args := m.Called(ctx, material)
	return args.Error(0)
}

// MockReceiptLotRepository is a mock implementation of inventory.ReceiptLotRepository
type MockReceiptLotRepository struct {
	mock.Mock
}

func (m *MockReceiptLotRepository) ListOpenLots(ctx context.Context, materialID uuid.UUID) ([]inventory.OpenLot, error) {
	args := m.Called(ctx, materialID)
	return args.Get(0).([]inventory.OpenLot), args.Error(1)
}

func (m *MockReceiptLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.ReceiptLot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.ReceiptLot), args.Error(1)
}

func (m *MockReceiptLotRepository) FindAll(ctx context.Context, filter inventory.DocumentFilter) ([]inventory.ReceiptLot, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.ReceiptLot), args.Error(1)
}

func (m *MockReceiptLotRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReceiptLotRepository) Create(ctx context.Context, lot *inventory.ReceiptLot) error {
	args := m.Called(ctx, lot)
	return args.Error(0)
}

func (m *MockReceiptLotRepository) HighestNumber(ctx context.Context, year int) (int64, error) {
	args := m.Called(ctx, year)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReceiptLotRepository) FindAllocations(ctx context.Context, lotID uuid.UUID) ([]inventory.LotAllocation, error) {
	args := m.Called(ctx, lotID)
	return args.Get(0).([]inventory.LotAllocation), args.Error(1)
}

func (m *MockReceiptLotRepository) FindOverdrawn(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockIssueRecordRepository is a mock implementation of inventory.IssueRecordRepository
type MockIssueRecordRepository struct {
	mock.Mock
}

func (m *MockIssueRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.IssueRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.IssueRecord), args.Error(1)
}

func (m *MockIssueRecordRepository) FindAll(ctx context.Context, filter inventory.DocumentFilter) ([]inventory.IssueRecord, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.IssueRecord), args.Error(1)
}

func (m *MockIssueRecordRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockIssueRecordRepository) Create(ctx context.Context, issue *inventory.IssueRecord) error {
	args := m.Called(ctx, issue)
	return args.Error(0)
}

func (m *MockIssueRecordRepository) HighestNumber(ctx context.Context, year int) (int64, error) {
	args := m.Called(ctx, year)
	return args.Get(0).(int64), args.Error(1)
}

// MockSequenceRepository is a mock implementation of inventory.SequenceRepository
type MockSequenceRepository struct {
	mock.Mock
}

func (m *MockSequenceRepository) Next(ctx context.Context, name string, year int, floor int64) (int64, error) {
	args := m.Called(ctx, name, year, floor)
	return args.Get(0).(int64), args.Error(1)
}

// MockStockReportRepository is a mock implementation of inventory.StockReportRepository
type MockStockReportRepository struct {
	mock.Mock
}

func (m *MockStockReportRepository) TotalsByMaterial(ctx context.Context) (map[uuid.UUID]inventory.MaterialTotals, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[uuid.UUID]inventory.MaterialTotals), args.Error(1)
}

func (m *MockStockReportRepository) TotalsForMaterial(ctx context.Context, materialID uuid.UUID) (inventory.MaterialTotals, error) {
	args := m.Called(ctx, materialID)
	return args.Get(0).(inventory.MaterialTotals), args.Error(1)
}

// MockMaterialLocker is a mock implementation of MaterialLocker
type MockMaterialLocker struct {
	mock.Mock
	released int
}

func (m *MockMaterialLocker) Lock(ctx context.Context, materialID uuid.UUID) (func(), error) {
	args := m.Called(ctx, materialID)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func() { m.released++ }, nil
}

// MockStockReportWriter is a mock implementation of StockReportWriter
type MockStockReportWriter struct {
	mock.Mock
}

func (m *MockStockReportWriter) WriteStockReport(w io.Writer, rows []StockLevelResponse, generatedAt time.Time) error {
	args := m.Called(w, rows, generatedAt)
	return args.Error(0)
}

func (m *MockStockReportWriter) ContentType() string   { return "text/csv" }
func (m *MockStockReportWriter) FileExtension() string { return ".csv" }

// fixedClock returns a clock stuck at t
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestMaterial(name string, minStock int64) *catalog.Material {
	m, err := catalog.NewMaterial(name, "bag", "Binding", decimal.NewFromInt(minStock))
	if err != nil {
		panic(err)
	}
	return m
}

// newOpenLot builds an open lot with nothing consumed
func newOpenLot(materialID uuid.UUID, grn string, seq int64, receivedAt time.Time, qty, rate int64) inventory.OpenLot {
	lot, err := inventory.NewReceiptLot(materialID, receivedAt, decimal.NewFromInt(qty), decimal.NewFromInt(rate), inventory.ReceiptDetails{})
	if err != nil {
		panic(err)
	}
	lot.AssignNumber(grn, seq)
	return inventory.NewOpenLot(*lot, decimal.Zero)
}
