package persistence

import (
	"context"

	"github.com/buildstock/backend/internal/domain/inventory"
	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/buildstock/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockReportRepository aggregates the ledger tables for stock reports
type GormStockReportRepository struct {
	db *gorm.DB
}

// NewGormStockReportRepository creates a new GormStockReportRepository
func NewGormStockReportRepository(db *gorm.DB) *GormStockReportRepository {
	return &GormStockReportRepository{db: db}
}

type ledgerSum struct {
	MaterialID uuid.UUID
	Quantity   decimal.Decimal
	Amount     decimal.Decimal
}

// TotalsByMaterial returns ledger sums for every material with any movement
func (r *GormStockReportRepository) TotalsByMaterial(ctx context.Context) (map[uuid.UUID]inventory.MaterialTotals, error) {
	received, err := r.sums(ctx, &models.ReceiptLotModel{}, nil)
	if err != nil {
		return nil, err
	}
	issued, err := r.sums(ctx, &models.IssueRecordModel{}, nil)
	if err != nil {
		return nil, err
	}
	return mergeTotals(received, issued), nil
}

// TotalsForMaterial returns ledger sums for one material, zero when it has none
func (r *GormStockReportRepository) TotalsForMaterial(ctx context.Context, materialID uuid.UUID) (inventory.MaterialTotals, error) {
	received, err := r.sums(ctx, &models.ReceiptLotModel{}, &materialID)
	if err != nil {
		return inventory.MaterialTotals{}, err
	}
	issued, err := r.sums(ctx, &models.IssueRecordModel{}, &materialID)
	if err != nil {
		return inventory.MaterialTotals{}, err
	}
	if totals, ok := mergeTotals(received, issued)[materialID]; ok {
		return totals, nil
	}
	return zeroTotals(materialID), nil
}

// ledgerRow is the quantity and value of one receipt or issue
type ledgerRow struct {
	MaterialID  uuid.UUID
	Quantity    decimal.Decimal
	TotalAmount decimal.Decimal
}

// sums totals quantity and total_amount of a ledger table by material. Rows
// are added with decimal arithmetic; SQLite would SUM NUMERIC as float.
func (r *GormStockReportRepository) sums(ctx context.Context, model any, materialID *uuid.UUID) ([]ledgerSum, error) {
	query := r.db.WithContext(ctx).Model(model).
		Select("material_id, quantity, total_amount").
		Order("material_id")
	if materialID != nil {
		query = query.Where("material_id = ?", *materialID)
	}
	var rows []ledgerRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, shared.NewPersistenceError("sum ledger", err)
	}

	var sums []ledgerSum
	for _, row := range rows {
		if n := len(sums); n > 0 && sums[n-1].MaterialID == row.MaterialID {
			sums[n-1].Quantity = sums[n-1].Quantity.Add(row.Quantity)
			sums[n-1].Amount = sums[n-1].Amount.Add(row.TotalAmount)
			continue
		}
		sums = append(sums, ledgerSum{MaterialID: row.MaterialID, Quantity: row.Quantity, Amount: row.TotalAmount})
	}
	return sums, nil
}

func zeroTotals(id uuid.UUID) inventory.MaterialTotals {
	return inventory.MaterialTotals{
		MaterialID:    id,
		ReceivedQty:   decimal.Zero,
		ReceivedValue: decimal.Zero,
		IssuedQty:     decimal.Zero,
		IssuedValue:   decimal.Zero,
	}
}

func mergeTotals(received, issued []ledgerSum) map[uuid.UUID]inventory.MaterialTotals {
	totals := make(map[uuid.UUID]inventory.MaterialTotals, len(received))
	for _, s := range received {
		t := zeroTotals(s.MaterialID)
		t.ReceivedQty, t.ReceivedValue = s.Quantity, s.Amount
		totals[s.MaterialID] = t
	}
	for _, s := range issued {
		t, ok := totals[s.MaterialID]
		if !ok {
			t = zeroTotals(s.MaterialID)
		}
		t.IssuedQty, t.IssuedValue = s.Quantity, s.Amount
		totals[s.MaterialID] = t
	}
	return totals
}

// Ensure GormStockReportRepository implements StockReportRepository
var _ inventory.StockReportRepository = (*GormStockReportRepository)(nil)
