package inventory

import (
	"time"

	"github.com/buildstock/backend/internal/domain/catalog"
	"github.com/buildstock/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordReceiptRequest represents a goods receipt to record
type RecordReceiptRequest struct {
	MaterialID   uuid.UUID
	ReceivedAt   time.Time // defaults to now
	Quantity     decimal.Decimal
	Rate         decimal.Decimal
	SupplierName string
	InvoiceRef   string
	ReceivedBy   string
	Remarks      string
}

// DocumentListFilter filters receipts and issues
type DocumentListFilter struct {
	MaterialID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

// PreviewIssueRequest asks how an issue would be costed
type PreviewIssueRequest struct {
	MaterialID uuid.UUID
	Quantity   decimal.Decimal
}

// CreateIssueRequest represents an issue of material to a project
type CreateIssueRequest struct {
	MaterialID uuid.UUID
	Quantity   decimal.Decimal
	IssuedTo   string
	Purpose    string
	ApprovedBy string
}

// MaterialRef identifies the material a document belongs to
type MaterialRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Unit string    `json:"unit"`
}

// ReceiptResponse represents a receipt lot in API responses
type ReceiptResponse struct {
	ID           uuid.UUID       `json:"id"`
	GRNNumber    string          `json:"grn_number"`
	Material     MaterialRef     `json:"material"`
	ReceivedAt   time.Time       `json:"received_at"`
	Quantity     decimal.Decimal `json:"quantity"`
	Rate         decimal.Decimal `json:"rate"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	SupplierName string          `json:"supplier_name"`
	InvoiceRef   string          `json:"invoice_ref"`
	ReceivedBy   string          `json:"received_by"`
	Remarks      string          `json:"remarks"`
	CreatedAt    time.Time       `json:"created_at"`
}

// LotAllocationResponse is an issue line drawing on a receipt
type LotAllocationResponse struct {
	IssueID     uuid.UUID       `json:"issue_id"`
	IssueNumber string          `json:"issue_number"`
	IssuedAt    time.Time       `json:"issued_at"`
	IssuedTo    string          `json:"issued_to"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// ReceiptDetailResponse is a receipt with what has been drawn from it
type ReceiptDetailResponse struct {
	ReceiptResponse
	Consumed    decimal.Decimal         `json:"consumed"`
	Remaining   decimal.Decimal         `json:"remaining"`
	Allocations []LotAllocationResponse `json:"allocations"`
}

// PlanLineResponse is one lot's share of a planned issue
type PlanLineResponse struct {
	ReceiptLotID uuid.UUID       `json:"receipt_lot_id"`
	GRNNumber    string          `json:"grn_number"`
	Quantity     decimal.Decimal `json:"quantity"`
	Rate         decimal.Decimal `json:"rate"`
	Amount       decimal.Decimal `json:"amount"`
}

// AllocationPlanResponse is the FIFO preview of an issue
type AllocationPlanResponse struct {
	MaterialID          uuid.UUID          `json:"material_id"`
	RequestedQuantity   decimal.Decimal    `json:"requested_quantity"`
	AvailableStock      decimal.Decimal    `json:"available_stock"`
	CanFulfill          bool               `json:"can_fulfill"`
	Shortfall           decimal.Decimal    `json:"shortfall"`
	Lines               []PlanLineResponse `json:"lines"`
	TotalQuantity       decimal.Decimal    `json:"total_quantity"`
	TotalAmount         decimal.Decimal    `json:"total_amount"`
	WeightedAverageRate decimal.Decimal    `json:"weighted_average_rate"`
}

// AllocationLineResponse is a persisted allocation line
type AllocationLineResponse struct {
	ID           uuid.UUID       `json:"id"`
	ReceiptLotID uuid.UUID       `json:"receipt_lot_id"`
	GRNNumber    string          `json:"grn_number"`
	Quantity     decimal.Decimal `json:"quantity"`
	Rate         decimal.Decimal `json:"rate"`
	Amount       decimal.Decimal `json:"amount"`
}

// IssueResponse represents an issue in API responses. Lines are only
// populated on the detail view and after creation.
type IssueResponse struct {
	ID           uuid.UUID                `json:"id"`
	IssueNumber  string                   `json:"issue_number"`
	Material     MaterialRef              `json:"material"`
	IssuedAt     time.Time                `json:"issued_at"`
	Quantity     decimal.Decimal          `json:"quantity"`
	WeightedRate decimal.Decimal          `json:"weighted_rate"`
	TotalAmount  decimal.Decimal          `json:"total_amount"`
	IssuedTo     string                   `json:"issued_to"`
	Purpose      string                   `json:"purpose"`
	ApprovedBy   string                   `json:"approved_by"`
	CreatedAt    time.Time                `json:"created_at"`
	Lines        []AllocationLineResponse `json:"lines,omitempty"`
}

// StockLevelResponse is one row of the current stock report
type StockLevelResponse struct {
	MaterialID     uuid.UUID       `json:"material_id"`
	MaterialName   string          `json:"material_name"`
	Unit           string          `json:"unit"`
	Category       string          `json:"category"`
	MinStockLevel  decimal.Decimal `json:"min_stock_level"`
	TotalReceived  decimal.Decimal `json:"total_received"`
	TotalIssued    decimal.Decimal `json:"total_issued"`
	AvailableStock decimal.Decimal `json:"available_stock"`
	ReceivedValue  decimal.Decimal `json:"received_value"`
	IssuedValue    decimal.Decimal `json:"issued_value"`
	StockValue     decimal.Decimal `json:"stock_value"`
	IsLowStock     bool            `json:"is_low_stock"`
}

// MovementResponse is one receipt or issue in a movement history
type MovementResponse struct {
	Type           string          `json:"type"`
	ID             uuid.UUID       `json:"id"`
	Date           time.Time       `json:"date"`
	Reference      string          `json:"reference"`
	Quantity       decimal.Decimal `json:"quantity"`
	Rate           decimal.Decimal `json:"rate"`
	Amount         decimal.Decimal `json:"amount"`
	RunningBalance decimal.Decimal `json:"running_balance"`
	Party          string          `json:"party"`
}

// MovementHistoryResponse is the movement history of one material
type MovementHistoryResponse struct {
	Material  MaterialRef        `json:"material"`
	Movements []MovementResponse `json:"movements"`
}

// DashboardSummaryResponse holds the headline numbers of the dashboard
type DashboardSummaryResponse struct {
	TotalMaterials  int64                `json:"total_materials"`
	TotalReceipts   int64                `json:"total_receipts"`
	TotalIssues     int64                `json:"total_issues"`
	TotalStockValue decimal.Decimal      `json:"total_stock_value"`
	LowStockCount   int                  `json:"low_stock_count"`
	LowStockItems   []StockLevelResponse `json:"low_stock_items"`
	RecentReceipts  []ReceiptResponse    `json:"recent_receipts"`
	RecentIssues    []IssueResponse      `json:"recent_issues"`
}

// ToMaterialRef converts a material to its reference form
func ToMaterialRef(m *catalog.Material) MaterialRef {
	if m == nil {
		return MaterialRef{}
	}
	return MaterialRef{ID: m.ID, Name: m.Name, Unit: m.Unit}
}

// ToReceiptResponse converts a receipt lot to ReceiptResponse
func ToReceiptResponse(lot *inventory.ReceiptLot, m *catalog.Material) ReceiptResponse {
	ref := ToMaterialRef(m)
	ref.ID = lot.MaterialID
	return ReceiptResponse{
		ID:           lot.ID,
		GRNNumber:    lot.GRNNumber,
		Material:     ref,
		ReceivedAt:   lot.ReceivedAt,
		Quantity:     lot.Quantity,
		Rate:         lot.Rate,
		TotalAmount:  lot.TotalAmount,
		SupplierName: lot.SupplierName,
		InvoiceRef:   lot.InvoiceRef,
		ReceivedBy:   lot.ReceivedBy,
		Remarks:      lot.Remarks,
		CreatedAt:    lot.CreatedAt,
	}
}

// ToAllocationPlanResponse converts a plan to AllocationPlanResponse
func ToAllocationPlanResponse(plan inventory.AllocationPlan) AllocationPlanResponse {
	lines := make([]PlanLineResponse, len(plan.Lines))
	for i, l := range plan.Lines {
		lines[i] = PlanLineResponse{
			ReceiptLotID: l.LotID,
			GRNNumber:    l.GRNNumber,
			Quantity:     l.Quantity,
			Rate:         l.Rate,
			Amount:       l.Amount,
		}
	}
	return AllocationPlanResponse{
		MaterialID:          plan.MaterialID,
		RequestedQuantity:   plan.RequestedQuantity,
		AvailableStock:      plan.AvailableStock,
		CanFulfill:          plan.CanFulfill,
		Shortfall:           plan.Shortfall(),
		Lines:               lines,
		TotalQuantity:       plan.TotalQuantity,
		TotalAmount:         plan.TotalAmount,
		WeightedAverageRate: plan.WeightedAverageRate,
	}
}

// ToIssueResponse converts an issue record to IssueResponse
func ToIssueResponse(issue *inventory.IssueRecord, m *catalog.Material) IssueResponse {
	ref := ToMaterialRef(m)
	ref.ID = issue.MaterialID
	response := IssueResponse{
		ID:           issue.ID,
		IssueNumber:  issue.IssueNumber,
		Material:     ref,
		IssuedAt:     issue.IssuedAt,
		Quantity:     issue.Quantity,
		WeightedRate: issue.WeightedRate,
		TotalAmount:  issue.TotalAmount,
		IssuedTo:     issue.IssuedTo,
		Purpose:      issue.Purpose,
		ApprovedBy:   issue.ApprovedBy,
		CreatedAt:    issue.CreatedAt,
	}
	if len(issue.Lines) > 0 {
		response.Lines = make([]AllocationLineResponse, len(issue.Lines))
		for i, l := range issue.Lines {
			response.Lines[i] = AllocationLineResponse{
				ID:           l.ID,
				ReceiptLotID: l.ReceiptLotID,
				GRNNumber:    l.GRNNumber,
				Quantity:     l.Quantity,
				Rate:         l.Rate,
				Amount:       l.Amount,
			}
		}
	}
	return response
}

// ToStockLevelResponse converts a stock level row
func ToStockLevelResponse(level inventory.StockLevel) StockLevelResponse {
	return StockLevelResponse{
		MaterialID:     level.Material.ID,
		MaterialName:   level.Material.Name,
		Unit:           level.Material.Unit,
		Category:       level.Material.Category,
		MinStockLevel:  level.Material.MinStockLevel,
		TotalReceived:  level.TotalReceived,
		TotalIssued:    level.TotalIssued,
		AvailableStock: level.AvailableStock,
		ReceivedValue:  level.ReceivedValue,
		IssuedValue:    level.IssuedValue,
		StockValue:     level.StockValue,
		IsLowStock:     level.IsLowStock,
	}
}

// ToMovementResponse converts a movement
func ToMovementResponse(m inventory.Movement) MovementResponse {
	return MovementResponse{
		Type:           string(m.Type),
		ID:             m.ID,
		Date:           m.Date,
		Reference:      m.Reference,
		Quantity:       m.Quantity,
		Rate:           m.Rate,
		Amount:         m.Amount,
		RunningBalance: m.RunningBalance,
		Party:          m.Party,
	}
}

func (f DocumentListFilter) toDomain() inventory.DocumentFilter {
	return inventory.DocumentFilter{
		MaterialID: f.MaterialID,
		Range:      dateRange(f.StartDate, f.EndDate),
	}
}
