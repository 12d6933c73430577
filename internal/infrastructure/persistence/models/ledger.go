package models

import (
	"time"

	"github.com/buildstock/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptLotModel is the persistence model for the ReceiptLot entity.
// Rows are insert-only.
type ReceiptLotModel struct {
	BaseModel
	MaterialID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_receipt_lots_fifo,priority:1"`
	GRNNumber    string          `gorm:"column:grn_number;type:varchar(30);not null;uniqueIndex"`
	ReceivedAt   time.Time       `gorm:"not null;index:idx_receipt_lots_fifo,priority:2"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Rate         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SupplierName string          `gorm:"type:varchar(200)"`
	InvoiceRef   string          `gorm:"type:varchar(100)"`
	ReceivedBy   string          `gorm:"type:varchar(100)"`
	Remarks      string          `gorm:"type:text"`
	EntrySeq     int64           `gorm:"not null;uniqueIndex;index:idx_receipt_lots_fifo,priority:3"`
}

// TableName returns the table name for GORM
func (ReceiptLotModel) TableName() string {
	return "receipt_lots"
}

// ToDomain converts the persistence model to a domain ReceiptLot entity.
func (m *ReceiptLotModel) ToDomain() *inventory.ReceiptLot {
	return &inventory.ReceiptLot{
		BaseEntity:   m.BaseModel.ToDomain(),
		MaterialID:   m.MaterialID,
		GRNNumber:    m.GRNNumber,
		ReceivedAt:   m.ReceivedAt,
		Quantity:     m.Quantity,
		Rate:         m.Rate,
		TotalAmount:  m.TotalAmount,
		SupplierName: m.SupplierName,
		InvoiceRef:   m.InvoiceRef,
		ReceivedBy:   m.ReceivedBy,
		Remarks:      m.Remarks,
		EntrySeq:     m.EntrySeq,
	}
}

// ReceiptLotModelFromDomain creates a new persistence model from a domain ReceiptLot entity.
func ReceiptLotModelFromDomain(l *inventory.ReceiptLot) *ReceiptLotModel {
	m := &ReceiptLotModel{
		MaterialID:   l.MaterialID,
		GRNNumber:    l.GRNNumber,
		ReceivedAt:   l.ReceivedAt,
		Quantity:     l.Quantity,
		Rate:         l.Rate,
		TotalAmount:  l.TotalAmount,
		SupplierName: l.SupplierName,
		InvoiceRef:   l.InvoiceRef,
		ReceivedBy:   l.ReceivedBy,
		Remarks:      l.Remarks,
		EntrySeq:     l.EntrySeq,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}

// IssueRecordModel is the persistence model for the IssueRecord entity.
type IssueRecordModel struct {
	BaseModel
	MaterialID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	IssueNumber  string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	IssuedAt     time.Time       `gorm:"not null;index"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	WeightedRate decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IssuedTo     string          `gorm:"type:varchar(200);not null"`
	Purpose      string          `gorm:"type:text"`
	ApprovedBy   string          `gorm:"type:varchar(100);not null"`
	EntrySeq     int64           `gorm:"not null;uniqueIndex"`
	// Associations
	Lines []AllocationLineModel `gorm:"foreignKey:IssueID;references:ID"`
}

// TableName returns the table name for GORM
func (IssueRecordModel) TableName() string {
	return "issue_records"
}

// ToDomain converts the persistence model to a domain IssueRecord entity.
// Lines are converted when they were loaded.
func (m *IssueRecordModel) ToDomain() *inventory.IssueRecord {
	issue := &inventory.IssueRecord{
		BaseEntity:   m.BaseModel.ToDomain(),
		MaterialID:   m.MaterialID,
		IssueNumber:  m.IssueNumber,
		IssuedAt:     m.IssuedAt,
		Quantity:     m.Quantity,
		WeightedRate: m.WeightedRate,
		TotalAmount:  m.TotalAmount,
		IssuedTo:     m.IssuedTo,
		Purpose:      m.Purpose,
		ApprovedBy:   m.ApprovedBy,
		EntrySeq:     m.EntrySeq,
	}
	if len(m.Lines) > 0 {
		issue.Lines = make([]inventory.AllocationLine, len(m.Lines))
		for i := range m.Lines {
			issue.Lines[i] = m.Lines[i].ToDomain()
		}
	}
	return issue
}

// IssueRecordModelFromDomain creates a new persistence model, lines included,
// from a domain IssueRecord entity.
func IssueRecordModelFromDomain(i *inventory.IssueRecord) *IssueRecordModel {
	m := &IssueRecordModel{
		MaterialID:   i.MaterialID,
		IssueNumber:  i.IssueNumber,
		IssuedAt:     i.IssuedAt,
		Quantity:     i.Quantity,
		WeightedRate: i.WeightedRate,
		TotalAmount:  i.TotalAmount,
		IssuedTo:     i.IssuedTo,
		Purpose:      i.Purpose,
		ApprovedBy:   i.ApprovedBy,
		EntrySeq:     i.EntrySeq,
		Lines:        make([]AllocationLineModel, len(i.Lines)),
	}
	m.FromDomainBaseEntity(i.BaseEntity)
	for idx := range i.Lines {
		m.Lines[idx] = *AllocationLineModelFromDomain(&i.Lines[idx], i.CreatedAt)
	}
	return m
}

// AllocationLineModel is the persistence model for one lot drawn by an issue.
type AllocationLineModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	IssueID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReceiptLotID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Rate         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt    time.Time       `gorm:"not null"`
	// GRNNumber is filled by joined reads only
	GRNNumber string `gorm:"column:grn_number;->;-:migration"`
}

// TableName returns the table name for GORM
func (AllocationLineModel) TableName() string {
	return "allocation_lines"
}

// ToDomain converts the persistence model to a domain AllocationLine.
func (m *AllocationLineModel) ToDomain() inventory.AllocationLine {
	return inventory.AllocationLine{
		ID:           m.ID,
		IssueID:      m.IssueID,
		ReceiptLotID: m.ReceiptLotID,
		GRNNumber:    m.GRNNumber,
		Quantity:     m.Quantity,
		Rate:         m.Rate,
		Amount:       m.Amount,
	}
}

// AllocationLineModelFromDomain creates a new persistence model from a domain AllocationLine.
func AllocationLineModelFromDomain(l *inventory.AllocationLine, createdAt time.Time) *AllocationLineModel {
	return &AllocationLineModel{
		ID:           l.ID,
		IssueID:      l.IssueID,
		ReceiptLotID: l.ReceiptLotID,
		Quantity:     l.Quantity,
		Rate:         l.Rate,
		Amount:       l.Amount,
		CreatedAt:    createdAt,
	}
}

// DocumentSequenceModel holds the last value handed out for a counter.
// Year is 0 for counters that never reset.
type DocumentSequenceModel struct {
	Name      string    `gorm:"type:varchar(20);primaryKey"`
	Year      int       `gorm:"primaryKey;autoIncrement:false"`
	LastValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentSequenceModel) TableName() string {
	return "document_sequences"
}
