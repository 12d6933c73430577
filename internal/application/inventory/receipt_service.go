package inventory

import (
	"context"
	"time"

	"github.com/buildstock/backend/internal/domain/catalog"
	"github.com/buildstock/backend/internal/domain/inventory"
	"github.com/buildstock/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReceiptService records goods receipts. Every receipt becomes a new lot.
type ReceiptService struct {
	materialRepo catalog.MaterialRepository
	lotRepo      inventory.ReceiptLotRepository
	txScope      TransactionScope
	format       inventory.NumberFormat
	metrics      *telemetry.InventoryMetrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(
	materialRepo catalog.MaterialRepository,
	lotRepo inventory.ReceiptLotRepository,
	txScope TransactionScope,
	format inventory.NumberFormat,
	logger *zap.Logger,
) *ReceiptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if format.Prefix == "" {
		format.Prefix = inventory.ReceiptPrefix
	}
	return &ReceiptService{
		materialRepo: materialRepo,
		lotRepo:      lotRepo,
		txScope:      txScope,
		format:       format,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetMetrics sets the inventory metrics recorder (optional)
func (s *ReceiptService) SetMetrics(m *telemetry.InventoryMetrics) {
	s.metrics = m
}

// SetClock overrides the time source
func (s *ReceiptService) SetClock(now func() time.Time) {
	s.now = now
}

// RecordReceipt stores a new lot with the next GRN number of its receipt year
func (s *ReceiptService) RecordReceipt(ctx context.Context, req RecordReceiptRequest) (*ReceiptResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receipt", "record",
		telemetry.WithAttribute(telemetry.SpanAttrMaterialID, req.MaterialID.String()),
	)
	defer span.End()

	receivedAt := req.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = s.now()
	}
	lot, err := inventory.NewReceiptLot(req.MaterialID, receivedAt, req.Quantity, req.Rate, inventory.ReceiptDetails{
		SupplierName: req.SupplierName,
		InvoiceRef:   req.InvoiceRef,
		ReceivedBy:   req.ReceivedBy,
		Remarks:      req.Remarks,
	})
	if err != nil {
		return nil, err
	}

	var material *catalog.Material
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		material, err = repos.MaterialRepo().FindByID(ctx, lot.MaterialID)
		if err != nil {
			return err
		}

		year := lot.ReceivedAt.Year()
		floor, err := repos.LotRepo().HighestNumber(ctx, year)
		if err != nil {
			return err
		}
		seq, err := repos.SequenceRepo().Next(ctx, inventory.ReceiptPrefix, year, floor)
		if err != nil {
			return err
		}
		entrySeq, err := repos.SequenceRepo().Next(ctx, inventory.LedgerSequence, 0, 0)
		if err != nil {
			return err
		}

		lot.AssignNumber(s.format.Format(year, seq), entrySeq)
		return repos.LotRepo().Create(ctx, lot)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrGRNNumber, lot.GRNNumber)
	telemetry.SetOK(span)
	if s.metrics != nil {
		s.metrics.RecordReceipt(ctx, lot.Quantity, lot.TotalAmount)
	}
	s.logger.Info("receipt recorded",
		zap.String("grn_number", lot.GRNNumber),
		zap.String("material_id", lot.MaterialID.String()),
		zap.String("quantity", lot.Quantity.String()),
		zap.String("rate", lot.Rate.String()),
	)

	response := ToReceiptResponse(lot, material)
	return &response, nil
}

// GetByID returns a receipt with the issue lines drawing on it
func (s *ReceiptService) GetByID(ctx context.Context, id uuid.UUID) (*ReceiptDetailResponse, error) {
	lot, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	material, err := s.materialRepo.FindByID(ctx, lot.MaterialID)
	if err != nil {
		return nil, err
	}
	allocations, err := s.lotRepo.FindAllocations(ctx, id)
	if err != nil {
		return nil, err
	}

	consumed := decimal.Zero
	lines := make([]LotAllocationResponse, len(allocations))
	for i, a := range allocations {
		consumed = consumed.Add(a.Quantity)
		lines[i] = LotAllocationResponse{
			IssueID:     a.IssueID,
			IssueNumber: a.IssueNumber,
			IssuedAt:    a.IssuedAt,
			IssuedTo:    a.IssuedTo,
			Quantity:    a.Quantity,
			Rate:        a.Rate,
			Amount:      a.Amount,
		}
	}

	return &ReceiptDetailResponse{
		ReceiptResponse: ToReceiptResponse(lot, material),
		Consumed:        consumed,
		Remaining:       lot.Quantity.Sub(consumed),
		Allocations:     lines,
	}, nil
}

// List returns receipts newest first
func (s *ReceiptService) List(ctx context.Context, filter DocumentListFilter) ([]ReceiptResponse, error) {
	domainFilter := filter.toDomain()
	if err := domainFilter.Range.Validate(); err != nil {
		return nil, err
	}
	return s.list(ctx, domainFilter)
}

func (s *ReceiptService) list(ctx context.Context, filter inventory.DocumentFilter) ([]ReceiptResponse, error) {
	lots, err := s.lotRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(lots))
	for i := range lots {
		ids[i] = lots[i].MaterialID
	}
	materials, err := loadMaterials(ctx, s.materialRepo, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]ReceiptResponse, len(lots))
	for i := range lots {
		responses[i] = ToReceiptResponse(&lots[i], materials[lots[i].MaterialID])
	}
	return responses, nil
}
