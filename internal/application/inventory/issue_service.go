package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/buildstock/backend/internal/domain/catalog"
	"github.com/buildstock/backend/internal/domain/inventory"
	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/buildstock/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultMaxCommitRetries is how often a commit is retried after a concurrency conflict
const DefaultMaxCommitRetries = 2

// IssueConfig holds the tunables of the issue workflow
type IssueConfig struct {
	Format           inventory.NumberFormat
	MaxCommitRetries int
}

// IssueService previews and commits FIFO-costed material issues
type IssueService struct {
	materialRepo catalog.MaterialRepository
	lotLedger    inventory.LotLedger
	issueRepo    inventory.IssueRecordRepository
	txScope      TransactionScope
	locker       MaterialLocker
	metrics      *telemetry.InventoryMetrics
	logger       *zap.Logger
	cfg          IssueConfig
	now          func() time.Time
}

// NewIssueService creates a new IssueService
func NewIssueService(
	materialRepo catalog.MaterialRepository,
	lotLedger inventory.LotLedger,
	issueRepo inventory.IssueRecordRepository,
	txScope TransactionScope,
	cfg IssueConfig,
	logger *zap.Logger,
) *IssueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Format.Prefix == "" {
		cfg.Format.Prefix = inventory.IssuePrefix
	}
	if cfg.MaxCommitRetries < 0 {
		cfg.MaxCommitRetries = 0
	}
	return &IssueService{
		materialRepo: materialRepo,
		lotLedger:    lotLedger,
		issueRepo:    issueRepo,
		txScope:      txScope,
		locker:       NoOpMaterialLocker{},
		logger:       logger,
		cfg:          cfg,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetLocker sets the cross-instance material lock (optional)
func (s *IssueService) SetLocker(locker MaterialLocker) {
	if locker == nil {
		locker = NoOpMaterialLocker{}
	}
	s.locker = locker
}

// SetMetrics sets the inventory metrics recorder (optional)
func (s *IssueService) SetMetrics(m *telemetry.InventoryMetrics) {
	s.metrics = m
}

// SetClock overrides the time source used for issue dates and numbering years
func (s *IssueService) SetClock(now func() time.Time) {
	s.now = now
}

// Preview computes the allocation an issue would make right now. It has no
// side effects; an unfulfillable request yields a plan with CanFulfill false.
func (s *IssueService) Preview(ctx context.Context, req PreviewIssueRequest) (*AllocationPlanResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "issue", "preview",
		telemetry.WithAttribute(telemetry.SpanAttrMaterialID, req.MaterialID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrQuantity, req.Quantity.String()),
	)
	defer span.End()

	_, plan, err := s.preview(ctx, req.MaterialID, req.Quantity)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, "can_fulfill", plan.CanFulfill)
	telemetry.SetOK(span)

	response := ToAllocationPlanResponse(plan)
	return &response, nil
}

// CreateIssue allocates the requested quantity FIFO and persists the issue
// with its allocation lines atomically. Requests above available stock are
// rejected whole with an *inventory.InsufficientStockError.
func (s *IssueService) CreateIssue(ctx context.Context, req CreateIssueRequest) (*IssueResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "issue", "create",
		telemetry.WithAttribute(telemetry.SpanAttrMaterialID, req.MaterialID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrQuantity, req.Quantity.String()),
	)
	defer span.End()
	started := time.Now()

	issue, material, err := s.createIssue(ctx, req)
	if s.metrics != nil {
		s.metrics.RecordCommitDuration(ctx, time.Since(started), outcome(err))
	}
	if err != nil {
		telemetry.RecordError(span, err)
		if s.metrics != nil {
			s.metrics.RecordIssueRejected(ctx, string(shared.CategoryOf(err)))
		}
		s.logRejection(req, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrIssueNumber, issue.IssueNumber,
		telemetry.SpanAttrAmount, issue.TotalAmount.String(),
	)
	telemetry.SetOK(span)
	if s.metrics != nil {
		s.metrics.RecordIssueCreated(ctx, issue.Quantity, issue.TotalAmount)
	}
	s.logger.Info("material issued",
		zap.String("issue_number", issue.IssueNumber),
		zap.String("material_id", issue.MaterialID.String()),
		zap.String("quantity", issue.Quantity.String()),
		zap.String("total_amount", issue.TotalAmount.String()),
		zap.Int("lots", len(issue.Lines)),
	)

	response := ToIssueResponse(issue, material)
	return &response, nil
}

func (s *IssueService) createIssue(ctx context.Context, req CreateIssueRequest) (*inventory.IssueRecord, *catalog.Material, error) {
	if !req.Quantity.IsPositive() {
		return nil, nil, shared.NewValidationError("quantity must be positive")
	}
	if err := inventory.CheckScale("quantity", req.Quantity); err != nil {
		return nil, nil, err
	}
	if req.MaterialID == uuid.Nil {
		return nil, nil, shared.NewValidationError("material is required")
	}
	details := inventory.IssueDetails{
		IssuedTo:   req.IssuedTo,
		Purpose:    req.Purpose,
		ApprovedBy: req.ApprovedBy,
	}
	if err := details.Validate(); err != nil {
		return nil, nil, err
	}

	release, err := s.locker.Lock(ctx, req.MaterialID)
	if err != nil {
		s.logger.Warn("material lock not obtained, relying on database guards",
			zap.String("material_id", req.MaterialID.String()),
			zap.Error(err),
		)
		release = func() {}
	}
	defer release()

	attempts := s.cfg.MaxCommitRetries + 1
	for attempt := 1; ; attempt++ {
		issue, material, err := s.commit(ctx, req, details)
		if err == nil {
			return issue, material, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) || attempt >= attempts || ctx.Err() != nil {
			return nil, nil, err
		}

		if s.metrics != nil {
			s.metrics.RecordCommitConflict(ctx)
		}
		telemetry.AddEvent(telemetry.SpanFromContext(ctx), "commit_retry", telemetry.SpanAttrAttempt, attempt)
		s.logger.Warn("issue commit conflicted, retrying",
			zap.String("material_id", req.MaterialID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}

// commit runs one preview-then-persist attempt
func (s *IssueService) commit(ctx context.Context, req CreateIssueRequest, details inventory.IssueDetails) (*inventory.IssueRecord, *catalog.Material, error) {
	material, preview, err := s.preview(ctx, req.MaterialID, req.Quantity)
	if err != nil {
		return nil, nil, err
	}
	if !preview.CanFulfill {
		return nil, nil, inventory.NewInsufficientStockError(req.Quantity, preview.AvailableStock)
	}

	issuedAt := s.now()
	var issue *inventory.IssueRecord
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.MaterialRepo().FindByIDForUpdate(ctx, req.MaterialID); err != nil {
			return err
		}

		lots, err := repos.LotRepo().ListOpenLots(ctx, req.MaterialID)
		if err != nil {
			return err
		}
		plan, err := inventory.Allocate(req.MaterialID, lots, req.Quantity)
		if err != nil {
			return err
		}
		if !plan.CanFulfill {
			return inventory.NewInsufficientStockError(req.Quantity, plan.AvailableStock)
		}
		if !plan.Equal(preview) {
			return shared.ErrConcurrencyConflict.WithMessage("stock of material %s changed during issue", req.MaterialID)
		}

		issue, err = inventory.NewIssueRecord(plan, issuedAt, details)
		if err != nil {
			return err
		}

		year := issuedAt.Year()
		floor, err := repos.IssueRepo().HighestNumber(ctx, year)
		if err != nil {
			return err
		}
		seq, err := repos.SequenceRepo().Next(ctx, inventory.IssuePrefix, year, floor)
		if err != nil {
			return err
		}
		entrySeq, err := repos.SequenceRepo().Next(ctx, inventory.LedgerSequence, 0, 0)
		if err != nil {
			return err
		}
		issue.AssignNumber(s.cfg.Format.Format(year, seq), entrySeq)

		if err := repos.IssueRepo().Create(ctx, issue); err != nil {
			return err
		}

		overdrawn, err := repos.LotRepo().FindOverdrawn(ctx, plan.LotIDs())
		if err != nil {
			return err
		}
		if len(overdrawn) > 0 {
			return shared.ErrConcurrencyConflict.WithMessage("receipt lot %s overdrawn by concurrent issue", overdrawn[0])
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return issue, material, nil
}

// preview validates the request and allocates against the current open lots
func (s *IssueService) preview(ctx context.Context, materialID uuid.UUID, quantity decimal.Decimal) (*catalog.Material, inventory.AllocationPlan, error) {
	if !quantity.IsPositive() {
		return nil, inventory.AllocationPlan{}, shared.NewValidationError("quantity must be positive")
	}
	if err := inventory.CheckScale("quantity", quantity); err != nil {
		return nil, inventory.AllocationPlan{}, err
	}
	if materialID == uuid.Nil {
		return nil, inventory.AllocationPlan{}, shared.NewValidationError("material is required")
	}

	material, err := s.materialRepo.FindByID(ctx, materialID)
	if err != nil {
		return nil, inventory.AllocationPlan{}, err
	}
	lots, err := s.lotLedger.ListOpenLots(ctx, materialID)
	if err != nil {
		return nil, inventory.AllocationPlan{}, err
	}
	plan, err := inventory.Allocate(materialID, lots, quantity)
	if err != nil {
		return nil, inventory.AllocationPlan{}, err
	}
	return material, plan, nil
}

func (s *IssueService) logRejection(req CreateIssueRequest, err error) {
	fields := []zap.Field{
		zap.String("material_id", req.MaterialID.String()),
		zap.String("quantity", req.Quantity.String()),
		zap.String("category", string(shared.CategoryOf(err))),
		zap.Error(err),
	}
	if shared.CategoryOf(err) == shared.CategoryPersistence {
		s.logger.Error("issue failed", fields...)
		return
	}
	s.logger.Info("issue rejected", fields...)
}

// GetByID returns an issue with its allocation lines
func (s *IssueService) GetByID(ctx context.Context, id uuid.UUID) (*IssueResponse, error) {
	issue, err := s.issueRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	material, err := s.materialRepo.FindByID(ctx, issue.MaterialID)
	if err != nil {
		return nil, err
	}
	response := ToIssueResponse(issue, material)
	return &response, nil
}

// List returns issues newest first
func (s *IssueService) List(ctx context.Context, filter DocumentListFilter) ([]IssueResponse, error) {
	domainFilter := filter.toDomain()
	if err := domainFilter.Range.Validate(); err != nil {
		return nil, err
	}
	return s.list(ctx, domainFilter)
}

func (s *IssueService) list(ctx context.Context, filter inventory.DocumentFilter) ([]IssueResponse, error) {
	issues, err := s.issueRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(issues))
	for i := range issues {
		ids[i] = issues[i].MaterialID
	}
	materials, err := loadMaterials(ctx, s.materialRepo, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]IssueResponse, len(issues))
	for i := range issues {
		responses[i] = ToIssueResponse(&issues[i], materials[issues[i].MaterialID])
	}
	return responses, nil
}

func outcome(err error) string {
	if err == nil {
		return "committed"
	}
	return string(shared.CategoryOf(err))
}
