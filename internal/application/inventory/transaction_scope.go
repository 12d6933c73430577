package inventory

import (
	"context"

	"github.com/buildstock/backend/internal/domain/catalog"
	"github.com/buildstock/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the stock ledger repositories.
// Everything done through the repositories handed to fn is committed or rolled
// back as a unit.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories taking part in a transaction.
//
//   - MaterialRepo: used to lock the material row an issue draws on
//   - LotRepo: receipt lots and the open-lot view used for re-validation
//   - IssueRepo: append-only issue records with their allocation lines
//   - SequenceRepo: document and ledger counters
type TransactionalRepositories interface {
	MaterialRepo() catalog.MaterialRepository
	LotRepo() inventory.ReceiptLotRepository
	IssueRepo() inventory.IssueRecordRepository
	SequenceRepo() inventory.SequenceRepository
}

// NoOpTransactionScope runs fn against the given repositories without a transaction.
// This is useful for testing.
type NoOpTransactionScope struct {
	materialRepo catalog.MaterialRepository
	lotRepo      inventory.ReceiptLotRepository
	issueRepo    inventory.IssueRecordRepository
	sequenceRepo inventory.SequenceRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	materialRepo catalog.MaterialRepository,
	lotRepo inventory.ReceiptLotRepository,
	issueRepo inventory.IssueRecordRepository,
	sequenceRepo inventory.SequenceRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		materialRepo: materialRepo,
		lotRepo:      lotRepo,
		issueRepo:    issueRepo,
		sequenceRepo: sequenceRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) MaterialRepo() catalog.MaterialRepository   { return s.materialRepo }
func (s *NoOpTransactionScope) LotRepo() inventory.ReceiptLotRepository    { return s.lotRepo }
func (s *NoOpTransactionScope) IssueRepo() inventory.IssueRecordRepository { return s.issueRepo }
func (s *NoOpTransactionScope) SequenceRepo() inventory.SequenceRepository { return s.sequenceRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
