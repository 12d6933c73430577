package persistence

import (
	"context"
	"errors"

	appinv "github.com/buildstock/backend/internal/application/inventory"
	"github.com/buildstock/backend/internal/domain/catalog"
	"github.com/buildstock/backend/internal/domain/inventory"
	"github.com/buildstock/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction. The transaction commits
// when fn returns nil and rolls back otherwise. Serialization failures,
// deadlocks and SQLite lock contention from any statement or the commit are
// reported as shared.ErrConcurrencyConflict so callers can retry.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
	if err != nil && !errors.Is(err, shared.ErrConcurrencyConflict) && isTransientConflict(err) {
		return shared.ErrConcurrencyConflict.WithMessage("transaction aborted: %v", err)
	}
	return err
}

// gormTransactionalRepositories hands out repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) MaterialRepo() catalog.MaterialRepository {
	return NewGormMaterialRepository(r.tx)
}

func (r *gormTransactionalRepositories) LotRepo() inventory.ReceiptLotRepository {
	return NewGormReceiptLotRepository(r.tx)
}

func (r *gormTransactionalRepositories) IssueRepo() inventory.IssueRecordRepository {
	return NewGormIssueRecordRepository(r.tx)
}

func (r *gormTransactionalRepositories) SequenceRepo() inventory.SequenceRepository {
	return NewGormSequenceRepository(r.tx)
}

var _ appinv.TransactionScope = (*GormTransactionScope)(nil)
var _ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
