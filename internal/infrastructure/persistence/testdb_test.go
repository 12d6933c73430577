package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/buildstock/backend/internal/domain/catalog"
	"github.com/buildstock/backend/internal/domain/inventory"
	"github.com/buildstock/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDatabase opens a migrated in-memory sqlite database
func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabaseWithCustomLogger(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   ":memory:",
	}, gormlogger.Default.LogMode(gormlogger.Silent))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newMockGormDB opens GORM on sqlmock with the postgres dialector
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	return gormDB, mock, mockDB
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedMaterial(t *testing.T, db *gorm.DB, name string) *catalog.Material {
	t.Helper()
	m, err := catalog.NewMaterial(name, "bag", "Binding", decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, NewGormMaterialRepository(db).Save(context.Background(), m))
	return m
}

func seedLot(t *testing.T, db *gorm.DB, materialID uuid.UUID, number string, seq int64, receivedAt time.Time, qty, rate int64) *inventory.ReceiptLot {
	t.Helper()
	return seedLotDecimal(t, db, materialID, number, seq, receivedAt, decimal.NewFromInt(qty), decimal.NewFromInt(rate))
}

func seedLotDecimal(t *testing.T, db *gorm.DB, materialID uuid.UUID, number string, seq int64, receivedAt time.Time, qty, rate decimal.Decimal) *inventory.ReceiptLot {
	t.Helper()
	lot, err := inventory.NewReceiptLot(materialID, receivedAt, qty, rate,
		inventory.ReceiptDetails{SupplierName: "Acme Supplies", ReceivedBy: "store"})
	require.NoError(t, err)
	lot.AssignNumber(number, seq)
	require.NoError(t, NewGormReceiptLotRepository(db).Create(context.Background(), lot))
	return lot
}

func seedIssue(t *testing.T, db *gorm.DB, materialID uuid.UUID, number string, seq int64, issuedAt time.Time, qty int64) *inventory.IssueRecord {
	t.Helper()
	return seedIssueDecimal(t, db, materialID, number, seq, issuedAt, decimal.NewFromInt(qty))
}

func seedIssueDecimal(t *testing.T, db *gorm.DB, materialID uuid.UUID, number string, seq int64, issuedAt time.Time, qty decimal.Decimal) *inventory.IssueRecord {
	t.Helper()
	ctx := context.Background()
	lots, err := NewGormReceiptLotRepository(db).ListOpenLots(ctx, materialID)
	require.NoError(t, err)
	plan, err := inventory.Allocate(materialID, lots, qty)
	require.NoError(t, err)
	require.True(t, plan.CanFulfill)

	issue, err := inventory.NewIssueRecord(plan, issuedAt, inventory.IssueDetails{
		IssuedTo:   "Site A",
		Purpose:    "Foundation",
		ApprovedBy: "engineer",
	})
	require.NoError(t, err)
	issue.AssignNumber(number, seq)
	require.NoError(t, NewGormIssueRecordRepository(db).Create(ctx, issue))
	return issue
}
