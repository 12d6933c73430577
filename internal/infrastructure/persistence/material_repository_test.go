package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/buildstock/backend/internal/domain/catalog"
	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormMaterialRepository_SaveAndFind(t *testing.T) {
	db := newTestDatabase(t).DB
	repo := NewGormMaterialRepository(db)
	ctx := context.Background()

	cement := seedMaterial(t, db, "Cement OPC 53")

	found, err := repo.FindByID(ctx, cement.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cement OPC 53", found.Name)
	assert.Equal(t, "bag", found.Unit)
	assert.True(t, found.MinStockLevel.Equal(decimal.NewFromInt(10)))

	byName, err := repo.FindByName(ctx, "  Cement OPC 53 ")
	require.NoError(t, err)
	assert.Equal(t, cement.ID, byName.ID)

	t.Run("update keeps id", func(t *testing.T) {
		name := "Cement PPC"
		require.NoError(t, found.Apply(catalog.MaterialUpdate{Name: &name}))
		require.NoError(t, repo.Save(ctx, found))

		reloaded, err := repo.FindByID(ctx, cement.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cement PPC", reloaded.Name)
	})

	t.Run("missing material", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = repo.FindByIDForUpdate(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormMaterialRepository_DuplicateName(t *testing.T) {
	db := newTestDatabase(t).DB
	repo := NewGormMaterialRepository(db)
	seedMaterial(t, db, "Sand")

	dup, err := catalog.NewMaterial("Sand", "m3", "", decimal.Zero)
	require.NoError(t, err)

	err = repo.Save(context.Background(), dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestGormMaterialRepository_FindAll(t *testing.T) {
	db := newTestDatabase(t).DB
	repo := NewGormMaterialRepository(db)
	ctx := context.Background()

	for _, name := range []string{"Steel 12mm", "Aggregate 20mm", "Cement"} {
		seedMaterial(t, db, name)
	}
	bricks, err := catalog.NewMaterial("Bricks", "nos", "Masonry", decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, bricks))

	tests := []struct {
		name   string
		filter shared.Filter
		want   []string
	}{
		{"all by name", shared.Filter{}, []string{"Aggregate 20mm", "Bricks", "Cement", "Steel 12mm"}},
		{"paged", shared.Filter{Page: 2, PageSize: 2}, []string{"Cement", "Steel 12mm"}},
		{"search name", shared.Filter{Search: "STEEL"}, []string{"Steel 12mm"}},
		{"search category", shared.Filter{Search: "mason"}, []string{"Bricks"}},
		{"category filter", shared.Filter{Filters: map[string]any{"category": "Binding"}}, []string{"Aggregate 20mm", "Cement", "Steel 12mm"}},
		{"name descending", shared.Filter{OrderDir: "desc"}, []string{"Steel 12mm", "Cement", "Bricks", "Aggregate 20mm"}},
		{"by category then name", shared.Filter{OrderBy: "category"}, []string{"Aggregate 20mm", "Cement", "Steel 12mm", "Bricks"}},
		{"unknown column falls back to name", shared.Filter{OrderBy: "name; DROP TABLE materials"}, []string{"Aggregate 20mm", "Bricks", "Cement", "Steel 12mm"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			materials, err := repo.FindAll(ctx, tt.filter)
			require.NoError(t, err)
			names := make([]string, len(materials))
			for i, m := range materials {
				names[i] = m.Name
			}
			assert.Equal(t, tt.want, names)
		})
	}

	count, err := repo.Count(ctx, shared.Filter{Search: "mm"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	found, err := repo.FindByIDs(ctx, []uuid.UUID{bricks.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, bricks.ID, found[0].ID)

	empty, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGormMaterialRepository_FindByIDForUpdate_Postgres(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormMaterialRepository(gormDB)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "materials" WHERE id = \$1 ORDER BY "materials"."id" LIMIT \$2 FOR UPDATE`).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "unit", "category", "min_stock_level"}).
			AddRow(id.String(), "Cement", "bag", "Binding", "25"))

	material, err := repo.FindByIDForUpdate(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Cement", material.Name)
	assert.True(t, material.MinStockLevel.Equal(decimal.NewFromInt(25)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormMaterialRepository_PersistenceError(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormMaterialRepository(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "materials"`).
		WillReturnError(assert.AnError)

	_, err := repo.Count(context.Background(), shared.Filter{})
	require.Error(t, err)
	assert.Equal(t, shared.CategoryPersistence, shared.CategoryOf(err))
	assert.ErrorIs(t, err, assert.AnError)
}
