package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/buildstock/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add supplier table", "add_supplier_table"},
		{"Add-Supplier-Table", "add_supplier_table"},
		{"ADD__SUPPLIER__TABLE", "add_supplier_table"},
		{"   spaces   ", "spaces"},
		{"index on grn 2", "index_on_grn_2"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_Sequential(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "init inventory", "materials and lots")
	require.NoError(t, err)
	assert.Equal(t, "000001", first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_init_inventory.up.sql"), first.UpPath)

	second, err := CreateMigration(dir, "Add supplier index", "")
	require.NoError(t, err)
	assert.Equal(t, "000002", second.Version)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- init_inventory")
	assert.Contains(t, string(up), "-- materials and lots")

	down, err := os.ReadFile(second.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback of add_supplier_index")

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init_inventory", "000002_add_supplier_index"}, names)
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		names, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("orders by version and skips strays", func(t *testing.T) {
		dir := t.TempDir()
		for _, f := range []string{
			"000010_later.up.sql", "000010_later.down.sql",
			"000002_early.up.sql", "README.md", "draft.up.sql",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0o644))
		}
		names, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000002_early", "000010_later"}, names)
	})
}

func TestEmbeddedMigrations(t *testing.T) {
	up, err := migrations.FS.ReadFile("000001_init_inventory.up.sql")
	require.NoError(t, err)
	for _, table := range []string{"materials", "receipt_lots", "issue_records", "allocation_lines", "document_sequences"} {
		assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS "+table)
	}

	_, err = migrations.FS.ReadFile("000001_init_inventory.down.sql")
	assert.NoError(t, err)
}
