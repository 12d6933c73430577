package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, falling back to
// defaultDir for anything else
func ValidateSortOrder(orderDir, defaultDir string) string {
	switch strings.ToUpper(strings.TrimSpace(orderDir)) {
	case "ASC":
		return "ASC"
	case "DESC":
		return "DESC"
	}
	return defaultDir
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// MaterialSortFields contains allowed sort fields for materials
var MaterialSortFields = map[string]bool{
	"name":            true,
	"category":        true,
	"unit":            true,
	"min_stock_level": true,
	"created_at":      true,
	"updated_at":      true,
}
