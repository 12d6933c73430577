package inventory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/buildstock/backend/internal/domain/shared"
)

// Document prefixes
const (
	ReceiptPrefix = "GRN"
	IssuePrefix   = "ISN"
)

// LedgerSequence names the global counter that orders lots and issues by
// creation. It is not scoped to a year.
const LedgerSequence = "LEDGER"

// NumberFormat describes how a document number is rendered, e.g. GRN/2025/001
type NumberFormat struct {
	Prefix   string
	PadWidth int // 0 means no padding
}

// Format renders the document number for the given year and sequence value
func (f NumberFormat) Format(year int, seq int64) string {
	if f.PadWidth > 0 {
		return fmt.Sprintf("%s/%d/%0*d", f.Prefix, year, f.PadWidth, seq)
	}
	return fmt.Sprintf("%s/%d/%d", f.Prefix, year, seq)
}

// ParseDocumentNumber splits PREFIX/YEAR/N into its parts
func ParseDocumentNumber(number string) (prefix string, year int, seq int64, err error) {
	parts := strings.Split(number, "/")
	if len(parts) != 3 || parts[0] == "" {
		return "", 0, 0, shared.NewValidationError("malformed document number %q", number)
	}
	year, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, shared.NewValidationError("malformed year in document number %q", number)
	}
	seq, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil || seq <= 0 {
		return "", 0, 0, shared.NewValidationError("malformed sequence in document number %q", number)
	}
	return parts[0], year, seq, nil
}

// NumberPattern returns the LIKE pattern matching all numbers of a prefix in a year
func NumberPattern(prefix string, year int) string {
	return fmt.Sprintf("%s/%d/%%", prefix, year)
}
