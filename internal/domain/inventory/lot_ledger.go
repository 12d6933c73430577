package inventory

import (
	"context"
	"sort"

	"github.com/google/uuid"
)

// LotLedger is the read-only view of receipt lots and what remains of them
type LotLedger interface {
	// ListOpenLots returns lots of the material that still have stock,
	// oldest receipt first. Unknown materials yield an empty slice.
	ListOpenLots(ctx context.Context, materialID uuid.UUID) ([]OpenLot, error)
}

// SortOpenLots drops exhausted lots and orders the rest by receipt date, then
// by ledger sequence so equal dates still have a total order.
func SortOpenLots(lots []OpenLot) []OpenLot {
	open := make([]OpenLot, 0, len(lots))
	for _, l := range lots {
		if l.IsExhausted() {
			continue
		}
		open = append(open, l)
	}
	sort.SliceStable(open, func(i, j int) bool {
		a, b := open[i].Lot, open[j].Lot
		if !a.ReceivedAt.Equal(b.ReceivedAt) {
			return a.ReceivedAt.Before(b.ReceivedAt)
		}
		return a.EntrySeq < b.EntrySeq
	})
	return open
}
