package allocation

import (
	"sort"

	"github.com/wms/backend/internal/domain/inventory"
)

// SortCandidates orders allocation candidates in place according to the
// picking policy. The resulting order is a user-visible contract of the
// engine, not an optimisation detail:
//
//   - FEFO: expiry date ascending with null expiry last, ties broken by
//     arrival time ascending
//   - LIFO: arrival time descending
//   - BEST_FIT: quantity descending, so large units absorb demand with
//     the fewest pick tasks
func SortCandidates(policy PickingPolicy, units []inventory.StockUnit) {
	switch policy {
	case PickingPolicyFEFO:
		sort.SliceStable(units, func(i, j int) bool {
			a, b := units[i], units[j]
			if a.ExpiryDate != nil && b.ExpiryDate != nil {
				if !a.ExpiryDate.Equal(*b.ExpiryDate) {
					return a.ExpiryDate.Before(*b.ExpiryDate)
				}
			} else if a.ExpiryDate != nil {
				return true // expiring stock goes out before non-expiring
			} else if b.ExpiryDate != nil {
				return false
			}
			return a.FifoDate.Before(b.FifoDate)
		})
	case PickingPolicyLIFO:
		sort.SliceStable(units, func(i, j int) bool {
			return units[i].FifoDate.After(units[j].FifoDate)
		})
	case PickingPolicyBestFit:
		sort.SliceStable(units, func(i, j int) bool {
			return units[i].Quantity.GreaterThan(units[j].Quantity)
		})
	}
}
