package allocation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/wms/backend/internal/domain/inventory"
)

func candidate(lpn string, qty int64, fifo time.Time, expiry *time.Time) inventory.StockUnit {
	return inventory.StockUnit{
		LPN:      lpn,
		Quantity: decimal.NewFromInt(qty),
		FifoDate: fifo,
		ExpiryDate: func() *time.Time {
			if expiry == nil {
				return nil
			}
			e := *expiry
			return &e
		}(),
	}
}

func lpns(units []inventory.StockUnit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.LPN
	}
	return out
}

func TestSortCandidates_FEFO(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	soon := base.AddDate(0, 1, 0)
	later := base.AddDate(0, 6, 0)

	t.Run("earliest expiry first, null expiry last", func(t *testing.T) {
		units := []inventory.StockUnit{
			candidate("NO-EXPIRY", 10, base, nil),
			candidate("LATER", 10, base, &later),
			candidate("SOON", 10, base, &soon),
		}

		SortCandidates(PickingPolicyFEFO, units)

		assert.Equal(t, []string{"SOON", "LATER", "NO-EXPIRY"}, lpns(units))
	})

	t.Run("equal expiry breaks ties by arrival time", func(t *testing.T) {
		units := []inventory.StockUnit{
			candidate("NEWER", 10, base.AddDate(0, 0, 5), &soon),
			candidate("OLDER", 10, base, &soon),
		}

		SortCandidates(PickingPolicyFEFO, units)

		assert.Equal(t, []string{"OLDER", "NEWER"}, lpns(units))
	})

	t.Run("all null expiry falls back to arrival order", func(t *testing.T) {
		units := []inventory.StockUnit{
			candidate("B", 10, base.AddDate(0, 0, 2), nil),
			candidate("A", 10, base, nil),
		}

		SortCandidates(PickingPolicyFEFO, units)

		assert.Equal(t, []string{"A", "B"}, lpns(units))
	})
}

func TestSortCandidates_LIFO(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	units := []inventory.StockUnit{
		candidate("OLDEST", 10, base, nil),
		candidate("NEWEST", 10, base.AddDate(0, 0, 9), nil),
		candidate("MIDDLE", 10, base.AddDate(0, 0, 4), nil),
	}

	SortCandidates(PickingPolicyLIFO, units)

	assert.Equal(t, []string{"NEWEST", "MIDDLE", "OLDEST"}, lpns(units))
}

func TestSortCandidates_BestFit(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	units := []inventory.StockUnit{
		candidate("SMALL", 5, base, nil),
		candidate("LARGE", 500, base, nil),
		candidate("MEDIUM", 50, base, nil),
	}

	SortCandidates(PickingPolicyBestFit, units)

	assert.Equal(t, []string{"LARGE", "MEDIUM", "SMALL"}, lpns(units))
}

func TestSortCandidates_IsStable(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	units := []inventory.StockUnit{
		candidate("FIRST", 10, base, nil),
		candidate("SECOND", 10, base, nil),
	}

	SortCandidates(PickingPolicyBestFit, units)

	// equal quantities keep their incoming order
	assert.Equal(t, []string{"FIRST", "SECOND"}, lpns(units))
}
