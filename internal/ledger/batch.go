package ledger

import (
	"sort"

	"github.com/rxtech-lab/t0-trading/internal/types"
	"github.com/rxtech-lab/t0-trading/pkg/errors"
	"github.com/shopspring/decimal"
)

// mergeBatches collapses fills that share a batch_id into one synthetic fill
// per batch: total quantity, volume-weighted average price, and the earliest
// member timestamp. Fills with an empty batch_id pass through unmerged. A
// batch mixing buy and sell sides is skipped whole, and fills failing
// validation are skipped individually before grouping.
//
// The merged fills are returned ordered by ascending timestamp, ties broken
// by batch id then fill id, so repeated runs over the same input apply in
// the same order.
func mergeBatches(fills []types.Fill) ([]types.Fill, []SkippedFill) {
	var (
		merged  []types.Fill
		skipped []SkippedFill
		batches = make(map[string][]types.Fill)
		order   []string
	)

	for _, fill := range fills {
		if err := fill.Validate(); err != nil {
			skipped = append(skipped, SkippedFill{
				Fill:   fill,
				Code:   errors.GetCode(err),
				Reason: err.Error(),
			})
			continue
		}

		if fill.BatchID == "" {
			merged = append(merged, fill)
			continue
		}

		if _, ok := batches[fill.BatchID]; !ok {
			order = append(order, fill.BatchID)
		}
		batches[fill.BatchID] = append(batches[fill.BatchID], fill)
	}

	for _, batchID := range order {
		members := batches[batchID]

		if mixed(members) {
			reason := errors.Newf(errors.ErrCodeMixedBatch,
				"batch %s mixes buy and sell fills", batchID)
			for _, member := range members {
				skipped = append(skipped, SkippedFill{
					Fill:   member,
					Code:   errors.ErrCodeMixedBatch,
					Reason: reason.Error(),
				})
			}
			continue
		}

		merged = append(merged, mergeBatch(batchID, members))
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].Timestamp.Equal(merged[j].Timestamp) {
			return merged[i].Timestamp.Before(merged[j].Timestamp)
		}
		if merged[i].BatchID != merged[j].BatchID {
			return merged[i].BatchID < merged[j].BatchID
		}
		return merged[i].ID < merged[j].ID
	})

	return merged, skipped
}

func mergeBatch(batchID string, members []types.Fill) types.Fill {
	if len(members) == 1 {
		return members[0]
	}

	merged := members[0]
	merged.BatchID = batchID

	totalQty := decimal.Zero
	totalNotional := decimal.Zero

	for _, member := range members {
		qty := decimal.NewFromInt(member.Quantity)
		totalQty = totalQty.Add(qty)
		totalNotional = totalNotional.Add(decimal.NewFromFloat(member.Price).Mul(qty))

		if member.Timestamp.Before(merged.Timestamp) {
			merged.Timestamp = member.Timestamp
			merged.ID = member.ID
		}
	}

	merged.Quantity = totalQty.IntPart()
	merged.Price, _ = totalNotional.Div(totalQty).Float64()

	return merged
}

func mixed(members []types.Fill) bool {
	for _, member := range members[1:] {
		if member.Side != members[0].Side {
			return true
		}
	}

	return false
}
