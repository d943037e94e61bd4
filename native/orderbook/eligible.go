package orderbook

import (
	"perpcore/core/types"

	"github.com/google/btree"
	"github.com/holiman/uint256"
)

// Eligible enumerates every resting order on underlying whose threshold the
// current mark price satisfies, by the same rule as triggers: four scans —
// {long, short} × {Below orders priced at or above mark, Above orders
// priced at or below mark} — each a contiguous run of the packed-key
// ordered tree (spec §4.8). max caps the total returned; 0 means
// unbounded.
func Eligible(book *Book, underlying types.AssetID, markUSD *uint256.Int, max int) []*types.LimitOrder {
	t, ok := book.trees[underlying]
	if !ok {
		return nil
	}
	mark := markUSD.Uint64()

	var out []*types.LimitOrder
	below := func(price uint64) bool { return price >= mark }
	above := func(price uint64) bool { return price <= mark }

	scanFrom(t, true, types.ThresholdBelow, mark, below, &out, max)
	scanFrom(t, true, types.ThresholdAbove, 0, above, &out, max)
	scanFrom(t, false, types.ThresholdBelow, mark, below, &out, max)
	scanFrom(t, false, types.ThresholdAbove, 0, above, &out, max)
	return out
}

func scanFrom(t *btree.BTreeG[*types.LimitOrder], isLong bool, threshold types.Threshold, startPrice uint64, priceOK func(uint64) bool, out *[]*types.LimitOrder, max int) {
	if max > 0 && len(*out) >= max {
		return
	}
	pivot := &types.LimitOrder{IsLong: isLong, Threshold: threshold, PriceUSD: uint256.NewInt(startPrice), Seq: 0}
	t.AscendGreaterOrEqual(pivot, func(o *types.LimitOrder) bool {
		if o.IsLong != isLong || o.Threshold != threshold {
			return false
		}
		if !priceOK(o.PriceUSD.Uint64()) {
			return false
		}
		*out = append(*out, o)
		return max <= 0 || len(*out) < max
	})
}
