package engine

import (
	"perpcore/core/types"
	"perpcore/native/ledger"
	"perpcore/native/position"

	"github.com/holiman/uint256"
)

// totalAUM computes the pool-wide assets-under-management across every
// registered asset, the snapshot mint_lp/burn_lp price against (spec
// §4.5). It folds in each asset's aggregate short PnL the way a single
// position's PnL is folded into its own accounting, but treats the
// min-profit-time gate as always elapsed: there is no single "time
// opened" for an aggregate short book to gate against.
func (e *Engine) totalAUM() (*uint256.Int, error) {
	assets := e.state.Assets()
	shortPnlUSD := make(map[types.AssetID]*uint256.Int, len(assets))
	shortPnlIsProfit := make(map[types.AssetID]bool, len(assets))
	for _, a := range assets {
		if a.GlobalShortSizeUSD == nil || a.GlobalShortSizeUSD.IsZero() {
			continue
		}
		mark, err := a.MaxPrice()
		if err != nil {
			return nil, err
		}
		hasProfit, delta, err := position.PnL(a.GlobalShortSizeUSD, a.GlobalShortAveragePriceUSD, mark, false, 0, 1, 0, 0)
		if err != nil {
			return nil, err
		}
		shortPnlUSD[a.ID] = delta
		shortPnlIsProfit[a.ID] = hasProfit
	}
	return ledger.TotalAUM(assets, shortPnlUSD, shortPnlIsProfit)
}

func (e *Engine) totalWeight() uint64 {
	var total uint64
	for _, a := range e.state.Assets() {
		total += a.TokenWeight
	}
	return total
}
