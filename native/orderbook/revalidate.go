package orderbook

import (
	"perpcore/core/types"

	"github.com/holiman/uint256"
)

// RevalidateConfig mirrors PlaceConfig for the bounds revalidation needs.
type RevalidateConfig struct {
	MinLeverage uint64
	MaxLeverage uint64
}

// Invalidated is one order removed by Revalidate.
type Invalidated struct {
	Order        *types.LimitOrder
	RefundNative *uint256.Int
}

// Revalidate implements spec §4.8's post-mutation sweep: called after a
// position's size or collateral changes (from position.Increase or
// position.Decrease), it re-simulates every one of that owner's resting
// orders on this underlying with matching collateral asset and side
// against the position's now-current state, removing with RemoveInvalid
// any order whose simulated outcome no longer holds — a simulated loss
// exceeding collateral, a bounds violation, or a Decrease order left with
// nothing to act on because the position has already closed. Attached
// native collateral from invalidated Increase orders is returned for the
// caller to add to its payout.
func Revalidate(book *Book, owner string, collateralAsset, underlying *types.Asset, isLong bool, pos *types.Position, cfg RevalidateConfig, nowMS uint64) []Invalidated {
	var removed []Invalidated
	for _, order := range book.OrdersForOwner(owner) {
		if order.UnderlyingAsset != underlying.ID || order.CollateralAsset != collateralAsset.ID || order.IsLong != isLong {
			continue
		}
		if invalid := orderInvalidated(order, collateralAsset, underlying, pos, cfg, nowMS); invalid {
			book.remove(order)
			var refund *uint256.Int
			if order.OrderType == types.OrderIncrease {
				refund = order.AttachedCollateral
			}
			removed = append(removed, Invalidated{Order: order, RefundNative: refund})
		}
	}
	return removed
}

// orderInvalidated returns true when order must be invalidated.
func orderInvalidated(order *types.LimitOrder, collateralAsset, underlying *types.Asset, pos *types.Position, cfg RevalidateConfig, nowMS uint64) bool {
	positionClosed := pos == nil || pos.SizeUSD == nil || pos.SizeUSD.IsZero()
	if order.OrderType == types.OrderDecrease && positionClosed {
		return true
	}

	placeCfg := PlaceConfig{MinLeverage: cfg.MinLeverage, MaxLeverage: cfg.MaxLeverage}
	newSize, newCollateral, err := simulate(order, collateralAsset, underlying, pos, placeCfg, nowMS)
	if err != nil {
		return true
	}
	if newSize.Sign() > 0 && newCollateral.Sign() == 0 {
		return true
	}
	if order.OrderType == types.OrderDecrease && newSize.Sign() == 0 && positionClosed {
		return true
	}
	return false
}
