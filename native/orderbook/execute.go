package orderbook

import (
	"perpcore/core/types"
	"perpcore/native/position"

	"github.com/holiman/uint256"
)

// ExecuteOutcome reports what happened to a popped order and whatever the
// caller now owes back (an Increase order's attached collateral, on expiry
// only) or owes the position owner (a Decrease order's payout).
type ExecuteOutcome struct {
	Order          *types.LimitOrder
	Reason         types.RemoveReason
	RefundNative   *uint256.Int // non-nil only on RemoveExpired for an Increase order
	DecreaseResult *position.DecreaseResult
}

// Execute applies spec §4.8's execution algorithm: pop the order, refund
// and report Expired if past expiry, reject (without removing) if the mark
// doesn't satisfy the threshold, otherwise dispatch into position.Increase
// or position.Decrease using the order's stored deltas.
//
// Like every other native/* entry point, Execute mutates book/pos/assets
// in place and assumes the caller only commits the result on a nil error —
// per spec §5's atomic-critical-section model, a non-nil error means the
// whole operation (including this function's book removal) must be
// discarded by the caller, not selectively rolled back here.
func Execute(book *Book, underlyingID types.AssetID, orderID types.OrderID, markUSD *uint256.Int, pos *types.Position, collateralAsset, underlyingAsset *types.Asset, incCfg position.IncreaseConfig, decCfg position.DecreaseConfig, nowMS, nowSec uint64) (*ExecuteOutcome, error) {
	order, ok := book.Get(orderID)
	if !ok || order.UnderlyingAsset != underlyingID {
		return nil, ErrOrderNotFound
	}

	if nowMS >= order.ExpiryMS {
		book.remove(order)
		var refund *uint256.Int
		if order.OrderType == types.OrderIncrease {
			refund = order.AttachedCollateral
		}
		return &ExecuteOutcome{Order: order, Reason: types.RemoveExpired, RefundNative: refund}, nil
	}

	if !triggers(order, markUSD) {
		return nil, ErrNotEligible
	}

	book.remove(order)

	if order.OrderType == types.OrderIncrease {
		if err := position.Increase(pos, collateralAsset, underlyingAsset, order.SizeDeltaUSD, order.AttachedCollateral, order.IsLong, nowMS, nowSec, incCfg); err != nil {
			return nil, err
		}
		return &ExecuteOutcome{Order: order, Reason: types.RemoveExecuted}, nil
	}

	if pos == nil || pos.SizeUSD == nil || pos.SizeUSD.IsZero() {
		return &ExecuteOutcome{Order: order, Reason: types.RemoveInvalid}, nil
	}
	result, err := position.Decrease(pos, collateralAsset, underlyingAsset, order.CollateralDeltaUSD, order.SizeDeltaUSD, nowMS, nowSec, decCfg)
	if err != nil {
		return nil, err
	}
	return &ExecuteOutcome{Order: order, Reason: types.RemoveExecuted, DecreaseResult: result}, nil
}
