package orderbook

import (
	"perpcore/core/types"

	"github.com/holiman/uint256"
)

// Cancel removes a resting order outright. Increase orders refund their
// attached native collateral to the owner; Decrease orders never carry
// attached collateral and refund nothing.
func Cancel(book *Book, id types.OrderID) (*types.LimitOrder, *uint256.Int, error) {
	order, ok := book.Get(id)
	if !ok {
		return nil, nil, ErrOrderNotFound
	}
	book.remove(order)
	var refund *uint256.Int
	if order.OrderType == types.OrderIncrease {
		refund = order.AttachedCollateral
	}
	return order, refund, nil
}

// RemoveOutdated implements the expiry sweep (spec §4.8): rejects if the
// order has not yet expired, otherwise applies the same refund semantics
// as Cancel and reports RemoveExpired.
func RemoveOutdated(book *Book, id types.OrderID, nowMS uint64) (*types.LimitOrder, *uint256.Int, error) {
	order, ok := book.Get(id)
	if !ok {
		return nil, nil, ErrOrderNotFound
	}
	if nowMS < order.ExpiryMS {
		return nil, nil, ErrNotExpired
	}
	book.remove(order)
	var refund *uint256.Int
	if order.OrderType == types.OrderIncrease {
		refund = order.AttachedCollateral
	}
	return order, refund, nil
}
