package orderbook

import "errors"

var (
	ErrZeroOrder            = errors.New("orderbook: order must not be nil")
	ErrBadCollateralAsset   = errors.New("orderbook: collateral asset does not satisfy side rules")
	ErrBadAttachedAmount    = errors.New("orderbook: attached collateral/delta rules violated for order type")
	ErrSimulatedLossExceeds = errors.New("orderbook: simulated losses at trigger price would exceed collateral")
	ErrOrderNotFound        = errors.New("orderbook: order not found")
	ErrNotExpired           = errors.New("orderbook: order has not yet expired")
	ErrNotEligible          = errors.New("orderbook: mark price does not satisfy order threshold")

	// ErrDuplicateOrder is returned when a placement's (owner, collateral,
	// underlying, is_long, order_type, threshold) tuple already holds an
	// order at a different price. Spec §4.8 only defines merge behavior
	// for a same-price placement on an occupied tuple; a differing price
	// is treated as a conflict the caller must resolve by cancelling
	// first, rather than silently replacing a resting order's price.
	ErrDuplicateOrder = errors.New("orderbook: tuple already has a resting order at a different price")
)
