package events

import (
	"perpcore/core/types"

	"github.com/holiman/uint256"
)

const (
	TypePlaceLimitOrder  = "place_limit_order"
	TypeRemoveLimitOrder = "remove_limit_order"
)

// PlaceLimitOrder captures a newly placed or merged resting order (spec
// §4.8, §6.2).
type PlaceLimitOrder struct {
	AccountID                string
	LimitOrderID             types.OrderID
	CollateralAsset          types.AssetID
	UnderlyingAsset          types.AssetID
	OrderType                types.OrderType
	Threshold                types.Threshold
	CollateralDeltaUSD       *uint256.Int
	AttachedCollateralNative *uint256.Int
	SizeDeltaUSD             *uint256.Int
	PriceUSD                 *uint256.Int
	ExpiryMS                 uint64
	IsLong                   bool
}

// EventType implements the Event interface.
func (PlaceLimitOrder) EventType() string { return TypePlaceLimitOrder }

// RemoveLimitOrder captures an order leaving the book, for any reason
// (spec §4.8, §6.2).
type RemoveLimitOrder struct {
	AccountID       string
	UnderlyingAsset types.AssetID
	LimitOrderID    types.OrderID
	Reason          types.RemoveReason
	LiquidatorID    string // empty unless a liquidation-driven sweep removed it
}

// EventType implements the Event interface.
func (RemoveLimitOrder) EventType() string { return TypeRemoveLimitOrder }
