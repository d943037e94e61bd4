package types

import "github.com/holiman/uint256"

// OrderID is the base58-encoded big-endian 128-bit packed key (spec §3.3, §6.3).
type OrderID string

// OrderType distinguishes an Increase order (opens/adds size, carries
// attached collateral) from a Decrease order (reduces/closes, carries no
// attached collateral).
type OrderType int

const (
	OrderIncrease OrderType = iota
	OrderDecrease
)

// Threshold is the trigger direction relative to mark price at placement.
type Threshold int

const (
	ThresholdBelow Threshold = iota
	ThresholdAbove
)

// RemoveReason explains why an order left the book.
type RemoveReason int

const (
	RemoveExpired RemoveReason = iota
	RemoveExecuted
	RemoveInvalid
	RemoveRemoved // explicit cancellation
)

func (r RemoveReason) String() string {
	switch r {
	case RemoveExpired:
		return "expired"
	case RemoveExecuted:
		return "executed"
	case RemoveInvalid:
		return "invalid"
	case RemoveRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// LimitOrder is a priced trigger order (spec §3.3).
type LimitOrder struct {
	ID      OrderID
	Owner   string
	Seq     uint64

	CollateralAsset AssetID
	UnderlyingAsset AssetID
	IsLong          bool

	OrderType OrderType
	Threshold Threshold
	PriceUSD  *uint256.Int

	SizeDeltaUSD       *uint256.Int
	CollateralDeltaUSD *uint256.Int // 0 for Increase
	AttachedCollateral *uint256.Int // native; 0 for Decrease

	ExpiryMS uint64
}

// PackedKey computes the 128-bit sort key described in spec §3.3:
//
//	[side_flag:1 | threshold_flag:1 | price:64 | seq:62]
//
// side_flag is 0 for a long and 1 for a short; threshold_flag is 0 for
// Below and 1 for Above. The packing guarantees longs sort before shorts,
// Below before Above at a given side, ascending price, then arrival order
// — all via plain numeric comparison of the packed value.
func (o *LimitOrder) PackedKey() *uint256.Int {
	var sideBit, thresholdBit uint64
	if !o.IsLong {
		sideBit = 1
	}
	if o.Threshold == ThresholdAbove {
		thresholdBit = 1
	}

	price := o.PriceUSD
	if price == nil {
		price = new(uint256.Int)
	}
	priceWord := price.Uint64()
	seq := o.Seq & ((1 << 62) - 1)

	key := new(uint256.Int).SetUint64(sideBit)
	key.Lsh(key, 1)
	key.Or(key, new(uint256.Int).SetUint64(thresholdBit))
	key.Lsh(key, 64)
	key.Or(key, new(uint256.Int).SetUint64(priceWord))
	key.Lsh(key, 62)
	key.Or(key, new(uint256.Int).SetUint64(seq))
	return key
}
