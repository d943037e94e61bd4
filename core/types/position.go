package types

import (
	"math/big"

	"github.com/holiman/uint256"
)

// PositionID is the base58-encoded SHA-256 identity of a position (spec §6.3).
type PositionID string

// Position is a leveraged long or short, §3.2.
type Position struct {
	ID               PositionID
	Account          string
	CollateralAsset  AssetID
	UnderlyingAsset  AssetID
	IsLong           bool

	SizeUSD          *uint256.Int
	CollateralUSD    *uint256.Int
	AveragePriceUSD  *uint256.Int
	EntryFundingRate *uint256.Int
	ReserveAmount    *uint256.Int // native units, in collateral asset

	// RealizedPnL is signed: §9 calls for a 128-bit signed representation.
	// big.Int is used for the sign; the magnitude never exceeds what a
	// uint256.Int could hold, so no additional overflow handling beyond
	// what big.Int already provides is required.
	RealizedPnL *big.Int

	LastIncreasedTimeMS uint64
	Seq                 uint64
}

// Side renders "long" or "short" for identity hashing and logging.
func (p *Position) Side() string {
	if p.IsLong {
		return "long"
	}
	return "short"
}

// Clone returns a deep copy safe for speculative mutation (e.g. limit-order
// revalidation simulates a position mutation without committing it).
func (p *Position) Clone() *Position {
	if p == nil {
		return nil
	}
	clone := *p
	clone.SizeUSD = cloneU(p.SizeUSD)
	clone.CollateralUSD = cloneU(p.CollateralUSD)
	clone.AveragePriceUSD = cloneU(p.AveragePriceUSD)
	clone.EntryFundingRate = cloneU(p.EntryFundingRate)
	clone.ReserveAmount = cloneU(p.ReserveAmount)
	if p.RealizedPnL != nil {
		clone.RealizedPnL = new(big.Int).Set(p.RealizedPnL)
	}
	return &clone
}

func cloneU(a *uint256.Int) *uint256.Int {
	if a == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(a)
}
