package position

import (
	"perpcore/core/types"
	"perpcore/fixedpoint"
	"perpcore/native/fees"
	"perpcore/native/funding"

	"github.com/holiman/uint256"
)

// TotalFee is the margin fee on sizeDeltaUSD (at the position's current
// size, before the delta is applied) plus the funding fee accrued since
// the position's entry_funding_rate (spec §4.7.2 step 7 / §4.7.6 step 1).
func TotalFee(p *types.Position, underlying, collateralAsset *types.Asset, sizeDeltaUSD *uint256.Int, marginBaseBPS uint64, dynamicPositionFees bool) (*uint256.Int, error) {
	var sideOI, otherOI *uint256.Int
	if p.IsLong {
		sideOI, otherOI = underlying.GlobalLongSizeUSD, underlying.GlobalShortSizeUSD
	} else {
		sideOI, otherOI = underlying.GlobalShortSizeUSD, underlying.GlobalLongSizeUSD
	}
	marginBPS := fees.PositionFeeBPS(marginBaseBPS, dynamicPositionFees, sideOI, otherOI)
	marginFee, err := fixedpoint.Ratio(sizeDeltaUSD, uint256.NewInt(marginBPS), uint256.NewInt(10_000))
	if err != nil {
		return nil, err
	}
	fundingFee, err := funding.PositionFundingFee(p.SizeUSD, collateralAsset.CumulativeFundingRate, p.EntryFundingRate)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Add(marginFee, fundingFee), nil
}
