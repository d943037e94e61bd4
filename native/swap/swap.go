// Package swap implements the two-asset conversion engine of spec §4.6:
// a slippage-guarded, liquidity-guarded exchange between two pool assets
// priced at their min/max spread prices.
package swap

import (
	"perpcore/core/types"
	"perpcore/fixedpoint"
	"perpcore/native/fees"
	"perpcore/native/funding"
	"perpcore/native/ledger"
	"perpcore/native/oracle"

	"github.com/holiman/uint256"
)

// Params is one swap(in, out, amount_in, min_out) call.
type Params struct {
	In, Out    *types.Asset
	AmountIn   *uint256.Int
	MinOut     *uint256.Int
	OwnerExempt bool // true when the caller holds a role exempt from InOnly/OutOnly restriction
	Fee        FeeParams
	NowMS      uint64
	NowSec     uint64
}

// FeeParams bundles the fee-engine knobs Swap needs.
type FeeParams struct {
	SwapBaseBPS       uint64
	StableSwapBaseBPS uint64
	DynamicEnabled    bool
	TotalAUM          *uint256.Int
	TotalWeight       uint64
	TaxBPS            uint64
}

// Swap converts AmountIn of In into Out, returning the amount transferred
// out after fees.
func Swap(p Params) (*uint256.Int, error) {
	in, out := p.In, p.Out
	if in.ID == out.ID {
		return nil, ErrSameAsset
	}
	if err := oracle.ValidatePrice(in, p.NowMS, in.MaxStalenessDurationSec); err != nil {
		return nil, err
	}
	if err := oracle.ValidatePrice(out, p.NowMS, out.MaxStalenessDurationSec); err != nil {
		return nil, err
	}
	if err := assertSwapAllowed(in, out, p.OwnerExempt); err != nil {
		return nil, err
	}

	minPriceIn, err := in.MinPrice()
	if err != nil {
		return nil, err
	}
	maxPriceOut, err := out.MaxPrice()
	if err != nil {
		return nil, err
	}
	amountOut, err := fixedpoint.ConvertAssets(p.AmountIn, minPriceIn, out.Denom(), maxPriceOut, in.Denom())
	if err != nil {
		return nil, err
	}
	if p.MinOut != nil && amountOut.Cmp(p.MinOut) < 0 {
		return nil, ErrSlippage
	}
	if amountOut.Cmp(out.AvailableLiquidity()) > 0 {
		return nil, ErrInsufficientOut
	}

	feeBPS, err := fees.SwapFeeBPS(in, out, p.AmountIn, amountOut, p.Fee.SwapBaseBPS, p.Fee.StableSwapBaseBPS, p.Fee.DynamicEnabled, p.Fee.TotalAUM, p.Fee.TotalWeight, p.Fee.TaxBPS)
	if err != nil {
		return nil, err
	}
	afterFee, fee, err := fees.Withhold(amountOut, feeBPS)
	if err != nil {
		return nil, err
	}

	if err := ledger.AddLiquidity(in, p.AmountIn); err != nil {
		return nil, err
	}
	if _, err := funding.UpdateCumulative(in, p.NowSec); err != nil {
		return nil, err
	}
	if err := ledger.RemoveLiquidity(out, amountOut); err != nil {
		return nil, err
	}
	if err := ledger.AddFees(out, fee); err != nil {
		return nil, err
	}
	if out.AvailableLiquidity().Cmp(out.BufferAmount) < 0 {
		return nil, ErrBufferBreached
	}
	if _, err := funding.UpdateCumulative(out, p.NowSec); err != nil {
		return nil, err
	}

	return afterFee, nil
}

func assertSwapAllowed(in, out *types.Asset, ownerExempt bool) error {
	if ownerExempt {
		return nil
	}
	inOK := in.SwapState == types.SwapEnabled || in.SwapState == types.SwapInOnly
	outOK := out.SwapState == types.SwapEnabled || out.SwapState == types.SwapOutOnly
	if !inOK || !outOK {
		return ErrStateDisallows
	}
	return nil
}
