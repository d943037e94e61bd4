// Package fees implements the swap/mint/burn/position fee engine of
// spec §4.4, including the dynamic skew adjustment that rebates or taxes
// a transfer depending on whether it moves the pool toward or away from
// its target token-weight composition.
package fees

import (
	"perpcore/core/types"
	"perpcore/fixedpoint"

	"github.com/holiman/uint256"
)

// DynamicSkewBPS adjusts baseBPS toward a rebate (if the transfer moves
// the pool closer to its weight target) or a tax (if it moves it further
// away), per spec §4.4. Returns baseBPS unadjusted if the asset's target
// weight is zero (token_weight == 0 or total_weight == 0): there is
// nothing to skew toward.
func DynamicSkewBPS(a *types.Asset, baseBPS uint64, amount *uint256.Int, isAddition bool, totalAUM *uint256.Int, totalWeight uint64, taxBPS uint64) (uint64, error) {
	if a == nil {
		return 0, ErrZeroAsset
	}
	if a.TokenWeight == 0 || totalWeight == 0 {
		return baseBPS, nil
	}
	target, err := fixedpoint.Ratio(totalAUM, uint256.NewInt(a.TokenWeight), uint256.NewInt(totalWeight))
	if err != nil {
		return 0, err
	}
	if target.IsZero() {
		return baseBPS, nil
	}

	current, err := fixedpoint.Ratio(a.PoolBalance, a.PriceUSD, a.Denom())
	if err != nil {
		return 0, err
	}
	amountUSD, err := fixedpoint.Ratio(amount, a.PriceUSD, a.Denom())
	if err != nil {
		return 0, err
	}
	var next *uint256.Int
	if isAddition {
		next = new(uint256.Int).Add(current, amountUSD)
	} else {
		next = fixedpoint.SaturatingSub(current, amountUSD)
	}

	diffCurrent := fixedpoint.AbsDiff(current, target)
	diffNext := fixedpoint.AbsDiff(next, target)

	if diffNext.Cmp(diffCurrent) < 0 {
		rebate, err := fixedpoint.Ratio(diffCurrent, uint256.NewInt(taxBPS), target)
		if err != nil {
			return 0, err
		}
		adjusted := saturatingSubBPS(baseBPS, rebate.Uint64())
		if adjusted < 1 {
			adjusted = 1
		}
		return adjusted, nil
	}

	sum := new(uint256.Int).Add(diffCurrent, diffNext)
	avgDiff := new(uint256.Int).Div(sum, uint256.NewInt(2))
	avgDiff = fixedpoint.Min(avgDiff, target)
	tax, err := fixedpoint.Ratio(avgDiff, uint256.NewInt(taxBPS), target)
	if err != nil {
		return 0, err
	}
	return baseBPS + tax.Uint64(), nil
}

func saturatingSubBPS(base, sub uint64) uint64 {
	if sub >= base {
		return 0
	}
	return base - sub
}

// SwapFeeBPS computes the fee bps for a two-asset swap: the greater of the
// in-side and out-side fee_bps, each computed against its own side of the
// transfer. Stable-to-stable swaps use stableSwapBaseBPS as the base
// instead of swapBaseBPS on both sides.
func SwapFeeBPS(in, out *types.Asset, amountIn, amountOut *uint256.Int, swapBaseBPS, stableSwapBaseBPS uint64, dynamicEnabled bool, totalAUM *uint256.Int, totalWeight uint64, taxBPS uint64) (uint64, error) {
	base := swapBaseBPS
	if in.Stable && out.Stable {
		base = stableSwapBaseBPS
	}

	inBPS := base
	outBPS := base
	var err error
	if dynamicEnabled && !in.PoolBalance.IsZero() {
		inBPS, err = DynamicSkewBPS(in, base, amountIn, true, totalAUM, totalWeight, taxBPS)
		if err != nil {
			return 0, err
		}
	}
	if dynamicEnabled && !out.PoolBalance.IsZero() {
		outBPS, err = DynamicSkewBPS(out, base, amountOut, false, totalAUM, totalWeight, taxBPS)
		if err != nil {
			return 0, err
		}
	}
	if inBPS > outBPS {
		return inBPS, nil
	}
	return outBPS, nil
}

// MintFeeBPS is fee_bps(asset, +amount) with mint_burn_fee_bps as base.
func MintFeeBPS(a *types.Asset, amount *uint256.Int, baseBPS uint64, dynamicEnabled bool, totalAUM *uint256.Int, totalWeight uint64, taxBPS uint64) (uint64, error) {
	if dynamicEnabled && !a.PoolBalance.IsZero() {
		return DynamicSkewBPS(a, baseBPS, amount, true, totalAUM, totalWeight, taxBPS)
	}
	return baseBPS, nil
}

// BurnFeeBPS is fee_bps(asset, -amount) with mint_burn_fee_bps as base.
func BurnFeeBPS(a *types.Asset, amount *uint256.Int, baseBPS uint64, dynamicEnabled bool, totalAUM *uint256.Int, totalWeight uint64, taxBPS uint64) (uint64, error) {
	if dynamicEnabled && !a.PoolBalance.IsZero() {
		return DynamicSkewBPS(a, baseBPS, amount, false, totalAUM, totalWeight, taxBPS)
	}
	return baseBPS, nil
}

// PositionFeeBPS is the margin fee charged on size_delta. If dynamic
// position fees are enabled and open interest on this side is non-zero,
// the base rate is scaled by 2*side_share clamped to [0.5x, 2.0x].
func PositionFeeBPS(baseBPS uint64, dynamicEnabled bool, sideOI, otherSideOI *uint256.Int) uint64 {
	if !dynamicEnabled {
		return baseBPS
	}
	total := new(uint256.Int).Add(sideOI, otherSideOI)
	if total.IsZero() {
		return baseBPS
	}
	num := new(uint256.Int).Mul(sideOI, uint256.NewInt(2*10_000))
	factorBPS := new(uint256.Int).Div(num, total).Uint64() // 2*side_share in bps
	if factorBPS < 5_000 {
		factorBPS = 5_000
	}
	if factorBPS > 20_000 {
		factorBPS = 20_000
	}
	return baseBPS * factorBPS / 10_000
}

// Withhold returns (amount_out_after_fee, fee) for a given fee_bps: the
// fee is rounded down, and the remainder is whatever is left.
func Withhold(amount *uint256.Int, feeBPS uint64) (afterFee, fee *uint256.Int, err error) {
	fee, err = fixedpoint.Ratio(amount, uint256.NewInt(feeBPS), uint256.NewInt(10_000))
	if err != nil {
		return nil, nil, err
	}
	afterFee = fixedpoint.SaturatingSub(amount, fee)
	return afterFee, fee, nil
}
