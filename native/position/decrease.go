package position

import (
	"math/big"

	"perpcore/core/types"
	"perpcore/fixedpoint"
	"perpcore/native/funding"
	"perpcore/native/ledger"
	"perpcore/native/oracle"

	"github.com/holiman/uint256"
)

// DecreaseConfig mirrors IncreaseConfig for the parameters a Decrease call
// needs beyond the asset/position data (spec §6.4).
type DecreaseConfig struct {
	MinLeverage         uint64
	MaxLeverage         uint64
	MarginBaseBPS       uint64
	DynamicPositionFees bool
	IsLiquidation       bool
}

// DecreaseResult is what the caller still owes the position owner (before
// any §4.7.3 step 18 output-asset swap) and whether the position closed.
type DecreaseResult struct {
	PayoutUSD *uint256.Int
	Closed    bool
}

// Decrease applies spec §4.7.3 to pos in place. Authorization (owner,
// liquidator role, or limit-order trigger) is the caller's concern — this
// function only enforces the accounting invariants.
func Decrease(pos *types.Position, collateralAsset, underlying *types.Asset, collateralDeltaUSD, sizeDeltaUSD *uint256.Int, nowMS, nowSec uint64, cfg DecreaseConfig) (*DecreaseResult, error) {
	if pos == nil || collateralAsset == nil || underlying == nil {
		return nil, ErrZeroAsset
	}
	if err := oracle.ValidatePrice(collateralAsset, nowMS, collateralAsset.MaxStalenessDurationSec); err != nil {
		return nil, err
	}
	if err := oracle.ValidatePrice(underlying, nowMS, underlying.MaxStalenessDurationSec); err != nil {
		return nil, err
	}
	if underlying.PerpState == types.PerpDisabled {
		return nil, ErrPerpDisabled
	}
	if sizeDeltaUSD.Cmp(pos.SizeUSD) > 0 || collateralDeltaUSD.Cmp(pos.CollateralUSD) > 0 {
		return nil, ErrDecreaseExceedsPosition
	}
	isLong := pos.IsLong

	if isLong {
		underlying.GlobalLongSizeUSD = fixedpoint.SaturatingSub(underlying.GlobalLongSizeUSD, sizeDeltaUSD)
	} else {
		underlying.GlobalShortSizeUSD = fixedpoint.SaturatingSub(underlying.GlobalShortSizeUSD, sizeDeltaUSD)
	}

	reserveDelta, err := fixedpoint.Ratio(pos.ReserveAmount, sizeDeltaUSD, pos.SizeUSD)
	if err != nil {
		return nil, err
	}
	pos.ReserveAmount = fixedpoint.SaturatingSub(pos.ReserveAmount, reserveDelta)
	if err := ledger.DecreaseReserved(collateralAsset, reserveDelta); err != nil {
		return nil, err
	}
	if _, err := funding.UpdateCumulative(collateralAsset, nowSec); err != nil {
		return nil, err
	}

	closeMark, err := closeSidePrice(underlying, isLong)
	if err != nil {
		return nil, err
	}
	hasProfit, delta, err := PnL(pos.SizeUSD, pos.AveragePriceUSD, closeMark, isLong, pos.LastIncreasedTimeMS, nowMS, underlying.MinProfitBPS, underlying.MinProfitTimeSec)
	if err != nil {
		return nil, err
	}

	totalFeeUSD, err := TotalFee(pos, underlying, collateralAsset, sizeDeltaUSD, cfg.MarginBaseBPS, cfg.DynamicPositionFees)
	if err != nil {
		return nil, err
	}

	adjustedDelta, usdOut, collateralReduction, err := reduceCollateral(pos.SizeUSD, pos.CollateralUSD, sizeDeltaUSD, collateralDeltaUSD, delta, hasProfit)
	if err != nil {
		return nil, err
	}

	if usdOut.Sign() > 0 {
		outNative, err := FromMinUSDPrice(collateralAsset, usdOut)
		if err != nil {
			return nil, err
		}
		if err := ledger.RegisterWithdrawal(collateralAsset, outNative, nowMS); err != nil {
			return nil, err
		}
	}

	var usdOutAfterFee *uint256.Int
	isFullClose := sizeDeltaUSD.Cmp(pos.SizeUSD) == 0
	if usdOut.Cmp(totalFeeUSD) > 0 {
		usdOutAfterFee = new(uint256.Int).Sub(usdOut, totalFeeUSD)
	} else {
		usdOutAfterFee = new(uint256.Int)
		collateralReduction = new(uint256.Int).Add(collateralReduction, totalFeeUSD)
		if isLong {
			totalFeeNative, err := FromMinUSDPrice(collateralAsset, totalFeeUSD)
			if err != nil {
				return nil, err
			}
			if err := ledger.RemoveLiquidity(collateralAsset, totalFeeNative); err != nil {
				return nil, err
			}
		}
	}

	// spec §4.7.3 step 11: the reduction must still fit under collateral
	// unless this decrease fully closes the position.
	if collateralReduction.Cmp(pos.CollateralUSD) >= 0 && !isFullClose {
		return nil, ErrInsolvent
	}

	if !isLong && adjustedDelta.Sign() > 0 {
		adjustedNative, err := FromMinUSDPrice(collateralAsset, adjustedDelta)
		if err != nil {
			return nil, err
		}
		if hasProfit {
			if err := ledger.RemoveLiquidity(collateralAsset, adjustedNative); err != nil {
				return nil, err
			}
		} else {
			if err := ledger.AddLiquidity(collateralAsset, adjustedNative); err != nil {
				return nil, err
			}
		}
	}

	updateRealizedPnL(pos, adjustedDelta, hasProfit)

	pos.SizeUSD = fixedpoint.SaturatingSub(pos.SizeUSD, sizeDeltaUSD)
	pos.CollateralUSD = fixedpoint.SaturatingSub(pos.CollateralUSD, collateralReduction)
	if pos.SizeUSD.Sign() > 0 {
		pos.EntryFundingRate = fixedpoint.Clone(collateralAsset.CumulativeFundingRate)
		if !cfg.IsLiquidation {
			if err := enforceSizeAndLeverageBounds(underlying, pos.SizeUSD, pos.CollateralUSD, cfg.MinLeverage, cfg.MaxLeverage, false); err != nil {
				return nil, err
			}
		}
	}

	if isLong {
		if err := ledger.IncreaseGuaranteedUSD(underlying, collateralReduction); err != nil {
			return nil, err
		}
		if err := ledger.DecreaseGuaranteedUSD(underlying, sizeDeltaUSD); err != nil {
			return nil, err
		}
		if usdOut.Sign() > 0 {
			outNative, err := FromMinUSDPrice(collateralAsset, usdOut)
			if err != nil {
				return nil, err
			}
			if err := ledger.RemoveLiquidity(collateralAsset, outNative); err != nil {
				return nil, err
			}
		}
	}

	return &DecreaseResult{PayoutUSD: usdOutAfterFee, Closed: pos.SizeUSD.IsZero()}, nil
}

// reduceCollateral implements spec §4.7.4. The loss-exceeds-collateral check
// (bullet 1) is unconditional — it fires even when this decrease fully
// closes the position, since an uncovered loss still needs to route through
// liquidation/insolvency handling rather than being clamped away.
func reduceCollateral(size, collateral, sizeDelta, collateralDelta, delta *uint256.Int, hasProfit bool) (adjustedDelta, usdOut, reduction *uint256.Int, err error) {
	adj, err := fixedpoint.Ratio(sizeDelta, delta, size)
	if err != nil {
		return nil, nil, nil, err
	}
	if hasProfit {
		usdOut = fixedpoint.Clone(adj)
		reduction = new(uint256.Int)
	} else {
		usdOut = new(uint256.Int)
		reduction = fixedpoint.Clone(adj)
		if reduction.Cmp(collateral) > 0 {
			return nil, nil, nil, ErrInsolvent
		}
	}

	if collateralDelta.Sign() > 0 {
		clamped := fixedpoint.Min(collateralDelta, fixedpoint.SaturatingSub(collateral, reduction))
		usdOut = new(uint256.Int).Add(usdOut, clamped)
		reduction = new(uint256.Int).Add(reduction, clamped)
	}

	if sizeDelta.Cmp(size) == 0 {
		usdOut = new(uint256.Int).Add(usdOut, fixedpoint.SaturatingSub(collateral, reduction))
		reduction = fixedpoint.Clone(collateral)
	}

	return adj, usdOut, reduction, nil
}

func closeSidePrice(underlying *types.Asset, isLong bool) (*uint256.Int, error) {
	if isLong {
		return underlying.MinPrice()
	}
	return underlying.MaxPrice()
}

// updateRealizedPnL folds this decrease's signed dollar delta into the
// position's running realized PnL (spec §9: a signed 128-bit figure).
func updateRealizedPnL(pos *types.Position, delta *uint256.Int, hasProfit bool) {
	if pos.RealizedPnL == nil {
		pos.RealizedPnL = new(big.Int)
	}
	signed := new(big.Int).SetBytes(delta.Bytes())
	if !hasProfit {
		signed.Neg(signed)
	}
	pos.RealizedPnL = new(big.Int).Add(pos.RealizedPnL, signed)
}
