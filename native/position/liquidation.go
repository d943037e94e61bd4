package position

import (
	"perpcore/core/types"
	"perpcore/fixedpoint"
	"perpcore/native/funding"
	"perpcore/native/ledger"

	"github.com/holiman/uint256"
)

// Status is the outcome of a liquidation health check (spec §4.7.6).
type Status int

const (
	StatusOK Status = iota
	StatusBelowMinLeverage
	StatusMaxLeverageExceeded
	StatusInsolvent
)

// Check is the result of CheckLiquidation: the status, the insolvency
// reason (if any), and the fee figures used to reach it — total_fee_usd is
// shrunk to whatever collateral remains when collateral can't cover it in
// full (spec §4.7.6 step 4).
type Check struct {
	Status      Status
	Reason      string
	HasProfit   bool
	Delta       *uint256.Int
	TotalFeeUSD *uint256.Int
	Remaining   *uint256.Int
}

// CheckLiquidation evaluates a position's solvency and leverage health
// against its full size closing out (spec §4.7.6). It refreshes the
// collateral asset's cumulative funding rate first, the same as
// Increase/Decrease do before computing fees, so the fee figure below isn't
// read against a stale rate.
func CheckLiquidation(pos *types.Position, underlying, collateralAsset *types.Asset, marginBaseBPS uint64, dynamicPositionFees bool, minLeverage, maxLeverage uint64, isLiquidation bool, nowMS, nowSec uint64) (*Check, error) {
	closeMark, err := closeSidePrice(underlying, pos.IsLong)
	if err != nil {
		return nil, err
	}
	hasProfit, delta, err := PnL(pos.SizeUSD, pos.AveragePriceUSD, closeMark, pos.IsLong, pos.LastIncreasedTimeMS, nowMS, underlying.MinProfitBPS, underlying.MinProfitTimeSec)
	if err != nil {
		return nil, err
	}
	if _, err := funding.UpdateCumulative(collateralAsset, nowSec); err != nil {
		return nil, err
	}
	totalFeeUSD, err := TotalFee(pos, underlying, collateralAsset, pos.SizeUSD, marginBaseBPS, dynamicPositionFees)
	if err != nil {
		return nil, err
	}

	if !hasProfit && pos.CollateralUSD.Cmp(delta) < 0 {
		return &Check{Status: StatusInsolvent, Reason: "losses exceed collateral", HasProfit: hasProfit, Delta: delta, TotalFeeUSD: totalFeeUSD, Remaining: new(uint256.Int)}, nil
	}

	var remaining *uint256.Int
	if hasProfit {
		remaining = fixedpoint.Clone(pos.CollateralUSD)
	} else {
		remaining = new(uint256.Int).Sub(pos.CollateralUSD, delta)
	}

	if remaining.Cmp(totalFeeUSD) < 0 {
		return &Check{Status: StatusInsolvent, Reason: "fees exceed collateral", HasProfit: hasProfit, Delta: delta, TotalFeeUSD: fixedpoint.Clone(remaining), Remaining: fixedpoint.Clone(remaining)}, nil
	}

	marginPercent := new(uint256.Int).Mul(remaining, uint256.NewInt(100))
	marginPercent = new(uint256.Int).Div(marginPercent, pos.CollateralUSD)
	if marginPercent.Cmp(uint256.NewInt(types.MinMarginPercent)) < 0 {
		return &Check{Status: StatusInsolvent, Reason: "margin level", HasProfit: hasProfit, Delta: delta, TotalFeeUSD: totalFeeUSD, Remaining: remaining}, nil
	}

	effectiveMax := maxLeverage
	if isLiquidation {
		effectiveMax = maxLeverage + (maxLeverage*types.LiquidationLeveragePercent)/100
	}
	remainingAfterFees := fixedpoint.SaturatingSub(remaining, totalFeeUSD)
	leverage, err := fixedpoint.Ratio(pos.SizeUSD, types.LevPrecision, remainingAfterFees)
	if err != nil {
		return nil, err
	}

	status := StatusOK
	if leverage.Cmp(uint256.NewInt(effectiveMax)) > 0 {
		status = StatusMaxLeverageExceeded
	} else if leverage.Cmp(uint256.NewInt(minLeverage)) < 0 {
		status = StatusBelowMinLeverage
	}
	return &Check{Status: status, HasProfit: hasProfit, Delta: delta, TotalFeeUSD: totalFeeUSD, Remaining: remaining}, nil
}

// LiquidateConfig bundles the admin-settable knobs Liquidate needs.
type LiquidateConfig struct {
	MinLeverage          uint64
	MaxLeverage          uint64
	MarginBaseBPS        uint64
	DynamicPositionFees  bool
	LiquidationRewardUSD *uint256.Int
}

// LiquidateResult reports what happened and, on an Insolvent liquidation,
// the native reward paid to the liquidator.
type LiquidateResult struct {
	Status        Status
	Removed       bool
	RewardNative  *uint256.Int
	SizeReduction *uint256.Int // populated on de-leverage
}

// Liquidate applies spec §4.7.7. On Status Ok or BelowMinLeverage it
// rejects with ErrNotLiquidatable; the caller is expected to have already
// checked role-gating for private_liquidation_only.
func Liquidate(pos *types.Position, collateralAsset, underlying *types.Asset, cfg LiquidateConfig, nowMS, nowSec uint64) (*LiquidateResult, error) {
	check, err := CheckLiquidation(pos, underlying, collateralAsset, cfg.MarginBaseBPS, cfg.DynamicPositionFees, cfg.MinLeverage, cfg.MaxLeverage, true, nowMS, nowSec)
	if err != nil {
		return nil, err
	}

	switch check.Status {
	case StatusInsolvent:
		return liquidateInsolvent(pos, collateralAsset, underlying, check, cfg)
	case StatusMaxLeverageExceeded:
		return deleverage(pos, collateralAsset, underlying, check, cfg, nowMS, nowSec)
	default:
		return nil, ErrNotLiquidatable
	}
}

func liquidateInsolvent(pos *types.Position, collateralAsset, underlying *types.Asset, check *Check, cfg LiquidateConfig) (*LiquidateResult, error) {
	isLong := pos.IsLong

	if isLong {
		underlying.GlobalLongSizeUSD = fixedpoint.SaturatingSub(underlying.GlobalLongSizeUSD, pos.SizeUSD)
	} else {
		underlying.GlobalShortSizeUSD = fixedpoint.SaturatingSub(underlying.GlobalShortSizeUSD, pos.SizeUSD)
	}
	if err := ledger.DecreaseReserved(collateralAsset, pos.ReserveAmount); err != nil {
		return nil, err
	}

	if isLong {
		if err := ledger.DecreaseGuaranteedUSD(underlying, fixedpoint.SaturatingSub(pos.SizeUSD, pos.CollateralUSD)); err != nil {
			return nil, err
		}
		totalFeeNative, err := FromMinUSDPrice(collateralAsset, check.TotalFeeUSD)
		if err != nil {
			return nil, err
		}
		if err := ledger.RemoveLiquidity(collateralAsset, totalFeeNative); err != nil {
			return nil, err
		}
	}

	remainingUSD := fixedpoint.SaturatingSub(pos.CollateralUSD, check.TotalFeeUSD)
	if !isLong {
		remainingNative, err := FromMinUSDPrice(collateralAsset, remainingUSD)
		if err != nil {
			return nil, err
		}
		if err := ledger.AddLiquidity(collateralAsset, remainingNative); err != nil {
			return nil, err
		}
	}

	rewardUSD, err := fixedpoint.Ratio(remainingUSD, uint256.NewInt(types.LiquidationRewardPercent), uint256.NewInt(100))
	if err != nil {
		return nil, err
	}
	rewardUSD = fixedpoint.Min(rewardUSD, cfg.LiquidationRewardUSD)
	rewardNative, err := FromMinUSDPrice(collateralAsset, rewardUSD)
	if err != nil {
		return nil, err
	}
	if err := ledger.RemoveLiquidity(collateralAsset, rewardNative); err != nil {
		return nil, err
	}

	pos.SizeUSD = new(uint256.Int)
	pos.CollateralUSD = new(uint256.Int)

	return &LiquidateResult{Status: StatusInsolvent, Removed: true, RewardNative: rewardNative}, nil
}

// deleverage implements the MaxLeverageExceeded branch: a forced partial
// Decrease with no collateral change and no liquidator reward.
func deleverage(pos *types.Position, collateralAsset, underlying *types.Asset, check *Check, cfg LiquidateConfig, nowMS, nowSec uint64) (*LiquidateResult, error) {
	remainingAfterFees := fixedpoint.SaturatingSub(check.Remaining, check.TotalFeeUSD)
	targetSize, err := fixedpoint.Ratio(remainingAfterFees, uint256.NewInt(cfg.MaxLeverage), types.LevPrecision)
	if err != nil {
		return nil, err
	}
	sizeReduction := fixedpoint.SaturatingSub(pos.SizeUSD, targetSize)
	if sizeReduction.IsZero() {
		return nil, ErrNotLiquidatable
	}

	_, err = Decrease(pos, collateralAsset, underlying, new(uint256.Int), sizeReduction, nowMS, nowSec, DecreaseConfig{
		MinLeverage:         cfg.MinLeverage,
		MaxLeverage:         cfg.MaxLeverage,
		MarginBaseBPS:       cfg.MarginBaseBPS,
		DynamicPositionFees: cfg.DynamicPositionFees,
		IsLiquidation:       true,
	})
	if err != nil {
		return nil, err
	}

	return &LiquidateResult{Status: StatusMaxLeverageExceeded, Removed: pos.SizeUSD.IsZero(), SizeReduction: sizeReduction}, nil
}
