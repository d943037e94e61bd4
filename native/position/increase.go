package position

import (
	"perpcore/core/types"
	"perpcore/fixedpoint"
	"perpcore/native/funding"
	"perpcore/native/ledger"
	"perpcore/native/oracle"

	"github.com/holiman/uint256"
)

// IncreaseConfig carries the admin-settable parameters an Increase call
// needs beyond the asset/position data itself (spec §6.4).
type IncreaseConfig struct {
	MinLeverage         uint64 // LEV_PRECISION-scaled
	MaxLeverage         uint64 // LEV_PRECISION-scaled
	MarginBaseBPS       uint64
	DynamicPositionFees bool
}

// Increase applies spec §4.7.2 to pos in place. pos is either a freshly
// zero-valued Position (SizeUSD == 0) about to be opened, or an existing
// position being added to; the caller is responsible for the fetch-or-
// create lookup and for persisting pos afterward. collateralNative has
// already gone through the §4.7.1 pre-increase swap, if one was needed.
func Increase(pos *types.Position, collateralAsset, underlying *types.Asset, sizeDeltaUSD, collateralNative *uint256.Int, isLong bool, nowMS, nowSec uint64, cfg IncreaseConfig) error {
	if pos == nil || collateralAsset == nil || underlying == nil {
		return ErrZeroAsset
	}
	if err := validateTokenTriple(collateralAsset, underlying, isLong); err != nil {
		return err
	}
	if err := oracle.ValidatePrice(collateralAsset, nowMS, collateralAsset.MaxStalenessDurationSec); err != nil {
		return err
	}
	if err := oracle.ValidatePrice(underlying, nowMS, underlying.MaxStalenessDurationSec); err != nil {
		return err
	}
	if underlying.PerpState != types.PerpEnabled {
		return ErrPerpDisabled
	}

	collateralUSDDelta, err := MinUSDPrice(collateralAsset, collateralNative)
	if err != nil {
		return err
	}

	if _, err := funding.UpdateCumulative(collateralAsset, nowSec); err != nil {
		return err
	}

	if err := checkOpenInterestCap(underlying, sizeDeltaUSD, isLong); err != nil {
		return err
	}

	reserveDeltaNative, err := FromMaxUSDPrice(collateralAsset, sizeDeltaUSD)
	if err != nil {
		return err
	}
	if isLong {
		if reserveDeltaNative.Cmp(collateralAsset.AvailableLiquidity()) > 0 {
			return ErrInsufficientLiquidity
		}
	} else {
		availableUSD, err := MaxUSDPrice(collateralAsset, collateralAsset.AvailableLiquidity())
		if err != nil {
			return err
		}
		if sizeDeltaUSD.Cmp(availableUSD) > 0 {
			return ErrInsufficientLiquidity
		}
	}

	isNewPosition := pos.SizeUSD == nil || pos.SizeUSD.IsZero()
	entrySidePrice, err := entrySidePrice(underlying, isLong)
	if err != nil {
		return err
	}
	pos.IsLong = isLong
	pos.CollateralAsset = collateralAsset.ID
	pos.UnderlyingAsset = underlying.ID

	if isNewPosition {
		pos.AveragePriceUSD = entrySidePrice
		pos.SizeUSD = new(uint256.Int)
		pos.CollateralUSD = new(uint256.Int)
		if pos.ReserveAmount == nil {
			pos.ReserveAmount = new(uint256.Int)
		}
	} else if sizeDeltaUSD.Sign() > 0 {
		nextSize := new(uint256.Int).Add(pos.SizeUSD, sizeDeltaUSD)
		hasProfit, delta, err := PnL(pos.SizeUSD, pos.AveragePriceUSD, entrySidePrice, isLong, pos.LastIncreasedTimeMS, nowMS, underlying.MinProfitBPS, underlying.MinProfitTimeSec)
		if err != nil {
			return err
		}
		newAvg, err := NextAveragePrice(entrySidePrice, nextSize, delta, isLong, hasProfit)
		if err != nil {
			return err
		}
		pos.AveragePriceUSD = newAvg
	}

	totalFeeUSD, err := TotalFee(pos, underlying, collateralAsset, sizeDeltaUSD, cfg.MarginBaseBPS, cfg.DynamicPositionFees)
	if err != nil {
		return err
	}
	collateral := new(uint256.Int).Add(pos.CollateralUSD, collateralUSDDelta)
	if collateral.Cmp(totalFeeUSD) < 0 {
		return ErrFeesExceedCollateral
	}
	collateral = new(uint256.Int).Sub(collateral, totalFeeUSD)

	pos.EntryFundingRate = fixedpoint.Clone(collateralAsset.CumulativeFundingRate)
	pos.SizeUSD = new(uint256.Int).Add(pos.SizeUSD, sizeDeltaUSD)
	pos.CollateralUSD = collateral
	pos.LastIncreasedTimeMS = nowMS

	if err := enforceSizeAndLeverageBounds(underlying, pos.SizeUSD, pos.CollateralUSD, cfg.MinLeverage, cfg.MaxLeverage, false); err != nil {
		return err
	}

	pos.ReserveAmount = new(uint256.Int).Add(pos.ReserveAmount, reserveDeltaNative)
	if err := ledger.IncreaseReserved(collateralAsset, reserveDeltaNative); err != nil {
		return err
	}

	totalFeeNative, err := FromMinUSDPrice(collateralAsset, totalFeeUSD)
	if err != nil {
		return err
	}

	if isLong {
		if err := ledger.IncreaseGuaranteedUSD(underlying, new(uint256.Int).Add(sizeDeltaUSD, totalFeeUSD)); err != nil {
			return err
		}
		if err := ledger.DecreaseGuaranteedUSD(underlying, collateralUSDDelta); err != nil {
			return err
		}
		if err := ledger.AddLiquidity(collateralAsset, collateralNative); err != nil {
			return err
		}
		if err := ledger.RemoveLiquidity(collateralAsset, totalFeeNative); err != nil {
			return err
		}
		underlying.GlobalLongAveragePriceUSD, err = globalAvgOnIncrease(underlying.GlobalLongSizeUSD, underlying.GlobalLongAveragePriceUSD, sizeDeltaUSD, entrySidePrice)
		if err != nil {
			return err
		}
		underlying.GlobalLongSizeUSD = new(uint256.Int).Add(underlying.GlobalLongSizeUSD, sizeDeltaUSD)
	} else {
		underlying.GlobalShortAveragePriceUSD, err = globalAvgOnIncrease(underlying.GlobalShortSizeUSD, underlying.GlobalShortAveragePriceUSD, sizeDeltaUSD, entrySidePrice)
		if err != nil {
			return err
		}
		underlying.GlobalShortSizeUSD = new(uint256.Int).Add(underlying.GlobalShortSizeUSD, sizeDeltaUSD)
	}

	return nil
}

// ValidateTokenTriple enforces spec §3.2's collateral/underlying side rules.
// Exported for native/orderbook's placement-time pre-validation.
func ValidateTokenTriple(collateralAsset, underlying *types.Asset, isLong bool) error {
	return validateTokenTriple(collateralAsset, underlying, isLong)
}

// validateTokenTriple enforces spec §3.2's collateral/underlying side rules.
func validateTokenTriple(collateralAsset, underlying *types.Asset, isLong bool) error {
	if isLong {
		if collateralAsset.ID != underlying.ID || underlying.Stable {
			return ErrBadCollateralAsset
		}
		return nil
	}
	if !collateralAsset.Stable || !underlying.Shortable {
		return ErrBadCollateralAsset
	}
	return nil
}

func entrySidePrice(underlying *types.Asset, isLong bool) (*uint256.Int, error) {
	if isLong {
		return underlying.MaxPrice()
	}
	return underlying.MinPrice()
}

func checkOpenInterestCap(underlying *types.Asset, sizeDeltaUSD *uint256.Int, isLong bool) error {
	if isLong {
		cap := underlying.OpenInterestLimits.MaxLongUSD
		if cap != nil && cap.Sign() > 0 {
			next := new(uint256.Int).Add(underlying.GlobalLongSizeUSD, sizeDeltaUSD)
			if next.Cmp(cap) > 0 {
				return ErrOICapExceeded
			}
		}
		return nil
	}
	cap := underlying.OpenInterestLimits.MaxShortUSD
	if cap != nil && cap.Sign() > 0 {
		next := new(uint256.Int).Add(underlying.GlobalShortSizeUSD, sizeDeltaUSD)
		if next.Cmp(cap) > 0 {
			return ErrOICapExceeded
		}
	}
	return nil
}

// ValidateSizeAndLeverage is the exported form of enforceSizeAndLeverageBounds,
// used by native/orderbook to simulate a placed order's outcome without
// mutating any position.
func ValidateSizeAndLeverage(underlying *types.Asset, sizeUSD, collateralUSD *uint256.Int, minLeverage, maxLeverage uint64, isLiquidation bool) error {
	return enforceSizeAndLeverageBounds(underlying, sizeUSD, collateralUSD, minLeverage, maxLeverage, isLiquidation)
}

// enforceSizeAndLeverageBounds checks min/max position size and the
// leverage invariant from spec §3.2. isLiquidation widens max leverage by
// 25% per §4.7.6 step 6.
func enforceSizeAndLeverageBounds(underlying *types.Asset, sizeUSD, collateralUSD *uint256.Int, minLeverage, maxLeverage uint64, isLiquidation bool) error {
	limits := underlying.PositionLimits
	if limits.MinSizeUSD != nil && limits.MinSizeUSD.Sign() > 0 && sizeUSD.Cmp(limits.MinSizeUSD) < 0 {
		return ErrSizeBounds
	}
	if limits.MaxSizeUSD != nil && limits.MaxSizeUSD.Sign() > 0 && sizeUSD.Cmp(limits.MaxSizeUSD) > 0 {
		return ErrSizeBounds
	}
	if collateralUSD.IsZero() {
		return ErrAboveMaxLeverage
	}
	effectiveMax := maxLeverage
	if isLiquidation {
		effectiveMax = maxLeverage + (maxLeverage*types.LiquidationLeveragePercent)/100
	}
	minAllowed, err := fixedpoint.Ratio(sizeUSD, types.LevPrecision, uint256.NewInt(minLeverage))
	if err != nil {
		return err
	}
	if collateralUSD.Cmp(minAllowed) > 0 {
		return ErrBelowMinLeverage
	}
	leverage, err := fixedpoint.Ratio(sizeUSD, types.LevPrecision, collateralUSD)
	if err != nil {
		return err
	}
	if leverage.Cmp(uint256.NewInt(effectiveMax)) > 0 {
		return ErrAboveMaxLeverage
	}
	return nil
}

// globalAvgOnIncrease folds sizeDelta valued at price into the pool's
// aggregate long/short average entry price, size-weighted.
func globalAvgOnIncrease(oldSize, oldAvg, sizeDelta, price *uint256.Int) (*uint256.Int, error) {
	nextSize := new(uint256.Int).Add(oldSize, sizeDelta)
	if nextSize.IsZero() {
		return price, nil
	}
	if oldSize.IsZero() {
		return price, nil
	}
	oldNotional, overflow := new(uint256.Int).MulOverflow(oldSize, oldAvg)
	if overflow {
		return nil, ErrZeroAsset
	}
	deltaNotional, overflow := new(uint256.Int).MulOverflow(sizeDelta, price)
	if overflow {
		return nil, ErrZeroAsset
	}
	sum := new(uint256.Int).Add(oldNotional, deltaNotional)
	return new(uint256.Int).Div(sum, nextSize), nil
}
