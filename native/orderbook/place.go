package orderbook

import (
	"perpcore/core/types"
	"perpcore/fixedpoint"
	"perpcore/native/position"

	"github.com/holiman/uint256"
)

// PlaceParams is the caller-supplied order description, pre-identity.
type PlaceParams struct {
	Owner              string
	CollateralAsset    types.AssetID
	UnderlyingAsset    types.AssetID
	IsLong             bool
	OrderType          types.OrderType
	PriceUSD           *uint256.Int
	SizeDeltaUSD       *uint256.Int
	CollateralDeltaUSD *uint256.Int
	AttachedCollateral *uint256.Int
	ExpiryMS           uint64
}

// PlaceConfig carries the admin-settable knobs placement validation needs.
type PlaceConfig struct {
	MaxLimitOrderLifeSec uint64
	MinLeverage          uint64
	MaxLeverage          uint64
}

// Place validates and inserts a new limit order, or merges it into an
// existing same-tuple, same-price resting order (spec §4.8). existingPosition
// is the caller's current position for this (owner, collateral, underlying,
// is_long) key, or nil if none is open.
func Place(book *Book, p PlaceParams, collateralAsset, underlying *types.Asset, existingPosition *types.Position, cfg PlaceConfig, markUSD *uint256.Int, nowMS uint64) (*types.LimitOrder, error) {
	if collateralAsset == nil || underlying == nil || p.PriceUSD == nil || p.PriceUSD.IsZero() {
		return nil, ErrZeroOrder
	}
	if err := position.ValidateTokenTriple(collateralAsset, underlying, p.IsLong); err != nil {
		return nil, ErrBadCollateralAsset
	}

	maxExpiry := nowMS + cfg.MaxLimitOrderLifeSec*1000
	expiry := p.ExpiryMS
	if expiry == 0 || expiry > maxExpiry {
		expiry = maxExpiry
	}

	if err := validateAttachedAmounts(p, existingPosition); err != nil {
		return nil, err
	}

	threshold := deriveThreshold(markUSD, p.PriceUSD)
	tk := ownerKey{
		owner:           p.Owner,
		collateralAsset: p.CollateralAsset,
		underlyingAsset: p.UnderlyingAsset,
		isLong:          p.IsLong,
		orderType:       p.OrderType,
		threshold:       threshold,
	}

	if existingID, ok := book.tuples[tk]; ok {
		existing, ok := book.byID[existingID]
		if !ok {
			delete(book.tuples, tk)
		} else if existing.PriceUSD.Cmp(p.PriceUSD) != 0 {
			return nil, ErrDuplicateOrder
		} else {
			return mergeOrder(book, existing, p, collateralAsset, underlying, existingPosition, cfg)
		}
	}

	order := &types.LimitOrder{
		Owner:              p.Owner,
		Seq:                book.NextSeq(),
		CollateralAsset:    p.CollateralAsset,
		UnderlyingAsset:    p.UnderlyingAsset,
		IsLong:             p.IsLong,
		OrderType:          p.OrderType,
		Threshold:          threshold,
		PriceUSD:           fixedpoint.Clone(p.PriceUSD),
		SizeDeltaUSD:       fixedpoint.Clone(p.SizeDeltaUSD),
		CollateralDeltaUSD: fixedpoint.Clone(p.CollateralDeltaUSD),
		AttachedCollateral: fixedpoint.Clone(p.AttachedCollateral),
		ExpiryMS:           expiry,
	}
	order.ID = types.NewOrderID(order)

	if _, _, err := simulate(order, collateralAsset, underlying, existingPosition, cfg, nowMS); err != nil {
		return nil, err
	}

	book.insert(order)
	return order, nil
}

func mergeOrder(book *Book, existing *types.LimitOrder, p PlaceParams, collateralAsset, underlying *types.Asset, existingPosition *types.Position, cfg PlaceConfig) (*types.LimitOrder, error) {
	book.remove(existing)

	merged := &types.LimitOrder{
		ID:                 existing.ID,
		Owner:              existing.Owner,
		Seq:                existing.Seq,
		CollateralAsset:    existing.CollateralAsset,
		UnderlyingAsset:    existing.UnderlyingAsset,
		IsLong:             existing.IsLong,
		OrderType:          existing.OrderType,
		Threshold:          existing.Threshold,
		PriceUSD:           fixedpoint.Clone(existing.PriceUSD),
		SizeDeltaUSD:       new(uint256.Int).Add(existing.SizeDeltaUSD, p.SizeDeltaUSD),
		CollateralDeltaUSD: new(uint256.Int).Add(existing.CollateralDeltaUSD, p.CollateralDeltaUSD),
		AttachedCollateral: new(uint256.Int).Add(existing.AttachedCollateral, p.AttachedCollateral),
		ExpiryMS:           existing.ExpiryMS,
	}
	if p.ExpiryMS > merged.ExpiryMS {
		merged.ExpiryMS = p.ExpiryMS
	}

	if _, _, err := simulate(merged, collateralAsset, underlying, existingPosition, cfg, 0); err != nil {
		book.insert(existing)
		return nil, err
	}

	book.insert(merged)
	return merged, nil
}

func validateAttachedAmounts(p PlaceParams, existingPosition *types.Position) error {
	hasExisting := existingPosition != nil && existingPosition.SizeUSD != nil && existingPosition.SizeUSD.Sign() > 0
	if p.OrderType == types.OrderIncrease {
		if !hasExisting && (p.AttachedCollateral == nil || p.AttachedCollateral.IsZero()) {
			return ErrBadAttachedAmount
		}
		return nil
	}
	if p.AttachedCollateral != nil && p.AttachedCollateral.Sign() > 0 {
		return ErrBadAttachedAmount
	}
	sizeNonZero := p.SizeDeltaUSD != nil && p.SizeDeltaUSD.Sign() > 0
	collateralNonZero := p.CollateralDeltaUSD != nil && p.CollateralDeltaUSD.Sign() > 0
	if !sizeNonZero && !collateralNonZero {
		return ErrBadAttachedAmount
	}
	return nil
}

// simulate reproduces what execution would do to a position's size and
// collateral, checking it against the same size/leverage bounds
// position.Increase/Decrease enforce, and subtracting potential losses at
// the order's trigger price (spec §4.8 placement validation).
func simulate(o *types.LimitOrder, collateralAsset, underlying *types.Asset, existingPosition *types.Position, cfg PlaceConfig, nowMS uint64) (newSizeUSD, newCollateralUSD *uint256.Int, err error) {
	curSize := new(uint256.Int)
	curCollateral := new(uint256.Int)
	avgPrice := o.PriceUSD
	var lastIncreased uint64
	hasExisting := existingPosition != nil && existingPosition.SizeUSD != nil && existingPosition.SizeUSD.Sign() > 0
	if hasExisting {
		curSize = existingPosition.SizeUSD
		curCollateral = existingPosition.CollateralUSD
		avgPrice = existingPosition.AveragePriceUSD
		lastIncreased = existingPosition.LastIncreasedTimeMS
	}

	if o.OrderType == types.OrderIncrease {
		collateralDelta, cErr := position.MinUSDPrice(collateralAsset, o.AttachedCollateral)
		if cErr != nil {
			return nil, nil, cErr
		}
		newSizeUSD = new(uint256.Int).Add(curSize, o.SizeDeltaUSD)
		newCollateralUSD = new(uint256.Int).Add(curCollateral, collateralDelta)
	} else {
		newSizeUSD = fixedpoint.SaturatingSub(curSize, o.SizeDeltaUSD)
		newCollateralUSD = fixedpoint.SaturatingSub(curCollateral, o.CollateralDeltaUSD)
	}

	if hasExisting {
		hasProfit, delta, pErr := position.PnL(curSize, avgPrice, o.PriceUSD, o.IsLong, lastIncreased, nowMS, underlying.MinProfitBPS, underlying.MinProfitTimeSec)
		if pErr != nil {
			return nil, nil, pErr
		}
		if !hasProfit {
			if delta.Cmp(newCollateralUSD) > 0 {
				return nil, nil, ErrSimulatedLossExceeds
			}
			newCollateralUSD = fixedpoint.SaturatingSub(newCollateralUSD, delta)
		}
	}

	if newSizeUSD.Sign() > 0 {
		if err := position.ValidateSizeAndLeverage(underlying, newSizeUSD, newCollateralUSD, cfg.MinLeverage, cfg.MaxLeverage, false); err != nil {
			return nil, nil, err
		}
	}
	return newSizeUSD, newCollateralUSD, nil
}
