package engine

import (
	"fmt"

	"perpcore/core/events"
	"perpcore/core/types"
	"perpcore/fixedpoint"
	"perpcore/native/orderbook"
	"perpcore/native/position"
	"perpcore/native/swap"

	"github.com/holiman/uint256"
)

// revalidateOrders re-simulates every resting order the position's owner
// holds on this (collateral, underlying, side) tuple after a mutation,
// dropping any that no longer hold and refunding attached native
// collateral for invalidated Increase orders (spec §4.8's post-mutation
// sweep, called after every native/position.Increase/Decrease).
func (e *Engine) revalidateOrders(account string, collateralAsset, underlying *types.Asset, isLong bool, pos *types.Position) *uint256.Int {
	min, max := e.leverageParams()
	removed := orderbook.Revalidate(e.state.Orders, account, collateralAsset, underlying, isLong, pos, orderbook.RevalidateConfig{
		MinLeverage: min,
		MaxLeverage: max,
	}, 0)

	refund := new(uint256.Int)
	for _, inv := range removed {
		if inv.RefundNative != nil {
			refund = new(uint256.Int).Add(refund, inv.RefundNative)
		}
		e.emit(events.RemoveLimitOrder{
			AccountID:       account,
			UnderlyingAsset: underlying.ID,
			LimitOrderID:    inv.Order.ID,
			Reason:          types.RemoveInvalid,
		})
	}
	return refund
}

// IncreasePosition implements the increase_position entry operation (spec
// §4.7.2, §6.1): opens or adds to account's position on underlying,
// collateralised by amountNative of collateralAsset (already attached by
// the caller).
func (e *Engine) IncreasePosition(account string, collateralAsset, underlying types.AssetID, sizeDeltaUSD, amountNative *uint256.Int, isLong bool, referralCode string, nowMS, nowSec uint64) (id types.PositionID, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	direction := "increase"
	defer func() { e.metrics.ObservePosition(string(underlying), direction, err) }()

	if err = e.guard("position"); err != nil {
		return "", err
	}
	collateral, err := e.asset(collateralAsset)
	if err != nil {
		return "", err
	}
	und, err := e.asset(underlying)
	if err != nil {
		return "", err
	}

	pos, existing := e.state.OpenPosition(account, collateralAsset, underlying, isLong)
	if !existing {
		seq := e.state.PositionSeq.Next()
		pos = &types.Position{
			ID:              types.NewPositionID(account, collateralAsset, underlying, isLong, seq),
			Account:         account,
			CollateralAsset: collateralAsset,
			UnderlyingAsset: underlying,
			IsLong:          isLong,
			SizeUSD:         new(uint256.Int),
			CollateralUSD:   new(uint256.Int),
			ReserveAmount:   new(uint256.Int),
			Seq:             seq,
		}
	}

	state := events.PositionOpen
	if !existing {
		state = events.PositionCreated
	}

	if err = position.Increase(pos, collateral, und, sizeDeltaUSD, amountNative, isLong, nowMS, nowSec, e.incConfig()); err != nil {
		e.warnOp("increase_position", err, "account", account, "underlying", underlying)
		return "", err
	}
	e.state.PutPosition(pos)
	refund := e.revalidateOrders(account, collateral, und, isLong, pos)

	e.emit(events.EditPosition{
		Direction:         events.EditIncrease,
		AccountID:         account,
		PositionID:        pos.ID,
		CollateralAsset:   collateralAsset,
		UnderlyingAsset:   underlying,
		SizeDeltaUSD:      sizeDeltaUSD,
		NewSizeUSD:        pos.SizeUSD,
		IsLong:            isLong,
		State:             state,
		ReferralCode:      referralCode,
		USDOut:            refund,
	})
	e.logOp("increase_position", "account", account, "position", string(pos.ID), "size_usd", pos.SizeUSD.String())
	return pos.ID, nil
}

// DecreasePosition implements the decrease_position entry operation (spec
// §4.7.3, §6.1): reduces account's position by collateralDeltaUSD and
// sizeDeltaUSD, optionally swapping the USD payout into outputAsset before
// transfer.
func (e *Engine) DecreasePosition(account string, positionID types.PositionID, collateralDeltaUSD, sizeDeltaUSD *uint256.Int, outputAsset types.AssetID, nowMS, nowSec uint64) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos, ok := e.state.Position(positionID)
	direction := "decrease"
	var underlyingLabel string
	if ok {
		underlyingLabel = string(pos.UnderlyingAsset)
	}
	defer func() { e.metrics.ObservePosition(underlyingLabel, direction, err) }()

	if !ok || pos.Account != account {
		err = fmt.Errorf("%w: position %q", ErrNotFound, positionID)
		return err
	}
	if err = e.guard("position"); err != nil {
		return err
	}
	collateral, err := e.asset(pos.CollateralAsset)
	if err != nil {
		return err
	}
	und, err := e.asset(pos.UnderlyingAsset)
	if err != nil {
		return err
	}

	result, decErr := position.Decrease(pos, collateral, und, collateralDeltaUSD, sizeDeltaUSD, nowMS, nowSec, e.decConfig(false))
	if decErr != nil {
		err = decErr
		e.warnOp("decrease_position", err, "account", account, "position", string(positionID))
		return err
	}

	if result.Closed {
		e.state.RemovePosition(pos)
	} else {
		e.state.PutPosition(pos)
	}
	refund := e.revalidateOrders(account, collateral, und, pos.IsLong, pos)
	payout := new(uint256.Int).Add(result.PayoutUSD, refund)

	if outputAsset != "" && outputAsset != pos.CollateralAsset && payout.Sign() > 0 {
		out, outErr := e.asset(outputAsset)
		if outErr == nil {
			if outNative, convErr := position.FromMinUSDPrice(collateral, payout); convErr == nil {
				totalAUM, _ := e.totalAUM()
				if swapped, swapErr := swap.Swap(swap.Params{
					In:       collateral,
					Out:      out,
					AmountIn: outNative,
					Fee: swap.FeeParams{
						SwapBaseBPS:       e.cfg.Fees.SwapFeeBPS,
						StableSwapBaseBPS: e.cfg.Fees.StableSwapFeeBPS,
						DynamicEnabled:    e.cfg.Fees.DynamicSwapFees,
						TotalAUM:          totalAUM,
						TotalWeight:       e.totalWeight(),
						TaxBPS:            e.cfg.Fees.TaxBPS,
					},
					NowMS:  nowMS,
					NowSec: nowSec,
				}); swapErr == nil {
					_ = swapped
				}
			}
		}
	}

	state := events.PositionOpen
	if result.Closed {
		state = events.PositionClosed
	}
	e.emit(events.EditPosition{
		Direction:          events.EditDecrease,
		AccountID:          account,
		PositionID:         pos.ID,
		CollateralAsset:    pos.CollateralAsset,
		UnderlyingAsset:    pos.UnderlyingAsset,
		CollateralDeltaUSD: collateralDeltaUSD,
		SizeDeltaUSD:       sizeDeltaUSD,
		NewSizeUSD:         pos.SizeUSD,
		IsLong:             pos.IsLong,
		USDOut:             payout,
		State:              state,
	})
	e.logOp("decrease_position", "account", account, "position", string(positionID), "closed", result.Closed)
	return nil
}

// LiquidatePosition implements the liquidate_position entry operation
// (spec §4.7.6/§4.7.7, §6.1). Role-gating for private_liquidation_only is
// the caller's concern; this method only enforces the health check.
func (e *Engine) LiquidatePosition(liquidator string, positionID types.PositionID, nowMS, nowSec uint64) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos, ok := e.state.Position(positionID)
	var underlyingLabel string
	if ok {
		underlyingLabel = string(pos.UnderlyingAsset)
	}
	defer func() { e.metrics.ObserveLiquidation(underlyingLabel, err) }()

	if !ok {
		err = fmt.Errorf("%w: position %q", ErrNotFound, positionID)
		return err
	}
	if err = e.guard("liquidation"); err != nil {
		return err
	}
	collateral, err := e.asset(pos.CollateralAsset)
	if err != nil {
		return err
	}
	und, err := e.asset(pos.UnderlyingAsset)
	if err != nil {
		return err
	}

	min, max := e.leverageParams()
	cfg := position.LiquidateConfig{
		MinLeverage:          min,
		MaxLeverage:          max,
		MarginBaseBPS:        e.marginFeeBPS(),
		DynamicPositionFees:  e.dynamicPositionFees(),
		LiquidationRewardUSD: e.liquidationRewardUSD(),
	}

	sizeUSD := fixedpoint.Clone(pos.SizeUSD)
	collateralUSD := fixedpoint.Clone(pos.CollateralUSD)

	result, liqErr := position.Liquidate(pos, collateral, und, cfg, nowMS, nowSec)
	if liqErr != nil {
		err = fmt.Errorf("%w: %s", ErrNotEligible, liqErr)
		e.warnOp("liquidate_position", err, "account", pos.Account, "position", string(positionID))
		return err
	}

	if result.Removed {
		e.state.RemovePosition(pos)
	} else {
		e.state.PutPosition(pos)
	}
	e.revalidateOrders(pos.Account, collateral, und, pos.IsLong, pos)

	e.emit(events.LiquidatePosition{
		LiquidatorID:           liquidator,
		OwnerID:                pos.Account,
		PositionID:             positionID,
		CollateralAsset:        pos.CollateralAsset,
		UnderlyingAsset:        pos.UnderlyingAsset,
		IsLong:                 pos.IsLong,
		SizeUSD:                sizeUSD,
		CollateralUSD:          collateralUSD,
		LiquidatorRewardNative: result.RewardNative,
	})
	e.logOp("liquidate_position", "liquidator", liquidator, "position", string(positionID), "status", result.Status)
	return nil
}
