package engine

import (
	"fmt"

	"perpcore/core/events"
	"perpcore/core/types"
	"perpcore/native/orderbook"

	"github.com/holiman/uint256"
)

func (e *Engine) orderbookConfig() orderbook.PlaceConfig {
	min, max := e.leverageParams()
	return orderbook.PlaceConfig{
		MaxLimitOrderLifeSec: e.cfg.MaxLimitOrderLifeSec,
		MinLeverage:          min,
		MaxLeverage:          max,
	}
}

// PlaceOrder implements the place_order entry operation (spec §4.8, §6.1).
// attachedCollateral is only meaningful (and required non-zero) for an
// Increase order with no existing position.
func (e *Engine) PlaceOrder(account string, collateralAsset, underlying types.AssetID, isLong bool, orderType types.OrderType, priceUSD, sizeDeltaUSD, collateralDeltaUSD, attachedCollateral *uint256.Int, expiryMS uint64, nowMS uint64) (id types.OrderID, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() { e.metrics.ObserveOrder(string(underlying), "place", err) }()

	if err = e.guard("orders"); err != nil {
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
	existing, _ := e.state.OpenPosition(account, collateralAsset, underlying, isLong)

	markUSD := und.PriceUSD
	order, placeErr := orderbook.Place(e.state.Orders, orderbook.PlaceParams{
		Owner:              account,
		CollateralAsset:    collateralAsset,
		UnderlyingAsset:    underlying,
		IsLong:             isLong,
		OrderType:          orderType,
		PriceUSD:           priceUSD,
		SizeDeltaUSD:       sizeDeltaUSD,
		CollateralDeltaUSD: collateralDeltaUSD,
		AttachedCollateral: attachedCollateral,
		ExpiryMS:           expiryMS,
	}, collateral, und, existing, e.orderbookConfig(), markUSD, nowMS)
	if placeErr != nil {
		err = fmt.Errorf("%w: %s", ErrLimitBreached, placeErr)
		e.warnOp("place_order", err, "account", account, "underlying", underlying)
		return "", err
	}

	e.emit(events.PlaceLimitOrder{
		AccountID:                account,
		LimitOrderID:             order.ID,
		CollateralAsset:          collateralAsset,
		UnderlyingAsset:          underlying,
		OrderType:                orderType,
		Threshold:                order.Threshold,
		CollateralDeltaUSD:       collateralDeltaUSD,
		AttachedCollateralNative: attachedCollateral,
		SizeDeltaUSD:             sizeDeltaUSD,
		PriceUSD:                 priceUSD,
		ExpiryMS:                 order.ExpiryMS,
		IsLong:                   isLong,
	})
	e.logOp("place_order", "account", account, "order", string(order.ID))
	return order.ID, nil
}

// ExecuteOrder implements the execute_order entry operation (spec §4.8,
// §6.1): any caller may trigger an eligible order once its threshold is
// crossed by mark price.
func (e *Engine) ExecuteOrder(underlying types.AssetID, orderID types.OrderID, nowMS, nowSec uint64) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() { e.metrics.ObserveOrder(string(underlying), "execute", err) }()

	if err = e.guard("orders"); err != nil {
		return err
	}
	und, err := e.asset(underlying)
	if err != nil {
		return err
	}
	order, ok := e.state.Orders.Get(orderID)
	if !ok {
		err = fmt.Errorf("%w: order %q", ErrNotFound, orderID)
		return err
	}
	collateral, err := e.asset(order.CollateralAsset)
	if err != nil {
		return err
	}
	pos, existing := e.state.OpenPosition(order.Owner, order.CollateralAsset, underlying, order.IsLong)
	if !existing {
		if order.OrderType != types.OrderIncrease {
			err = fmt.Errorf("%w: order %q has no position to decrease", ErrNotFound, orderID)
			return err
		}
		seq := e.state.PositionSeq.Next()
		pos = &types.Position{
			ID:              types.NewPositionID(order.Owner, order.CollateralAsset, underlying, order.IsLong, seq),
			Account:         order.Owner,
			CollateralAsset: order.CollateralAsset,
			UnderlyingAsset: underlying,
			IsLong:          order.IsLong,
			SizeUSD:         new(uint256.Int),
			CollateralUSD:   new(uint256.Int),
			ReserveAmount:   new(uint256.Int),
			Seq:             seq,
		}
	}

	outcome, execErr := orderbook.Execute(e.state.Orders, underlying, orderID, und.PriceUSD, pos, collateral, und, e.incConfig(), e.decConfig(false), nowMS, nowSec)
	if execErr != nil {
		err = fmt.Errorf("%w: %s", ErrNotEligible, execErr)
		e.warnOp("execute_order", err, "order", string(orderID))
		return err
	}

	if outcome.Reason == types.RemoveExecuted && outcome.Order.OrderType == types.OrderIncrease {
		e.state.PutPosition(pos)
	}
	if outcome.DecreaseResult != nil {
		if outcome.DecreaseResult.Closed {
			e.state.RemovePosition(pos)
		} else {
			e.state.PutPosition(pos)
		}
	}

	e.emit(events.RemoveLimitOrder{
		AccountID:       order.Owner,
		UnderlyingAsset: underlying,
		LimitOrderID:    orderID,
		Reason:          outcome.Reason,
	})
	e.logOp("execute_order", "order", string(orderID), "reason", outcome.Reason.String())
	return nil
}

// CancelOrder implements the cancel_order entry operation (spec §4.8,
// §6.1). Caller authorization (only the order's owner may cancel) is
// enforced here since the orderbook package itself is owner-agnostic.
func (e *Engine) CancelOrder(account string, orderID types.OrderID) (refund *uint256.Int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	order, ok := e.state.Orders.Get(orderID)
	if !ok {
		err = fmt.Errorf("%w: order %q", ErrNotFound, orderID)
		return nil, err
	}
	defer func() { e.metrics.ObserveOrder(string(order.UnderlyingAsset), "cancel", err) }()
	if order.Owner != account {
		err = fmt.Errorf("%w: order %q not owned by %s", ErrNotFound, orderID, account)
		return nil, err
	}

	_, refund, err = orderbook.Cancel(e.state.Orders, orderID)
	if err != nil {
		e.warnOp("cancel_order", err, "account", account, "order", string(orderID))
		return nil, err
	}

	e.emit(events.RemoveLimitOrder{
		AccountID:       account,
		UnderlyingAsset: order.UnderlyingAsset,
		LimitOrderID:    orderID,
		Reason:          types.RemoveRemoved,
	})
	e.logOp("cancel_order", "account", account, "order", string(orderID))
	return refund, nil
}
