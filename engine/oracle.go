package engine

import (
	"fmt"

	"perpcore/core/events"
	"perpcore/core/types"
	"perpcore/native/oracle"

	"github.com/holiman/uint256"
)

// PriceTick is one (asset, price, spread?) tuple of an update_prices call.
type PriceTick struct {
	Asset     types.AssetID
	Price     *uint256.Int
	SpreadBPS *uint64
}

// UpdatePrices implements the update_prices entry operation (spec §4.3,
// §6.1). Each tick is applied independently: one asset's rejection (stale
// source throttled, unknown asset) does not block the rest of the batch
// rather than treating the whole push as one atomic multi-asset transaction.
func (e *Engine) UpdatePrices(ticks []PriceTick, nowMS uint64) []error {
	e.mu.Lock()
	defer e.mu.Unlock()

	errs := make([]error, len(ticks))
	for i, t := range ticks {
		errs[i] = e.applyPriceTick(t, nowMS)
	}
	return errs
}

func (e *Engine) applyPriceTick(t PriceTick, nowMS uint64) error {
	if !e.throttle.Allow(t.Asset) {
		err := fmt.Errorf("%w: price updates for %q arriving too fast", ErrLimitBreached, t.Asset)
		e.warnOp("update_prices", err, "asset", t.Asset)
		return err
	}
	a, err := e.asset(t.Asset)
	if err != nil {
		return err
	}
	if t.Price == nil || t.Price.IsZero() {
		err := fmt.Errorf("%w: zero price for %q", ErrPrecondition, t.Asset)
		e.warnOp("update_prices", err, "asset", t.Asset)
		return err
	}

	prevMS := a.LastChangeTimestampMS
	accepted, applyErr := oracle.ApplyUpdate(oracle.Update{
		Asset:     a,
		NewPrice:  t.Price,
		SpreadBPS: t.SpreadBPS,
		NowMS:     nowMS,
		PrevNowMS: prevMS,
	})
	if applyErr != nil {
		err := fmt.Errorf("%w: %s", ErrInvariantViolation, applyErr)
		e.warnOp("update_prices", err, "asset", t.Asset)
		return err
	}

	spread := a.SpreadBPS
	e.emit(events.OracleUpdate{
		AssetID:   t.Asset,
		PriceUSD:  accepted,
		SpreadBPS: spread,
		Source:    "update_prices",
	})
	e.logOp("update_prices", "asset", t.Asset, "price", accepted.String())
	return nil
}
