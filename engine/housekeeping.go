package engine

import (
	"math/big"

	"perpcore/core/types"
	"perpcore/native/funding"
	"perpcore/native/ledger"

	"github.com/holiman/uint256"
)

// toUSDFloat renders a DollarDenom-scaled fixed-point amount as a float64
// for Prometheus, which has no native fixed-point gauge type.
func toUSDFloat(amount *uint256.Int) float64 {
	if amount == nil {
		return 0
	}
	f := new(big.Float).SetInt(amount.ToBig())
	denom := new(big.Float).SetInt(types.DollarDenom.ToBig())
	out, _ := new(big.Float).Quo(f, denom).Float64()
	return out
}

// toNativeFloat renders a raw native-unit amount as a float64 for
// Prometheus; callers decide whether the asset's decimals matter for the
// gauge in question.
func toNativeFloat(amount *uint256.Int) float64 {
	if amount == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(amount.ToBig()).Float64()
	return f
}

// RefreshMetrics recomputes the engine's Prometheus gauges (AUM, open
// interest, reserved pool balance, funding rate) from the current store
// state. It takes no part in any entry operation's atomicity — call it
// periodically (e.g. from cmd/enginectl's scripted driver) or after a
// batch of update_prices ticks.
func (e *Engine) RefreshMetrics() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, a := range e.state.Assets() {
		aum, err := ledger.AssetAUM(a, new(uint256.Int), false)
		if err != nil {
			return err
		}
		e.metrics.SetAUM(string(a.ID), toUSDFloat(aum))
		e.metrics.SetPoolReserved(string(a.ID), toNativeFloat(a.ReservedAmount))
		e.metrics.SetOpenInterest(string(a.ID), "long", toUSDFloat(a.GlobalLongSizeUSD))
		e.metrics.SetOpenInterest(string(a.ID), "short", toUSDFloat(a.GlobalShortSizeUSD))
		rate, err := funding.CurrentRate(a)
		if err != nil {
			return err
		}
		e.metrics.SetFundingRate(string(a.ID), toUSDFloat(rate))
	}
	return nil
}
