// Package funding implements the cumulative funding-rate accrual described
// in spec §4.9: a per-interval rate driven by pool utilization, refreshed
// on every asset mutation and price update.
package funding

import (
	"perpcore/core/types"
	"perpcore/fixedpoint"

	"github.com/holiman/uint256"
)

// CurrentRate returns the per-interval funding rate: the utilization-
// scaled base rate, floored at base_funding_rate/5, or zero if the pool
// is empty.
func CurrentRate(a *types.Asset) (*uint256.Int, error) {
	if a == nil {
		return nil, ErrZeroAsset
	}
	if a.PoolBalance.IsZero() {
		return new(uint256.Int), nil
	}
	base := uint256.NewInt(a.BaseFundingRateBPS)
	utilized, err := fixedpoint.Ratio(base, a.ReservedAmount, a.PoolBalance)
	if err != nil {
		return nil, err
	}
	floor := new(uint256.Int).Div(base, uint256.NewInt(5))
	return fixedpoint.Max(utilized, floor), nil
}

// UpdateCumulative rolls last_funding_time forward by whole intervals that
// have elapsed since the last refresh, accruing CurrentRate for each one.
// A no-op (returns the existing cumulative rate) if less than one interval
// has elapsed.
func UpdateCumulative(a *types.Asset, nowSec uint64) (*uint256.Int, error) {
	if a == nil {
		return nil, ErrZeroAsset
	}
	if a.FundingIntervalSec == 0 {
		return a.CumulativeFundingRate, nil
	}
	if a.LastFundingTimeSec+a.FundingIntervalSec > nowSec {
		return a.CumulativeFundingRate, nil
	}
	intervals := (nowSec - a.LastFundingTimeSec) / a.FundingIntervalSec
	rate, err := CurrentRate(a)
	if err != nil {
		return nil, err
	}
	accrued, overflow := new(uint256.Int).MulOverflow(rate, uint256.NewInt(intervals))
	if overflow {
		return nil, err
	}
	a.CumulativeFundingRate = new(uint256.Int).Add(a.CumulativeFundingRate, accrued)
	a.LastFundingTimeSec = roundDown(nowSec, a.FundingIntervalSec)
	return a.CumulativeFundingRate, nil
}

func roundDown(now, interval uint64) uint64 {
	if interval == 0 {
		return now
	}
	return now - (now % interval)
}

// PositionFundingFee is the USD funding cost owed by a position since it
// last refreshed its entry_funding_rate.
func PositionFundingFee(sizeUSD, cumulative, entryFundingRate *uint256.Int) (*uint256.Int, error) {
	delta := fixedpoint.SaturatingSub(cumulative, entryFundingRate)
	return fixedpoint.Ratio(sizeUSD, delta, types.FundingRatePrecision)
}
