package position

import (
	"perpcore/fixedpoint"

	"github.com/holiman/uint256"
)

// PnL computes the unrealized (has_profit, delta_usd) pair for a position
// of the given size/average price against mark, applying the
// min-profit-time rule (spec §4.7.5): within the min-profit window, a
// profit smaller than min_profit_bps of size reports as zero.
func PnL(sizeUSD, avgPriceUSD, markUSD *uint256.Int, isLong bool, lastIncreasedTimeMS, nowMS uint64, minProfitBPS, minProfitTimeSec uint64) (hasProfit bool, deltaUSD *uint256.Int, err error) {
	if avgPriceUSD.IsZero() {
		return false, new(uint256.Int), nil
	}
	diff := fixedpoint.AbsDiff(markUSD, avgPriceUSD)
	delta, err := fixedpoint.Ratio(sizeUSD, diff, avgPriceUSD)
	if err != nil {
		return false, nil, err
	}
	hasProfit = (isLong && markUSD.Cmp(avgPriceUSD) > 0) || (!isLong && markUSD.Cmp(avgPriceUSD) < 0)

	if hasProfit && nowMS <= lastIncreasedTimeMS+minProfitTimeSec*1000 {
		lhs := new(uint256.Int).Mul(delta, uint256.NewInt(10_000))
		rhs, overflow := new(uint256.Int).MulOverflow(sizeUSD, uint256.NewInt(minProfitBPS))
		if !overflow && lhs.Cmp(rhs) <= 0 {
			return true, new(uint256.Int), nil
		}
	}
	return hasProfit, delta, nil
}

// NextAveragePrice computes the position's new average_price_usd after an
// increase, per the sign table in spec §4.7.5: divisor = next_size plus
// delta for a long in profit or a short at a loss, minus delta for a long
// at a loss or a short in profit.
func NextAveragePrice(nextPriceUSD, nextSizeUSD, delta *uint256.Int, isLong, hasProfit bool) (*uint256.Int, error) {
	var divisor *uint256.Int
	addsDelta := (isLong && hasProfit) || (!isLong && !hasProfit)
	if addsDelta {
		divisor = new(uint256.Int).Add(nextSizeUSD, delta)
	} else {
		divisor = fixedpoint.SaturatingSub(nextSizeUSD, delta)
	}
	if divisor.IsZero() {
		return nextPriceUSD, nil
	}
	return fixedpoint.Ratio(nextPriceUSD, nextSizeUSD, divisor)
}
