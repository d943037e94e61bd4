// Package oracle implements the price gate described in spec §4.3: a
// per-second max-change clamp on ingested prices and a staleness check
// every price-dependent operation must pass before trusting an asset's
// price.
package oracle

import (
	"perpcore/core/types"
	"perpcore/native/funding"

	"github.com/holiman/uint256"
)

// Update is one (asset, price, spread?) tuple from an update_prices call.
type Update struct {
	Asset      *types.Asset
	NewPrice   *uint256.Int
	SpreadBPS  *uint64 // nil leaves spread_bps unchanged
	NowMS      uint64
	PrevNowMS  uint64 // last_change_timestamp_ms before this update
}

// ApplyUpdate clamps NewPrice against the asset's max_price_change_bps
// (scaled by elapsed seconds), commits the accepted price, spread, and
// timestamp onto the asset, then rolls the asset's cumulative funding rate
// forward (funding.UpdateCumulative). Returns the accepted price.
func ApplyUpdate(u Update) (*uint256.Int, error) {
	if u.Asset == nil {
		return nil, ErrZeroAsset
	}
	a := u.Asset
	accepted := u.NewPrice

	if a.MaxPriceChangeBPS > 0 && !a.PriceUSD.IsZero() {
		elapsedSec := uint64(0)
		if u.NowMS > u.PrevNowMS {
			elapsedSec = (u.NowMS - u.PrevNowMS) / 1000
		}
		if elapsedSec == 0 {
			elapsedSec = 1
		}
		allowed, err := maxChangeAllowed(a.PriceUSD, a.MaxPriceChangeBPS, elapsedSec)
		if err != nil {
			return nil, err
		}
		diff := absDiff(a.PriceUSD, u.NewPrice)
		if diff.Cmp(allowed) > 0 {
			if u.NewPrice.Cmp(a.PriceUSD) > 0 {
				accepted = new(uint256.Int).Add(a.PriceUSD, allowed)
			} else {
				accepted = new(uint256.Int).Sub(a.PriceUSD, allowed)
			}
		}
	}

	a.PriceUSD = accepted
	if u.SpreadBPS != nil {
		a.SpreadBPS = *u.SpreadBPS
	}
	a.LastChangeTimestampMS = u.NowMS
	if _, err := funding.UpdateCumulative(a, u.NowMS/1000); err != nil {
		return nil, err
	}
	return accepted, nil
}

// maxChangeAllowed returns price * bps/10000 * elapsedSec, the maximum
// absolute move permitted this tick.
func maxChangeAllowed(price *uint256.Int, bps uint64, elapsedSec uint64) (*uint256.Int, error) {
	perSec, overflow := new(uint256.Int).MulOverflow(price, uint256.NewInt(bps))
	if overflow {
		return nil, ErrZeroAsset
	}
	perSec = new(uint256.Int).Div(perSec, uint256.NewInt(10_000))
	allowed, overflow := new(uint256.Int).MulOverflow(perSec, uint256.NewInt(elapsedSec))
	if overflow {
		return nil, ErrZeroAsset
	}
	return allowed, nil
}

func absDiff(a, b *uint256.Int) *uint256.Int {
	if a.Cmp(b) > 0 {
		return new(uint256.Int).Sub(a, b)
	}
	return new(uint256.Int).Sub(b, a)
}

// ValidatePrice enforces the staleness and zero-price checks every
// price-dependent operation runs before trusting a non-stable asset's
// price (spec §4.3).
func ValidatePrice(a *types.Asset, nowMS uint64, maxStalenessSec uint64) error {
	if a == nil {
		return ErrZeroAsset
	}
	if a.PriceUSD == nil || a.PriceUSD.IsZero() {
		return ErrZeroPrice
	}
	if a.Stable {
		return nil
	}
	if nowMS < a.LastChangeTimestampMS {
		return nil
	}
	elapsedSec := (nowMS - a.LastChangeTimestampMS) / 1000
	if elapsedSec > maxStalenessSec {
		return ErrStalePrice
	}
	return nil
}
