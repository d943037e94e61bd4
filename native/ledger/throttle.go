package ledger

import (
	"sync"

	"perpcore/core/types"

	"golang.org/x/time/rate"
)

// PriceUpdateThrottle defends update_prices against a misbehaving or
// compromised price source flooding a single asset with pushes faster than
// the engine can usefully act on them. One limiter is lazily created per
// asset the first time a push for it is seen.
type PriceUpdateThrottle struct {
	mu       sync.Mutex
	limiters map[types.AssetID]*rate.Limiter
	r        rate.Limit
	burst    int
}

// NewPriceUpdateThrottle allows r pushes per second per asset, with burst
// allowed to arrive back to back.
func NewPriceUpdateThrottle(r rate.Limit, burst int) *PriceUpdateThrottle {
	return &PriceUpdateThrottle{limiters: make(map[types.AssetID]*rate.Limiter), r: r, burst: burst}
}

// Allow reports whether a price push for asset may proceed right now.
func (t *PriceUpdateThrottle) Allow(asset types.AssetID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.limiters[asset]
	if !ok {
		l = rate.NewLimiter(t.r, t.burst)
		t.limiters[asset] = l
	}
	return l.Allow()
}
