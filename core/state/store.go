// Package state holds the engine's in-memory working set: assets,
// positions, the limit-order book, LP supply, and referral registrations.
// It is the single mutable world every engine/ operation reads from and
// writes back to inside one atomic critical section (spec §5).
package state

import (
	"sync"

	"perpcore/core/events"
	"perpcore/core/types"
	"perpcore/native/common"
	"perpcore/native/lp"
	"perpcore/native/orderbook"
	"perpcore/native/referrals"
)

// Store is the engine's full working set.
type Store struct {
	mu sync.RWMutex

	assets    map[types.AssetID]*types.Asset
	positions map[types.PositionID]*types.Position
	// ownerPositions indexes open positions by (account, collateral,
	// underlying, is_long) for the "fetch existing position" step every
	// increase/decrease/liquidate/place_order entry point needs first.
	ownerPositions map[string]types.PositionID

	Orders      *orderbook.Book
	LP          *lp.Ledger
	ReferralSeq *common.SeqGenerator
	PositionSeq *common.SeqGenerator

	referralCodes map[string]*referrals.Code
	userReferrals map[string]string

	pausedModules map[string]bool

	emitter events.Emitter
}

// New constructs an empty store.
func New() *Store {
	return &Store{
		assets:         make(map[types.AssetID]*types.Asset),
		positions:      make(map[types.PositionID]*types.Position),
		ownerPositions: make(map[string]types.PositionID),
		Orders:         orderbook.New(),
		LP:             lp.NewLedger(),
		ReferralSeq:    common.NewSeqGenerator(),
		PositionSeq:    common.NewSeqGenerator(),
		referralCodes:  make(map[string]*referrals.Code),
		userReferrals:  make(map[string]string),
		pausedModules:  make(map[string]bool),
		emitter:        events.NoopEmitter{},
	}
}

// SetEmitter configures the event sink used by this store's native module
// engines (e.g. the referrals Engine built on top of it).
func (s *Store) SetEmitter(e events.Emitter) {
	if e == nil {
		e = events.NoopEmitter{}
	}
	s.mu.Lock()
	s.emitter = e
	s.mu.Unlock()
}

// Emit forwards an event to the configured emitter.
func (s *Store) Emit(evt events.Event) {
	s.mu.RLock()
	e := s.emitter
	s.mu.RUnlock()
	if e != nil {
		e.Emit(evt)
	}
}

// IsPaused implements native/common.PauseView.
func (s *Store) IsPaused(module string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pausedModules[module]
}

// SetPaused toggles a module's pause flag (spec §9 Guard/PauseView).
func (s *Store) SetPaused(module string, paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pausedModules[module] = paused
}

// Asset returns the registered asset for id, or nil if none.
func (s *Store) Asset(id types.AssetID) *types.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assets[id]
}

// PutAsset registers or replaces an asset.
func (s *Store) PutAsset(a *types.Asset) {
	if a == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[a.ID] = a
}

// Assets returns every registered asset.
func (s *Store) Assets() []*types.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.Asset, 0, len(s.assets))
	for _, a := range s.assets {
		out = append(out, a)
	}
	return out
}

func ownerKey(account string, collateral, underlying types.AssetID, isLong bool) string {
	side := "s"
	if isLong {
		side = "l"
	}
	return string(collateral) + "|" + string(underlying) + "|" + side + "|" + account
}

// Position looks up an open position by id.
func (s *Store) Position(id types.PositionID) (*types.Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.positions[id]
	return p, ok
}

// OpenPosition returns the caller's open position for this (collateral,
// underlying, side) key, if any — the lookup every position-mutating
// entry point performs before dispatching into native/position.
func (s *Store) OpenPosition(account string, collateral, underlying types.AssetID, isLong bool) (*types.Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.ownerPositions[ownerKey(account, collateral, underlying, isLong)]
	if !ok {
		return nil, false
	}
	p, ok := s.positions[id]
	return p, ok
}

// PutPosition inserts or updates a position, indexing it by owner key.
func (s *Store) PutPosition(p *types.Position) {
	if p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[p.ID] = p
	s.ownerPositions[ownerKey(p.Account, p.CollateralAsset, p.UnderlyingAsset, p.IsLong)] = p.ID
}

// RemovePosition deletes a fully-closed/liquidated position from both
// indexes.
func (s *Store) RemovePosition(p *types.Position) {
	if p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.positions, p.ID)
	key := ownerKey(p.Account, p.CollateralAsset, p.UnderlyingAsset, p.IsLong)
	if s.ownerPositions[key] == p.ID {
		delete(s.ownerPositions, key)
	}
}

// GetReferralCode implements native/referrals.Store.
func (s *Store) GetReferralCode(code string) (*referrals.Code, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.referralCodes[code]
	if !ok {
		return nil, false, nil
	}
	clone := *c
	return &clone, true, nil
}

// PutReferralCode implements native/referrals.Store.
func (s *Store) PutReferralCode(c *referrals.Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *c
	s.referralCodes[c.Code] = &clone
	return nil
}

// GetUserReferralCode implements native/referrals.Store.
func (s *Store) GetUserReferralCode(account string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.userReferrals[account]
	return code, ok, nil
}

// PutUserReferralCode implements native/referrals.Store.
func (s *Store) PutUserReferralCode(account, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userReferrals[account] = code
	return nil
}
