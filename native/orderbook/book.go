// Package orderbook implements the limit-order book described in spec
// §4.8: per-underlying price-ordered storage keyed by the packed 128-bit
// id from types.LimitOrder.PackedKey, an owner reverse-index, placement
// validation that mirrors execution, and the revalidation sweep triggered
// whenever a position mutates.
package orderbook

import (
	"perpcore/core/types"

	"github.com/google/btree"
	"github.com/holiman/uint256"
)

const btreeDegree = 32

// ownerKey identifies the at-most-one-order tuple from spec §4.8's
// placement rule: (owner, collateral, underlying, is_long, order_type,
// threshold).
type ownerKey struct {
	owner           string
	collateralAsset types.AssetID
	underlyingAsset types.AssetID
	isLong          bool
	orderType       types.OrderType
	threshold       types.Threshold
}

// Book holds every live order across all underlyings. One Book instance is
// shared engine-wide; each entry point's critical section mutates it
// in place.
type Book struct {
	trees      map[types.AssetID]*btree.BTreeG[*types.LimitOrder]
	byID       map[types.OrderID]*types.LimitOrder
	ownerIndex map[string]map[types.OrderID]types.AssetID
	tuples     map[ownerKey]types.OrderID
	seq        uint64
}

// New constructs an empty order book.
func New() *Book {
	return &Book{
		trees:      make(map[types.AssetID]*btree.BTreeG[*types.LimitOrder]),
		byID:       make(map[types.OrderID]*types.LimitOrder),
		ownerIndex: make(map[string]map[types.OrderID]types.AssetID),
		tuples:     make(map[ownerKey]types.OrderID),
	}
}

func lessOrder(a, b *types.LimitOrder) bool {
	return a.PackedKey().Cmp(b.PackedKey()) < 0
}

func (b *Book) treeFor(underlying types.AssetID) *btree.BTreeG[*types.LimitOrder] {
	t, ok := b.trees[underlying]
	if !ok {
		t = btree.NewG[*types.LimitOrder](btreeDegree, lessOrder)
		b.trees[underlying] = t
	}
	return t
}

func keyOf(o *types.LimitOrder) ownerKey {
	return ownerKey{
		owner:           o.Owner,
		collateralAsset: o.CollateralAsset,
		underlyingAsset: o.UnderlyingAsset,
		isLong:          o.IsLong,
		orderType:       o.OrderType,
		threshold:       o.Threshold,
	}
}

// NextSeq returns the next arrival sequence number for a new order's
// packed key, then advances the counter.
func (b *Book) NextSeq() uint64 {
	b.seq++
	return b.seq
}

func (b *Book) insert(o *types.LimitOrder) {
	b.treeFor(o.UnderlyingAsset).ReplaceOrInsert(o)
	b.byID[o.ID] = o
	owned, ok := b.ownerIndex[o.Owner]
	if !ok {
		owned = make(map[types.OrderID]types.AssetID)
		b.ownerIndex[o.Owner] = owned
	}
	owned[o.ID] = o.UnderlyingAsset
	b.tuples[keyOf(o)] = o.ID
}

func (b *Book) remove(o *types.LimitOrder) {
	b.treeFor(o.UnderlyingAsset).Delete(o)
	delete(b.byID, o.ID)
	if owned, ok := b.ownerIndex[o.Owner]; ok {
		delete(owned, o.ID)
		if len(owned) == 0 {
			delete(b.ownerIndex, o.Owner)
		}
	}
	if b.tuples[keyOf(o)] == o.ID {
		delete(b.tuples, keyOf(o))
	}
}

// Get looks up a live order by id.
func (b *Book) Get(id types.OrderID) (*types.LimitOrder, bool) {
	o, ok := b.byID[id]
	return o, ok
}

// OrdersForOwner returns every live order belonging to owner.
func (b *Book) OrdersForOwner(owner string) []*types.LimitOrder {
	owned := b.ownerIndex[owner]
	out := make([]*types.LimitOrder, 0, len(owned))
	for id := range owned {
		if o, ok := b.byID[id]; ok {
			out = append(out, o)
		}
	}
	return out
}

// OrdersForUnderlying returns every live order resting on underlying's book,
// in price-time priority order.
func (b *Book) OrdersForUnderlying(underlying types.AssetID) []*types.LimitOrder {
	t, ok := b.trees[underlying]
	if !ok {
		return nil
	}
	out := make([]*types.LimitOrder, 0, t.Len())
	t.Ascend(func(o *types.LimitOrder) bool {
		out = append(out, o)
		return true
	})
	return out
}

// deriveThreshold implements spec §4.8: Below if mark < price, else Above.
func deriveThreshold(markUSD, priceUSD *uint256.Int) types.Threshold {
	if markUSD.Cmp(priceUSD) < 0 {
		return types.ThresholdBelow
	}
	return types.ThresholdAbove
}

// triggers reports whether mark crosses an order's threshold (spec §4.8
// execution step 2): Above fires when mark ≥ price, Below when mark ≤ price.
func triggers(o *types.LimitOrder, markUSD *uint256.Int) bool {
	if o.Threshold == types.ThresholdAbove {
		return markUSD.Cmp(o.PriceUSD) >= 0
	}
	return markUSD.Cmp(o.PriceUSD) <= 0
}
