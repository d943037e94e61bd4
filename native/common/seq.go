package common

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/google/uuid"
)

// SeqGenerator produces the monotonically increasing sequence numbers used
// for position identity (state.Store.PositionSeq). Limit orders do not use
// it: the arrival-order tail of a packed order key comes from the order
// book's own counter, orderbook.Book.NextSeq. The counter is seeded from a
// process-unique uuid so that two engine instances restarted against the
// same persisted state never hand out colliding sequence numbers during the
// window before persisted state catches up.
type SeqGenerator struct {
	counter uint64
}

// NewSeqGenerator seeds a fresh generator from a random uuid.
func NewSeqGenerator() *SeqGenerator {
	seed := uuid.New()
	// Fold the 128-bit uuid down to a 32-bit seed occupying the high bits of
	// the sequence space, leaving 32 bits of headroom for same-process
	// increments before any realistic restart cadence could repeat a seed.
	high := binary.BigEndian.Uint32(seed[:4])
	return &SeqGenerator{counter: uint64(high) << 32}
}

// Next returns the next sequence number.
func (g *SeqGenerator) Next() uint64 {
	return atomic.AddUint64(&g.counter, 1)
}

// Resume rebuilds a generator that continues from a previously observed
// high-water mark, used when replaying persisted state at startup.
func Resume(lastSeq uint64) *SeqGenerator {
	return &SeqGenerator{counter: lastSeq}
}
