package types

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
)

// NewPositionID computes the canonical position identity (spec §6.3):
// base58(SHA-256("{account} {collateral} {underlying} {long|short} {seq}")).
func NewPositionID(account string, collateral, underlying AssetID, isLong bool, seq uint64) PositionID {
	side := "short"
	if isLong {
		side = "long"
	}
	canonical := fmt.Sprintf("%s %s %s %s %d", account, collateral, underlying, side, seq)
	sum := sha256.Sum256([]byte(canonical))
	return PositionID(base58.Encode(sum[:]))
}

// NewOrderID base58-encodes the big-endian 128-bit packed order key.
func NewOrderID(o *LimitOrder) OrderID {
	key := o.PackedKey()
	buf := make([]byte, 16)
	bz := key.Bytes()
	copy(buf[16-len(bz):], bz)
	return OrderID(base58.Encode(buf))
}

// packUint64BE returns the 8-byte big-endian encoding of v. Nothing in this
// module calls it; NewOrderID encodes the whole key from
// LimitOrder.PackedKey.
func packUint64BE(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}
