package main

import (
	"testing"

	"perpcore/core/events"
	"perpcore/core/types"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestRecorderCapsToCapacity(t *testing.T) {
	rec := newRecorder(2)
	rec.Emit(events.OracleUpdate{AssetID: types.AssetID("a"), PriceUSD: new(uint256.Int)})
	rec.Emit(events.OracleUpdate{AssetID: types.AssetID("b"), PriceUSD: new(uint256.Int)})
	rec.Emit(events.OracleUpdate{AssetID: types.AssetID("c"), PriceUSD: new(uint256.Int)})

	snap := rec.Snapshot()
	require.Len(t, snap, 2)
	last := snap[len(snap)-1].Data.(events.OracleUpdate)
	require.Equal(t, types.AssetID("c"), last.AssetID)
}

func TestRecorderDefaultsCapacity(t *testing.T) {
	rec := newRecorder(0)
	require.Equal(t, 256, rec.cap)
}
