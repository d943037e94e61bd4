package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEngineMetricsIsSingleton(t *testing.T) {
	require.Same(t, Engine(), Engine())
}

func TestEngineMetricsNilReceiverIsNoOp(t *testing.T) {
	var m *EngineMetrics
	require.NotPanics(t, func() {
		m.ObserveMint("near.near", nil)
		m.ObserveBurn("near.near", errors.New("rejected"))
		m.ObserveSwap("near.near", "usdc.near", nil)
		m.ObservePosition("near.near", "increase", nil)
		m.ObserveLiquidation("near.near", nil)
		m.ObserveOrder("near.near", "place", nil)
		m.SetAUM("near.near", 1.0)
		m.SetOpenInterest("near.near", "long", 1.0)
		m.SetPoolReserved("near.near", 1.0)
		m.SetFundingRate("near.near", 0.0001)
	})
}

func TestObserveOutcomeLabels(t *testing.T) {
	m := Engine()
	m.ObserveMint("usdc.near", nil)
	m.ObserveMint("usdc.near", errors.New("slippage"))
	require.Equal(t, "ok", outcomeLabel(nil))
	require.Equal(t, "rejected", outcomeLabel(errors.New("x")))
}
