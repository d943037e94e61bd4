// Package metrics exposes the engine's Prometheus surface: counters for each
// entry operation (spec §6.1) and gauges for the pool-wide aggregates an
// operator dashboard would watch (AUM, open interest).
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics is the engine's Prometheus registry. A nil *EngineMetrics is
// safe to call methods on — every method is a no-op in that case, mirroring
// how callers that never configured metrics still work.
type EngineMetrics struct {
	mints        *prometheus.CounterVec
	burns        *prometheus.CounterVec
	swaps        *prometheus.CounterVec
	positions    *prometheus.CounterVec
	liquidations *prometheus.CounterVec
	orders       *prometheus.CounterVec

	aum           *prometheus.GaugeVec
	openInterest  *prometheus.GaugeVec
	poolReserved  *prometheus.GaugeVec
	fundingRate   *prometheus.GaugeVec
}

var (
	engineOnce     sync.Once
	engineRegistry *EngineMetrics
)

// Engine returns the lazily-initialised, process-wide engine metrics
// registry.
func Engine() *EngineMetrics {
	engineOnce.Do(func() {
		engineRegistry = &EngineMetrics{
			mints: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "perp",
				Subsystem: "lp",
				Name:      "mint_total",
				Help:      "Count of mint_lp operations by asset and outcome.",
			}, []string{"asset", "outcome"}),
			burns: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "perp",
				Subsystem: "lp",
				Name:      "burn_total",
				Help:      "Count of burn_lp operations by asset and outcome.",
			}, []string{"asset", "outcome"}),
			swaps: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "perp",
				Subsystem: "swap",
				Name:      "total",
				Help:      "Count of swap operations by token pair and outcome.",
			}, []string{"token_in", "token_out", "outcome"}),
			positions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "perp",
				Subsystem: "position",
				Name:      "total",
				Help:      "Count of increase_position/decrease_position operations by underlying, direction, and outcome.",
			}, []string{"underlying", "direction", "outcome"}),
			liquidations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "perp",
				Subsystem: "position",
				Name:      "liquidations_total",
				Help:      "Count of liquidate_position operations by underlying and outcome.",
			}, []string{"underlying", "outcome"}),
			orders: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "perp",
				Subsystem: "order",
				Name:      "total",
				Help:      "Count of place_order/execute_order/cancel_order operations by underlying, action, and outcome.",
			}, []string{"underlying", "action", "outcome"}),
			aum: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "perp",
				Subsystem: "pool",
				Name:      "aum_usd",
				Help:      "Total assets under management, in USD, per asset.",
			}, []string{"asset"}),
			openInterest: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "perp",
				Subsystem: "position",
				Name:      "open_interest_usd",
				Help:      "Open interest in USD per underlying and side.",
			}, []string{"underlying", "side"}),
			poolReserved: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "perp",
				Subsystem: "pool",
				Name:      "reserved_native",
				Help:      "Native-denominated amount reserved against open positions, per asset.",
			}, []string{"asset"}),
			fundingRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "perp",
				Subsystem: "position",
				Name:      "funding_rate",
				Help:      "Most recently computed per-interval funding rate per underlying.",
			}, []string{"underlying"}),
		}
		prometheus.MustRegister(
			engineRegistry.mints,
			engineRegistry.burns,
			engineRegistry.swaps,
			engineRegistry.positions,
			engineRegistry.liquidations,
			engineRegistry.orders,
			engineRegistry.aum,
			engineRegistry.openInterest,
			engineRegistry.poolReserved,
			engineRegistry.fundingRate,
		)
	})
	return engineRegistry
}

func outcomeLabel(err error) string {
	if err != nil {
		return "rejected"
	}
	return "ok"
}

// ObserveMint records a mint_lp outcome.
func (m *EngineMetrics) ObserveMint(asset string, err error) {
	if m == nil {
		return
	}
	m.mints.WithLabelValues(asset, outcomeLabel(err)).Inc()
}

// ObserveBurn records a burn_lp outcome.
func (m *EngineMetrics) ObserveBurn(asset string, err error) {
	if m == nil {
		return
	}
	m.burns.WithLabelValues(asset, outcomeLabel(err)).Inc()
}

// ObserveSwap records a swap outcome.
func (m *EngineMetrics) ObserveSwap(tokenIn, tokenOut string, err error) {
	if m == nil {
		return
	}
	m.swaps.WithLabelValues(tokenIn, tokenOut, outcomeLabel(err)).Inc()
}

// ObservePosition records an increase_position or decrease_position outcome.
// direction is "increase" or "decrease".
func (m *EngineMetrics) ObservePosition(underlying, direction string, err error) {
	if m == nil {
		return
	}
	m.positions.WithLabelValues(underlying, direction, outcomeLabel(err)).Inc()
}

// ObserveLiquidation records a liquidate_position outcome.
func (m *EngineMetrics) ObserveLiquidation(underlying string, err error) {
	if m == nil {
		return
	}
	m.liquidations.WithLabelValues(underlying, outcomeLabel(err)).Inc()
}

// ObserveOrder records a place_order, execute_order, or cancel_order outcome.
func (m *EngineMetrics) ObserveOrder(underlying, action string, err error) {
	if m == nil {
		return
	}
	m.orders.WithLabelValues(underlying, action, outcomeLabel(err)).Inc()
}

// SetAUM sets the current USD-denominated assets under management for asset.
func (m *EngineMetrics) SetAUM(asset string, usd float64) {
	if m == nil {
		return
	}
	m.aum.WithLabelValues(asset).Set(usd)
}

// SetOpenInterest sets the current USD-denominated open interest for
// underlying on the given side ("long" or "short").
func (m *EngineMetrics) SetOpenInterest(underlying, side string, usd float64) {
	if m == nil {
		return
	}
	m.openInterest.WithLabelValues(underlying, side).Set(usd)
}

// SetPoolReserved sets the native-denominated amount reserved against open
// positions for asset.
func (m *EngineMetrics) SetPoolReserved(asset string, native float64) {
	if m == nil {
		return
	}
	m.poolReserved.WithLabelValues(asset).Set(native)
}

// SetFundingRate sets the most recently computed funding rate for underlying.
func (m *EngineMetrics) SetFundingRate(underlying string, rate float64) {
	if m == nil {
		return
	}
	m.fundingRate.WithLabelValues(underlying).Set(rate)
}
