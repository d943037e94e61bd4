// Package engine is the top-level orchestrator that exposes spec §6.1's
// external entry operations: one dispatch surface that reads and writes
// the single shared state.Store inside an atomic critical section per
// call, delegating the actual accounting to native/*.
package engine

import (
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"perpcore/config"
	"perpcore/core/events"
	"perpcore/core/state"
	"perpcore/core/types"
	"perpcore/native/common"
	"perpcore/native/ledger"
	"perpcore/native/position"
	"perpcore/observability/metrics"

	"github.com/holiman/uint256"
	"golang.org/x/time/rate"
)

// Engine owns the one mutable world (state.Store) and the admin-settable
// configuration every entry operation consults. Every public method takes
// the engine's mutex for its entire body: spec §5 requires each entry
// operation to commit or abort as a whole, and a single mutex is the
// simplest way to guarantee no two operations interleave their reads and
// writes of the shared store.
type Engine struct {
	mu    sync.Mutex
	state *state.Store
	cfg   config.EngineConfig

	log      *slog.Logger
	metrics  *metrics.EngineMetrics
	throttle *ledger.PriceUpdateThrottle
}

// New wires an Engine against an existing store and configuration. log may
// be nil, in which case slog.Default() is used.
func New(st *state.Store, cfg config.EngineConfig, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		state:    st,
		cfg:      cfg,
		log:      log,
		metrics:  metrics.Engine(),
		throttle: ledger.NewPriceUpdateThrottle(rate.Limit(5), 10),
	}
}

// SetConfig replaces the admin-settable configuration document (spec §6.4).
// Callers are expected to have already run it through config.ValidateConfig.
func (e *Engine) SetConfig(cfg config.EngineConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
}

func (e *Engine) asset(id types.AssetID) (*types.Asset, error) {
	a := e.state.Asset(id)
	if a == nil {
		return nil, fmt.Errorf("%w: unknown asset %q", ErrPrecondition, id)
	}
	return a, nil
}

// guard rejects the call if module is currently paused (spec §9
// Guard/PauseView), wrapping native/common's sentinel in the taxonomy.
func (e *Engine) guard(module string) error {
	if err := common.Guard(e.state, module); err != nil {
		return fmt.Errorf("%w: %s", ErrPrecondition, err)
	}
	return nil
}

func (e *Engine) emit(evt events.Event) {
	e.state.Emit(evt)
}

func (e *Engine) leverageParams() (min, max uint64) {
	return e.cfg.Leverage.MinLeverage, e.cfg.Leverage.MaxLeverage
}

func (e *Engine) marginFeeBPS() uint64 {
	return e.cfg.Fees.MarginFeeBPS
}

func (e *Engine) dynamicPositionFees() bool {
	return e.cfg.Fees.DynamicPositionFees
}

func (e *Engine) incConfig() position.IncreaseConfig {
	min, max := e.leverageParams()
	return position.IncreaseConfig{
		MinLeverage:         min,
		MaxLeverage:         max,
		MarginBaseBPS:       e.marginFeeBPS(),
		DynamicPositionFees: e.dynamicPositionFees(),
	}
}

func (e *Engine) decConfig(isLiquidation bool) position.DecreaseConfig {
	min, max := e.leverageParams()
	return position.DecreaseConfig{
		MinLeverage:         min,
		MaxLeverage:         max,
		MarginBaseBPS:       e.marginFeeBPS(),
		DynamicPositionFees: e.dynamicPositionFees(),
		IsLiquidation:       isLiquidation,
	}
}

func (e *Engine) liquidationRewardUSD() *uint256.Int {
	r, ok := new(big.Int).SetString(e.cfg.LiquidationRewardUSD, 10)
	if !ok || r.Sign() < 0 {
		return new(uint256.Int)
	}
	return new(uint256.Int).SetBytes(r.Bytes())
}

func (e *Engine) logOp(op string, args ...any) {
	e.log.Info("engine op", append([]any{"op", op}, args...)...)
}

func (e *Engine) warnOp(op string, err error, args ...any) {
	e.log.Warn("engine op rejected", append([]any{"op", op, "error", err}, args...)...)
}
