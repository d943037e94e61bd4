package main

import (
	"fmt"
	"math/big"
	"os"

	"perpcore/core/types"
	"perpcore/engine"

	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"
)

// scenario is the on-disk replay script shape: a handful of assets to seed
// the store with, followed by the ordered sequence of entry operations to
// apply — a declarative document a human can read and diff, decoded with
// gopkg.in/yaml.v3. (The engine configuration itself is a TOML document,
// read by config.Load.)
type scenario struct {
	Assets     []scenarioAsset `yaml:"assets"`
	Operations []scenarioOp    `yaml:"operations"`
}

type scenarioAsset struct {
	ID                      string `yaml:"id"`
	Decimals                uint8  `yaml:"decimals"`
	Stable                  bool   `yaml:"stable"`
	Shortable               bool   `yaml:"shortable"`
	TokenWeight             uint64 `yaml:"token_weight"`
	PriceUSD                string `yaml:"price_usd"`
	SpreadBPS               uint64 `yaml:"spread_bps"`
	MaxStalenessDurationSec uint64 `yaml:"max_staleness_duration_sec"`
	MinProfitBPS            uint64 `yaml:"min_profit_bps"`
	MinProfitTimeSec        uint64 `yaml:"min_profit_time_sec"`
}

// scenarioOp is a loosely-typed envelope: Op selects which engine method to
// call, and only the fields that operation needs are populated. Amounts are
// decimal strings (spec §3's 128-bit amounts don't fit YAML's native number
// types without risking silent float truncation).
type scenarioOp struct {
	Op                 string `yaml:"op"`
	Account            string `yaml:"account"`
	Asset              string `yaml:"asset"`
	CollateralAsset    string `yaml:"collateral_asset"`
	UnderlyingAsset    string `yaml:"underlying_asset"`
	OutputAsset        string `yaml:"output_asset"`
	InAsset            string `yaml:"in_asset"`
	OutAsset           string `yaml:"out_asset"`
	IsLong             bool   `yaml:"is_long"`
	OrderType          string `yaml:"order_type"`
	PositionID         string `yaml:"position_id"`
	OrderID            string `yaml:"order_id"`
	Amount             string `yaml:"amount"`
	MinOut             string `yaml:"min_out"`
	SizeDeltaUSD       string `yaml:"size_delta_usd"`
	CollateralDeltaUSD string `yaml:"collateral_delta_usd"`
	AttachedCollateral string `yaml:"attached_collateral"`
	PriceUSD           string `yaml:"price_usd"`
	ExpiryMS           uint64 `yaml:"expiry_ms"`
	ReferralCode       string `yaml:"referral_code"`
	Tier               uint64 `yaml:"tier"`
	NowMS              uint64 `yaml:"now_ms"`
	NowSec             uint64 `yaml:"now_sec"`
	Ticks              []struct {
		Asset     string  `yaml:"asset"`
		Price     string  `yaml:"price"`
		SpreadBPS *uint64 `yaml:"spread_bps"`
	} `yaml:"ticks"`
}

func loadScenario(path string) (*scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	var s scenario
	if err := yaml.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	return &s, nil
}

// parseAmount decodes a base-10 decimal string into a 128-bit amount,
// using the same big.Int.SetString/uint256.Int.SetBytes round-trip the
// engine applies to the LiquidationRewardUSD config string.
func parseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return new(uint256.Int).SetBytes(v.Bytes()), nil
}

func (a scenarioAsset) toAsset() (*types.Asset, error) {
	price, err := parseAmount(a.PriceUSD)
	if err != nil {
		return nil, fmt.Errorf("asset %s: price_usd: %w", a.ID, err)
	}
	decimals := a.Decimals
	weight := a.TokenWeight
	if weight == 0 {
		weight = 1
	}
	maxStaleness := a.MaxStalenessDurationSec
	if maxStaleness == 0 {
		maxStaleness = 3_600
	}
	return &types.Asset{
		ID:                         types.AssetID(a.ID),
		Decimals:                   decimals,
		Stable:                     a.Stable,
		Shortable:                  a.Shortable,
		TokenWeight:                weight,
		Balance:                    new(uint256.Int),
		PoolBalance:                new(uint256.Int),
		AccumulatedFees:            new(uint256.Int),
		ReservedAmount:             new(uint256.Int),
		BufferAmount:               new(uint256.Int),
		MaxPoolAmount:              new(uint256.Int),
		GlobalLongSizeUSD:          new(uint256.Int),
		GlobalShortSizeUSD:         new(uint256.Int),
		GlobalLongAveragePriceUSD:  new(uint256.Int),
		GlobalShortAveragePriceUSD: new(uint256.Int),
		PriceUSD:                   price,
		SpreadBPS:                  a.SpreadBPS,
		MaxStalenessDurationSec:    maxStaleness,
		CumulativeFundingRate:      new(uint256.Int),
		GuaranteedUSD:              new(uint256.Int),
		LPSupport:                  types.LPSupportEnabled,
		SwapState:                  types.SwapEnabled,
		PerpState:                  types.PerpEnabled,
		MinProfitBPS:               a.MinProfitBPS,
		MinProfitTimeSec:           a.MinProfitTimeSec,
	}, nil
}

func orderTypeFromString(s string) (types.OrderType, error) {
	switch s {
	case "increase":
		return types.OrderIncrease, nil
	case "decrease":
		return types.OrderDecrease, nil
	default:
		return 0, fmt.Errorf("unknown order_type %q", s)
	}
}

// applyScenario seeds eng's store and then runs every operation in order,
// logging and continuing past individual failures so a replay surfaces every
// rejection in one pass instead of stopping at the first one.
func applyScenario(eng *engine.Engine, st storeLike, s *scenario) []error {
	var errs []error
	for _, a := range s.Assets {
		asset, err := a.toAsset()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		st.PutAsset(asset)
	}

	for i, op := range s.Operations {
		if err := applyOp(eng, op); err != nil {
			errs = append(errs, fmt.Errorf("operation %d (%s): %w", i, op.Op, err))
		}
	}
	return errs
}

func applyOp(eng *engine.Engine, op scenarioOp) error {
	switch op.Op {
	case "update_prices":
		ticks := make([]engine.PriceTick, 0, len(op.Ticks))
		for _, t := range op.Ticks {
			price, err := parseAmount(t.Price)
			if err != nil {
				return err
			}
			ticks = append(ticks, engine.PriceTick{
				Asset:     types.AssetID(t.Asset),
				Price:     price,
				SpreadBPS: t.SpreadBPS,
			})
		}
		for _, tickErr := range eng.UpdatePrices(ticks, op.NowMS) {
			if tickErr != nil {
				return tickErr
			}
		}
		return nil

	case "mint_lp":
		amount, err := parseAmount(op.Amount)
		if err != nil {
			return err
		}
		minOut, err := parseAmount(op.MinOut)
		if err != nil {
			return err
		}
		_, err = eng.MintLP(op.Account, types.AssetID(op.Asset), amount, minOut, op.NowMS, op.NowSec)
		return err

	case "burn_lp":
		amount, err := parseAmount(op.Amount)
		if err != nil {
			return err
		}
		minOut, err := parseAmount(op.MinOut)
		if err != nil {
			return err
		}
		_, err = eng.BurnLP(op.Account, amount, types.AssetID(op.Asset), minOut, op.NowMS, op.NowSec)
		return err

	case "swap":
		amountIn, err := parseAmount(op.Amount)
		if err != nil {
			return err
		}
		minOut, err := parseAmount(op.MinOut)
		if err != nil {
			return err
		}
		_, err = eng.Swap(op.Account, types.AssetID(op.InAsset), types.AssetID(op.OutAsset), amountIn, minOut, op.ReferralCode, op.NowMS, op.NowSec)
		return err

	case "increase_position":
		sizeDelta, err := parseAmount(op.SizeDeltaUSD)
		if err != nil {
			return err
		}
		amountNative, err := parseAmount(op.Amount)
		if err != nil {
			return err
		}
		_, err = eng.IncreasePosition(op.Account, types.AssetID(op.CollateralAsset), types.AssetID(op.UnderlyingAsset), sizeDelta, amountNative, op.IsLong, op.ReferralCode, op.NowMS, op.NowSec)
		return err

	case "decrease_position":
		collateralDelta, err := parseAmount(op.CollateralDeltaUSD)
		if err != nil {
			return err
		}
		sizeDelta, err := parseAmount(op.SizeDeltaUSD)
		if err != nil {
			return err
		}
		return eng.DecreasePosition(op.Account, types.PositionID(op.PositionID), collateralDelta, sizeDelta, types.AssetID(op.OutputAsset), op.NowMS, op.NowSec)

	case "liquidate_position":
		return eng.LiquidatePosition(op.Account, types.PositionID(op.PositionID), op.NowMS, op.NowSec)

	case "place_order":
		orderType, err := orderTypeFromString(op.OrderType)
		if err != nil {
			return err
		}
		priceUSD, err := parseAmount(op.PriceUSD)
		if err != nil {
			return err
		}
		sizeDelta, err := parseAmount(op.SizeDeltaUSD)
		if err != nil {
			return err
		}
		collateralDelta, err := parseAmount(op.CollateralDeltaUSD)
		if err != nil {
			return err
		}
		attached, err := parseAmount(op.AttachedCollateral)
		if err != nil {
			return err
		}
		_, err = eng.PlaceOrder(op.Account, types.AssetID(op.CollateralAsset), types.AssetID(op.UnderlyingAsset), op.IsLong, orderType, priceUSD, sizeDelta, collateralDelta, attached, op.ExpiryMS, op.NowMS)
		return err

	case "execute_order":
		return eng.ExecuteOrder(types.AssetID(op.UnderlyingAsset), types.OrderID(op.OrderID), op.NowMS, op.NowSec)

	case "cancel_order":
		_, err := eng.CancelOrder(op.Account, types.OrderID(op.OrderID))
		return err

	case "create_referral_code":
		attached, err := parseAmount(op.Amount)
		if err != nil {
			return err
		}
		_, err = eng.CreateReferralCode(op.Account, op.ReferralCode, attached)
		return err

	case "set_referral_code":
		attached, err := parseAmount(op.Amount)
		if err != nil {
			return err
		}
		_, err = eng.SetReferralCode(op.Account, op.ReferralCode, attached)
		return err

	default:
		return fmt.Errorf("unknown operation %q", op.Op)
	}
}

// storeLike is the narrow slice of core/state.Store that scenario seeding
// needs: just PutAsset, which *state.Store provides.
type storeLike interface {
	PutAsset(a *types.Asset)
}
