package main

import (
	"encoding/json"
	"net/http"

	"perpcore/core/state"
	"perpcore/core/types"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newRouter builds the read-only operator surface named in SPEC_FULL.md's
// domain-stack table: asset/position/order inspection plus the recent
// event tail and the Prometheus scrape endpoint, all mounted the way the
// teacher's gateway/routes.New wires chi — one router, one handler per
// route, no middleware, no state mutation reachable from any of these
// handlers.
func newRouter(st *state.Store, rec *recorder) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/assets", func(w http.ResponseWriter, r *http.Request) {
		assets := st.Assets()
		out := make([]assetView, 0, len(assets))
		for _, a := range assets {
			out = append(out, newAssetView(a))
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/positions/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := types.PositionID(chi.URLParam(r, "id"))
		pos, ok := st.Position(id)
		if !ok {
			http.Error(w, "position not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, newPositionView(pos))
	})

	r.Get("/orders/{underlying}", func(w http.ResponseWriter, r *http.Request) {
		underlying := types.AssetID(chi.URLParam(r, "underlying"))
		orders := st.Orders.OrdersForUnderlying(underlying)
		out := make([]orderView, 0, len(orders))
		for _, o := range orders {
			out = append(out, newOrderView(o))
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/events", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, rec.Snapshot())
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// assetView/positionView/orderView render the domain's uint256.Int amounts
// as plain decimal strings rather than leaning on that type's own JSON
// encoding, so a caller never has to know how holiman/uint256 marshals a
// 256-bit integer to consume this API.
type assetView struct {
	ID                 string `json:"id"`
	Decimals           uint8  `json:"decimals"`
	Stable             bool   `json:"stable"`
	Shortable          bool   `json:"shortable"`
	PriceUSD           string `json:"price_usd"`
	PoolBalance        string `json:"pool_balance"`
	ReservedAmount     string `json:"reserved_amount"`
	GlobalLongSizeUSD  string `json:"global_long_size_usd"`
	GlobalShortSizeUSD string `json:"global_short_size_usd"`
}

func newAssetView(a *types.Asset) assetView {
	return assetView{
		ID:                 string(a.ID),
		Decimals:           a.Decimals,
		Stable:             a.Stable,
		Shortable:          a.Shortable,
		PriceUSD:           a.PriceUSD.ToBig().String(),
		PoolBalance:        a.PoolBalance.ToBig().String(),
		ReservedAmount:     a.ReservedAmount.ToBig().String(),
		GlobalLongSizeUSD:  a.GlobalLongSizeUSD.ToBig().String(),
		GlobalShortSizeUSD: a.GlobalShortSizeUSD.ToBig().String(),
	}
}

type positionView struct {
	ID              string `json:"id"`
	Account         string `json:"account"`
	CollateralAsset string `json:"collateral_asset"`
	UnderlyingAsset string `json:"underlying_asset"`
	IsLong          bool   `json:"is_long"`
	SizeUSD         string `json:"size_usd"`
	CollateralUSD   string `json:"collateral_usd"`
	AveragePriceUSD string `json:"average_price_usd"`
}

func newPositionView(p *types.Position) positionView {
	return positionView{
		ID:              string(p.ID),
		Account:         p.Account,
		CollateralAsset: string(p.CollateralAsset),
		UnderlyingAsset: string(p.UnderlyingAsset),
		IsLong:          p.IsLong,
		SizeUSD:         p.SizeUSD.ToBig().String(),
		CollateralUSD:   p.CollateralUSD.ToBig().String(),
		AveragePriceUSD: p.AveragePriceUSD.ToBig().String(),
	}
}

type orderView struct {
	ID              string `json:"id"`
	Owner           string `json:"owner"`
	CollateralAsset string `json:"collateral_asset"`
	UnderlyingAsset string `json:"underlying_asset"`
	IsLong          bool   `json:"is_long"`
	OrderType       string `json:"order_type"`
	PriceUSD        string `json:"price_usd"`
	SizeDeltaUSD    string `json:"size_delta_usd"`
}

func newOrderView(o *types.LimitOrder) orderView {
	orderType := "increase"
	if o.OrderType == types.OrderDecrease {
		orderType = "decrease"
	}
	return orderView{
		ID:              string(o.ID),
		Owner:           o.Owner,
		CollateralAsset: string(o.CollateralAsset),
		UnderlyingAsset: string(o.UnderlyingAsset),
		IsLong:          o.IsLong,
		OrderType:       orderType,
		PriceUSD:        o.PriceUSD.ToBig().String(),
		SizeDeltaUSD:    o.SizeDeltaUSD.ToBig().String(),
	}
}
