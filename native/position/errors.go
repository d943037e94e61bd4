package position

import "errors"

var (
	ErrZeroAsset               = errors.New("position: asset must not be nil")
	ErrBadCollateralAsset      = errors.New("position: collateral asset does not satisfy side rules")
	ErrPerpDisabled            = errors.New("position: perp state disallows this mutation")
	ErrOICapExceeded           = errors.New("position: open interest cap exceeded")
	ErrInsufficientLiquidity   = errors.New("position: insufficient available liquidity for reserve")
	ErrFeesExceedCollateral    = errors.New("position: fees exceed collateral")
	ErrSizeBounds              = errors.New("position: size outside configured min/max bounds")
	ErrBelowMinLeverage        = errors.New("position: leverage below configured minimum")
	ErrAboveMaxLeverage        = errors.New("position: leverage above configured maximum")
	ErrDecreaseExceedsPosition = errors.New("position: decrease delta exceeds position")
	ErrInsolvent               = errors.New("position: losses or fees exceed collateral")
	ErrNotLiquidatable         = errors.New("position: not eligible for liquidation")
	ErrUnauthorized            = errors.New("position: caller is not owner or liquidator")
)
