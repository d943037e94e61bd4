package swap

import "errors"

var (
	ErrSameAsset      = errors.New("swap: in and out assets must differ")
	ErrStateDisallows = errors.New("swap: asset swap state disallows this direction")
	ErrSlippage       = errors.New("swap: amount_out below min_out")
	ErrInsufficientOut = errors.New("swap: amount_out exceeds available liquidity")
	ErrBufferBreached = errors.New("swap: swap would breach buffer_amount")
)
