package lp

import "errors"

var (
	ErrZeroAmount      = errors.New("lp: amount must be non-zero")
	ErrLPDisabled      = errors.New("lp: asset lp support is disabled for this direction")
	ErrSlippage        = errors.New("lp: output below min_out")
	ErrZeroSupply      = errors.New("lp: lp_price undefined for zero supply")
	ErrInsufficientOut = errors.New("lp: redeem amount exceeds available liquidity")
	ErrBufferBreached  = errors.New("lp: burn would breach buffer_amount")
)
