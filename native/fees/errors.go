package fees

import "errors"

var (
	ErrZeroAsset    = errors.New("fees: asset must not be nil")
	ErrZeroDenom    = errors.New("fees: target weight denominator is zero")
)
