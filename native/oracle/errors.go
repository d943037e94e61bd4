package oracle

import "errors"

var (
	ErrStalePrice  = errors.New("oracle: price is stale")
	ErrZeroPrice   = errors.New("oracle: price is zero")
	ErrZeroAsset   = errors.New("oracle: asset must not be nil")
	ErrBadInterval = errors.New("oracle: elapsed seconds must be non-negative")
)
