package funding

import "errors"

var ErrZeroAsset = errors.New("funding: asset must not be nil")
