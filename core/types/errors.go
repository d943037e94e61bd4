package types

import "errors"

var errOverflow = errors.New("types: amount overflows 256 bits")
