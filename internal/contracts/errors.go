package contracts

import "errors"

// ErrOutOfOrderHistory is returned when a price history handed to the
// momentum calculator is not strictly increasing by date. This is a caller
// contract violation: the stock's pass is aborted, other stocks continue.
var ErrOutOfOrderHistory = errors.New("price history is not strictly increasing by date")
