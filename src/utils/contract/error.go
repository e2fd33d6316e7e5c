package contract

import "errors"

var (
	ErrEmptyResult = errors.New("contract call returned no values")
)
