package content

import "errors"

var (
	ErrBodyTooLarge = errors.New("response body exceeds limit")
)
