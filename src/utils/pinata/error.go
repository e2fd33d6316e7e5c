package pinata

import "errors"

var (
	ErrMissingCredentials = errors.New("pinata credentials are not configured")
	ErrEmptyHash          = errors.New("pinata returned no content hash")
	ErrFailedToParse      = errors.New("failed to parse pinata response")
	ErrEmptyContent       = errors.New("nothing to upload")
)
