package mint

import "errors"

var (
	ErrUploadFailed = errors.New("failed to upload content")
)
