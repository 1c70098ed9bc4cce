package images

import "errors"

// ErrFetch marks a failed image download.
var ErrFetch = errors.New("image fetch failed")
