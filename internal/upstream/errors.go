package upstream

import (
	"errors"
	"fmt"
)

var (
	// ErrRequestFailed marks a transport failure or a non-OK upstream status.
	ErrRequestFailed = errors.New("upstream request failed")

	// ErrDataMismatch marks a response whose content is inconsistent with the
	// request, e.g. the wrong facility id echoed back. This usually means the
	// upstream session context changed underneath us.
	ErrDataMismatch = errors.New("upstream response does not match request")
)

// StatusError reports a non-OK upstream response. It unwraps to
// ErrRequestFailed; callers that care whether the upstream answered at all
// (as opposed to a transport failure) can errors.As for it.
type StatusError struct {
	Code int
	Path string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream request failed: status %d on %s", e.Code, e.Path)
}

func (e *StatusError) Unwrap() error { return ErrRequestFailed }
