package backend

import (
	"errors"
	"fmt"
)

// ErrEmptyReply means the backend answered 2xx with a null body
var ErrEmptyReply = errors.New("empty reply")

// BackendError reports a failed backend call. Either StatusCode/Body is set
// (non-2xx reply) or Cause is (transport failure).
type BackendError struct {
	StatusCode int
	Body       string
	Cause      error
}

func (e *BackendError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %v", e.Cause)
	}
	return fmt.Sprintf("API call failed: %d %s", e.StatusCode, e.Body)
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}
