package gateway

import "errors"

// Errors surfaced by the backend client
var (
	ErrUnauthorized    = errors.New("backend rejected the session credentials")
	ErrNotFound        = errors.New("order not found")
	ErrBadPayload      = errors.New("unexpected response shape")
	ErrMissingEndpoint = errors.New("backend endpoint not configured")
)

// transientError marks failures worth retrying: throttling, 5xx responses,
// transport errors
type transientError struct {
	err error
}

func (e *transientError) Error() string {
	return e.err.Error()
}

func (e *transientError) Unwrap() error {
	return e.err
}

// markTransient wraps err for retry; nil stays nil
func markTransient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// isTransient reports whether err or anything it wraps is retryable
func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
