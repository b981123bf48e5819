package extractor

import (
	"errors"
	"fmt"
)

// TransientError marks an API outcome worth retrying: network failures,
// timeouts, 429 and 5xx responses.
type TransientError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient failure on %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("transient failure on %s: HTTP %d", e.Endpoint, e.Status)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks an API outcome that retrying cannot fix: any 4xx
// other than 429, e.g. a 404 for a channel the account does not have.
type PermanentError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *PermanentError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("permanent failure on %s: HTTP %d: %s", e.Endpoint, e.Status, e.Body)
	}
	return fmt.Sprintf("permanent failure on %s: HTTP %d", e.Endpoint, e.Status)
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsPermanent reports whether err is (or wraps) a PermanentError.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
