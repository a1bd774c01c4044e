package remote

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindTimeout ErrorKind = "timeout"
	KindHTTP    ErrorKind = "http"
	KindNetwork ErrorKind = "network"
	KindDecode  ErrorKind = "decode"
)

// Error is returned by every Client call that does not succeed.
type Error struct {
	Kind       ErrorKind
	Op         string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	case KindTimeout:
		return fmt.Sprintf("%s: timed out: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a remote call that exceeded its deadline.
func IsTimeout(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == KindTimeout
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var re *Error
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}
