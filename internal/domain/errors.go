package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is wrapped by protocol errors when the API responds with HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrorKind classifies why a fetch failed.
type ErrorKind int

const (
	// KindTransport covers connection failures and timeouts.
	KindTransport ErrorKind = iota
	// KindProtocol covers non-success HTTP statuses.
	KindProtocol
	// KindDecode covers malformed response bodies.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// FetchError is returned by pipeline sources when a request could not be
// completed or understood. "No pipeline" is not a FetchError.
type FetchError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
