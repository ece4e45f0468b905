package salesapi

import (
	"errors"
	"fmt"
)

// ValidationError reports a client-side precondition failure. Requests that
// fail validation never reach the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("salesapi: invalid %s: %s", e.Field, e.Reason)
}

// APIError reports a non-2xx response from the vendas API. Detail carries the
// server-provided error message when one was present in the body.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("salesapi: api returned status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("salesapi: api returned status %d", e.StatusCode)
}

// TransportError reports a request that produced no HTTP response at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("salesapi: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a 2xx response whose payload was malformed or failed
// shape validation. It keeps "the request succeeded" and "the payload is
// well-formed" as separate outcomes.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("salesapi: decode %s response: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Kind buckets errors for state handling and problem responses.
type Kind string

const (
	KindValidation Kind = "validation"
	KindAPI        Kind = "api"
	KindTransport  Kind = "transport"
	KindDecode     Kind = "decode"
	KindUnknown    Kind = "unknown"
)

// KindOf classifies err into one of the client error kinds.
func KindOf(err error) Kind {
	var (
		vErr *ValidationError
		aErr *APIError
		tErr *TransportError
		dErr *DecodeError
	)
	switch {
	case errors.As(err, &vErr):
		return KindValidation
	case errors.As(err, &aErr):
		return KindAPI
	case errors.As(err, &tErr):
		return KindTransport
	case errors.As(err, &dErr):
		return KindDecode
	default:
		return KindUnknown
	}
}
