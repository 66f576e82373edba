package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a missing record in a store.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidIdentity indicates a malformed local identity.
	ErrInvalidIdentity = errors.New("invalid identity")
	// ErrKeyNotFound indicates a remote public key could not be resolved.
	ErrKeyNotFound = errors.New("public key not found")
	// ErrMalformedSignature indicates an unparseable signature header.
	ErrMalformedSignature = errors.New("malformed signature header")
)

// RemoteError is a non-2xx response from a remote peer on a fetch.
type RemoteError struct {
	URL        string
	StatusCode int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote request to %s failed with status %d", e.URL, e.StatusCode)
}

// DeliveryError is a failed delivery to a single inbox endpoint.
type DeliveryError struct {
	Endpoint   string
	StatusCode int
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s failed with status %d", e.Endpoint, e.StatusCode)
}
