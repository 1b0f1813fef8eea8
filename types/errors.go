package types

import (
	"encoding/json"
	"fmt"
)

// Operation names the signer operation an error originated from.
type Operation string

const (
	OpGetPublicKey Operation = "GetPublicKey"
	OpEncrypt      Operation = "Encrypt"
	OpDecrypt      Operation = "Decrypt"
	OpSignEvent    Operation = "SignEvent"
)

// ErrorKind classifies why an operation failed. Kind values never change for a
// given failure class, so callers can switch on them.
type ErrorKind string

const (
	// The provider explicitly signalled failure, or the boundary could not be reached.
	ProviderRejected ErrorKind = "ProviderRejected"
	// The provider signalled success but the payload could not be parsed.
	MalformedResponse ErrorKind = "MalformedResponse"
	// A well-formed signature does not verify against the event.
	CryptoInvalid ErrorKind = "CryptoInvalid"
	// The caller passed something unusable; the provider was never called.
	InvalidArgument ErrorKind = "InvalidArgument"
)

// ProviderError is the only error type surfaced by a signer. Both Op and Kind
// are always set; Message is the human readable text, usually sourced from the
// provider itself.
type ProviderError struct {
	Op      Operation `json:"op"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	// Often times it is useful to keep the underlying error around (a transport
	// failure, a context cancellation) in addition to the message.
	Cause error `json:"-"`
}

var (
	ErrProviderRejected  = &ProviderError{Kind: ProviderRejected, Message: "provider rejected request"}
	ErrMalformedResponse = &ProviderError{Kind: MalformedResponse, Message: "malformed provider response"}
	ErrCryptoInvalid     = &ProviderError{Kind: CryptoInvalid, Message: "invalid signature"}
	ErrInvalidArgument   = &ProviderError{Kind: InvalidArgument, Message: "invalid argument"}
)

func (e *ProviderError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Op, e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Is matches on Kind only, so errors.Is(err, ErrCryptoInvalid) holds for any
// operation.
func (e *ProviderError) Is(target error) bool {
	t, ok := target.(*ProviderError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// MarshalJSON keeps the cause text, which the struct tags otherwise drop.
func (e *ProviderError) MarshalJSON() ([]byte, error) {
	type alias ProviderError
	out := struct {
		*alias
		Cause string `json:"cause,omitempty"`
	}{alias: (*alias)(e)}
	if e.Cause != nil {
		out.Cause = e.Cause.Error()
	}
	return json.Marshal(out)
}

// WrapErr tags one of the sentinel errors with an operation and a message. We
// use a function to do this so that we don't accidentally overwrite the
// sentinels themselves.
func WrapErr(sentinel *ProviderError, op Operation, msg string, cause error) *ProviderError {
	if msg == "" {
		msg = sentinel.Message
	}
	return &ProviderError{
		Op:      op,
		Kind:    sentinel.Kind,
		Message: msg,
		Cause:   cause,
	}
}

// CanonicalError is the normalised form of an opaque failure value returned by
// a provider.
type CanonicalError struct {
	Message string `json:"message"`
}

func (e CanonicalError) String() string {
	return e.Message
}
