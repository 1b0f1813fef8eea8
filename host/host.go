package host

import (
	"context"
	"fmt"
)

// Method is the name of a function exposed by a key custody provider.
type Method string

const (
	MethodGetPublicKey   Method = "getPublicKey"
	MethodEncryptPayload Method = "encryptPayload"
	MethodDecryptPayload Method = "decryptPayload"
	MethodSignEvent      Method = "signEvent"
)

var Methods = []Method{
	MethodGetPublicKey,
	MethodEncryptPayload,
	MethodDecryptPayload,
	MethodSignEvent,
}

func (m Method) Valid() bool {
	switch m {
	case MethodGetPublicKey, MethodEncryptPayload, MethodDecryptPayload, MethodSignEvent:
		return true
	}
	return false
}

//go:generate mockgen -destination=mock/host.go -package=mock . Host

// Host issues calls across the boundary to a provider and waits for them to
// resolve. The returned payload is whatever the provider produced; callers
// must not trust its shape.
//
// An explicit refusal by the provider is reported as a *Rejection. Any other
// error means the call could not be completed.
type Host interface {
	Call(ctx context.Context, method Method, params ...any) (any, error)
}

// Enabler is implemented by hosts whose provider has to be detected or
// unlocked before use.
type Enabler interface {
	Available(ctx context.Context) bool
	Enable(ctx context.Context) error
}

// Rejection carries the opaque value a provider failed a call with.
type Rejection struct {
	Reason any
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("provider rejected call: %v", r.Reason)
}

func Reject(reason any) *Rejection {
	return &Rejection{Reason: reason}
}

// HostFunc adapts a plain function to Host.
type HostFunc func(ctx context.Context, method Method, params ...any) (any, error)

func (f HostFunc) Call(ctx context.Context, method Method, params ...any) (any, error) {
	return f(ctx, method, params...)
}
