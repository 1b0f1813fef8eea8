package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openweb3-io/nsigner/host"
	"github.com/openweb3-io/nsigner/signer"
	"github.com/openweb3-io/nsigner/types"
	"github.com/sirupsen/logrus"
)

// Bridge implements signer.Signer by calling a provider through a host.Host.
// Nothing the provider returns is trusted: every payload is parsed and, for
// signatures, verified before it becomes a typed value.
//
// A Bridge holds no mutable state and is safe for concurrent use. Ordering
// between calls, such as fetching the public key before building an event for
// it, is left to the caller.
type Bridge struct {
	host   host.Host
	logger *logrus.Entry
}

var _ signer.Signer = &Bridge{}

type Option func(*Bridge)

func WithLogger(logger *logrus.Entry) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

func New(h host.Host, opts ...Option) *Bridge {
	b := &Bridge{
		host:   h,
		logger: logrus.WithField("component", "bridge"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Enable detects and unlocks the provider when the host supports it. Hosts
// that do not are assumed ready.
func (b *Bridge) Enable(ctx context.Context) error {
	enabler, ok := b.host.(host.Enabler)
	if !ok {
		return nil
	}
	if !enabler.Available(ctx) {
		return types.WrapErr(types.ErrProviderRejected, "", "provider is not available", nil)
	}
	if err := enabler.Enable(ctx); err != nil {
		return b.classify("", err)
	}
	return nil
}

func (b *Bridge) PublicKey(ctx context.Context) (types.PublicKey, error) {
	payload, err := b.call(ctx, types.OpGetPublicKey, host.MethodGetPublicKey)
	if err != nil {
		return types.PublicKey{}, err
	}
	s, err := b.expectString(types.OpGetPublicKey, payload)
	if err != nil {
		return types.PublicKey{}, err
	}
	pk, err := types.ParsePublicKey(s)
	if err != nil {
		return types.PublicKey{}, b.malformed(types.OpGetPublicKey, err)
	}
	return pk, nil
}

func (b *Bridge) Encrypt(ctx context.Context, recipient types.PublicKey, plaintext string) (string, error) {
	payload, err := b.call(ctx, types.OpEncrypt, host.MethodEncryptPayload, recipient.String(), plaintext)
	if err != nil {
		return "", err
	}
	return b.expectString(types.OpEncrypt, payload)
}

func (b *Bridge) Decrypt(ctx context.Context, sender types.PublicKey, ciphertext string) (string, error) {
	payload, err := b.call(ctx, types.OpDecrypt, host.MethodDecryptPayload, sender.String(), ciphertext)
	if err != nil {
		return "", err
	}
	return b.expectString(types.OpDecrypt, payload)
}

func (b *Bridge) SignEvent(ctx context.Context, event *types.UnsignedEvent) (*types.Event, error) {
	if event == nil {
		return nil, types.WrapErr(types.ErrInvalidArgument, types.OpSignEvent, "nil event", nil)
	}
	payload, err := b.call(ctx, types.OpSignEvent, host.MethodSignEvent, event.Object())
	if err != nil {
		return nil, err
	}
	sig, err := b.expectString(types.OpSignEvent, payload)
	if err != nil {
		return nil, err
	}
	evt, err := types.Finalize(event, sig)
	if err != nil {
		b.logger.WithError(err).WithField("id", event.ID().String()).Warn("provider signature rejected")
		return nil, err
	}
	return evt, nil
}

func (b *Bridge) call(ctx context.Context, op types.Operation, method host.Method, params ...any) (any, error) {
	st := time.Now()
	payload, err := b.host.Call(ctx, method, params...)
	logger := b.logger.WithFields(logrus.Fields{
		"method": method,
		"cost":   time.Since(st),
	})
	if err != nil {
		perr := b.classify(op, err)
		logger.WithError(perr).Warn("boundary call failed")
		return nil, perr
	}
	logger.Debug("boundary call resolved")
	return payload, nil
}

// classify converts a host error. The opaque rejection value is normalised
// here and dropped, so it never travels past the bridge.
func (b *Bridge) classify(op types.Operation, err error) *types.ProviderError {
	var rejection *host.Rejection
	if errors.As(err, &rejection) {
		return types.WrapErr(types.ErrProviderRejected, op, Normalize(rejection.Reason).Message, nil)
	}
	return types.WrapErr(types.ErrProviderRejected, op, err.Error(), err)
}

func (b *Bridge) expectString(op types.Operation, payload any) (string, error) {
	s, ok := payload.(string)
	if !ok {
		return "", b.malformed(op, fmt.Errorf("expected string payload, got %T", payload))
	}
	return s, nil
}

func (b *Bridge) malformed(op types.Operation, err error) *types.ProviderError {
	return types.WrapErr(types.ErrMalformedResponse, op, err.Error(), err)
}
