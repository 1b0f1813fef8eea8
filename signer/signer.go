package signer

import (
	"context"

	"github.com/openweb3-io/nsigner/types"
)

// Signer gives access to a key without exposing it. Every failure is a
// *types.ProviderError tagged with the operation it came from. Nothing is
// retried and no deadline is imposed beyond the one carried by ctx.
type Signer interface {
	PublicKey(ctx context.Context) (types.PublicKey, error)
	Encrypt(ctx context.Context, recipient types.PublicKey, plaintext string) (string, error)
	Decrypt(ctx context.Context, sender types.PublicKey, ciphertext string) (string, error)
	SignEvent(ctx context.Context, event *types.UnsignedEvent) (*types.Event, error)
}
