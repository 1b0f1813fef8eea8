package builder

import (
	"context"

	"github.com/openweb3-io/nsigner/signer"
	"github.com/openweb3-io/nsigner/types"
)

// Unsigned fetches the signer's public key and builds an event authored by it.
// The key has to be known first because it is part of the event id.
func Unsigned(ctx context.Context, s signer.Signer, args *EventArgs) (*types.UnsignedEvent, error) {
	pk, err := s.PublicKey(ctx)
	if err != nil {
		return nil, err
	}
	tags, _ := args.GetTags()
	return types.NewUnsignedEvent(pk, args.options.timestamp(), args.kind, tags, args.content), nil
}

// Sign builds an event for the signer's key and has it signed.
func Sign(ctx context.Context, s signer.Signer, args *EventArgs) (*types.Event, error) {
	unsigned, err := Unsigned(ctx, s, args)
	if err != nil {
		return nil, err
	}
	return s.SignEvent(ctx, unsigned)
}

// DirectMessage encrypts plaintext for recipient and signs it as an encrypted
// direct message tagging the recipient.
func DirectMessage(ctx context.Context, s signer.Signer, recipient types.PublicKey, plaintext string, options ...BuilderOption) (*types.Event, error) {
	ciphertext, err := s.Encrypt(ctx, recipient, plaintext)
	if err != nil {
		return nil, err
	}
	options = append([]BuilderOption{WithTags(types.PubKeyTag(recipient))}, options...)
	args, err := NewEventArgs(types.KindEncryptedDirectMessage, ciphertext, options...)
	if err != nil {
		return nil, err
	}
	return Sign(ctx, s, args)
}
