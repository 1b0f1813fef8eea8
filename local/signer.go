package local

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/openweb3-io/nsigner/signer"
	"github.com/openweb3-io/nsigner/types"
)

// LocalSigner keeps a secp256k1 key in process. It is meant for development
// and tests; production code reaches keys through a provider.
type LocalSigner struct {
	key *btcec.PrivateKey
	pub types.PublicKey
}

var _ signer.Signer = &LocalSigner{}

func NewLocalSigner(key *btcec.PrivateKey) *LocalSigner {
	var pub types.PublicKey
	copy(pub[:], schnorr.SerializePubKey(key.PubKey()))
	return &LocalSigner{
		key: key,
		pub: pub,
	}
}

// ParseSecretKey decodes a 64 character hex secret key.
func ParseSecretKey(s string) (*btcec.PrivateKey, error) {
	bz, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid secret key hex: %w", err)
	}
	if len(bz) != btcec.PrivKeyBytesLen {
		return nil, fmt.Errorf("secret key must be %d bytes, got %d", btcec.PrivKeyBytesLen, len(bz))
	}
	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(bz); overflow {
		return nil, fmt.Errorf("secret key is not below the curve order")
	}
	if scalar.IsZero() {
		return nil, fmt.Errorf("secret key is zero")
	}
	return secp256k1.NewPrivateKey(&scalar), nil
}

func GenerateKey() (*btcec.PrivateKey, error) {
	return btcec.NewPrivateKey()
}

func (s *LocalSigner) PublicKey(ctx context.Context) (types.PublicKey, error) {
	return s.pub, nil
}

func (s *LocalSigner) Encrypt(ctx context.Context, recipient types.PublicKey, plaintext string) (string, error) {
	secret, err := SharedSecret(s.key, recipient)
	if err != nil {
		return "", types.WrapErr(types.ErrProviderRejected, types.OpEncrypt, err.Error(), err)
	}
	ct, err := EncryptPayload(plaintext, secret)
	if err != nil {
		return "", types.WrapErr(types.ErrProviderRejected, types.OpEncrypt, err.Error(), err)
	}
	return ct, nil
}

func (s *LocalSigner) Decrypt(ctx context.Context, sender types.PublicKey, ciphertext string) (string, error) {
	secret, err := SharedSecret(s.key, sender)
	if err != nil {
		return "", types.WrapErr(types.ErrProviderRejected, types.OpDecrypt, err.Error(), err)
	}
	plain, err := DecryptPayload(ciphertext, secret)
	if err != nil {
		return "", types.WrapErr(types.ErrProviderRejected, types.OpDecrypt, err.Error(), err)
	}
	return plain, nil
}

func (s *LocalSigner) SignEvent(ctx context.Context, event *types.UnsignedEvent) (*types.Event, error) {
	sig, err := s.sign(event)
	if err != nil {
		return nil, err
	}
	return types.FinalizeSignature(event, sig)
}

func (s *LocalSigner) sign(event *types.UnsignedEvent) (types.Signature, error) {
	var out types.Signature
	if event == nil {
		return out, types.WrapErr(types.ErrInvalidArgument, types.OpSignEvent, "nil event", nil)
	}
	if event.PubKey() != s.pub {
		return out, types.WrapErr(types.ErrProviderRejected, types.OpSignEvent,
			fmt.Sprintf("event author %s does not match signer key %s", event.PubKey(), s.pub), nil)
	}
	id := event.ID()
	sig, err := schnorr.Sign(s.key, id[:])
	if err != nil {
		return out, types.WrapErr(types.ErrProviderRejected, types.OpSignEvent, err.Error(), err)
	}
	copy(out[:], sig.Serialize())
	return out, nil
}
