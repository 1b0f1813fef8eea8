package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

const (
	PublicKeySize = 32
	SignatureSize = 64
)

// PublicKey is a 32-byte x-only secp256k1 key. The canonical external form is
// 64 lowercase hex characters.
type PublicKey [PublicKeySize]byte

// ParsePublicKey decodes exactly 64 lowercase hex characters, so the parsed key
// always prints back as the input. It does not check that the key lies on the
// curve; that happens when a signature is verified against it.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	if len(s) != 2*PublicKeySize {
		return pk, fmt.Errorf("public key must be %d hex characters, got %d", 2*PublicKeySize, len(s))
	}
	if err := decodeLowerHex(pk[:], s); err != nil {
		return pk, fmt.Errorf("invalid public key hex: %w", err)
	}
	return pk, nil
}

func (pk PublicKey) String() string {
	return hex.EncodeToString(pk[:])
}

func (pk PublicKey) Bytes() []byte {
	return pk[:]
}

// Schnorr returns the BIP-340 curve point for the key.
func (pk PublicKey) Schnorr() (*btcec.PublicKey, error) {
	return schnorr.ParsePubKey(pk[:])
}

func (pk PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(pk.String())
}

func (pk *PublicKey) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParsePublicKey(s)
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}

// Signature is a 64-byte BIP-340 Schnorr signature, 128 hex characters in its
// external form.
type Signature [SignatureSize]byte

func ParseSignature(s string) (Signature, error) {
	var sig Signature
	if len(s) != 2*SignatureSize {
		return sig, fmt.Errorf("signature must be %d hex characters, got %d", 2*SignatureSize, len(s))
	}
	if err := decodeLowerHex(sig[:], s); err != nil {
		return sig, fmt.Errorf("invalid signature hex: %w", err)
	}
	return sig, nil
}

func decodeLowerHex(dst []byte, s string) error {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'F' {
			return fmt.Errorf("uppercase hex character %q at offset %d", c, i)
		}
	}
	_, err := hex.Decode(dst, []byte(s))
	return err
}

func (sig Signature) String() string {
	return hex.EncodeToString(sig[:])
}

func (sig Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(sig.String())
}
