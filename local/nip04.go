package local

import (
	"crypto/aes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/nbd-wtf/go-nostr/nip04"
	"github.com/openweb3-io/nsigner/types"
)

const ivSeparator = "?iv="

var ErrMalformedCiphertext = errors.New("malformed ciphertext")

// SharedSecret is the unhashed x coordinate of the ECDH point between key and
// the (even-y) point behind pub.
func SharedSecret(key *btcec.PrivateKey, pub types.PublicKey) ([]byte, error) {
	secret, err := nip04.ComputeSharedSecret(pub.String(), hex.EncodeToString(key.Serialize()))
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}
	return secret, nil
}

// EncryptPayload encrypts with AES-256-CBC and returns
// base64(ciphertext) + "?iv=" + base64(iv).
func EncryptPayload(plaintext string, secret []byte) (string, error) {
	return nip04.Encrypt(plaintext, secret)
}

// DecryptPayload checks the payload shape before handing it to the cipher,
// which panics on a short iv or a partial block.
func DecryptPayload(payload string, secret []byte) (string, error) {
	parts := strings.Split(payload, ivSeparator)
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: missing iv", ErrMalformedCiphertext)
	}
	ct, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	iv, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	if len(iv) != aes.BlockSize {
		return "", fmt.Errorf("%w: iv must be %d bytes", ErrMalformedCiphertext, aes.BlockSize)
	}
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext is not a whole number of blocks", ErrMalformedCiphertext)
	}
	plain, err := nip04.Decrypt(payload, secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	return plain, nil
}
