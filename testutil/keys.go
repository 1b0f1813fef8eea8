package testutil

import (
	"context"

	"github.com/openweb3-io/nsigner/host"
	"github.com/openweb3-io/nsigner/local"
	"github.com/openweb3-io/nsigner/types"
)

// Fixed keys for tests only.
const (
	SecretKeyHex = "27696afd1534576f70a8df70a9dad244b38edbf53980317652c3bc4046790b5d"
	PublicKeyHex = "6af47929ce829e7fdf63d925a0a3c65ec70ee80d3ad8d3647500b126125c0d09"

	CounterpartySecretKeyHex = "6a5b69c05d400e54ab4fad1776500417a0b99f102570fa4ebf62c185e9f8c6a5"
	CounterpartyPublicKeyHex = "1a09c6251c74b3edb6f7198bd3c255ec16c0b01ee0e9e211087a48bdf2add58e"

	// A signature by SecretKeyHex over the event
	// {PublicKeyHex, 1700000000, kind 1, no tags, "hello"}.
	HelloCreatedAt = 1700000000
	HelloID        = "9c2ef713f499bfef7ae5de143d7a5a2bff9b2053a30cb4416910cece711b2c1b"
	HelloSig       = "d8e6fc6b1172dcdacf8d7968dcd4aeefc4c206066f18fce439530c05be7ec1f9964037cbca70ec216d1613c662469a62d4f737cd85ad5a735956be6c0e4011c6"
)

func MustLocalSigner(secretHex string) *local.LocalSigner {
	key, err := local.ParseSecretKey(secretHex)
	if err != nil {
		panic(err)
	}
	return local.NewLocalSigner(key)
}

func MustPublicKey(s string) types.PublicKey {
	pk, err := types.ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

func HelloEvent() *types.UnsignedEvent {
	return types.NewUnsignedEvent(MustPublicKey(PublicKeyHex), HelloCreatedAt, types.KindTextNote, nil, "hello")
}

// StubHost answers every call with the same payload and error.
func StubHost(payload any, err error) host.Host {
	return host.HostFunc(func(ctx context.Context, method host.Method, params ...any) (any, error) {
		return payload, err
	})
}
