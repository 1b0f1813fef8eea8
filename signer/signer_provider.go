package signer

import "context"

type SignerProvider interface {
	Register(name string, creator SignerCreator)
	Provide(ctx context.Context, name string) (Signer, error)
}
