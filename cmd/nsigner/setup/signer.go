package setup

import (
	"context"
	"fmt"

	"github.com/openweb3-io/nsigner/bridge"
	"github.com/openweb3-io/nsigner/config"
	"github.com/openweb3-io/nsigner/host/jsonrpc"
	"github.com/openweb3-io/nsigner/local"
	"github.com/openweb3-io/nsigner/signer"
)

// NewSignerProvider registers every signer the CLI can build from cfg. Both
// go through a bridge, so a local key is held to the same checks as a remote
// provider.
func NewSignerProvider(cfg *config.Config) signer.SignerProvider {
	p := signer.NewSignerProvider()
	p.Register(config.ProviderExtension, func(ctx context.Context) (signer.Signer, error) {
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("no endpoint configured")
		}
		return bridge.New(jsonrpc.NewClient(cfg.Endpoint)), nil
	})
	p.Register(config.ProviderLocal, func(ctx context.Context) (signer.Signer, error) {
		h, err := NewLocalHost(cfg)
		if err != nil {
			return nil, err
		}
		return bridge.New(h), nil
	})
	return p
}

func NewLocalHost(cfg *config.Config) (*local.Host, error) {
	secret, err := cfg.GetSecretKey()
	if err != nil {
		return nil, err
	}
	key, err := local.ParseSecretKey(secret)
	if err != nil {
		return nil, err
	}
	return local.NewHost(local.NewLocalSigner(key)), nil
}

func LoadSigner(ctx context.Context, cfg *config.Config) (signer.Signer, error) {
	return NewSignerProvider(cfg).Provide(ctx, cfg.Provider)
}
