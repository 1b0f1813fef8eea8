package signer

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type Options struct {
	failoverSignerCreator SignerCreator
}

type Option func(*Options)

func WithFailoverSignerCreator(v SignerCreator) Option {
	return func(o *Options) {
		o.failoverSignerCreator = v
	}
}

type SignerCreator = func(ctx context.Context) (Signer, error)

type signerProvider struct {
	opts       *Options
	mu         sync.RWMutex
	creatorMap map[string]SignerCreator
}

func NewSignerProvider(o ...Option) SignerProvider {
	opts := &Options{}

	for _, opt := range o {
		opt(opts)
	}

	return &signerProvider{
		opts:       opts,
		creatorMap: make(map[string]SignerCreator),
	}
}

func (p *signerProvider) Register(name string, creator SignerCreator) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.creatorMap[name] = creator
}

func (p *signerProvider) Provide(ctx context.Context, name string) (Signer, error) {
	p.mu.RLock()
	creator, ok := p.creatorMap[name]
	p.mu.RUnlock()
	if !ok {
		if p.opts.failoverSignerCreator == nil {
			return nil, fmt.Errorf("signer provider %q not found, registered: %v", name, p.names())
		}

		creator = p.opts.failoverSignerCreator
	}

	return creator(ctx)
}

func (p *signerProvider) names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.creatorMap))
	for name := range p.creatorMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
