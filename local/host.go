package local

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openweb3-io/nsigner/host"
	"github.com/openweb3-io/nsigner/types"
)

// Host serves the provider functions from a LocalSigner, answering the way a
// browser extension would: strings on success, {"message": ...} rejections on
// failure.
type Host struct {
	signer *LocalSigner
}

var (
	_ host.Host    = &Host{}
	_ host.Enabler = &Host{}
)

func NewHost(signer *LocalSigner) *Host {
	return &Host{signer: signer}
}

func (h *Host) Available(ctx context.Context) bool {
	return h.signer != nil
}

func (h *Host) Enable(ctx context.Context) error {
	return ctx.Err()
}

func (h *Host) Call(ctx context.Context, method host.Method, params ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch method {
	case host.MethodGetPublicKey:
		return h.signer.pub.String(), nil
	case host.MethodEncryptPayload, host.MethodDecryptPayload:
		if len(params) != 2 {
			return nil, reject("%s expects 2 params, got %d", method, len(params))
		}
		pubHex, ok1 := params[0].(string)
		text, ok2 := params[1].(string)
		if !ok1 || !ok2 {
			return nil, reject("%s expects string params", method)
		}
		pub, err := types.ParsePublicKey(pubHex)
		if err != nil {
			return nil, reject("%v", err)
		}
		var out string
		if method == host.MethodEncryptPayload {
			out, err = h.signer.Encrypt(ctx, pub, text)
		} else {
			out, err = h.signer.Decrypt(ctx, pub, text)
		}
		if err != nil {
			return nil, rejectErr(err)
		}
		return out, nil
	case host.MethodSignEvent:
		if len(params) != 1 {
			return nil, reject("%s expects 1 param, got %d", method, len(params))
		}
		event, err := decodeUnsigned(params[0])
		if err != nil {
			return nil, reject("%v", err)
		}
		sig, err := h.signer.sign(event)
		if err != nil {
			return nil, rejectErr(err)
		}
		return sig.String(), nil
	}
	return nil, reject("unknown method %q", method)
}

// decodeUnsigned accepts any JSON-shaped event object and recomputes its id,
// refusing to sign an id that does not match the fields.
func decodeUnsigned(v any) (*types.UnsignedEvent, error) {
	bz, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	var raw struct {
		ID        string          `json:"id"`
		PubKey    types.PublicKey `json:"pubkey"`
		CreatedAt int64           `json:"created_at"`
		Kind      types.Kind      `json:"kind"`
		Tags      types.Tags      `json:"tags"`
		Content   string          `json:"content"`
	}
	if err := json.Unmarshal(bz, &raw); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	event := types.NewUnsignedEvent(raw.PubKey, raw.CreatedAt, raw.Kind, raw.Tags, raw.Content)
	if raw.ID != event.ID().String() {
		return nil, fmt.Errorf("event id %q does not match computed id %s", raw.ID, event.ID())
	}
	return event, nil
}

func reject(format string, args ...any) *host.Rejection {
	return host.Reject(map[string]any{"message": fmt.Sprintf(format, args...)})
}

func rejectErr(err error) *host.Rejection {
	if perr, ok := err.(*types.ProviderError); ok {
		return host.Reject(map[string]any{"message": perr.Message})
	}
	return host.Reject(map[string]any{"message": err.Error()})
}
