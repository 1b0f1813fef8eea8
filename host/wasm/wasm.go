//go:build js && wasm

// Package wasm reaches a NIP-07 provider (window.nostr) from a Go program
// compiled to WebAssembly. Calls must not be made from inside a js.FuncOf
// callback: awaiting a promise there blocks the event loop that resolves it.
package wasm

import (
	"context"
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/openweb3-io/nsigner/host"
)

type Host struct {
	global string
}

var (
	_ host.Host    = &Host{}
	_ host.Enabler = &Host{}
)

type Option func(*Host)

// WithGlobal reads the provider from a global other than "nostr".
func WithGlobal(name string) Option {
	return func(h *Host) {
		h.global = name
	}
}

func New(opts ...Option) *Host {
	h := &Host{global: "nostr"}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Host) provider() js.Value {
	return js.Global().Get(h.global)
}

func (h *Host) Available(ctx context.Context) bool {
	return h.provider().Truthy()
}

func (h *Host) Enable(ctx context.Context) error {
	p := h.provider()
	if p.Get("enable").Type() != js.TypeFunction {
		return nil
	}
	_, err := h.invoke(ctx, p, "enable")
	return err
}

func (h *Host) Call(ctx context.Context, method host.Method, params ...any) (any, error) {
	p := h.provider()
	if !p.Truthy() {
		return nil, fmt.Errorf("window.%s is not available", h.global)
	}
	switch method {
	case host.MethodGetPublicKey:
		v, err := h.invoke(ctx, p, "getPublicKey")
		if err != nil {
			return nil, err
		}
		return toGo(v), nil
	case host.MethodEncryptPayload, host.MethodDecryptPayload:
		fn := "encrypt"
		if method == host.MethodDecryptPayload {
			fn = "decrypt"
		}
		v, err := h.invoke(ctx, p.Get("nip04"), fn, params...)
		if err != nil {
			return nil, err
		}
		return toGo(v), nil
	case host.MethodSignEvent:
		v, err := h.invoke(ctx, p, "signEvent", params...)
		if err != nil {
			return nil, err
		}
		if v.Type() != js.TypeObject {
			return toGo(v), nil
		}
		return toGo(v.Get("sig")), nil
	}
	return nil, fmt.Errorf("unsupported method %q", method)
}

// invoke calls obj[fn](args...) and waits for the promise it returns. A
// synchronous throw and a rejected promise are both reported as rejections.
func (h *Host) invoke(ctx context.Context, obj js.Value, fn string, args ...any) (result js.Value, err error) {
	if obj.Type() != js.TypeObject || obj.Get(fn).Type() != js.TypeFunction {
		return js.Undefined(), fmt.Errorf("provider does not implement %s", fn)
	}
	defer func() {
		if r := recover(); r != nil {
			if jsErr, ok := r.(js.Error); ok {
				err = host.Reject(toGo(jsErr.Value))
				return
			}
			err = host.Reject(map[string]any{"message": fmt.Sprint(r)})
		}
	}()

	jsArgs := make([]any, len(args))
	for i, arg := range args {
		jsArgs[i] = js.ValueOf(arg)
	}
	return await(ctx, obj.Call(fn, jsArgs...))
}

func await(ctx context.Context, v js.Value) (js.Value, error) {
	if v.Type() != js.TypeObject || v.Get("then").Type() != js.TypeFunction {
		return v, nil
	}

	type outcome struct {
		value    js.Value
		rejected bool
	}
	done := make(chan outcome, 1)
	onResolve := js.FuncOf(func(this js.Value, args []js.Value) any {
		done <- outcome{value: first(args)}
		return nil
	})
	onReject := js.FuncOf(func(this js.Value, args []js.Value) any {
		done <- outcome{value: first(args), rejected: true}
		return nil
	})
	defer onResolve.Release()
	defer onReject.Release()

	v.Call("then", onResolve, onReject)

	select {
	case o := <-done:
		if o.rejected {
			return js.Undefined(), host.Reject(toGo(o.value))
		}
		return o.value, nil
	case <-ctx.Done():
		return js.Undefined(), ctx.Err()
	}
}

func first(args []js.Value) js.Value {
	if len(args) == 0 {
		return js.Undefined()
	}
	return args[0]
}

// toGo copies a JS value into plain Go values. Error objects keep their
// message even though it is not an enumerable property.
func toGo(v js.Value) (out any) {
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()
	switch v.Type() {
	case js.TypeString:
		return v.String()
	case js.TypeNumber:
		return v.Float()
	case js.TypeBoolean:
		return v.Bool()
	case js.TypeObject:
		if msg := v.Get("message"); msg.Type() == js.TypeString {
			return map[string]any{"message": msg.String()}
		}
		str := js.Global().Get("JSON").Call("stringify", v)
		if str.Type() != js.TypeString {
			return nil
		}
		if err := json.Unmarshal([]byte(str.String()), &out); err != nil {
			return nil
		}
		return out
	}
	return nil
}
