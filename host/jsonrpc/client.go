package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/openweb3-io/nsigner/host"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Client is a host.Host whose provider lives behind a JSON-RPC endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	nextID     atomic.Uint64
}

var _ host.Host = &Client{}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:        url,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Call(ctx context.Context, method host.Method, params ...any) (any, error) {
	if params == nil {
		params = []any{}
	}
	id := c.nextID.Add(1)
	body, err := json.Marshal(request{
		Version: Version,
		ID:      id,
		Method:  string(method),
		Params:  params,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s request", method)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	st := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "call %s", method)
	}
	defer resp.Body.Close()
	zap.L().Debug("jsonrpc call",
		zap.String("method", string(method)),
		zap.Uint64("id", id),
		zap.Int("status", resp.StatusCode),
		zap.Duration("cost", time.Since(st)),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("call %s: unexpected http status %d", method, resp.StatusCode)
	}

	var r response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&r); err != nil {
		return nil, errors.Wrapf(err, "decode %s response", method)
	}
	if r.ID != id {
		return nil, errors.Errorf("call %s: response id %d does not match request id %d", method, r.ID, id)
	}
	if len(r.Error) > 0 && !bytes.Equal(r.Error, []byte("null")) {
		return nil, host.Reject(r.Error)
	}
	if len(r.Result) == 0 {
		return nil, nil
	}
	var payload any
	if err := json.Unmarshal(r.Result, &payload); err != nil {
		return nil, errors.Wrapf(err, "decode %s result", method)
	}
	return payload, nil
}
