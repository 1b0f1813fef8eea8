package jsonrpc_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openweb3-io/nsigner/bridge"
	"github.com/openweb3-io/nsigner/host"
	"github.com/openweb3-io/nsigner/host/jsonrpc"
	"github.com/openweb3-io/nsigner/local"
	"github.com/openweb3-io/nsigner/testutil"
	"github.com/openweb3-io/nsigner/types"
	"github.com/stretchr/testify/suite"
)

type JsonRpcTestSuite struct {
	suite.Suite
	server *httptest.Server
	client *jsonrpc.Client
}

func TestJsonRpc(t *testing.T) {
	suite.Run(t, new(JsonRpcTestSuite))
}

func (s *JsonRpcTestSuite) SetupTest() {
	h := local.NewHost(testutil.MustLocalSigner(testutil.SecretKeyHex))
	s.server = httptest.NewServer(jsonrpc.NewServer(h))
	s.client = jsonrpc.NewClient(s.server.URL, jsonrpc.WithHTTPClient(s.server.Client()))
}

func (s *JsonRpcTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *JsonRpcTestSuite) TestBridgeOverHttp() {
	require := s.Require()
	ctx := context.Background()
	b := bridge.New(s.client)

	pk, err := b.PublicKey(ctx)
	require.NoError(err)
	require.Equal(testutil.PublicKeyHex, pk.String())

	evt, err := b.SignEvent(ctx, testutil.HelloEvent())
	require.NoError(err)
	require.Equal(testutil.HelloID, evt.ID().String())

	tagged := types.NewUnsignedEvent(pk, 1712345678, types.KindEncryptedDirectMessage,
		types.Tags{types.PubKeyTag(testutil.MustPublicKey(testutil.CounterpartyPublicKeyHex))}, "x")
	evt, err = b.SignEvent(ctx, tagged)
	require.NoError(err)
	require.Equal(tagged.ID(), evt.ID())

	// a message to ourselves decrypts with our own key
	ct, err := b.Encrypt(ctx, pk, "note to self")
	require.NoError(err)
	pt, err := b.Decrypt(ctx, pk, ct)
	require.NoError(err)
	require.Equal("note to self", pt)
}

func (s *JsonRpcTestSuite) TestRejectionReachesBridge() {
	b := bridge.New(s.client)
	_, err := b.Decrypt(context.Background(), testutil.MustPublicKey(testutil.CounterpartyPublicKeyHex), "garbage")
	s.Require().ErrorIs(err, types.ErrProviderRejected)

	var perr *types.ProviderError
	s.Require().ErrorAs(err, &perr)
	s.Require().Contains(perr.Message, "malformed ciphertext")
}

func (s *JsonRpcTestSuite) TestRawRejection() {
	_, err := s.client.Call(context.Background(), host.MethodSignEvent, "not an event")
	var rejection *host.Rejection
	s.Require().ErrorAs(err, &rejection)
	raw, ok := rejection.Reason.(json.RawMessage)
	s.Require().True(ok)
	s.Require().Contains(string(raw), "message")
}

func (s *JsonRpcTestSuite) TestUnknownMethod() {
	_, err := s.client.Call(context.Background(), host.Method("nip44Encrypt"))
	var rejection *host.Rejection
	s.Require().ErrorAs(err, &rejection)
	s.Require().Contains(bridge.Normalize(rejection.Reason).Message, "method not found")
}

func (s *JsonRpcTestSuite) TestTransportErrors() {
	require := s.Require()

	s.server.Close()
	_, err := s.client.Call(context.Background(), host.MethodGetPublicKey)
	require.Error(err)
	var rejection *host.Rejection
	require.False(errors.As(err, &rejection))

	_, err = bridge.New(s.client).PublicKey(context.Background())
	require.ErrorIs(err, types.ErrProviderRejected)
}

func (s *JsonRpcTestSuite) TestMisbehavingServer() {
	for name, handler := range map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusBadGateway)
		},
		"not json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		},
		"wrong id": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":999,"result":"x"}`))
		},
	} {
		s.Run(name, func() {
			srv := httptest.NewServer(handler)
			defer srv.Close()
			_, err := jsonrpc.NewClient(srv.URL).Call(context.Background(), host.MethodGetPublicKey)
			s.Require().Error(err)
		})
	}
}

func (s *JsonRpcTestSuite) TestResultShapes() {
	for name, tc := range map[string]struct {
		body string
		kind *types.ProviderError
	}{
		"missing result": {`{"jsonrpc":"2.0","id":1}`, types.ErrMalformedResponse},
		"null result":    {`{"jsonrpc":"2.0","id":1,"result":null}`, types.ErrMalformedResponse},
		"object result":  {`{"jsonrpc":"2.0","id":1,"result":{"pubkey":"x"}}`, types.ErrMalformedResponse},
		"odd error":      {`{"jsonrpc":"2.0","id":1,"error":[1,2,3]}`, types.ErrProviderRejected},
	} {
		s.Run(name, func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := bridge.New(jsonrpc.NewClient(srv.URL)).PublicKey(context.Background())
			s.Require().ErrorIs(err, tc.kind)
			if tc.kind == types.ErrProviderRejected {
				var perr *types.ProviderError
				s.Require().ErrorAs(err, &perr)
				s.Require().Equal(bridge.FallbackMessage, perr.Message)
			}
		})
	}
}

func (s *JsonRpcTestSuite) TestServerRejectsBadRequests() {
	require := s.Require()

	resp, err := http.Get(s.server.URL)
	require.NoError(err)
	resp.Body.Close()
	require.Equal(http.StatusMethodNotAllowed, resp.StatusCode)

	for _, body := range []string{`{`, `{"jsonrpc":"1.0","id":1,"method":"getPublicKey"}`} {
		resp, err := http.Post(s.server.URL, "application/json", strings.NewReader(body))
		require.NoError(err)
		var out struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		require.NoError(json.NewDecoder(resp.Body).Decode(&out))
		resp.Body.Close()
		require.NotZero(out.Error.Code)
		require.NotEmpty(out.Error.Message)
	}
}
