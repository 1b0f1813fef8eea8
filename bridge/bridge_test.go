package bridge_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/openweb3-io/nsigner/bridge"
	"github.com/openweb3-io/nsigner/host"
	"github.com/openweb3-io/nsigner/host/mock"
	"github.com/openweb3-io/nsigner/local"
	"github.com/openweb3-io/nsigner/testutil"
	"github.com/openweb3-io/nsigner/types"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BridgeTestSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	host   *mock.MockHost
	bridge *bridge.Bridge
}

func TestBridge(t *testing.T) {
	suite.Run(t, new(BridgeTestSuite))
}

func (s *BridgeTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.host = mock.NewMockHost(s.ctrl)
	s.bridge = bridge.New(s.host)
}

func (s *BridgeTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *BridgeTestSuite) requireKind(err error, op types.Operation, sentinel *types.ProviderError) *types.ProviderError {
	require := s.Require()
	require.Error(err)
	require.ErrorIs(err, sentinel)
	var perr *types.ProviderError
	require.ErrorAs(err, &perr)
	require.Equal(op, perr.Op)
	return perr
}

func (s *BridgeTestSuite) TestPublicKey() {
	for _, keyHex := range []string{
		testutil.PublicKeyHex,
		"a1b2c3" + strings.Repeat("d", 58),
		strings.Repeat("0", 64),
	} {
		s.host.EXPECT().Call(gomock.Any(), host.MethodGetPublicKey).Return(keyHex, nil)
		pk, err := s.bridge.PublicKey(context.Background())
		s.Require().NoError(err)
		s.Require().Equal(keyHex, pk.String())
	}
}

func (s *BridgeTestSuite) TestPublicKeyMalformed() {
	for _, payload := range []any{
		"",
		"not hex at all",
		strings.Repeat("z", 64),
		testutil.PublicKeyHex[:62],
		testutil.PublicKeyHex + "00",
		nil,
		42.0,
		map[string]any{"pubkey": testutil.PublicKeyHex},
	} {
		s.host.EXPECT().Call(gomock.Any(), host.MethodGetPublicKey).Return(payload, nil)
		_, err := s.bridge.PublicKey(context.Background())
		perr := s.requireKind(err, types.OpGetPublicKey, types.ErrMalformedResponse)
		s.Require().NotErrorIs(perr, types.ErrProviderRejected)
	}
}

// Keys are only accepted in the lowercase form they print back as.
func (s *BridgeTestSuite) TestPublicKeyUppercase() {
	for _, keyHex := range []string{
		strings.ToUpper(testutil.PublicKeyHex),
		"A1b2c3" + strings.Repeat("d", 58),
	} {
		s.host.EXPECT().Call(gomock.Any(), host.MethodGetPublicKey).Return(keyHex, nil)
		_, err := s.bridge.PublicKey(context.Background())
		s.requireKind(err, types.OpGetPublicKey, types.ErrMalformedResponse)
	}
}

func (s *BridgeTestSuite) TestPublicKeyRejected() {
	s.host.EXPECT().Call(gomock.Any(), host.MethodGetPublicKey).
		Return(nil, host.Reject(map[string]any{"message": "user denied access"}))

	_, err := s.bridge.PublicKey(context.Background())
	perr := s.requireKind(err, types.OpGetPublicKey, types.ErrProviderRejected)
	s.Require().Equal("user denied access", perr.Message)
	s.Require().NotErrorIs(err, types.ErrMalformedResponse)

	// the foreign value does not leak past the bridge
	var rejection *host.Rejection
	s.Require().False(errors.As(err, &rejection))
}

func (s *BridgeTestSuite) TestRejectionWithUnknownShape() {
	s.host.EXPECT().Call(gomock.Any(), host.MethodGetPublicKey).Return(nil, host.Reject(12345))

	_, err := s.bridge.PublicKey(context.Background())
	perr := s.requireKind(err, types.OpGetPublicKey, types.ErrProviderRejected)
	s.Require().Equal(bridge.FallbackMessage, perr.Message)
}

func (s *BridgeTestSuite) TestTransportFailure() {
	s.host.EXPECT().Call(gomock.Any(), host.MethodEncryptPayload, testutil.CounterpartyPublicKeyHex, "hi").
		Return(nil, context.Canceled)

	_, err := s.bridge.Encrypt(context.Background(), testutil.MustPublicKey(testutil.CounterpartyPublicKeyHex), "hi")
	s.requireKind(err, types.OpEncrypt, types.ErrProviderRejected)
	s.Require().ErrorIs(err, context.Canceled)
}

func (s *BridgeTestSuite) TestEncryptDecryptPassThrough() {
	require := s.Require()
	peer := testutil.MustPublicKey(testutil.CounterpartyPublicKeyHex)

	s.host.EXPECT().Call(gomock.Any(), host.MethodEncryptPayload, testutil.CounterpartyPublicKeyHex, "secret").
		Return("Y2lwaGVy?iv=aXY=", nil)
	s.host.EXPECT().Call(gomock.Any(), host.MethodDecryptPayload, testutil.CounterpartyPublicKeyHex, "Y2lwaGVy?iv=aXY=").
		Return("secret", nil)

	ct, err := s.bridge.Encrypt(context.Background(), peer, "secret")
	require.NoError(err)
	require.Equal("Y2lwaGVy?iv=aXY=", ct)

	pt, err := s.bridge.Decrypt(context.Background(), peer, ct)
	require.NoError(err)
	require.Equal("secret", pt)
}

func (s *BridgeTestSuite) TestEncryptDecryptFailures() {
	peer := testutil.MustPublicKey(testutil.CounterpartyPublicKeyHex)

	s.host.EXPECT().Call(gomock.Any(), host.MethodEncryptPayload, gomock.Any(), gomock.Any()).
		Return(nil, host.Reject(map[string]any{"message": "no"}))
	_, err := s.bridge.Encrypt(context.Background(), peer, "x")
	s.requireKind(err, types.OpEncrypt, types.ErrProviderRejected)

	s.host.EXPECT().Call(gomock.Any(), host.MethodEncryptPayload, gomock.Any(), gomock.Any()).Return(false, nil)
	_, err = s.bridge.Encrypt(context.Background(), peer, "x")
	s.requireKind(err, types.OpEncrypt, types.ErrMalformedResponse)

	s.host.EXPECT().Call(gomock.Any(), host.MethodDecryptPayload, gomock.Any(), gomock.Any()).
		Return(nil, host.Reject(map[string]any{"message": "bad ciphertext"}))
	_, err = s.bridge.Decrypt(context.Background(), peer, "garbage")
	perr := s.requireKind(err, types.OpDecrypt, types.ErrProviderRejected)
	s.Require().Equal("bad ciphertext", perr.Message)

	s.host.EXPECT().Call(gomock.Any(), host.MethodDecryptPayload, gomock.Any(), gomock.Any()).Return(nil, nil)
	_, err = s.bridge.Decrypt(context.Background(), peer, "x")
	s.requireKind(err, types.OpDecrypt, types.ErrMalformedResponse)
}

func (s *BridgeTestSuite) TestSignEvent() {
	require := s.Require()
	unsigned := testutil.HelloEvent()

	s.host.EXPECT().Call(gomock.Any(), host.MethodSignEvent, gomock.Any()).
		DoAndReturn(func(ctx context.Context, method host.Method, params ...any) (any, error) {
			obj := params[0].(map[string]any)
			require.Equal(testutil.HelloID, obj["id"])
			require.Equal(testutil.PublicKeyHex, obj["pubkey"])
			require.Equal("hello", obj["content"])
			require.EqualValues(1, obj["kind"])
			require.Empty(obj["tags"])
			return testutil.HelloSig, nil
		})

	evt, err := s.bridge.SignEvent(context.Background(), unsigned)
	require.NoError(err)
	require.Equal(testutil.HelloSig, evt.Signature().String())
	require.Equal(testutil.HelloID, evt.ID().String())
}

func (s *BridgeTestSuite) TestSignEventFlippedSignature() {
	flipped := []byte(testutil.HelloSig)
	flipped[7] ^= 0x01
	s.host.EXPECT().Call(gomock.Any(), host.MethodSignEvent, gomock.Any()).Return(string(flipped), nil)

	evt, err := s.bridge.SignEvent(context.Background(), testutil.HelloEvent())
	s.Require().Nil(evt)
	s.requireKind(err, types.OpSignEvent, types.ErrCryptoInvalid)
}

func (s *BridgeTestSuite) TestSignEventMalformed() {
	for _, payload := range []any{
		"",
		testutil.HelloSig[:64],
		"g" + testutil.HelloSig[1:],
		map[string]any{"sig": testutil.HelloSig},
	} {
		s.host.EXPECT().Call(gomock.Any(), host.MethodSignEvent, gomock.Any()).Return(payload, nil)
		_, err := s.bridge.SignEvent(context.Background(), testutil.HelloEvent())
		s.requireKind(err, types.OpSignEvent, types.ErrMalformedResponse)
	}
}

func (s *BridgeTestSuite) TestSignEventRejected() {
	s.host.EXPECT().Call(gomock.Any(), host.MethodSignEvent, gomock.Any()).
		Return(nil, host.Reject(map[string]any{"message": "user closed the prompt"}))

	_, err := s.bridge.SignEvent(context.Background(), testutil.HelloEvent())
	perr := s.requireKind(err, types.OpSignEvent, types.ErrProviderRejected)
	s.Require().Equal("user closed the prompt", perr.Message)
}

func (s *BridgeTestSuite) TestSignNilEvent() {
	// no call is expected on the host
	_, err := s.bridge.SignEvent(context.Background(), nil)
	s.requireKind(err, types.OpSignEvent, types.ErrInvalidArgument)
	s.Require().NotErrorIs(err, types.ErrProviderRejected)
}

// The whole flow against an in-process provider: fetch the key, build an
// event for it, sign, and round trip a message.
func TestBridgeAgainstLocalHost(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	alice := bridge.New(local.NewHost(testutil.MustLocalSigner(testutil.SecretKeyHex)))
	bob := bridge.New(local.NewHost(testutil.MustLocalSigner(testutil.CounterpartySecretKeyHex)))
	require.NoError(alice.Enable(ctx))

	alicePub, err := alice.PublicKey(ctx)
	require.NoError(err)
	require.Equal(testutil.PublicKeyHex, alicePub.String())
	bobPub, err := bob.PublicKey(ctx)
	require.NoError(err)

	for _, msg := range []string{"", "hello", strings.Repeat("x", 16), "unicode é 😀"} {
		ct, err := alice.Encrypt(ctx, bobPub, msg)
		require.NoError(err)
		pt, err := bob.Decrypt(ctx, alicePub, ct)
		require.NoError(err)
		require.Equal(msg, pt)
	}

	_, err = bob.Decrypt(ctx, alicePub, "not a ciphertext")
	require.ErrorIs(err, types.ErrProviderRejected)

	unsigned := types.NewUnsignedEvent(alicePub, 1700000000, types.KindTextNote, types.Tags{types.PubKeyTag(bobPub)}, "hello")
	evt, err := alice.SignEvent(ctx, unsigned)
	require.NoError(err)
	require.NoError(evt.Verify())
	require.Equal(unsigned.ID(), evt.ID())

	// bob's provider refuses to sign for alice's key
	_, err = bob.SignEvent(ctx, unsigned)
	require.ErrorIs(err, types.ErrProviderRejected)
}

func TestBridgeConcurrentCalls(t *testing.T) {
	b := bridge.New(local.NewHost(testutil.MustLocalSigner(testutil.SecretKeyHex)))
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := b.SignEvent(ctx, testutil.HelloEvent()); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestBridgeEnableUnavailable(t *testing.T) {
	b := bridge.New(local.NewHost(nil))
	err := b.Enable(context.Background())
	require.ErrorIs(t, err, types.ErrProviderRejected)

	// hosts without an enable step are assumed ready
	require.NoError(t, bridge.New(testutil.StubHost(nil, nil)).Enable(context.Background()))
}
