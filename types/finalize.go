package types

import (
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// Event is a signed event. Its zero value is not valid; events only come out of
// Finalize or out of JSON decoding, which runs the same checks.
type Event struct {
	unsigned UnsignedEvent
	sig      Signature
}

func (e *Event) ID() EventID          { return e.unsigned.id }
func (e *Event) PubKey() PublicKey    { return e.unsigned.pubkey }
func (e *Event) CreatedAt() int64     { return e.unsigned.createdAt }
func (e *Event) Kind() Kind           { return e.unsigned.kind }
func (e *Event) Tags() Tags           { return cloneTags(e.unsigned.tags) }
func (e *Event) Content() string      { return e.unsigned.content }
func (e *Event) Signature() Signature { return e.sig }

// Finalize attaches a hex signature to u. It fails with MalformedResponse when
// sigHex is not 128 hex characters and with CryptoInvalid when the signature
// does not verify against the event id and author key.
func Finalize(u *UnsignedEvent, sigHex string) (*Event, error) {
	if u == nil {
		return nil, WrapErr(ErrInvalidArgument, OpSignEvent, "nil event", nil)
	}
	sig, err := ParseSignature(sigHex)
	if err != nil {
		return nil, WrapErr(ErrMalformedResponse, OpSignEvent, err.Error(), err)
	}
	return FinalizeSignature(u, sig)
}

// FinalizeSignature is Finalize for an already decoded signature.
func FinalizeSignature(u *UnsignedEvent, sig Signature) (*Event, error) {
	if u == nil {
		return nil, WrapErr(ErrInvalidArgument, OpSignEvent, "nil event", nil)
	}
	evt := &Event{
		unsigned: UnsignedEvent{
			id:        u.id,
			pubkey:    u.pubkey,
			createdAt: u.createdAt,
			kind:      u.kind,
			tags:      cloneTags(u.tags),
			content:   u.content,
		},
		sig: sig,
	}
	if err := evt.Verify(); err != nil {
		return nil, err
	}
	return evt, nil
}

// Verify checks the BIP-340 signature over the id under the author key.
func (e *Event) Verify() error {
	pub, err := e.unsigned.pubkey.Schnorr()
	if err != nil {
		return WrapErr(ErrCryptoInvalid, OpSignEvent, fmt.Sprintf("author key is not a valid x-only key: %v", err), err)
	}
	sig, err := schnorr.ParseSignature(e.sig[:])
	if err != nil {
		return WrapErr(ErrCryptoInvalid, OpSignEvent, fmt.Sprintf("signature is not a valid schnorr signature: %v", err), err)
	}
	if !sig.Verify(e.unsigned.id[:], pub) {
		return WrapErr(ErrCryptoInvalid, OpSignEvent, "signature does not verify against event id "+e.unsigned.id.String(), nil)
	}
	return nil
}

type eventJSON struct {
	unsignedEventJSON
	Sig Signature `json:"sig"`
}

func (e *Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{
		unsignedEventJSON: e.unsigned.wire(),
		Sig:               e.sig,
	})
}

// UnmarshalJSON decodes and fully validates an event: the id must match the
// fields and the signature must verify.
func (e *Event) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID        string    `json:"id"`
		PubKey    PublicKey `json:"pubkey"`
		CreatedAt int64     `json:"created_at"`
		Kind      Kind      `json:"kind"`
		Tags      Tags      `json:"tags"`
		Content   string    `json:"content"`
		Sig       string    `json:"sig"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	u := NewUnsignedEvent(raw.PubKey, raw.CreatedAt, raw.Kind, raw.Tags, raw.Content)
	if raw.ID != u.id.String() {
		return fmt.Errorf("event id %q does not match computed id %s", raw.ID, u.id)
	}
	evt, err := Finalize(u, raw.Sig)
	if err != nil {
		return err
	}
	*e = *evt
	return nil
}
