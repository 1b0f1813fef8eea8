package types

import (
	"encoding/hex"
	"encoding/json"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/nbd-wtf/go-nostr"
)

type Kind int

const (
	KindMetadata               Kind = 0
	KindTextNote               Kind = 1
	KindContacts               Kind = 3
	KindEncryptedDirectMessage Kind = 4
)

// EventID is the SHA-256 of an event's canonical serialisation.
type EventID [chainhash.HashSize]byte

func (id EventID) String() string {
	return hex.EncodeToString(id[:])
}

func (id EventID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

type Tag []string

type Tags []Tag

// PubKeyTag references another key, ["p", <hex>].
func PubKeyTag(pk PublicKey) Tag {
	return Tag{"p", pk.String()}
}

// UnsignedEvent is an event awaiting a signature. Its id is computed once by
// NewUnsignedEvent and never recomputed, so the fields are only readable.
type UnsignedEvent struct {
	id        EventID
	pubkey    PublicKey
	createdAt int64
	kind      Kind
	tags      Tags
	content   string
}

func NewUnsignedEvent(pubkey PublicKey, createdAt int64, kind Kind, tags Tags, content string) *UnsignedEvent {
	tags = cloneTags(tags)
	return &UnsignedEvent{
		id:        ComputeID(pubkey, createdAt, kind, tags, content),
		pubkey:    pubkey,
		createdAt: createdAt,
		kind:      kind,
		tags:      tags,
		content:   content,
	}
}

func (u *UnsignedEvent) ID() EventID       { return u.id }
func (u *UnsignedEvent) PubKey() PublicKey { return u.pubkey }
func (u *UnsignedEvent) CreatedAt() int64  { return u.createdAt }
func (u *UnsignedEvent) Kind() Kind        { return u.kind }
func (u *UnsignedEvent) Tags() Tags        { return cloneTags(u.tags) }
func (u *UnsignedEvent) Content() string   { return u.content }

// unsignedEventJSON is the object handed to a provider for signing.
type unsignedEventJSON struct {
	ID        EventID   `json:"id"`
	PubKey    PublicKey `json:"pubkey"`
	CreatedAt int64     `json:"created_at"`
	Kind      Kind      `json:"kind"`
	Tags      Tags      `json:"tags"`
	Content   string    `json:"content"`
}

func (u *UnsignedEvent) wire() unsignedEventJSON {
	tags := u.tags
	if tags == nil {
		tags = Tags{}
	}
	return unsignedEventJSON{
		ID:        u.id,
		PubKey:    u.pubkey,
		CreatedAt: u.createdAt,
		Kind:      u.kind,
		Tags:      tags,
		Content:   u.content,
	}
}

func (u *UnsignedEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.wire())
}

// Object returns the event as a generic JSON object, the shape a provider's
// signEvent expects.
func (u *UnsignedEvent) Object() map[string]any {
	tags := make([]any, 0, len(u.tags))
	for _, tag := range u.tags {
		items := make([]any, len(tag))
		for i, v := range tag {
			items[i] = v
		}
		tags = append(tags, items)
	}
	return map[string]any{
		"id":         u.id.String(),
		"pubkey":     u.pubkey.String(),
		"created_at": u.createdAt,
		"kind":       int(u.kind),
		"tags":       tags,
		"content":    u.content,
	}
}

// ComputeID hashes [0,pubkey,created_at,kind,tags,content] serialised as
// compact JSON with NIP-01 escaping.
func ComputeID(pubkey PublicKey, createdAt int64, kind Kind, tags Tags, content string) EventID {
	var id EventID
	copy(id[:], chainhash.HashB(Serialize(pubkey, createdAt, kind, tags, content)))
	return id
}

// Serialize returns the canonical byte form the event id is computed over.
func Serialize(pubkey PublicKey, createdAt int64, kind Kind, tags Tags, content string) []byte {
	evt := nostr.Event{
		PubKey:    pubkey.String(),
		CreatedAt: nostr.Timestamp(createdAt),
		Kind:      int(kind),
		Tags:      make(nostr.Tags, 0, len(tags)),
		Content:   content,
	}
	for _, tag := range tags {
		evt.Tags = append(evt.Tags, nostr.Tag(tag))
	}
	return evt.Serialize()
}

func cloneTags(tags Tags) Tags {
	if tags == nil {
		return nil
	}
	out := make(Tags, len(tags))
	for i, tag := range tags {
		out[i] = append(Tag(nil), tag...)
	}
	return out
}
