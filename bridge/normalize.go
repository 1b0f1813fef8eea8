package bridge

import (
	"encoding/json"

	"github.com/openweb3-io/nsigner/types"
)

// FallbackMessage replaces any failure value that is not a {"message": string}
// record.
const FallbackMessage = "failed converting error to canonical form"

// Normalize turns whatever a provider failed with into a CanonicalError. It has
// no failure path: unrecognised shapes, nil, and values whose JSON encoding
// panics all yield FallbackMessage.
func Normalize(v any) (ce types.CanonicalError) {
	defer func() {
		if r := recover(); r != nil {
			ce = types.CanonicalError{Message: FallbackMessage}
		}
	}()

	switch val := v.(type) {
	case nil:
		return fallback()
	case types.CanonicalError:
		return val
	case *types.CanonicalError:
		if val == nil {
			return fallback()
		}
		return *val
	case map[string]any:
		if msg, ok := val["message"].(string); ok {
			return types.CanonicalError{Message: msg}
		}
		return fallback()
	case json.RawMessage:
		return fromJSON(val)
	case []byte:
		return fromJSON(val)
	}

	bz, err := json.Marshal(v)
	if err != nil {
		return fallback()
	}
	return fromJSON(bz)
}

func fromJSON(bz []byte) types.CanonicalError {
	var rec struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(bz, &rec); err != nil || rec.Message == nil {
		return fallback()
	}
	return types.CanonicalError{Message: *rec.Message}
}

func fallback() types.CanonicalError {
	return types.CanonicalError{Message: FallbackMessage}
}
