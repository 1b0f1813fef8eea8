// Package jsonrpc carries provider calls over JSON-RPC 2.0 on HTTP. A remote
// provider answers with either a result or an error object; the error object
// is handed to the caller untouched as the rejection reason.
package jsonrpc

import "encoding/json"

const (
	Version = "2.0"

	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInternalError  = -32603

	maxBodySize = 1 << 20
)

type request struct {
	Version string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type response struct {
	Version string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

type errorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
