package jsonrpc

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/openweb3-io/nsigner/host"
	"go.uber.org/zap"
)

// Server exposes a host.Host over JSON-RPC. Rejection reasons are written as
// the error member verbatim.
type Server struct {
	host   host.Host
	logger *zap.Logger
}

func NewServer(h host.Host) *Server {
	return &Server{
		host:   h,
		logger: zap.L().Named("jsonrpc"),
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		s.writeError(w, 0, CodeParseError, "parse error: "+err.Error())
		return
	}
	if req.Version != Version {
		s.writeError(w, req.ID, CodeInvalidRequest, "invalid jsonrpc version")
		return
	}
	method := host.Method(req.Method)
	if !method.Valid() {
		s.writeError(w, req.ID, CodeMethodNotFound, "method not found: "+req.Method)
		return
	}

	result, err := s.host.Call(r.Context(), method, req.Params...)
	if err != nil {
		var rejection *host.Rejection
		if errors.As(err, &rejection) {
			reason, merr := json.Marshal(rejection.Reason)
			if merr == nil {
				s.logger.Info("call rejected", zap.String("method", req.Method), zap.ByteString("reason", reason))
				s.write(w, response{Version: Version, ID: req.ID, Error: reason})
				return
			}
		}
		s.logger.Warn("call failed", zap.String("method", req.Method), zap.Error(err))
		s.writeError(w, req.ID, CodeInternalError, err.Error())
		return
	}

	bz, err := json.Marshal(result)
	if err != nil {
		s.writeError(w, req.ID, CodeInternalError, err.Error())
		return
	}
	s.write(w, response{Version: Version, ID: req.ID, Result: bz})
}

func (s *Server) writeError(w http.ResponseWriter, id uint64, code int, msg string) {
	bz, _ := json.Marshal(errorObject{Code: code, Message: msg})
	s.write(w, response{Version: Version, ID: id, Error: bz})
}

func (s *Server) write(w http.ResponseWriter, resp response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("write response", zap.Error(err))
	}
}
