// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package server serves the ContigFilter methods over KBase-style
// JSON-RPC 1.1.
//
// A call is an HTTP POST of
//
//	{"version":"1.1","method":"ContigFilter.run_ContigFilter","params":[{...}],"id":"1"}
//
// with the caller's auth token in the Authorization header. Successful
// calls return {"version":"1.1","id":"1","result":[...]}; failed calls
// return an "error" member holding the JSON-RPC error code and message.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mflynn-lanl/super-duper-contig-filter/workspace"
)

// ServiceName prefixes the names of all served methods.
const ServiceName = "ContigFilter"

// JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeAuth           = -32400
	CodeServerError    = -32000
)

// maxRequestSize bounds the size of a request body.
const maxRequestSize = 64 << 20

// Authenticator resolves auth tokens to user names.
type Authenticator interface {
	GetUser(ctx context.Context, token string) (string, error)
}

type authRule int

const (
	authNone authRule = iota
	authRequired
)

type method struct {
	auth authRule
	call func(ctx context.Context, mc *MethodContext, params []json.RawMessage) (interface{}, error)
}

// Server is an http.Handler dispatching JSON-RPC calls to an Impl.
type Server struct {
	auth    Authenticator
	log     *log.Logger
	methods map[string]method
}

// New returns a Server for impl. If logger is nil the charmbracelet
// default logger is used.
func New(impl *Impl, auth Authenticator, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{auth: auth, log: logger}
	s.methods = map[string]method{
		ServiceName + ".run_ContigFilter": {
			auth: authRequired,
			call: filterCall(impl.RunContigFilter),
		},
		ServiceName + ".run_ContigFilter_max": {
			auth: authRequired,
			call: filterCall(impl.RunContigFilterMax),
		},
		ServiceName + ".status": {
			auth: authNone,
			call: func(ctx context.Context, mc *MethodContext, _ []json.RawMessage) (interface{}, error) {
				st, err := impl.Status(ctx, mc)
				if err != nil {
					return nil, err
				}
				return []Status{st}, nil
			},
		},
	}
	return s
}

func filterCall(fn func(context.Context, *MethodContext, map[string]interface{}) ([]Output, error)) func(context.Context, *MethodContext, []json.RawMessage) (interface{}, error) {
	return func(ctx context.Context, mc *MethodContext, params []json.RawMessage) (interface{}, error) {
		if len(params) != 1 {
			return nil, &rpcError{
				Name:    "JSONRPCError",
				Code:    CodeInvalidParams,
				Message: fmt.Sprintf("Wrong number of arguments: expected 1, got %d", len(params)),
			}
		}
		dec := json.NewDecoder(bytes.NewReader(params[0]))
		dec.UseNumber()
		var p map[string]interface{}
		if err := dec.Decode(&p); err != nil || p == nil {
			return nil, &rpcError{
				Name:    "JSONRPCError",
				Code:    CodeInvalidParams,
				Message: "Argument 1 must be a parameter object",
			}
		}
		if len(mc.Provenance[0].MethodParams) == 0 {
			mc.Provenance[0].MethodParams = []interface{}{p}
		}
		return fn(ctx, mc, p)
	}
}

type request struct {
	Version string            `json:"version"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      json.RawMessage   `json:"id,omitempty"`
	Context *struct {
		Provenance []workspace.ProvenanceAction `json:"provenance"`
	} `json:"context,omitempty"`
}

type response struct {
	Version string          `json:"version"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Name    string `json:"name"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Trace   string `json:"error"`
}

func (e *rpcError) Error() string { return e.Message }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "contigfilter: JSON-RPC requests must use POST", http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()

	var req request
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize))
	if err == nil {
		err = json.Unmarshal(body, &req)
	}
	if err != nil {
		s.reply(w, &req, nil, &rpcError{Name: "JSONRPCError", Code: CodeParseError, Message: "Parse error: " + err.Error()})
		return
	}
	if req.Method == "" {
		s.reply(w, &req, nil, &rpcError{Name: "JSONRPCError", Code: CodeInvalidRequest, Message: "Invalid request: no method"})
		return
	}
	m, ok := s.methods[req.Method]
	if !ok {
		s.reply(w, &req, nil, &rpcError{Name: "JSONRPCError", Code: CodeMethodNotFound, Message: "Method not found: " + req.Method})
		return
	}

	mc, rerr := s.methodContext(r, &req, m.auth)
	if rerr != nil {
		s.log.Warn("authentication failed", "method", req.Method, "err", rerr.Message)
		s.reply(w, &req, nil, rerr)
		return
	}

	logger := s.log.With("method", req.Method, "user", mc.UserID)
	result, err := m.call(r.Context(), mc, req.Params)
	if err != nil {
		logger.Error("call failed", "duration", time.Since(start), "err", err)
		var re *rpcError
		if !errors.As(err, &re) {
			re = &rpcError{Name: "JSONRPCError", Code: CodeServerError, Message: err.Error()}
		}
		s.reply(w, &req, nil, re)
		return
	}
	logger.Info("call complete", "duration", time.Since(start))
	s.reply(w, &req, result, nil)
}

func (s *Server) methodContext(r *http.Request, req *request, rule authRule) (*MethodContext, *rpcError) {
	mc := &MethodContext{Token: r.Header.Get("Authorization")}
	if req.Context != nil && len(req.Context.Provenance) != 0 {
		mc.Provenance = req.Context.Provenance
	} else {
		mc.Provenance = []workspace.ProvenanceAction{{
			Service:      ServiceName,
			Method:       req.Method[len(ServiceName)+1:],
			MethodParams: []interface{}{},
		}}
	}
	if rule == authNone {
		return mc, nil
	}
	if mc.Token == "" {
		return nil, &rpcError{
			Name:    "JSONRPCError",
			Code:    CodeAuth,
			Message: "Authentication required for " + ServiceName + " but no authentication header was passed",
		}
	}
	user, err := s.auth.GetUser(r.Context(), mc.Token)
	if err != nil {
		return nil, &rpcError{Name: "JSONRPCError", Code: CodeAuth, Message: "Token validation failed: " + err.Error()}
	}
	mc.UserID = user
	mc.Authenticated = true
	return mc, nil
}

func (s *Server) reply(w http.ResponseWriter, req *request, result interface{}, rerr *rpcError) {
	resp := response{Version: "1.1", ID: req.ID, Result: result, Error: rerr}
	w.Header().Set("Content-Type", "application/json")
	if rerr != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("failed to write response", "err", err)
	}
}
