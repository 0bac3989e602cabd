// Package httpapi implements the HTTP front-end (spec §4.9/§5, component
// C13): one JSON endpoint per REPL command, wrapping a single
// *repl.Session behind a mutex (spec §5 "the HTTP front-end wraps the
// session state in a mutex; that lock lives outside the core"). Grounded
// on the teacher pack's thin-handler convention (holomush-holomush's
// gateway command wires a handful of net/http handlers directly onto its
// core service, no framework); this module is stdlib net/http +
// encoding/json only, matching spec §6's description of the wire format
// as "plain JSON".
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/laszlokorte/damasc/internal/ast"
	"github.com/laszlokorte/damasc/internal/damascerr"
	"github.com/laszlokorte/damasc/internal/repl"
	"github.com/laszlokorte/damasc/internal/topology"
	"github.com/laszlokorte/damasc/internal/value"
)

// Server wraps one *repl.Session behind sync.Mutex and exposes it over
// HTTP (spec §5's explicit statement that this lock lives outside C11).
type Server struct {
	mu      sync.Mutex
	session *repl.Session
	logger  *slog.Logger
}

// New returns a Server driving session.
func New(session *repl.Session, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{session: session, logger: logger}
}

// Routes registers the HTTP front-end's endpoints on mux (spec
// SPEC_FULL.md §4.9: "POST /eval, POST /match, POST /assign, GET /env,
// POST /clearenv").
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /eval", s.handleEval)
	mux.HandleFunc("POST /match", s.handleMatch)
	mux.HandleFunc("POST /assign", s.handleAssign)
	mux.HandleFunc("GET /env", s.handleShowEnv)
	mux.HandleFunc("POST /clearenv", s.handleClearEnv)
}

// evalRequest is the wire shape POST /eval, /match and /assign accept:
// pre-built assignment statements and (for /eval) expressions to
// evaluate. Building these from raw Damasc source is the parser
// collaborator's job (out of scope, spec §1); this front-end consumes
// already-parsed AST nodes serialized by whatever upstream component
// holds the parser.
type evalRequest struct {
	Assignments []topology.Statement `json:"assignments"`
	Locals      []topology.Statement `json:"locals,omitempty"`
	Expressions []ast.Expression     `json:"expressions,omitempty"`
}

type valuesResponse struct {
	Values []value.Value `json:"values,omitempty"`
}

type bindingsResponse struct {
	Bindings map[string]value.Value `json:"bindings,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (evalRequest, bool) {
	var req evalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return evalRequest{}, false
	}
	return req, true
}

func (s *Server) dispatch(w http.ResponseWriter, cmd repl.Command) (repl.Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	outcome, err := s.session.Dispatch(cmd)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, damascerr.Wrap(err))
		return repl.Outcome{}, false
	}
	return outcome, true
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	outcome, ok := s.dispatch(w, repl.EvalCommand{Assignments: req.Assignments, Expressions: req.Expressions})
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, valuesResponse{Values: outcome.Values})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	outcome, ok := s.dispatch(w, repl.MatchCommand{Assignments: req.Assignments})
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, bindingsResponse{Bindings: outcome.Bindings})
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	outcome, ok := s.dispatch(w, repl.AssignCommand{Assignments: req.Assignments, Locals: req.Locals})
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, bindingsResponse{Bindings: outcome.Bindings})
}

func (s *Server) handleShowEnv(w http.ResponseWriter, r *http.Request) {
	outcome, ok := s.dispatch(w, repl.ShowEnvCommand{})
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, bindingsResponse{Bindings: outcome.Env})
}

func (s *Server) handleClearEnv(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.dispatch(w, repl.ClearEnvCommand{}); !ok {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
