package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dgallion1/molgest/internal/metrics"
	"github.com/dgallion1/molgest/internal/molecule"
	"github.com/dgallion1/molgest/internal/smiles"
	"github.com/dgallion1/molgest/internal/token"
)

const maxJSONBody = 1 << 20

type parseRequest struct {
	Notation string `json:"notation"`
}

type serializeRequest struct {
	Tree json.RawMessage `json:"tree"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if s.cfg.MaxNotationLength > 0 && len(req.Notation) > s.cfg.MaxNotationLength {
		jsonError(w, fmt.Sprintf("notation exceeds %d characters", s.cfg.MaxNotationLength), http.StatusBadRequest)
		return
	}

	start := time.Now()
	canonical, tree, err := smiles.Canonical(req.Notation)
	metrics.ParseDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Parses.WithLabelValues(metrics.ResultRejected).Inc()
		notationError(w, err)
		return
	}
	metrics.Parses.WithLabelValues(metrics.ResultOK).Inc()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"canonical": canonical,
		"kind":      tree.Kind(),
		"stats":     molecule.Count(tree),
		"tree":      tree,
	})
}

func (s *Server) handleSerialize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var req serializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Tree) == 0 {
		jsonError(w, "tree is required", http.StatusBadRequest)
		return
	}

	tree, err := molecule.DecodeNode(req.Tree)
	if err != nil {
		jsonError(w, "invalid tree: "+err.Error(), http.StatusBadRequest)
		return
	}
	out, err := smiles.Serialize(tree)
	if err != nil {
		notationError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"notation": out})
}

// notationError maps parser and serializer errors to 422 with a kind and,
// where known, the input position.
func notationError(w http.ResponseWriter, err error) {
	body := map[string]any{"error": err.Error()}

	var (
		lexErr    *token.LexError
		syntaxErr *smiles.SyntaxError
		ringErr   *smiles.RingBalanceError
		structErr *smiles.StructuralError
	)
	switch {
	case errors.As(err, &lexErr):
		body["kind"] = "lex"
		body["position"] = lexErr.Pos
	case errors.As(err, &syntaxErr):
		body["kind"] = "syntax"
		body["position"] = syntaxErr.Pos
	case errors.As(err, &ringErr):
		body["kind"] = "ring_balance"
		body["unclosed"] = ringErr.Unclosed
	case errors.As(err, &structErr):
		body["kind"] = "structural"
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	json.NewEncoder(w).Encode(body)
}
