package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/fourcolor/pkg/cache"
	"github.com/matzehuels/fourcolor/pkg/errors"
	"github.com/matzehuels/fourcolor/pkg/graph"
	"github.com/matzehuels/fourcolor/pkg/render/nodelink"
)

// =============================================================================
// Request and Response Bodies
// =============================================================================

type pointRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func (p pointRequest) vec() (vec.Vec2, error) {
	if p.X == nil || p.Y == nil {
		return vec.Vec2{}, errors.New(errors.ErrCodeInvalidInput, "x and y are required")
	}
	if err := errors.ValidatePoint(*p.X, *p.Y); err != nil {
		return vec.Vec2{}, err
	}
	return vec.Vec2{X: *p.X, Y: *p.Y}, nil
}

type placeRequest struct {
	pointRequest
	Targets []int `json:"targets,omitempty"`
}

type edgeRequest struct {
	A int `json:"a"`
	B int `json:"b"`
}

type lockRequest struct {
	Locked bool `json:"locked"`
}

type nodeResponse struct {
	Node      int    `json:"node"`
	Color     string `json:"color"`
	Connected []int  `json:"connected,omitempty"`
	Overflow  bool   `json:"overflow,omitempty"`
}

type resolveResponse struct {
	Resolved  bool   `json:"resolved"`
	Node      int    `json:"node,omitempty"`
	Color     string `json:"color,omitempty"`
	Remaining int    `json:"remaining"`
}

type errorResponse struct {
	Code  errors.Code `json:"code"`
	Error string      `json:"error"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"session": s.engine.Session(),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.engine.Snapshot()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.engine.Reset()
	snap := s.engine.Snapshot()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

// handlePlace places a node and, when targets are given, connects it to all
// of them in one batch. A refused batch removes the node again.
func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if !s.decode(w, r, &req) {
		return
	}
	pos, err := req.vec()
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.engine.Place(pos)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := nodeResponse{Node: id}
	if len(req.Targets) > 0 {
		res := s.engine.ConnectNew(id, req.Targets)
		if res.Err != nil {
			_ = s.engine.Remove(id)
			s.writeError(w, res.Err)
			return
		}
		if res.Removed {
			s.writeError(w, errors.New(errors.ErrCodeEnclosed, "node %d would be enclosed by its connections", id))
			return
		}
		resp.Connected = res.Connected
	}
	c, _ := s.engine.Color(id)
	resp.Color = c.String()
	resp.Overflow = c == graph.Overflow
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleRemoveNode(w http.ResponseWriter, r *http.Request) {
	id, ok := s.intParam(w, r, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	err := s.engine.Remove(id)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id, ok := s.intParam(w, r, "id")
	if !ok {
		return
	}
	var req pointRequest
	if !s.decode(w, r, &req) {
		return
	}
	pos, err := req.vec()
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.Move(id, pos); err != nil {
		s.writeError(w, err)
		return
	}
	view, _ := s.engine.Snapshot().Node(id)
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	id, ok := s.intParam(w, r, "id")
	if !ok {
		return
	}
	var req lockRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	found := s.engine.SetLocked(id, req.Locked)
	s.mu.Unlock()
	if !found {
		s.writeError(w, errors.New(errors.ErrCodeInvalidReference, "unknown node %d", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req edgeRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.Link(req.A, req.B); err != nil {
		s.writeError(w, err)
		return
	}
	id := max(req.A, req.B)
	c, _ := s.engine.Color(id)
	writeJSON(w, http.StatusCreated, nodeResponse{Node: id, Color: c.String(), Overflow: c == graph.Overflow})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	a, b, ok := s.edgeParams(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	err := s.engine.Unlink(a, b)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCurve(w http.ResponseWriter, r *http.Request) {
	a, b, ok := s.edgeParams(w, r)
	if !ok {
		return
	}
	var req pointRequest
	if !s.decode(w, r, &req) {
		return
	}
	offset, err := req.vec()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	err = s.engine.Curve(a, b, offset)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, _, queued := s.engine.Overflow()
	c, ok, err := s.engine.ResolveOverflowHead()
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := resolveResponse{Resolved: ok, Remaining: s.engine.Snapshot().Queue}
	if ok && queued {
		resp.Node, resp.Color = id, c.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.engine.Snapshot()
	s.mu.Unlock()

	opts := nodelink.Options{
		Detailed: r.URL.Query().Get("detailed") == "true",
		Warnings: r.URL.Query().Get("warnings") == "true",
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(nodelink.ToDOT(snap, opts)))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.engine.Snapshot()
	s.mu.Unlock()

	dot := nodelink.ToDOT(snap, nodelink.Options{})
	svg, hit, err := cache.GetOrRender(r.Context(), s.svgs, cache.ArtifactKey(dot, "svg", 1), 0, func() ([]byte, error) {
		return nodelink.RenderSVG(r.Context(), dot)
	})
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render svg"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if hit {
		w.Header().Set("X-Cache", "hit")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return false
	}
	return true
}

func (s *Server) intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "%s must be an integer", name))
		return 0, false
	}
	if err := errors.ValidateNodeID(v); err != nil {
		s.writeError(w, err)
		return 0, false
	}
	return v, true
}

func (s *Server) edgeParams(w http.ResponseWriter, r *http.Request) (a, b int, ok bool) {
	if a, ok = s.intParam(w, r, "a"); !ok {
		return 0, 0, false
	}
	if b, ok = s.intParam(w, r, "b"); !ok {
		return 0, 0, false
	}
	return a, b, true
}

// statusFor maps an engine error code to an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidReference:
		return http.StatusNotFound
	case errors.ErrCodeDuplicateEdge:
		return http.StatusConflict
	case errors.ErrCodeKempeExhaustion, errors.ErrCodeInternal, errors.ErrCodeStructuralInconsistency:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{
		Code:  errors.GetCode(err),
		Error: errors.UserMessage(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
