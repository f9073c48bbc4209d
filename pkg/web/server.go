package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/ritzau/pathlink/pkg/diag"
	"github.com/ritzau/pathlink/pkg/geom"
	"github.com/ritzau/pathlink/pkg/logging"
	"github.com/ritzau/pathlink/pkg/model"
	"github.com/ritzau/pathlink/pkg/pathway"
	"github.com/ritzau/pathlink/pkg/pubsub"
)

// ShapeData is the JSON form of a line's computed geometry
type ShapeData struct {
	ID            string         `json:"id"`
	Topology      model.Topology `json:"topology"`
	Segments      []geom.Segment `json:"segments"`
	Waypoints     []geom.Point   `json:"waypoints"`
	Start         geom.Point     `json:"start"`
	End           geom.Point     `json:"end"`
	AdjustedStart geom.Point     `json:"adjustedStart"`
	AdjustedEnd   geom.Point     `json:"adjustedEnd"`
	StartSide     string         `json:"startSide"`
	EndSide       string         `json:"endSide"`
	Length        float64        `json:"length"`
	Reused        bool           `json:"reused"`
}

// PointData answers point and anchor position queries
type PointData struct {
	ID string     `json:"id"`
	T  float64    `json:"t"`
	At geom.Point `json:"at"`
}

// MutationResult is returned by every mutating endpoint
type MutationResult struct {
	Element string         `json:"element"`
	Report  pathway.Report `json:"report"`
}

type moveRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type resizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type topologyRequest struct {
	Topology string `json:"topology"`
}

type anchorRequest struct {
	Position float64 `json:"position"`
	Shape    string  `json:"shape"`
}

type linkRequest struct {
	Target string `json:"target"`
}

// Server represents the web server. The document is not safe for
// concurrent use, so every handler holds mu while it touches it.
type Server struct {
	router    *mux.Router
	publisher pubsub.Publisher

	mu    sync.Mutex
	doc   *pathway.Document
	diags diag.List
}

// NewServer creates a new web server
func NewServer() *Server {
	s := &Server{
		router:    mux.NewRouter(),
		publisher: pubsub.NewSSEPublisher(),
	}
	s.setupRoutes()
	return s
}

// Handler returns the router wrapped in the request logging middleware
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

// Close shuts down the publisher and ends all subscriptions
func (s *Server) Close() error {
	return s.publisher.Close()
}

// SetDocument replaces the served document and publishes its status.
// eventType is "loaded" on startup and "reloaded" after a file change.
func (s *Server) SetDocument(doc *pathway.Document, diags diag.List, eventType string) error {
	s.mu.Lock()
	s.doc = doc
	s.diags = diags
	status := s.statusLocked("")
	s.mu.Unlock()

	return s.publisher.PublishDocument(eventType, status)
}

// PublishDocumentError reports a reload that failed. The previous
// document stays in place.
func (s *Server) PublishDocumentError(err error) error {
	s.mu.Lock()
	status := s.statusLocked(err.Error())
	s.mu.Unlock()

	return s.publisher.PublishDocument("error", status)
}

func (s *Server) statusLocked(message string) pubsub.DocumentStatus {
	status := pubsub.DocumentStatus{Diagnostics: len(s.diags), Message: message}
	if s.doc != nil {
		status.Name = s.doc.Name
		status.Elements = s.doc.Len()
		status.Lines = len(s.doc.Lines())
	}
	return status
}

func (s *Server) setupRoutes() {
	// SSE subscription endpoints
	s.router.HandleFunc("/api/subscribe/document", s.handleSubscribe(pubsub.TopicDocument)).Methods("GET")
	s.router.HandleFunc("/api/subscribe/propagation", s.handleSubscribe(pubsub.TopicPropagation)).Methods("GET")

	// Queries
	s.router.HandleFunc("/api/document", s.handleDocument).Methods("GET")
	s.router.HandleFunc("/api/diagnostics", s.handleDiagnostics).Methods("GET")
	s.router.HandleFunc("/api/lines/{id}/shape", s.handleShape).Methods("GET")
	s.router.HandleFunc("/api/lines/{id}/point", s.handlePointAt).Methods("GET")
	s.router.HandleFunc("/api/anchors/{id}/position", s.handleAnchorPosition).Methods("GET")

	// Mutations
	s.router.HandleFunc("/api/elements/{id}/move", s.handleMove).Methods("POST")
	s.router.HandleFunc("/api/elements/{id}/resize", s.handleResize).Methods("POST")
	s.router.HandleFunc("/api/elements/{id}", s.handleDelete).Methods("DELETE")
	s.router.HandleFunc("/api/lines/{id}/topology", s.handleTopology).Methods("PUT")
	s.router.HandleFunc("/api/lines/{id}/anchors", s.handleAddAnchor).Methods("POST")
	s.router.HandleFunc("/api/lines/{id}/points/{index}/link", s.handleLink).Methods("PUT")
	s.router.HandleFunc("/api/lines/{id}/points/{index}/link", s.handleUnlink).Methods("DELETE")
}

func (s *Server) handleSubscribe(topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Set SSE headers
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		// Send initial comment to establish connection (Safari compatibility)
		fmt.Fprintf(w, ": connected\n\n")
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}

		sub, err := s.publisher.Subscribe(r.Context(), topic)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer sub.Close()

		for event := range sub.Events() {
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.DebugContext(r.Context(), "SSE client gone", "topic", topic, "error", err)
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready(w) {
		return
	}
	writeJSON(w, s.doc.Export())
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	diags := s.diags
	if diags == nil {
		diags = diag.List{}
	}
	writeJSON(w, diags)
}

func (s *Server) handleShape(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready(w) {
		return
	}

	shape, err := s.doc.Shape(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, ShapeData{
		ID:            id,
		Topology:      shape.Topology,
		Segments:      shape.Segments,
		Waypoints:     shape.Waypoints,
		Start:         shape.Start,
		End:           shape.End,
		AdjustedStart: shape.AdjustedStart,
		AdjustedEnd:   shape.AdjustedEnd,
		StartSide:     shape.StartSide.String(),
		EndSide:       shape.EndSide.String(),
		Length:        shape.Length(),
		Reused:        shape.Reused,
	})
}

func (s *Server) handlePointAt(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	t, err := strconv.ParseFloat(r.URL.Query().Get("t"), 64)
	if err != nil {
		writeError(w, r, fmt.Errorf("t: %w", diag.ErrInvalidParameter))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready(w) {
		return
	}

	at, err := s.doc.PointAtFraction(id, t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, PointData{ID: id, T: t, At: at})
}

func (s *Server) handleAnchorPosition(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready(w) {
		return
	}

	at, err := s.doc.AnchorPosition(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var t float64
	if target, ok := s.doc.Target(id); ok && target.Anchor != nil {
		t = target.Anchor.Position
	}
	writeJSON(w, PointData{ID: id, T: t, At: at})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.mutate(w, r, "move", func(doc *pathway.Document, id string) (string, pathway.Changes, error) {
		ch, err := doc.Move(id, req.DX, req.DY)
		return id, ch, err
	})
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.mutate(w, r, "resize", func(doc *pathway.Document, id string) (string, pathway.Changes, error) {
		ch, err := doc.Resize(id, req.Width, req.Height)
		return id, ch, err
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "delete", func(doc *pathway.Document, id string) (string, pathway.Changes, error) {
		ch, err := doc.Delete(id)
		return id, ch, err
	})
}

func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request) {
	var req topologyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	topology, err := model.ParseTopology(req.Topology)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", diag.ErrInvalidParameter, err))
		return
	}
	s.mutate(w, r, "topology", func(doc *pathway.Document, id string) (string, pathway.Changes, error) {
		ch, err := doc.SetTopology(id, topology)
		return id, ch, err
	})
}

func (s *Server) handleAddAnchor(w http.ResponseWriter, r *http.Request) {
	var req anchorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	shape := model.AnchorShape(req.Shape)
	switch shape {
	case "", model.AnchorNone, model.AnchorCircular:
	default:
		writeError(w, r, fmt.Errorf("anchor shape %q: %w", req.Shape, diag.ErrInvalidParameter))
		return
	}
	s.mutate(w, r, "anchor", func(doc *pathway.Document, id string) (string, pathway.Changes, error) {
		a, ch, err := doc.AddAnchor(id, req.Position, shape)
		if err != nil {
			return id, ch, err
		}
		return a.ID, ch, nil
	})
}

func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	raw := mux.Vars(r)["index"]
	s.mutate(w, r, "link", func(doc *pathway.Document, id string) (string, pathway.Changes, error) {
		index, err := pointIndex(doc, id, raw)
		if err != nil {
			return id, pathway.Changes{}, err
		}
		ch, err := doc.Link(id, index, req.Target)
		return id, ch, err
	})
}

func (s *Server) handleUnlink(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["index"]
	s.mutate(w, r, "unlink", func(doc *pathway.Document, id string) (string, pathway.Changes, error) {
		index, err := pointIndex(doc, id, raw)
		if err != nil {
			return id, pathway.Changes{}, err
		}
		ch, err := doc.Unlink(id, index)
		return id, ch, err
	})
}

// pointIndex resolves a point path segment against the line's current
// points. "start" is the first point; "end" and -1 are the last, whatever
// waypoints routing has put in between.
func pointIndex(doc *pathway.Document, lineID, raw string) (int, error) {
	el, ok := doc.Lookup(lineID)
	if !ok {
		return 0, fmt.Errorf("line %s: %w", lineID, diag.ErrNotFound)
	}
	if el.Kind != model.KindLine {
		return 0, fmt.Errorf("%s is a %s, not a line: %w", lineID, el.Kind, diag.ErrInvalidParameter)
	}
	last := len(el.Line.Points) - 1
	switch raw {
	case "start":
		return 0, nil
	case "end", "-1":
		return last, nil
	}
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("point %q: %w", raw, diag.ErrInvalidParameter)
	}
	return index, nil
}

type mutation func(doc *pathway.Document, id string) (string, pathway.Changes, error)

// mutate applies one change under the lock, propagates it and publishes
// the report on the propagation topic.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, eventType string, fn mutation) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	if !s.ready(w) {
		s.mu.Unlock()
		return
	}
	element, ch, err := fn(s.doc, id)
	if err != nil {
		s.mu.Unlock()
		writeError(w, r, err)
		return
	}
	report := s.doc.Propagate(ch)
	s.mu.Unlock()

	logging.DebugContext(r.Context(), "Applied mutation",
		"op", eventType,
		"element", element,
		"recomputed", len(report.Recomputed))

	data := pubsub.PropagationData{Element: element, Report: report}
	if err := s.publisher.PublishPropagation(eventType, data); err != nil {
		logging.WarnContext(r.Context(), "Failed to publish propagation", "error", err)
	}
	writeJSON(w, MutationResult{Element: element, Report: report})
}

// ready must be called with mu held
func (s *Server) ready(w http.ResponseWriter) bool {
	if s.doc == nil {
		http.Error(w, "Document not loaded", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, fmt.Errorf("request body: %w: %v", diag.ErrInvalidParameter, err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("Failed to encode response", "error", err)
	}
}

// statusFor maps core errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, diag.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, diag.ErrLinkCycle):
		return http.StatusConflict
	case errors.Is(err, diag.ErrInvalidParameter), errors.Is(err, diag.ErrStructuralViolation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.ErrorContext(r.Context(), "Request failed", "error", err)
	}
	http.Error(w, err.Error(), status)
}

// Start starts the web server on the specified port
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logging.Info("Starting web server", "url", fmt.Sprintf("http://localhost%s", addr))
	return http.ListenAndServe(addr, s.Handler())
}
