package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/courier/internal/logging"
	"github.com/aretw0/courier/internal/school"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/mediator"
	"github.com/aretw0/courier/pkg/ports"
	"github.com/aretw0/courier/pkg/result"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
)

// UserHeader carries the id of the acting user.
const UserHeader = "X-User-ID"

// Server adapts HTTP requests into mediator requests.
type Server struct {
	dispatch ports.Dispatcher
	streams  *Streams
	metrics  http.Handler
	logger   *slog.Logger
	version  string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger for transport failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion sets the version reported by GET /openapi.json.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithStreams serves school events at GET /events.
func WithStreams(streams *Streams) Option {
	return func(s *Server) {
		s.streams = streams
	}
}

// NewHandler creates the HTTP handler for d.
func NewHandler(d ports.Dispatcher, opts ...Option) http.Handler {
	s := &Server{
		dispatch: d,
		logger:   logging.NewNop(),
		version:  "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/openapi.json", s.ServeOpenAPI)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	if s.streams != nil {
		r.Get("/events", s.SubscribeEvents)
	}

	r.Post("/users", s.RegisterUser)
	r.Route("/schools", func(r chi.Router) {
		r.Get("/", s.ListSchools)
		r.Post("/", s.CreateSchool)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSchool)
			r.Get("/overview", s.GetOverview)
			r.Put("/name", s.RenameSchool)
			r.Delete("/", s.DeleteSchool)
		})
	})
	return r
}

// ServeOpenAPI handles GET /openapi.json.
func (s *Server) ServeOpenAPI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, OpenAPI(s.version))
}

// RegisterUser handles POST /users.
func (s *Server) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req school.RegisterUser
	if !s.decode(w, r, &req) {
		return
	}
	send[domain.User](s, w, r, req, http.StatusCreated)
}

// CreateSchool handles POST /schools.
func (s *Server) CreateSchool(w http.ResponseWriter, r *http.Request) {
	var req school.CreateSchool
	if !s.decode(w, r, &req) {
		return
	}
	if req.ActorID = actor(w, r); req.ActorID == "" {
		return
	}
	send[domain.School](s, w, r, req, http.StatusCreated)
}

// ListSchools handles GET /schools, optionally filtered by ?owner=.
func (s *Server) ListSchools(w http.ResponseWriter, r *http.Request) {
	var req school.ListSchools
	if err := runtime.BindQueryParameter("form", true, false, "owner", r.URL.Query(), &req.OwnerID); err != nil {
		s.invalidParam(w, r, "owner", err)
		return
	}
	send[[]domain.School](s, w, r, req, http.StatusOK)
}

// GetSchool handles GET /schools/{id}.
func (s *Server) GetSchool(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	send[domain.School](s, w, r, school.GetSchool{ID: id}, http.StatusOK)
}

// GetOverview handles GET /schools/{id}/overview.
func (s *Server) GetOverview(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	send[school.Overview](s, w, r, school.GetOverview{SchoolID: id}, http.StatusOK)
}

// RenameSchool handles PUT /schools/{id}/name.
func (s *Server) RenameSchool(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req school.RenameSchool
	if !s.decode(w, r, &req) {
		return
	}
	if req.ActorID = actor(w, r); req.ActorID == "" {
		return
	}
	req.SchoolID = id
	send[domain.School](s, w, r, req, http.StatusOK)
}

// DeleteSchool handles DELETE /schools/{id}.
func (s *Server) DeleteSchool(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	req := school.DeleteSchool{SchoolID: id}
	if req.ActorID = actor(w, r); req.ActorID == "" {
		return
	}
	send[bool](s, w, r, req, http.StatusOK)
}

// SubscribeEvents handles GET /events (SSE), optionally limited by ?school=.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	topic := r.URL.Query().Get("school")
	if topic == "" {
		topic = AllSchools
	}
	ch, cancel := s.streams.Subscribe(topic)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

type errorBody struct {
	Errors []result.Error `json:"errors"`
}

// send dispatches req and writes its Result.
func send[T any](s *Server, w http.ResponseWriter, r *http.Request, req mediator.Request[result.Result[T]], okStatus int) {
	out, err := s.dispatch.SendAny(r.Context(), req)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "dispatch failed",
			"request", fmt.Sprintf("%T", req),
			"request_id", middleware.GetReqID(r.Context()),
			"err", err,
		)
		status := http.StatusInternalServerError
		if errors.Is(err, mediator.ErrHandlerNotFound) {
			status = http.StatusNotImplemented
		}
		writeJSON(w, status, errorBody{Errors: []result.Error{result.NewError("Dispatch.Failed", http.StatusText(status))}})
		return
	}

	res, ok := out.(result.Result[T])
	if !ok {
		s.logger.ErrorContext(r.Context(), "unexpected response", "type", fmt.Sprintf("%T", out))
		writeJSON(w, http.StatusInternalServerError, errorBody{Errors: []result.Error{result.NewError("Dispatch.Failed", "unexpected response")}})
		return
	}

	if v, ok := res.Get(); ok {
		writeJSON(w, okStatus, v)
		return
	}
	errs := res.Errors()
	writeJSON(w, StatusFor(errs[0].Code), errorBody{Errors: errs})
}

// StatusFor maps a failure code to an HTTP status by its kind suffix.
func StatusFor(code string) int {
	kind := code
	if i := strings.LastIndexByte(code, '.'); i >= 0 {
		kind = code[i+1:]
	}
	switch kind {
	case "NotFound":
		return http.StatusNotFound
	case "Forbidden":
		return http.StatusForbidden
	case "Invalid":
		return http.StatusBadRequest
	case "Conflict":
		return http.StatusConflict
	case "Unavailable", "Canceled":
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnprocessableEntity
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.logger.WarnContext(r.Context(), "invalid request body", "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusBadRequest, errorBody{Errors: []result.Error{result.NewError("Request.Invalid", "invalid request body")}})
		return false
	}
	return true
}

// pathID binds the {id} path parameter.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		s.invalidParam(w, r, "id", err)
		return "", false
	}
	return id, true
}

func (s *Server) invalidParam(w http.ResponseWriter, r *http.Request, name string, err error) {
	s.logger.WarnContext(r.Context(), "invalid parameter", "param", name, "path", r.URL.Path, "err", err)
	writeJSON(w, http.StatusBadRequest, errorBody{Errors: []result.Error{result.NewError("Request.Invalid", "invalid parameter "+name)}})
}

func actor(w http.ResponseWriter, r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(UserHeader))
	if id == "" {
		writeJSON(w, http.StatusUnauthorized, errorBody{Errors: []result.Error{
			result.NewError(domain.CodeUserNotFound, UserHeader+" header is required"),
		}})
	}
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
