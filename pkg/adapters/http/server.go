// Package http serves schema storage and validation over a JSON HTTP API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tidwall/gjson"

	"github.com/aretw0/shape"
	"github.com/aretw0/shape/internal/logging"
	"github.com/aretw0/shape/pkg/adapters/file"
	"github.com/aretw0/shape/pkg/openapi"
	"github.com/aretw0/shape/pkg/persistence/middleware"
	"github.com/aretw0/shape/pkg/ports"
	"github.com/aretw0/shape/pkg/schema"
)

// DefaultMaxBodyBytes caps request bodies.
const DefaultMaxBodyBytes = 4 << 20

// Server holds the handlers of the API.
type Server struct {
	Registry ports.SchemaRegistry
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
	MaxBody  int64
	// Check reports whether the backing store is reachable. Nil means always healthy.
	Check func(ctx context.Context) error
}

// Option configures the handler built by NewHandler.
type Option func(*Server)

// WithGatherer exposes the gathered metrics on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// WithLogger sets the logger used for request and error logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// WithHealthCheck makes GET /health answer 503 while check fails.
func WithHealthCheck(check func(ctx context.Context) error) Option {
	return func(s *Server) {
		s.Check = check
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.MaxBody = n
		}
	}
}

// NewHandler creates the HTTP handler for the registry.
func NewHandler(reg ports.SchemaRegistry, opts ...Option) http.Handler {
	s := &Server{
		Registry: reg,
		Logger:   logging.NewNop(),
		MaxBody:  DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(requestID, s.logRequests)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.json", s.GetOpenAPI)
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if s.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/validate", s.ValidateInline)
	r.Route("/schemas", func(r chi.Router) {
		r.Get("/", s.ListSchemas)
		r.Put("/{name}", s.PutSchema)
		r.Get("/{name}", s.GetSchema)
		r.Delete("/{name}", s.DeleteSchema)
		r.Post("/{name}/validate", s.Validate)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Shape Schemas</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.json',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	if s.Check != nil {
		if err := s.Check(r.Context()); err != nil {
			s.Logger.Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    "shape",
		"version": version(),
	})
}

// GetOpenAPI handles GET /openapi.json, describing every stored schema.
func (s *Server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	names, err := s.Registry.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	nodes := make(map[string]*schema.Node, len(names))
	for _, name := range names {
		v, err := s.Registry.Get(r.Context(), name)
		if err != nil {
			// Removed since List, or no longer compiles; leave it out of the document.
			s.Logger.Warn("skipping schema in openapi document", "schema", name, "error", err)
			continue
		}
		nodes[name] = v.Schema()
	}

	writeJSON(w, http.StatusOK, openapi.Document("Shape Schemas", version(), nodes))
}

// ListSchemas handles GET /schemas.
func (s *Server) ListSchemas(w http.ResponseWriter, r *http.Request) {
	names, err := s.Registry.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"schemas": names})
}

// PutSchema handles PUT /schemas/{name}. The body is a shorthand schema.
func (s *Server) PutSchema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, err := s.readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	raw, err := schema.ParseJSON(body)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	v, err := s.Registry.Put(r.Context(), name, raw)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v.Schema())
}

// GetSchema handles GET /schemas/{name}. The compiled form is returned by
// default; ?format=raw returns the shorthand and ?format=openapi the OpenAPI
// schema object.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	v, err := s.Registry.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "compiled":
		writeJSON(w, http.StatusOK, v.Schema())
	case "raw":
		writeJSON(w, http.StatusOK, v.Raw())
	case "openapi":
		writeJSON(w, http.StatusOK, openapi.FromNode(v.Schema()))
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
	}
}

// DeleteSchema handles DELETE /schemas/{name}.
func (s *Server) DeleteSchema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := ports.ValidateName(name); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.Registry.Delete(r.Context(), name); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Validate handles POST /schemas/{name}/validate. The body is the object to
// check; ?whitelist=false keeps undeclared properties.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	opts, err := queryOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	body, err := s.readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	obj, err := file.DecodeData(body, true)
	if err != nil {
		s.fail(w, r, badRequest(err))
		return
	}

	res, err := s.Registry.Validate(r.Context(), chi.URLParam(r, "name"), obj, opts...)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeResult(w, res)
}

// ValidateInline handles POST /validate, whose body carries the schema, the
// data and optional settings:
//
//	{"schema": {...}, "data": {...}, "options": {"whitelist": false}}
func (s *Server) ValidateInline(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !gjson.ValidBytes(body) {
		s.fail(w, r, badRequest(errors.New("request body is not valid JSON")))
		return
	}

	rawSchema := gjson.GetBytes(body, "schema")
	if !rawSchema.IsObject() {
		s.fail(w, r, badRequest(errors.New(`"schema" must be an object`)))
		return
	}
	rawData := gjson.GetBytes(body, "data")
	if !rawData.IsObject() {
		s.fail(w, r, badRequest(errors.New(`"data" must be an object`)))
		return
	}

	raw, err := schema.ParseJSON([]byte(rawSchema.Raw))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	obj, err := file.DecodeData([]byte(rawData.Raw), true)
	if err != nil {
		s.fail(w, r, badRequest(err))
		return
	}

	var opts []shape.Option
	if wl := gjson.GetBytes(body, "options.whitelist"); wl.Exists() {
		if wl.Type != gjson.True && wl.Type != gjson.False {
			s.fail(w, r, badRequest(errors.New(`"options.whitelist" must be a boolean`)))
			return
		}
		opts = append(opts, shape.WithWhitelist(wl.Bool()))
	}

	res, err := s.Registry.ValidateInline(raw, obj, opts...)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeResult(w, res)
}

func queryOptions(r *http.Request) ([]shape.Option, error) {
	q := r.URL.Query().Get("whitelist")
	if q == "" {
		return nil, nil
	}
	enabled, err := strconv.ParseBool(q)
	if err != nil {
		return nil, badRequest(fmt.Errorf("invalid whitelist value %q", q))
	}
	return []shape.Option{shape.WithWhitelist(enabled)}, nil
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.MaxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &statusError{status: http.StatusRequestEntityTooLarge, err: err}
		}
		return nil, badRequest(err)
	}
	return body, nil
}

// statusError carries the HTTP status for request-level failures.
type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &statusError{status: http.StatusBadRequest, err: err}
}

func statusFor(err error) int {
	var se *statusError
	var schemaErr *schema.SchemaError
	switch {
	case errors.As(err, &se):
		return se.status
	case errors.Is(err, ports.ErrSchemaNotFound):
		return http.StatusNotFound
	case errors.Is(err, ports.ErrInvalidName), errors.As(err, &schemaErr):
		return http.StatusBadRequest
	case errors.Is(err, middleware.ErrReadOnly):
		return http.StatusForbidden
	case errors.Is(err, context.Canceled):
		return 499
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "path", r.URL.Path, "request_id", w.Header().Get(requestIDHeader), "error", err)
	} else {
		s.Logger.Warn("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, err.Error())
}

func writeResult(w http.ResponseWriter, res shape.Result) {
	status := http.StatusOK
	if !res.Valid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func version() string {
	return strings.TrimSpace(shape.Version)
}
