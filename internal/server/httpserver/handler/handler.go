package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yndnr/stakewatch/internal/core/domain"
	"github.com/yndnr/stakewatch/internal/telemetry/logger"
)

// Request is the normalized view of an inbound request handed to a resource.
type Request struct {
	Path     string            // trimmed path, no leading or trailing slash
	Segments []string          // Path split on "/"
	Query    map[string]string // last value wins
	Method   string
	Headers  http.Header
	Body     map[string]any // empty when the body is not a JSON object
	Page     string
	Limit    string
}

// QueryValue returns the trimmed query parameter.
func (r *Request) QueryValue(key string) string {
	return strings.TrimSpace(r.Query[key])
}

// String returns the trimmed body field when it holds a JSON string.
func (r *Request) String(key string) string {
	s, _ := r.Body[key].(string)
	return strings.TrimSpace(s)
}

// Bool reports whether the body field holds the JSON literal true.
func (r *Request) Bool(key string) bool {
	b, _ := r.Body[key].(bool)
	return b
}

// Result is what a resource answers with. A zero Status means 200 and a nil
// Payload is written as an empty object.
type Result struct {
	Status  int
	Payload any
}

// OK returns a 200 result carrying payload.
func OK(payload any) Result {
	return Result{Status: http.StatusOK, Payload: payload}
}

// Empty returns a result with an empty object body.
func Empty(status int) Result {
	return Result{Status: status}
}

// ErrorPayload is the body of an error response.
type ErrorPayload struct {
	Error string `json:"Error"`
}

// Fail converts err into a result. Domain errors keep their status and
// message; anything else becomes an opaque 500.
func Fail(err error) Result {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		de = domain.ErrInternalServer
	}
	return Result{Status: de.Status(), Payload: ErrorPayload{Error: de.Message}}
}

// Resource handles one top-level path segment with one operation per
// accepted method.
type Resource interface {
	Post(ctx context.Context, req *Request) Result
	Get(ctx context.Context, req *Request) Result
	Put(ctx context.Context, req *Request) Result
	Delete(ctx context.Context, req *Request) Result
}

// RouteFunc answers every method for a path segment.
type RouteFunc func(ctx context.Context, req *Request) Result

// Registry maps a top-level path segment to its route. It is filled once at
// startup and read-only once handed to a Dispatcher.
type Registry struct {
	routes map[string]RouteFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{routes: make(map[string]RouteFunc)}
}

// Handle registers a resource. Methods other than POST, GET, PUT and DELETE
// are answered with 405.
func (g *Registry) Handle(segment string, res Resource) *Registry {
	return g.HandleFunc(segment, func(ctx context.Context, req *Request) Result {
		switch req.Method {
		case http.MethodPost:
			return res.Post(ctx, req)
		case http.MethodGet:
			return res.Get(ctx, req)
		case http.MethodPut:
			return res.Put(ctx, req)
		case http.MethodDelete:
			return res.Delete(ctx, req)
		default:
			return Empty(http.StatusMethodNotAllowed)
		}
	})
}

// HandleFunc registers a route that sees every method.
func (g *Registry) HandleFunc(segment string, fn RouteFunc) *Registry {
	g.routes[segment] = fn
	return g
}

// Segments returns the registered path segments.
func (g *Registry) Segments() []string {
	out := make([]string, 0, len(g.routes))
	for s := range g.routes {
		out = append(out, s)
	}
	return out
}

// Dispatcher turns HTTP requests into Requests, routes them by first path
// segment and writes the Result as JSON.
type Dispatcher struct {
	routes       map[string]RouteFunc
	maxBodyBytes int64
	logger       *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithMaxBodyBytes caps the request body. Zero or less means no cap.
func WithMaxBodyBytes(n int64) DispatcherOption {
	return func(d *Dispatcher) { d.maxBodyBytes = n }
}

// WithLogger sets the logger used for 5xx results.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher creates a Dispatcher over a snapshot of the registry.
func NewDispatcher(reg *Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		routes: make(map[string]RouteFunc, len(reg.routes)),
		logger: slog.Default(),
	}
	for k, v := range reg.routes {
		d.routes[k] = v
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := d.parse(w, r)
	if err != nil {
		d.write(w, r, Fail(err))
		return
	}

	route, ok := d.routes[req.Segments[0]]
	if !ok {
		d.write(w, r, Empty(http.StatusNotFound))
		return
	}
	d.write(w, r, route(r.Context(), req))
}

func (d *Dispatcher) parse(w http.ResponseWriter, r *http.Request) (*Request, error) {
	path := strings.Trim(r.URL.Path, "/")
	query := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			query[k] = v[len(v)-1]
		}
	}

	body := r.Body
	if d.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, d.maxBodyBytes)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.ErrBodyTooLarge
		}
		return nil, domain.ErrBodyUnreadable.WithCause(err)
	}

	return &Request{
		Path:     path,
		Segments: strings.Split(path, "/"),
		Query:    query,
		Method:   r.Method,
		Headers:  r.Header,
		Body:     decodeBody(raw),
		Page:     query["page"],
		Limit:    query["limit"],
	}, nil
}

// decodeBody parses raw as a JSON object. Anything else, trailing data
// included, yields an empty map. Invalid UTF-8 inside strings is replaced
// by the decoder.
func decodeBody(raw []byte) map[string]any {
	out := make(map[string]any)
	if len(bytes.TrimSpace(raw)) == 0 {
		return out
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return out
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return out
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return out
}

func (d *Dispatcher) write(w http.ResponseWriter, r *http.Request, res Result) {
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	payload := res.Payload
	if payload == nil {
		payload = struct{}{}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		d.logger.Error("failed to encode response", "path", r.URL.Path, "error", err)
		status = http.StatusInternalServerError
		data, _ = json.Marshal(ErrorPayload{Error: domain.ErrInternalServer.Message})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		d.logger.Debug("failed to write response", "error", err)
	}
}

// failed is Fail that first logs the cause of a 5xx, which the client
// never sees.
func failed(ctx context.Context, op string, err error) Result {
	if domain.StatusOf(err) >= http.StatusInternalServerError {
		logger.L(ctx).Error(op+" failed", "code", domain.GetErrorCode(err), "error", err)
	}
	return Fail(err)
}
