// Package server exposes an engine over HTTP.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	engine "github.com/hanpama/gqlengine/internal/engine"
	eventbus "github.com/hanpama/gqlengine/internal/eventbus"
	events "github.com/hanpama/gqlengine/internal/events"
	executor "github.com/hanpama/gqlengine/internal/executor"
	reqid "github.com/hanpama/gqlengine/internal/reqid"
	"google.golang.org/grpc/metadata"
)

// CodeBadRequest marks errors in the HTTP request itself, raised before
// any GraphQL processing.
const CodeBadRequest = "BAD_REQUEST"

// RequestIDMetadataKey is the outgoing gRPC metadata key carrying the
// request id to resolvers.
const RequestIDMetadataKey = "graphql-request-id"

// Handler serves GraphQL over HTTP: GET with query parameters, POST with a
// JSON body or a JSON array of bodies, and text/event-stream responses for
// clients that accept them.
type Handler struct {
	engine    *engine.Engine
	opt       Options
	forwarded map[string]struct{}
}

type Options struct {
	// Timeout applies when the incoming context has no deadline. 0 disables
	// it. Event streams are never limited.
	Timeout time.Duration

	// Pretty indents JSON responses.
	Pretty bool

	// MaxBodyBytes limits the request body. 0 means unlimited.
	MaxBodyBytes int64

	// CORS is disabled while AllowedOrigins is empty.
	CORS CORSOptions

	// MetadataHeaders lists HTTP headers copied into outgoing gRPC metadata,
	// matched case-insensitively. Default is none.
	MetadataHeaders []string
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS.AllowedOrigins = origins }
}
func WithMetadataHeaders(headers ...string) Option {
	return func(o *Options) { o.MetadataHeaders = headers }
}

// New creates a handler serving eng. The default timeout is 10s.
func New(eng *engine.Engine, opts ...Option) *Handler {
	op := Options{Timeout: 10 * time.Second}
	for _, f := range opts {
		f(&op)
	}
	forwarded := make(map[string]struct{}, len(op.MetadataHeaders))
	for _, hdr := range op.MetadataHeaders {
		forwarded[strings.ToLower(hdr)] = struct{}{}
	}
	return &Handler{engine: eng, opt: op, forwarded: forwarded}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stream := acceptsEventStream(r.Header.Get("Accept"))

	ctx, rid := reqid.WithID(r.Context(), r.Header.Get(reqid.Header))
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 && !stream {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}
	w.Header().Set(reqid.Header, rid)

	finish := events.HTTPFinish{Request: r, Stream: stream}
	eventbus.Publish(ctx, events.HTTPStart{Request: r, Stream: stream})
	defer func() {
		finish.Duration = time.Since(start)
		eventbus.Publish(ctx, finish)
	}()

	h.opt.CORS.apply(w, r)

	switch r.Method {
	case http.MethodOptions:
		finish.Status = http.StatusNoContent
		w.WriteHeader(finish.Status)
		return
	case http.MethodGet, http.MethodPost:
	default:
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		finish.Status = h.fail(w, &requestError{status: http.StatusMethodNotAllowed, msg: "method not allowed"})
		return
	}

	reqs, batch, err := parseRequest(w, r, h.opt.MaxBodyBytes)
	if err != nil {
		finish.Status = h.fail(w, err)
		return
	}
	finish.Operations = len(reqs)
	if r.Method == http.MethodGet {
		if op := h.engine.OperationType(reqs[0]); op != "" && op != "query" {
			w.Header().Set("Allow", "POST")
			finish.Status = h.fail(w, &requestError{status: http.StatusMethodNotAllowed, msg: "GET supports query operations only"})
			return
		}
	}
	ctx = metadata.NewOutgoingContext(ctx, h.outgoingMetadata(r, rid))

	if stream && !batch {
		finish.Status = h.serveStream(ctx, w, reqs[0])
		return
	}

	results := make([]*executor.ExecutionResult, len(reqs))
	for i := range reqs {
		results[i] = h.engine.Do(ctx, reqs[i])
	}
	finish.Status = http.StatusOK
	if batch {
		h.write(w, finish.Status, results)
		return
	}
	h.write(w, finish.Status, results[0])
}

func (h *Handler) outgoingMetadata(r *http.Request, rid string) metadata.MD {
	md := metadata.MD{}
	for k, v := range r.Header {
		if _, ok := h.forwarded[strings.ToLower(k)]; ok {
			md[strings.ToLower(k)] = v
		}
	}
	md[RequestIDMetadataKey] = []string{rid}
	return md
}

// fail writes a BAD_REQUEST envelope and returns the status sent.
func (h *Handler) fail(w http.ResponseWriter, err *requestError) int {
	h.write(w, err.status, executor.NewErrorResult(executor.Errorf(CodeBadRequest, "%s", err.msg)))
	return err.status
}

func (h *Handler) write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if h.opt.Pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}
