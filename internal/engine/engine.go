// Package engine runs GraphQL requests end to end: parse, validate and
// execute against one schema, publishing telemetry events on the way.
package engine

import (
	"context"
	"time"

	eventbus "github.com/hanpama/gqlengine/internal/eventbus"
	events "github.com/hanpama/gqlengine/internal/events"
	executor "github.com/hanpama/gqlengine/internal/executor"
	introspection "github.com/hanpama/gqlengine/internal/introspection"
	language "github.com/hanpama/gqlengine/internal/language"
	schema "github.com/hanpama/gqlengine/internal/schema"
	validation "github.com/hanpama/gqlengine/internal/validation"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Request is the transport-independent form of a GraphQL request.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Extensions    map[string]any `json:"extensions,omitempty"`
}

// Engine is safe for concurrent use.
type Engine struct {
	schema        *schema.Schema
	exec          *executor.Executor
	root          any
	introspection bool
}

type options struct {
	introspection bool
	root          any
	runtime       executor.Runtime
	execOpts      []executor.Option
}

type Option func(*options)

// WithIntrospection enables or disables __schema and __type. Enabled by
// default.
func WithIntrospection(enabled bool) Option {
	return func(o *options) { o.introspection = enabled }
}

// WithRootValue sets the value passed as Source to root field resolvers.
func WithRootValue(v any) Option {
	return func(o *options) { o.root = v }
}

// WithRuntime replaces the schema binding runtime.
func WithRuntime(rt executor.Runtime) Option {
	return func(o *options) { o.runtime = rt }
}

// WithExecutorOptions passes options through to the executor.
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(o *options) { o.execOpts = append(o.execOpts, opts...) }
}

func New(s *schema.Schema, opts ...Option) (*Engine, error) {
	o := options{introspection: true}
	for _, opt := range opts {
		opt(&o)
	}
	rt := o.runtime
	if rt == nil {
		rt = executor.DefaultRuntime(s)
	}
	sch := s
	if o.introspection {
		w, err := introspection.Wrap(rt, s)
		if err != nil {
			return nil, err
		}
		rt, sch = w.Runtime, w.Schema
	}
	execOpts := append([]executor.Option{executor.WithRuntime(eventRuntime{base: rt})}, o.execOpts...)
	return &Engine{
		schema:        sch,
		exec:          executor.NewExecutor(sch, execOpts...),
		root:          o.root,
		introspection: o.introspection,
	}, nil
}

// Schema returns the schema requests run against, including the
// introspection types when enabled.
func (e *Engine) Schema() *schema.Schema { return e.schema }

// Do executes a query or mutation request.
func (e *Engine) Do(ctx context.Context, req Request) *executor.ExecutionResult {
	start := time.Now()
	doc, opType, stage, res := e.prepare(req)
	eventbus.Publish(ctx, events.GraphQLStart{Query: req.Query, OperationName: req.OperationName, OperationType: opType})
	if res == nil {
		stage = "execute"
		res = e.exec.ExecuteRequest(ctx, doc, req.OperationName, req.Variables, e.root)
	}
	eventbus.Publish(ctx, finishEvent(req, opType, stage, res.Errors, start))
	return res
}

// Subscribe starts a subscription request. Requests that fail before the
// stream starts yield a channel with a single result.
func (e *Engine) Subscribe(ctx context.Context, req Request) <-chan *executor.ExecutionResult {
	start := time.Now()
	doc, opType, stage, res := e.prepare(req)
	eventbus.Publish(ctx, events.GraphQLStart{Query: req.Query, OperationName: req.OperationName, OperationType: opType})
	if res != nil {
		eventbus.Publish(ctx, finishEvent(req, opType, stage, res.Errors, start))
		out := make(chan *executor.ExecutionResult, 1)
		out <- res
		close(out)
		return out
	}

	in := e.exec.Subscribe(ctx, doc, req.OperationName, req.Variables, e.root)
	out := make(chan *executor.ExecutionResult)
	go func() {
		defer close(out)
		var errs gqlerror.List
		defer func() {
			eventbus.Publish(ctx, finishEvent(req, opType, "execute", errs, start))
		}()
		for res := range in {
			errs = append(errs, res.Errors...)
			select {
			case out <- res:
			case <-ctx.Done():
				// drain so the executor goroutine can exit
				for range in {
				}
				return
			}
		}
	}()
	return out
}

// OperationType reports the type of the operation req selects: "query",
// "mutation" or "subscription". It is empty when the document does not
// parse or names no such operation.
func (e *Engine) OperationType(req Request) string {
	doc, err := language.ParseQuery(req.Query)
	if err != nil {
		return ""
	}
	return operationType(doc, req.OperationName)
}

// prepare parses and validates req. A non-nil result means the request
// ends before execution.
func (e *Engine) prepare(req Request) (*language.QueryDocument, string, string, *executor.ExecutionResult) {
	doc, err := language.ParseQuery(req.Query)
	if err != nil {
		return nil, "", "parse", executor.NewErrorResult(executor.WithCode(language.AsError(err), executor.CodeParseFailed))
	}
	opType := operationType(doc, req.OperationName)
	errs := validation.Validate(e.schema, doc)
	if !e.introspection {
		errs = append(errs, validation.NoIntrospection(doc)...)
	}
	if len(errs) > 0 {
		return nil, opType, "validate", executor.NewErrorResult(errs...)
	}
	return doc, opType, "", nil
}

func operationType(doc *language.QueryDocument, name string) string {
	op := doc.Operations.ForName(name)
	if op == nil && name == "" && len(doc.Operations) == 1 {
		op = doc.Operations[0]
	}
	if op == nil {
		return ""
	}
	return string(op.Operation)
}

func finishEvent(req Request, opType, stage string, errs gqlerror.List, start time.Time) events.GraphQLFinish {
	out := make([]error, len(errs))
	for i := range errs {
		out[i] = errs[i]
	}
	return events.GraphQLFinish{
		Query:         req.Query,
		OperationName: req.OperationName,
		OperationType: opType,
		Stage:         stage,
		Errors:        out,
		Duration:      time.Since(start),
	}
}
