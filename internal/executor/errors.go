package executor

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	language "github.com/hanpama/gqlengine/internal/language"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Error codes reported in the "code" extension of every error.
const (
	CodeParseFailed             = "GRAPHQL_PARSE_FAILED"
	CodeValidationFailed        = "GRAPHQL_VALIDATION_FAILED"
	CodeOperationResolution     = "OPERATION_RESOLUTION_ERROR"
	CodeVariableCoercion        = "VARIABLE_COERCION_ERROR"
	CodeArgumentCoercion        = "ARGUMENT_COERCION_ERROR"
	CodeResolver                = "RESOLVER_ERROR"
	CodeAbstractResolution      = "ABSTRACT_RESOLUTION_ERROR"
	CodeInvalidScalarOutput     = "INVALID_SCALAR_OUTPUT"
	CodeNonNullValueNull        = "NON_NULL_VALUE_NULL"
	CodeRequestCancelled        = "REQUEST_CANCELLED"
	CodeDirectiveEvaluation     = "DIRECTIVE_EVALUATION_ERROR"
	CodeSubscriptionSetupFailed = "SUBSCRIPTION_SETUP_FAILED"
)

// ErrorCode returns the code extension of err, or "" when absent.
func ErrorCode(err *gqlerror.Error) string {
	if err == nil || err.Extensions == nil {
		return ""
	}
	code, _ := err.Extensions["code"].(string)
	return code
}

// WithCode sets the code extension on err unless one is already present.
func WithCode(err *gqlerror.Error, code string) *gqlerror.Error {
	if err.Extensions == nil {
		err.Extensions = map[string]any{}
	}
	if _, ok := err.Extensions["code"]; !ok {
		err.Extensions["code"] = code
	}
	return err
}

// Errorf creates a request-level error carrying a code.
func Errorf(code string, format string, args ...any) *gqlerror.Error {
	return WithCode(&gqlerror.Error{Message: fmt.Sprintf(format, args...)}, code)
}

// errorAt creates an error located at pos when a position is known.
func errorAt(pos *language.Position, format string, args ...any) *gqlerror.Error {
	err := &gqlerror.Error{Message: fmt.Sprintf(format, args...)}
	if pos != nil {
		err.Locations = []gqlerror.Location{{Line: pos.Line, Column: pos.Column}}
	}
	return err
}

// CodedError lets resolver errors choose their own error code.
type CodedError interface {
	error
	ErrorCode() string
}

// fieldError is a located error raised while executing a field. It travels
// up the call stack until a nullable position absorbs it.
type fieldError struct {
	err  *gqlerror.Error
	path *pathNode
}

func (e *fieldError) Error() string { return e.err.Message }

func (e *fieldError) Unwrap() error { return e.err }

// locatedError converts err into a field error at path. Errors that are
// already located keep their original path.
func locatedError(err error, fields []*language.Field, path *pathNode, code string) *fieldError {
	var fe *fieldError
	if errors.As(err, &fe) {
		return fe
	}
	gqlErr := &gqlerror.Error{Err: err, Message: err.Error(), Path: path.toAST()}
	var existing *gqlerror.Error
	if errors.As(err, &existing) {
		gqlErr.Message = existing.Message
		gqlErr.Extensions = cloneExtensions(existing.Extensions)
	}
	var coded CodedError
	if errors.As(err, &coded) {
		code = coded.ErrorCode()
	}
	for _, f := range fields {
		if f.Position != nil {
			gqlErr.Locations = append(gqlErr.Locations, gqlerror.Location{Line: f.Position.Line, Column: f.Position.Column})
		}
	}
	return &fieldError{err: WithCode(gqlErr, code), path: path}
}

func cloneExtensions(ext map[string]any) map[string]any {
	if ext == nil {
		return nil
	}
	out := make(map[string]any, len(ext))
	for k, v := range ext {
		out[k] = v
	}
	return out
}

// pathNode is one step of a response path. ord is the position of the step
// among its siblings in traversal order and drives error ordering.
type pathNode struct {
	parent     *pathNode
	key        any // string response key or int list index
	ord        int
	depth      int
	parentType string // object type owning the field; empty for list indices
}

func (p *pathNode) field(parentType, key string, ord int) *pathNode {
	return &pathNode{parent: p, key: key, ord: ord, depth: p.depthOr() + 1, parentType: parentType}
}

func (p *pathNode) index(i int) *pathNode {
	return &pathNode{parent: p, key: i, ord: i, depth: p.depthOr() + 1}
}

func (p *pathNode) depthOr() int {
	if p == nil {
		return 0
	}
	return p.depth
}

func (p *pathNode) toAST() language.Path {
	if p == nil {
		return nil
	}
	out := make(language.Path, p.depth)
	for n := p; n != nil; n = n.parent {
		switch k := n.key.(type) {
		case string:
			out[n.depth-1] = language.PathName(k)
		case int:
			out[n.depth-1] = language.PathIndex(k)
		}
	}
	return out
}

func (p *pathNode) ordinals() []int {
	if p == nil {
		return nil
	}
	out := make([]int, p.depth)
	for n := p; n != nil; n = n.parent {
		out[n.depth-1] = n.ord
	}
	return out
}

func (p *pathNode) String() string {
	var b strings.Builder
	for i, el := range p.toAST() {
		switch v := el.(type) {
		case language.PathName:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(string(v))
		case language.PathIndex:
			b.WriteString("[" + strconv.Itoa(int(v)) + "]")
		}
	}
	return b.String()
}

// errorCollector gathers errors from concurrently executing branches and
// returns them in traversal order.
type errorCollector struct {
	mu   sync.Mutex
	errs []collectedError
}

type collectedError struct {
	ord []int
	seq int
	err *gqlerror.Error
}

func (c *errorCollector) add(err *gqlerror.Error, path *pathNode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, collectedError{ord: path.ordinals(), seq: len(c.errs), err: err})
}

func (c *errorCollector) addField(fe *fieldError) { c.add(fe.err, fe.path) }

func (c *errorCollector) list() gqlerror.List {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.errs) == 0 {
		return nil
	}
	sorted := slices.Clone(c.errs)
	slices.SortStableFunc(sorted, func(a, b collectedError) int {
		if n := slices.Compare(a.ord, b.ord); n != 0 {
			return n
		}
		return a.seq - b.seq
	})
	out := make(gqlerror.List, len(sorted))
	for i, e := range sorted {
		out[i] = e.err
	}
	return out
}
