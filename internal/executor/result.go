package executor

import (
	"bytes"

	json "github.com/goccy/go-json"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Map is an ordered response object. Entries keep collection order, which
// is also the order of keys in the encoded JSON.
type Map []Entry

type Entry struct {
	Key   string
	Value any
}

// Get returns the value stored under key.
func (m Map) Get(key string) (any, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Keys returns the response keys in order.
func (m Map) Keys() []string {
	keys := make([]string, len(m))
	for i, e := range m {
		keys[i] = e.Key
	}
	return keys
}

func (m Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ExecutionResult represents the result of executing a GraphQL query
type ExecutionResult struct {
	Data   any
	Errors gqlerror.List
	// NotExecuted is set when the request failed before execution began;
	// the encoded envelope then omits "data".
	NotExecuted bool
	Extensions  map[string]any
}

// NewErrorResult returns a result for a request that never reached execution.
func NewErrorResult(errs ...*gqlerror.Error) *ExecutionResult {
	return &ExecutionResult{Errors: errs, NotExecuted: true}
}

// HasErrors reports whether any error was recorded.
func (r *ExecutionResult) HasErrors() bool { return len(r.Errors) > 0 }

type envelope struct {
	Errors     gqlerror.List  `json:"errors,omitempty"`
	Data       any            `json:"data"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

type envelopeNoData struct {
	Errors     gqlerror.List  `json:"errors,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// MarshalJSON encodes the response envelope: {"errors"?, "data"?, "extensions"?}.
func (r *ExecutionResult) MarshalJSON() ([]byte, error) {
	if r.NotExecuted {
		return json.Marshal(envelopeNoData{Errors: r.Errors, Extensions: r.Extensions})
	}
	data := r.Data
	if m, ok := data.(Map); ok && m == nil {
		data = nil
	}
	return json.Marshal(envelope{Errors: r.Errors, Data: data, Extensions: r.Extensions})
}
