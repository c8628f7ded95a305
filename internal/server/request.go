package server

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"

	json "github.com/goccy/go-json"
	engine "github.com/hanpama/gqlengine/internal/engine"
)

type requestError struct {
	status int
	msg    string
}

func badRequest(msg string) *requestError {
	return &requestError{status: http.StatusBadRequest, msg: msg}
}

// parseRequest reads one request, or a batch when the POST body is a JSON
// array. The returned slice is never empty on success.
func parseRequest(w http.ResponseWriter, r *http.Request, maxBody int64) ([]engine.Request, bool, *requestError) {
	if r.Method == http.MethodGet {
		req, err := parseQueryParams(r)
		if err != nil {
			return nil, false, err
		}
		return []engine.Request{req}, false, nil
	}

	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err != nil || mt != "application/json" {
			return nil, false, &requestError{status: http.StatusUnsupportedMediaType, msg: "unsupported Content-Type"}
		}
	}
	body := r.Body
	if maxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, maxBody)
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, false, &requestError{status: http.StatusRequestEntityTooLarge, msg: "body too large"}
		}
		return nil, false, badRequest("failed to read body")
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var batch []engine.Request
		if err := decode(data, &batch); err != nil {
			return nil, false, badRequest("invalid JSON")
		}
		if len(batch) == 0 {
			return nil, false, badRequest("empty batch")
		}
		return batch, true, nil
	}

	var req engine.Request
	if err := decode(data, &req); err != nil {
		return nil, false, badRequest("invalid JSON")
	}
	if req.Query == "" {
		return nil, false, badRequest("missing 'query'")
	}
	return []engine.Request{req}, false, nil
}

func parseQueryParams(r *http.Request) (engine.Request, *requestError) {
	q := r.URL.Query()
	req := engine.Request{Query: q.Get("query"), OperationName: q.Get("operationName")}
	if req.Query == "" {
		return req, badRequest("missing 'query'")
	}
	if v := q.Get("variables"); v != "" {
		if err := decode([]byte(v), &req.Variables); err != nil {
			return req, badRequest("invalid 'variables' JSON")
		}
	}
	if v := q.Get("extensions"); v != "" {
		if err := decode([]byte(v), &req.Extensions); err != nil {
			return req, badRequest("invalid 'extensions' JSON")
		}
	}
	return req, nil
}

// decode keeps numbers as json.Number so large integers survive until
// scalar coercion.
func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
