package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	engine "github.com/hanpama/gqlengine/internal/engine"
	executor "github.com/hanpama/gqlengine/internal/executor"
)

// serveStream answers with server-sent events: one "next" event per result
// and a final "complete" event.
func (h *Handler) serveStream(ctx context.Context, w http.ResponseWriter, req engine.Request) int {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return h.fail(w, &requestError{status: http.StatusNotAcceptable, msg: "streaming unsupported"})
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for res := range h.engine.Subscribe(ctx, req) {
		data, err := json.Marshal(res)
		if err != nil {
			data, _ = json.Marshal(executor.NewErrorResult(executor.Errorf(executor.CodeResolver, "encode result: %v", err)))
		}
		fmt.Fprintf(w, "event: next\ndata: %s\n\n", data)
		flusher.Flush()
	}
	fmt.Fprint(w, "event: complete\ndata:\n\n")
	flusher.Flush()
	return http.StatusOK
}

func acceptsEventStream(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		if strings.HasPrefix(strings.TrimSpace(part), "text/event-stream") {
			return true
		}
	}
	return false
}
