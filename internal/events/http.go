package events

import (
	"net/http"
	"time"
)

// HTTPStart is published once the handler has assigned a request id. The
// event context carries that id.
type HTTPStart struct {
	Request *http.Request
	// Stream is set when the client asked for a text/event-stream response.
	Stream bool
}

// HTTPFinish is published after the response is written. For event streams
// this is when the stream closes.
type HTTPFinish struct {
	Request *http.Request
	Status  int
	Stream  bool
	// Operations counts the GraphQL requests carried by the body; batches
	// carry more than one.
	Operations int
	Duration   time.Duration
}
