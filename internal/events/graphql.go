package events

import "time"

// GraphQLStart is published when the engine receives a request, before
// parsing. OperationType is empty when the document does not parse.
type GraphQLStart struct {
	Query         string
	OperationName string
	OperationType string
}

// GraphQLFinish closes a GraphQLStart. Errors holds request and field errors
// alike; Stage names the last pipeline step reached ("parse", "validate" or
// "execute").
type GraphQLFinish struct {
	Query         string
	OperationName string
	OperationType string
	Stage         string
	Errors        []error
	Duration      time.Duration
}
