package executor

import (
	"context"
	"fmt"

	language "github.com/hanpama/gqlengine/internal/language"
	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Subscribe starts a subscription operation and returns a channel carrying
// one result per source event. The channel is closed when the source stream
// ends or ctx is done. Setup failures are delivered as a single result on
// the channel.
//
// Each event is executed like a query whose root field value is the event
// itself, unless the root field has a custom resolver, in which case the
// resolver maps the event (received as Source) to the field value.
func (e *Executor) Subscribe(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) <-chan *ExecutionResult {
	out := make(chan *ExecutionResult, 1)
	single := func(res *ExecutionResult) <-chan *ExecutionResult {
		out <- res
		close(out)
		return out
	}

	ec, errs := e.prepare(document, operationName, variableValues, initialValue)
	if errs != nil {
		return single(NewErrorResult(errs...))
	}
	if ec.operation.Operation != language.Subscription {
		return single(NewErrorResult(Errorf(CodeOperationResolution, "Operation %q is not a subscription.", ec.operation.Name)))
	}

	rootType := ec.schema.GetSubscriptionType()
	fields, err := ec.collectFields(ctx, rootType, ec.operation.SelectionSet)
	if err != nil {
		return single(NewErrorResult(WithCode(&gqlerror.Error{Message: err.Error(), Err: err}, CodeDirectiveEvaluation)))
	}
	ordered := fields.orderedFields()
	if len(ordered) != 1 {
		return single(NewErrorResult(Errorf(CodeOperationResolution, "Subscription must select exactly one top level field.")))
	}
	cf := ordered[0]
	fieldDef := rootType.Field(cf.Fields[0].Name)
	if fieldDef == nil || fieldDef.Subscriber == nil {
		return single(NewErrorResult(Errorf(CodeSubscriptionSetupFailed, "Subscription field %q has no event source.", cf.Fields[0].Name)))
	}

	path := (*pathNode)(nil).field(rootType.Name, cf.ResponseName, 0)
	args, err := coerceArguments(ec.schema, fieldDef.Arguments, cf.Fields[0].Arguments, ec.variables)
	if err != nil {
		fe := locatedError(err, cf.Fields, path, CodeArgumentCoercion)
		return single(NewErrorResult(fe.err))
	}
	params := schema.ResolveParams{
		Source: initialValue,
		Args:   args,
		Info: schema.ResolveInfo{
			FieldName:  fieldDef.Name,
			Path:       path.toAST(),
			ParentType: rootType,
			ReturnType: fieldDef.Type,
			Schema:     ec.schema,
			Operation:  ec.operation,
			Fields:     cf.Fields,
			Variables:  ec.variables,
		},
	}
	events, err := subscribeSafely(ctx, fieldDef.Subscriber, params)
	if err != nil {
		fe := locatedError(err, cf.Fields, path, CodeSubscriptionSetupFailed)
		return single(NewErrorResult(fe.err))
	}

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				res := e.executeEvent(ctx, ec, rootType, fieldDef, cf, args, event)
				select {
				case out <- res:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func subscribeSafely(ctx context.Context, sub schema.Subscriber, p schema.ResolveParams) (events <-chan any, err error) {
	defer func() {
		if r := recover(); r != nil {
			events, err = nil, fmt.Errorf("internal error: subscriber panicked: %v", r)
		}
	}()
	return sub.Subscribe(ctx, p)
}

// executeEvent runs the subscription selection for one source event in a
// fresh execution context.
func (e *Executor) executeEvent(
	ctx context.Context,
	base *executionContext,
	rootType *schema.Type,
	fieldDef *schema.Field,
	cf collectedField,
	args map[string]any,
	event any,
) *ExecutionResult {
	ec := &executionContext{
		Executor:  e,
		document:  base.document,
		operation: base.operation,
		variables: base.variables,
		root:      event,
	}
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	ec.cancel = cancel

	path := (*pathNode)(nil).field(rootType.Name, cf.ResponseName, 0)
	value, err := ec.eventValue(ctx, rootType, fieldDef, cf, args, event, path)
	if err == nil {
		value, err = ec.completeValue(ctx, fieldDef.Type, cf.Fields, value, path)
	} else {
		err = locatedError(err, cf.Fields, path, CodeResolver)
	}
	if err != nil {
		value, err = ec.handleFieldError(err, fieldDef.Type)
	}
	return ec.finish(ctx, Map{{Key: cf.ResponseName, Value: value}}, err)
}

func (ec *executionContext) eventValue(
	ctx context.Context,
	rootType *schema.Type,
	fieldDef *schema.Field,
	cf collectedField,
	args map[string]any,
	event any,
	path *pathNode,
) (any, error) {
	if _, isProperty := fieldDef.Resolver.(schema.PropertyResolver); isProperty || fieldDef.Resolver == nil {
		return event, nil
	}
	return ec.resolve(ctx, fieldDef, schema.ResolveParams{
		Source: event,
		Args:   args,
		Info: schema.ResolveInfo{
			FieldName:  fieldDef.Name,
			Path:       path.toAST(),
			ParentType: rootType,
			ReturnType: fieldDef.Type,
			Schema:     ec.schema,
			Operation:  ec.operation,
			Fields:     cf.Fields,
			Variables:  ec.variables,
		},
	})
}
