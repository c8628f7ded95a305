package executor

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"

	language "github.com/hanpama/gqlengine/internal/language"
	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/sirupsen/logrus"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"golang.org/x/sync/errgroup"
)

// Executor runs validated documents against one immutable schema. It is
// safe for concurrent use.
type Executor struct {
	schema         *schema.Schema
	runtime        Runtime
	logger         logrus.FieldLogger
	maxConcurrency int
	directives     []directiveHandler
}

type Option func(*Executor)

// WithRuntime replaces the default binding runtime.
func WithRuntime(rt Runtime) Option {
	return func(e *Executor) { e.runtime = rt }
}

// WithLogger sets the logger used to report recovered resolver panics.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Executor) { e.logger = logger }
}

// WithMaxConcurrency bounds the number of goroutines started per selection
// set or list. Zero means unbounded.
func WithMaxConcurrency(n int) Option {
	return func(e *Executor) { e.maxConcurrency = n }
}

// WithDirective registers an inclusion handler for a custom directive.
// Handlers run after @skip and @include, in registration order.
func WithDirective(name string, fn DirectiveFunc) Option {
	return func(e *Executor) {
		e.directives = append(e.directives, directiveHandler{name: name, fn: fn})
	}
}

func NewExecutor(sch *schema.Schema, opts ...Option) *Executor {
	e := &Executor{
		schema:  sch,
		runtime: DefaultRuntime(sch),
		logger:  logrus.StandardLogger(),
		directives: []directiveHandler{
			{name: "skip", fn: skipDirective},
			{name: "include", fn: includeDirective},
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Schema returns the schema the executor runs against.
func (e *Executor) Schema() *schema.Schema { return e.schema }

// executionContext holds the per-request state of one execution.
type executionContext struct {
	*Executor
	document  *language.QueryDocument
	operation *language.OperationDefinition
	variables map[string]any
	root      any
	errors    errorCollector

	cancel context.CancelCauseFunc
}

// errFatal aborts the whole execution; the cause is reported alone.
type errFatal struct{ err *gqlerror.Error }

func (e *errFatal) Error() string { return e.err.Message }

// ExecuteRequest executes the selected operation of a validated document.
// Variable coercion failures are reported without executing anything.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	ec, errs := e.prepare(document, operationName, variableValues, initialValue)
	if errs != nil {
		return NewErrorResult(errs...)
	}
	if ec.operation.Operation == language.Subscription {
		return NewErrorResult(Errorf(CodeOperationResolution, "Subscription operations must be executed with Subscribe."))
	}
	return ec.executeOperation(ctx)
}

func (e *Executor) prepare(
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) (*executionContext, gqlerror.List) {
	operation, opErr := getOperation(document, operationName)
	if opErr != nil {
		return nil, gqlerror.List{opErr}
	}
	coerced, errs := CoerceVariableValues(e.schema, operation, variableValues)
	if errs != nil {
		return nil, errs
	}
	if e.schema.RootType(operation.Operation) == nil {
		return nil, gqlerror.List{Errorf(CodeOperationResolution, "Schema is not configured for %s operations.", operation.Operation)}
	}
	return &executionContext{
		Executor:  e,
		document:  document,
		operation: operation,
		variables: coerced,
		root:      initialValue,
	}, nil
}

func (ec *executionContext) executeOperation(ctx context.Context) *ExecutionResult {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	ec.cancel = cancel

	rootType := ec.schema.RootType(ec.operation.Operation)
	var (
		data Map
		err  error
	)
	fields, err := ec.collectFields(ctx, rootType, ec.operation.SelectionSet)
	if err == nil {
		if ec.operation.Operation == language.Mutation {
			data, err = ec.executeFieldsSerially(ctx, rootType, ec.root, nil, fields)
		} else {
			data, err = ec.executeFields(ctx, rootType, ec.root, nil, fields)
		}
	}
	return ec.finish(ctx, data, err)
}

// finish assembles the result. A fatal error or a cancelled request
// replaces everything else with a single request-level error.
func (ec *executionContext) finish(ctx context.Context, data Map, err error) *ExecutionResult {
	var fatal *errFatal
	if cause := context.Cause(ctx); cause != nil && errors.As(cause, &fatal) {
		return &ExecutionResult{Errors: gqlerror.List{fatal.err}}
	}
	if err != nil && !errors.As(err, new(*fieldError)) {
		return &ExecutionResult{Errors: gqlerror.List{WithCode(&gqlerror.Error{Message: err.Error(), Err: err}, CodeDirectiveEvaluation)}}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &ExecutionResult{Errors: gqlerror.List{cancelledError(ctxErr)}}
	}
	var fe *fieldError
	if errors.As(err, &fe) {
		ec.errors.addField(fe)
		return &ExecutionResult{Data: nil, Errors: ec.errors.list()}
	}
	return &ExecutionResult{Data: data, Errors: ec.errors.list()}
}

func cancelledError(cause error) *gqlerror.Error {
	return WithCode(&gqlerror.Error{Message: "Request cancelled: " + cause.Error(), Err: cause}, CodeRequestCancelled)
}

// fail aborts the execution with a request-level error.
func (ec *executionContext) fail(err *gqlerror.Error) {
	ec.cancel(&errFatal{err: err})
}

// executeFieldsSerially executes root mutation fields one at a time in
// document order. Execution stops at the first error that nulls the root.
func (ec *executionContext) executeFieldsSerially(ctx context.Context, parentType *schema.Type, source any, path *pathNode, fields *collectedFieldMap) (Map, error) {
	ordered := fields.orderedFields()
	result := make(Map, 0, len(ordered))
	for i, cf := range ordered {
		fieldPath := path.field(parentType.Name, cf.ResponseName, i)
		value, err := ec.executeField(ctx, parentType, source, cf.Fields, fieldPath)
		if err != nil {
			return nil, err
		}
		result = append(result, Entry{Key: cf.ResponseName, Value: value})
	}
	return result, nil
}

// executeFields executes sibling fields. Fields backed by custom resolvers
// or with composite results run concurrently; leaf property lookups run
// inline. The result keeps collection order regardless of completion order.
func (ec *executionContext) executeFields(ctx context.Context, parentType *schema.Type, source any, path *pathNode, fields *collectedFieldMap) (Map, error) {
	ordered := fields.orderedFields()
	values := make([]any, len(ordered))
	errs := make([]error, len(ordered))

	var concurrent []int
	for i, cf := range ordered {
		if ec.runsConcurrently(parentType, cf.Fields[0].Name) {
			concurrent = append(concurrent, i)
		}
	}
	run := func(i int) {
		values[i], errs[i] = ec.executeField(ctx, parentType, source, ordered[i].Fields, path.field(parentType.Name, ordered[i].ResponseName, i))
	}

	if len(concurrent) > 1 {
		g := ec.group()
		for _, i := range concurrent {
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		ec.runInline(ordered, concurrent, run)
		_ = g.Wait()
	} else {
		concurrent = nil
		ec.runInline(ordered, concurrent, run)
	}

	result := make(Map, 0, len(ordered))
	var propagated error
	for i, cf := range ordered {
		if errs[i] != nil {
			if propagated == nil {
				propagated = errs[i]
			} else {
				ec.record(errs[i])
			}
			continue
		}
		result = append(result, Entry{Key: cf.ResponseName, Value: values[i]})
	}
	if propagated != nil {
		return nil, propagated
	}
	return result, nil
}

func (ec *executionContext) runInline(ordered []collectedField, concurrent []int, run func(int)) {
	next := 0
	for i := range ordered {
		if next < len(concurrent) && concurrent[next] == i {
			next++
			continue
		}
		run(i)
	}
}

func (ec *executionContext) group() *errgroup.Group {
	g := new(errgroup.Group)
	if ec.maxConcurrency > 0 {
		g.SetLimit(ec.maxConcurrency)
	}
	return g
}

func (ec *executionContext) runsConcurrently(parentType *schema.Type, fieldName string) bool {
	def := parentType.Field(fieldName)
	if def == nil {
		return false
	}
	if def.Async {
		return true
	}
	named := ec.schema.Type(def.Type.GetNamedType())
	return named != nil && !named.IsLeaf()
}

// record stores a propagated error that lost the race to null its parent.
func (ec *executionContext) record(err error) {
	var fe *fieldError
	if errors.As(err, &fe) {
		ec.errors.addField(fe)
	}
}

// executeField resolves and completes one response key. A returned error
// must be propagated to the nearest nullable ancestor.
func (ec *executionContext) executeField(ctx context.Context, parentType *schema.Type, source any, fields []*language.Field, path *pathNode) (any, error) {
	field := fields[0]
	if field.Name == "__typename" {
		return parentType.Name, nil
	}

	fieldDef := parentType.Field(field.Name)
	if fieldDef == nil {
		// unreachable for validated documents
		fe := locatedError(fmt.Errorf("Cannot query field %q on type %q.", field.Name, parentType.Name), fields, path, CodeResolver)
		ec.errors.addField(fe)
		return nil, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, locatedError(cancelledError(ctxErr), fields, path, CodeRequestCancelled)
	}

	args, argErr := coerceArguments(ec.schema, fieldDef.Arguments, field.Arguments, ec.variables)
	if argErr != nil {
		return ec.handleFieldError(locatedError(argErr, fields, path, CodeArgumentCoercion), fieldDef.Type)
	}

	params := schema.ResolveParams{
		Source: source,
		Args:   args,
		Info: schema.ResolveInfo{
			FieldName:  field.Name,
			Path:       path.toAST(),
			ParentType: parentType,
			ReturnType: fieldDef.Type,
			Schema:     ec.schema,
			Operation:  ec.operation,
			Fields:     fields,
			Variables:  ec.variables,
		},
	}
	resolved, resolveErr := ec.resolve(ctx, fieldDef, params)
	if resolveErr != nil {
		return ec.handleFieldError(locatedError(resolveErr, fields, path, CodeResolver), fieldDef.Type)
	}

	completed, completeErr := ec.completeValue(ctx, fieldDef.Type, fields, resolved, path)
	if completeErr != nil {
		return ec.handleFieldError(completeErr, fieldDef.Type)
	}
	return completed, nil
}

// resolve invokes the runtime and converts panics into errors.
func (ec *executionContext) resolve(ctx context.Context, field *schema.Field, p schema.ResolveParams) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			ec.logger.WithFields(logrus.Fields{
				"field": p.Info.ParentType.Name + "." + field.Name,
				"path":  p.Info.Path.String(),
				"stack": string(debug.Stack()),
			}).Errorf("resolver panic: %v", r)
			value, err = nil, fmt.Errorf("internal error: resolver panicked: %v", r)
		}
	}()
	return ec.runtime.Resolve(ctx, field, p)
}

// handleFieldError absorbs err at a nullable position or propagates it.
func (ec *executionContext) handleFieldError(err error, returnType *schema.TypeRef) (any, error) {
	if returnType.IsNonNull() {
		return nil, err
	}
	ec.record(err)
	return nil, nil
}

// completeValue completes a resolved value against the field type. A
// non-nil error means the value is null and the null must propagate to the
// nearest nullable position.
func (ec *executionContext) completeValue(ctx context.Context, fieldType *schema.TypeRef, fields []*language.Field, result any, path *pathNode) (any, error) {
	if fieldType.IsNonNull() {
		completed, err := ec.completeValue(ctx, fieldType.OfType, fields, result, path)
		if err != nil {
			return nil, err
		}
		if completed == nil {
			return nil, locatedError(
				fmt.Errorf("Cannot return null for non-nullable field %s.", ec.fieldCoordinate(fields, path)),
				fields, path, CodeNonNullValueNull,
			)
		}
		return completed, nil
	}

	if err, ok := result.(error); ok && err != nil {
		return nil, locatedError(err, fields, path, CodeResolver)
	}
	if isNullish(result) {
		return nil, nil
	}

	if fieldType.Kind == schema.TypeRefKindList {
		return ec.completeListValue(ctx, fieldType, fields, result, path)
	}

	namedType := ec.schema.Type(fieldType.Named)
	if namedType == nil {
		return nil, locatedError(fmt.Errorf("Unknown type %q.", fieldType.Named), fields, path, CodeResolver)
	}

	switch namedType.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		serialized, err := ec.runtime.SerializeLeafValue(ctx, namedType, result)
		if err != nil {
			return nil, locatedError(err, fields, path, CodeInvalidScalarOutput)
		}
		return serialized, nil
	case schema.TypeKindObject:
		return ec.completeObjectValue(ctx, namedType, fields, result, path)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		return ec.completeAbstractValue(ctx, namedType, fields, result, path)
	default:
		return nil, locatedError(fmt.Errorf("Cannot complete value of unexpected type %q.", namedType.Kind), fields, path, CodeResolver)
	}
}

// completeListValue completes list items, concurrently for composite items.
// Items keep their index order whatever the completion order.
func (ec *executionContext) completeListValue(ctx context.Context, listType *schema.TypeRef, fields []*language.Field, result any, path *pathNode) (any, error) {
	var items []any
	if direct, ok := result.([]any); ok {
		items = direct
	} else {
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, locatedError(fmt.Errorf("Expected Iterable, but did not find one for field %s.", ec.fieldCoordinate(fields, path)), fields, path, CodeResolver)
		}
		items = make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
	}

	itemType := listType.OfType
	completed := make([]any, len(items))
	errs := make([]error, len(items))
	completeItem := func(i int) {
		itemPath := path.index(i)
		v, err := ec.completeValue(ctx, itemType, fields, items[i], itemPath)
		if err != nil {
			v, err = ec.handleFieldError(err, itemType)
		}
		completed[i], errs[i] = v, err
	}

	named := ec.schema.Type(itemType.GetNamedType())
	if len(items) > 1 && named != nil && !named.IsLeaf() {
		g := ec.group()
		for i := range items {
			g.Go(func() error {
				completeItem(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range items {
			completeItem(i)
		}
	}

	var propagated error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if propagated == nil {
			propagated = err
		} else {
			ec.record(err)
		}
	}
	if propagated != nil {
		return nil, propagated
	}
	return completed, nil
}

func (ec *executionContext) completeObjectValue(ctx context.Context, objectType *schema.Type, fields []*language.Field, result any, path *pathNode) (any, error) {
	if objectType.IsTypeOf != nil && !objectType.IsTypeOf(ctx, result) {
		return nil, locatedError(fmt.Errorf("Expected value of type %q but got: %v.", objectType.Name, result), fields, path, CodeResolver)
	}
	subfields, err := ec.collectSubfields(ctx, objectType, fields)
	if err != nil {
		ec.fail(WithCode(&gqlerror.Error{Message: err.Error(), Err: err}, CodeDirectiveEvaluation))
		return nil, locatedError(err, fields, path, CodeDirectiveEvaluation)
	}
	m, err := ec.executeFields(ctx, objectType, result, path, subfields)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (ec *executionContext) completeAbstractValue(ctx context.Context, abstractType *schema.Type, fields []*language.Field, result any, path *pathNode) (any, error) {
	typeName, err := ec.runtime.ResolveType(ctx, abstractType, result)
	if err != nil {
		return nil, locatedError(err, fields, path, CodeAbstractResolution)
	}
	objectType := ec.schema.Type(typeName)
	if objectType == nil || objectType.Kind != schema.TypeKindObject || !ec.schema.IsPossibleType(abstractType, typeName) {
		resErr := &schema.AbstractResolutionError{AbstractType: abstractType.Name, Resolved: typeName}
		return nil, locatedError(resErr, fields, path, CodeAbstractResolution)
	}
	return ec.completeObjectValue(ctx, objectType, fields, result, path)
}

// fieldCoordinate names the field at path as Parent.field for messages.
func (ec *executionContext) fieldCoordinate(fields []*language.Field, path *pathNode) string {
	n := path
	for n != nil && n.parentType == "" {
		n = n.parent
	}
	if n == nil {
		return fields[0].Name
	}
	return n.parentType + "." + fields[0].Name
}
