package executor

import (
	"context"

	language "github.com/hanpama/gqlengine/internal/language"
	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// collectedFieldMap preserves field order from the original query
type collectedFieldMap struct {
	fields []collectedField
	index  map[string]int
}

type collectedField struct {
	ResponseName string
	Fields       []*language.Field
}

func newCollectedFieldMap() *collectedFieldMap {
	return &collectedFieldMap{
		fields: make([]collectedField, 0),
		index:  make(map[string]int),
	}
}

func (cfm *collectedFieldMap) add(responseName string, field *language.Field) {
	if idx, exists := cfm.index[responseName]; exists {
		// Append to existing field group
		cfm.fields[idx].Fields = append(cfm.fields[idx].Fields, field)
	} else {
		// Create new field group
		cfm.index[responseName] = len(cfm.fields)
		cfm.fields = append(cfm.fields, collectedField{
			ResponseName: responseName,
			Fields:       []*language.Field{field},
		})
	}
}

func (cfm *collectedFieldMap) orderedFields() []collectedField {
	return cfm.fields
}

// collectFields collects fields from a selection set
func (ec *executionContext) collectFields(ctx context.Context, objectType *schema.Type, selectionSet language.SelectionSet) (*collectedFieldMap, error) {
	groupedFields := newCollectedFieldMap()
	visitedFragments := make(map[string]bool)

	if err := ec.collectFieldsImpl(ctx, objectType, selectionSet, groupedFields, visitedFragments); err != nil {
		return nil, err
	}
	return groupedFields, nil
}

// collectSubfields collects the merged sub-selections of all field nodes
// sharing one response key.
func (ec *executionContext) collectSubfields(ctx context.Context, objectType *schema.Type, fields []*language.Field) (*collectedFieldMap, error) {
	groupedFields := newCollectedFieldMap()
	visitedFragments := make(map[string]bool)
	for _, field := range fields {
		if len(field.SelectionSet) == 0 {
			continue
		}
		if err := ec.collectFieldsImpl(ctx, objectType, field.SelectionSet, groupedFields, visitedFragments); err != nil {
			return nil, err
		}
	}
	return groupedFields, nil
}

// collectFieldsImpl is the recursive implementation of field collection
func (ec *executionContext) collectFieldsImpl(
	ctx context.Context,
	objectType *schema.Type,
	selectionSet language.SelectionSet,
	groupedFields *collectedFieldMap,
	visitedFragments map[string]bool,
) error {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if ok, err := ec.shouldIncludeNode(ctx, sel.Directives); err != nil || !ok {
				if err != nil {
					return err
				}
				continue
			}

			responseName := sel.Alias
			if responseName == "" {
				responseName = sel.Name
			}

			groupedFields.add(responseName, sel)

		case *language.InlineFragment:
			if ok, err := ec.shouldIncludeNode(ctx, sel.Directives); err != nil || !ok {
				if err != nil {
					return err
				}
				continue
			}

			if !ec.schema.DoesTypeApply(objectType, sel.TypeCondition) {
				continue
			}

			if err := ec.collectFieldsImpl(ctx, objectType, sel.SelectionSet, groupedFields, visitedFragments); err != nil {
				return err
			}

		case *language.FragmentSpread:
			if ok, err := ec.shouldIncludeNode(ctx, sel.Directives); err != nil || !ok {
				if err != nil {
					return err
				}
				continue
			}

			// Cycle guard: a fragment is inlined at most once per selection set
			if visitedFragments[sel.Name] {
				continue
			}
			visitedFragments[sel.Name] = true

			fragmentDef := getFragmentDefinition(ec.document, sel.Name)
			if fragmentDef == nil {
				continue
			}

			if !ec.schema.DoesTypeApply(objectType, fragmentDef.TypeCondition) {
				continue
			}

			if err := ec.collectFieldsImpl(ctx, objectType, fragmentDef.SelectionSet, groupedFields, visitedFragments); err != nil {
				return err
			}
		}
	}
	return nil
}

// getFragmentDefinition finds a fragment definition by name in the document
func getFragmentDefinition(document *language.QueryDocument, name string) *language.FragmentDefinition {
	return document.Fragments.ForName(name)
}

// getOperation selects the operation to run: the named one, or the only
// operation of the document when no name is given.
func getOperation(document *language.QueryDocument, operationName string) (*language.OperationDefinition, *gqlerror.Error) {
	if operationName == "" {
		if len(document.Operations) == 1 {
			return document.Operations[0], nil
		}
		if len(document.Operations) == 0 {
			return nil, Errorf(CodeOperationResolution, "Must provide an operation.")
		}
		return nil, Errorf(CodeOperationResolution, "Must provide operation name if query contains multiple operations.")
	}
	if op := document.Operations.ForName(operationName); op != nil {
		return op, nil
	}
	return nil, Errorf(CodeOperationResolution, "Unknown operation named %q.", operationName)
}
