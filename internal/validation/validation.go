// Package validation checks executable documents against a schema before
// execution. It runs the standard GraphQL rule set and the checks that the
// executor relies on but the rule set leaves out.
package validation

import (
	executor "github.com/hanpama/gqlengine/internal/executor"
	language "github.com/hanpama/gqlengine/internal/language"
	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/validator"
)

// Validate returns every validation error found in doc, each carrying the
// GRAPHQL_VALIDATION_FAILED code. A nil result means the document may be
// executed.
func Validate(s *schema.Schema, doc *language.QueryDocument) gqlerror.List {
	errs := validator.Validate(s.Document(), doc)
	if len(errs) == 0 {
		errs = append(errs, checkSubscriptions(doc)...)
	}
	if len(errs) == 0 {
		return nil
	}
	for _, err := range errs {
		executor.WithCode(err, executor.CodeValidationFailed)
	}
	return errs
}

// checkSubscriptions requires every subscription to select exactly one
// root field. Directives are not evaluated here; fragments are followed.
func checkSubscriptions(doc *language.QueryDocument) gqlerror.List {
	var errs gqlerror.List
	for _, op := range doc.Operations {
		if op.Operation != language.Subscription {
			continue
		}
		keys := map[string]bool{}
		rootKeys(doc, op.SelectionSet, keys, map[string]bool{})
		if len(keys) == 1 {
			continue
		}
		var err *gqlerror.Error
		if op.Name != "" {
			err = gqlerror.ErrorPosf(op.Position, "Subscription %q must select only one top level field.", op.Name)
		} else {
			err = gqlerror.ErrorPosf(op.Position, "Anonymous Subscription must select only one top level field.")
		}
		err.Rule = "SingleFieldSubscriptions"
		errs = append(errs, err)
	}
	return errs
}

func rootKeys(doc *language.QueryDocument, set language.SelectionSet, keys, visited map[string]bool) {
	for _, sel := range set {
		switch sel := sel.(type) {
		case *language.Field:
			keys[sel.Alias] = true
		case *language.InlineFragment:
			rootKeys(doc, sel.SelectionSet, keys, visited)
		case *language.FragmentSpread:
			if visited[sel.Name] {
				continue
			}
			visited[sel.Name] = true
			if def := doc.Fragments.ForName(sel.Name); def != nil {
				rootKeys(doc, def.SelectionSet, keys, visited)
			}
		}
	}
}

// NoIntrospection rejects documents that select __schema or __type
// anywhere. __typename stays allowed.
func NoIntrospection(doc *language.QueryDocument) gqlerror.List {
	var errs gqlerror.List
	var walk func(set language.SelectionSet)
	visited := map[string]bool{}
	walk = func(set language.SelectionSet) {
		for _, sel := range set {
			switch sel := sel.(type) {
			case *language.Field:
				if sel.Name == "__schema" || sel.Name == "__type" {
					err := gqlerror.ErrorPosf(sel.Position, "GraphQL introspection is not allowed, but the query contained %s.", sel.Name)
					err.Rule = "NoIntrospection"
					errs = append(errs, executor.WithCode(err, executor.CodeValidationFailed))
					continue
				}
				walk(sel.SelectionSet)
			case *language.InlineFragment:
				walk(sel.SelectionSet)
			case *language.FragmentSpread:
				if visited[sel.Name] {
					continue
				}
				visited[sel.Name] = true
				if def := doc.Fragments.ForName(sel.Name); def != nil {
					walk(def.SelectionSet)
				}
			}
		}
	}
	for _, op := range doc.Operations {
		walk(op.SelectionSet)
	}
	return errs
}
