package executor

import (
	"context"
	"fmt"

	language "github.com/hanpama/gqlengine/internal/language"
)

// DirectiveFunc decides whether a selection carrying the directive is
// included. Arguments are coerced against the schema's directive
// definition when one exists; otherwise literals are passed as plain values
// with variables substituted.
type DirectiveFunc func(ctx context.Context, args map[string]any) (include bool, err error)

type directiveHandler struct {
	name string
	fn   DirectiveFunc
}

func skipDirective(ctx context.Context, args map[string]any) (bool, error) {
	skip, _ := args["if"].(bool)
	return !skip, nil
}

func includeDirective(ctx context.Context, args map[string]any) (bool, error) {
	include, _ := args["if"].(bool)
	return include, nil
}

// shouldIncludeNode evaluates @skip, @include and then the registered
// handlers in registration order. A node is excluded if any handler
// excludes it; every handler present on the node is evaluated.
func (ec *executionContext) shouldIncludeNode(ctx context.Context, directives language.DirectiveList) (bool, error) {
	if len(directives) == 0 {
		return true, nil
	}
	include := true
	for _, h := range ec.directives {
		for _, d := range directives {
			if d.Name != h.name {
				continue
			}
			args, err := ec.directiveArguments(d)
			if err != nil {
				return false, err
			}
			ok, err := h.fn(ctx, args)
			if err != nil {
				return false, fmt.Errorf("@%s: %w", d.Name, err)
			}
			include = include && ok
		}
	}
	return include, nil
}

func (ec *executionContext) directiveArguments(d *language.Directive) (map[string]any, error) {
	if def := ec.schema.Directives[d.Name]; def != nil {
		args, err := coerceArguments(ec.schema, def.Arguments, d.Arguments, ec.variables)
		if err != nil {
			return nil, fmt.Errorf("@%s: %w", d.Name, err)
		}
		return args, nil
	}
	args := make(map[string]any, len(d.Arguments))
	for _, arg := range d.Arguments {
		v, err := constValue(arg.Value, ec.variables)
		if err != nil {
			return nil, fmt.Errorf("@%s(%s:): %w", d.Name, arg.Name, err)
		}
		args[arg.Name] = v
	}
	return args, nil
}
