package executor

import (
	"fmt"
	"reflect"
	"strconv"

	json "github.com/goccy/go-json"
	language "github.com/hanpama/gqlengine/internal/language"
	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// CoerceVariableValues coerces raw request variables against the variable
// definitions of op. Failures are request-fatal; all of them are reported.
func CoerceVariableValues(
	s *schema.Schema,
	op *language.OperationDefinition,
	raw map[string]any,
) (map[string]any, gqlerror.List) {
	coerced := make(map[string]any, len(op.VariableDefinitions))
	var errs gqlerror.List
	fail := func(varDef *language.VariableDefinition, format string, args ...any) {
		err := errorAt(varDef.Position, format, args...)
		errs = append(errs, WithCode(err, CodeVariableCoercion))
	}

	for _, varDef := range op.VariableDefinitions {
		name := varDef.Variable
		ref := schema.TypeRefFromAST(varDef.Type)
		if named := s.Type(ref.GetNamedType()); named == nil || !named.IsInput() {
			fail(varDef, "Variable \"$%s\" expected value of type %q which cannot be used as an input type.", name, ref)
			continue
		}

		val, ok := raw[name]
		if !ok {
			if varDef.DefaultValue != nil {
				dv, err := valueFromAST(s, varDef.DefaultValue, ref, nil)
				if err != nil {
					fail(varDef, "Variable \"$%s\" has invalid default value: %v", name, err)
					continue
				}
				coerced[name] = dv
			} else if ref.IsNonNull() {
				fail(varDef, "Variable \"$%s\" of required type %q was not provided.", name, ref)
			}
			continue
		}
		if val == nil && ref.IsNonNull() {
			fail(varDef, "Variable \"$%s\" of non-null type %q must not be null.", name, ref)
			continue
		}
		cv, err := coerceInputValue(s, val, ref, "")
		if err != nil {
			fail(varDef, "Variable \"$%s\" got invalid value %s; %v", name, formatInput(val), err)
			continue
		}
		coerced[name] = cv
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return coerced, nil
}

// coerceInputValue coerces an external (JSON-like) value against ref. The
// path names the position inside nested input for error messages.
func coerceInputValue(s *schema.Schema, value any, ref *schema.TypeRef, path string) (any, error) {
	if ref.IsNonNull() {
		if isNullish(value) {
			return nil, inputError(path, "Expected non-nullable type %q not to be null.", ref)
		}
		return coerceInputValue(s, value, ref.OfType, path)
	}
	if isNullish(value) {
		return nil, nil
	}

	if ref.Kind == schema.TypeRefKindList {
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			item, err := coerceInputValue(s, value, ref.OfType, path)
			if err != nil {
				return nil, err
			}
			return []any{item}, nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			item, err := coerceInputValue(s, rv.Index(i).Interface(), ref.OfType, path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return nil, err
			}
			out[i] = item
		}
		return out, nil
	}

	named := s.Type(ref.Named)
	if named == nil {
		return nil, inputError(path, "Unknown type %q.", ref.Named)
	}
	switch named.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		v, err := schema.ParseLeaf(named, value)
		if err != nil {
			return nil, inputError(path, "%v", err)
		}
		return v, nil
	case schema.TypeKindInputObject:
		fields, ok := value.(map[string]any)
		if !ok {
			return nil, inputError(path, "Expected type %q to be an object.", named.Name)
		}
		return coerceInputObject(s, named, path, fields, func(f *schema.InputValue, raw any) (any, error) {
			return coerceInputValue(s, raw, f.Type, joinPath(path, f.Name))
		})
	}
	return nil, inputError(path, "Type %q is not an input type.", named.Name)
}

// coerceInputObject applies field definitions, defaults and oneOf rules.
// present holds the provided field values in their raw form.
func coerceInputObject(
	s *schema.Schema,
	t *schema.Type,
	path string,
	present map[string]any,
	coerceField func(f *schema.InputValue, raw any) (any, error),
) (map[string]any, error) {
	for name := range present {
		if t.InputField(name) == nil {
			return nil, inputError(path, "Field %q is not defined by type %q.", name, t.Name)
		}
	}
	out := make(map[string]any, len(t.InputFields))
	for _, f := range t.InputFields {
		raw, ok := present[f.Name]
		if !ok {
			if f.HasDefault() {
				dv, err := coerceInputValue(s, f.DefaultValue, f.Type, joinPath(path, f.Name))
				if err != nil {
					return nil, err
				}
				out[f.Name] = dv
			} else if f.Type.IsNonNull() {
				return nil, inputError(path, "Field %q of required type %q was not provided.", f.Name, f.Type)
			}
			continue
		}
		v, err := coerceField(f, raw)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	if t.OneOf {
		if len(out) != 1 {
			return nil, inputError(path, "OneOf input object %q must specify exactly one key.", t.Name)
		}
		for name, v := range out {
			if v == nil {
				return nil, inputError(path, "Field %q of OneOf input object %q must be non-null.", name, t.Name)
			}
		}
	}
	return out, nil
}

// valueFromAST coerces a literal (which may reference variables) against
// ref. vars holds already coerced variable values. A variable missing from
// vars reads as null.
func valueFromAST(s *schema.Schema, value *language.Value, ref *schema.TypeRef, vars map[string]any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if value.Kind == language.Variable {
		v := vars[value.Raw]
		if ref.IsNonNull() && v == nil {
			return nil, fmt.Errorf("Variable \"$%s\" of type %q must not be null.", value.Raw, ref)
		}
		return v, nil
	}
	if ref.IsNonNull() {
		if value.Kind == language.NullValue {
			return nil, fmt.Errorf("Expected value of non-null type %q, found null.", ref)
		}
		return valueFromAST(s, value, ref.OfType, vars)
	}
	if value.Kind == language.NullValue {
		return nil, nil
	}

	if ref.Kind == schema.TypeRefKindList {
		if value.Kind != language.ListValue {
			item, err := valueFromAST(s, value, ref.OfType, vars)
			if err != nil {
				return nil, err
			}
			return []any{item}, nil
		}
		out := make([]any, len(value.Children))
		for i, child := range value.Children {
			item, err := valueFromAST(s, child.Value, ref.OfType, vars)
			if err != nil {
				return nil, err
			}
			out[i] = item
		}
		return out, nil
	}

	named := s.Type(ref.Named)
	if named == nil {
		return nil, fmt.Errorf("Unknown type %q.", ref.Named)
	}
	switch named.Kind {
	case schema.TypeKindEnum:
		if value.Kind != language.EnumValue {
			return nil, fmt.Errorf("Enum %q cannot represent non-enum value: %s.", named.Name, value.String())
		}
		return schema.ParseLeaf(named, value.Raw)
	case schema.TypeKindScalar:
		raw, err := constValue(value, vars)
		if err != nil {
			return nil, err
		}
		return schema.ParseLeaf(named, raw)
	case schema.TypeKindInputObject:
		if value.Kind != language.ObjectValue {
			return nil, fmt.Errorf("Expected type %q to be an object, found %s.", named.Name, value.String())
		}
		present := make(map[string]any, len(value.Children))
		for _, child := range value.Children {
			// unset variables behave like absent fields
			if child.Value.Kind == language.Variable {
				if _, ok := vars[child.Value.Raw]; !ok {
					continue
				}
			}
			present[child.Name] = child.Value
		}
		return coerceInputObject(s, named, "", present, func(f *schema.InputValue, raw any) (any, error) {
			return valueFromAST(s, raw.(*language.Value), f.Type, vars)
		})
	}
	return nil, fmt.Errorf("Type %q is not an input type.", named.Name)
}

// constValue converts a literal to a plain Go value for scalar parsing.
func constValue(value *language.Value, vars map[string]any) (any, error) {
	switch value.Kind {
	case language.Variable:
		return vars[value.Raw], nil
	case language.IntValue:
		i, err := strconv.ParseInt(value.Raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid int literal %s", value.Raw)
		}
		return i, nil
	case language.FloatValue:
		f, err := strconv.ParseFloat(value.Raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float literal %s", value.Raw)
		}
		return f, nil
	case language.StringValue, language.BlockValue, language.EnumValue:
		return value.Raw, nil
	case language.BooleanValue:
		return value.Raw == "true", nil
	case language.NullValue:
		return nil, nil
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			v, err := constValue(c.Value, vars)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case language.ObjectValue:
		out := make(map[string]any, len(value.Children))
		for _, c := range value.Children {
			v, err := constValue(c.Value, vars)
			if err != nil {
				return nil, err
			}
			out[c.Name] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported literal %s", value.String())
}

// coerceArguments computes the argument map for a field or directive.
// Arguments that are absent and have no default are left out of the map.
func coerceArguments(
	s *schema.Schema,
	defs []*schema.InputValue,
	args language.ArgumentList,
	vars map[string]any,
) (map[string]any, error) {
	coerced := make(map[string]any, len(defs))
	for _, def := range defs {
		arg := args.ForName(def.Name)
		provided := arg != nil
		if provided && arg.Value.Kind == language.Variable {
			_, provided = vars[arg.Value.Raw]
		}
		if !provided {
			if def.HasDefault() {
				dv, err := coerceInputValue(s, def.DefaultValue, def.Type, "")
				if err != nil {
					return nil, fmt.Errorf("Argument %q has invalid default value: %v", def.Name, err)
				}
				coerced[def.Name] = dv
			} else if def.Type.IsNonNull() {
				return nil, fmt.Errorf("Argument %q of required type %q was not provided.", def.Name, def.Type)
			}
			continue
		}
		v, err := valueFromAST(s, arg.Value, def.Type, vars)
		if err != nil {
			return nil, fmt.Errorf("Argument %q has invalid value %s. %v", def.Name, arg.Value.String(), err)
		}
		coerced[def.Name] = v
	}
	return coerced, nil
}

type inputPathError struct {
	path string
	msg  string
}

func (e *inputPathError) Error() string {
	if e.path == "" {
		return e.msg
	}
	return fmt.Sprintf("%s at %q", e.msg, e.path)
}

func inputError(path string, format string, args ...any) error {
	return &inputPathError{path: path, msg: fmt.Sprintf(format, args...)}
}

func joinPath(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

func formatInput(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// isNullish reports whether v should be treated as GraphQL null.
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
