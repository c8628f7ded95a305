package schema

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// AbstractResolutionError reports that a value of an interface or union
// could not be mapped to exactly one of its possible object types.
type AbstractResolutionError struct {
	AbstractType string
	Candidates   []string // object types that claimed the value, if any
	Resolved     string   // discriminator result outside the possible types
	ValueType    string
	Cause        error
}

func (e *AbstractResolutionError) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("could not resolve concrete type for %s: %v", e.AbstractType, e.Cause)
	case e.Resolved != "":
		return fmt.Sprintf("abstract type %s resolved to %q, which is not a possible type", e.AbstractType, e.Resolved)
	case len(e.Candidates) > 1:
		return fmt.Sprintf("abstract type %s is ambiguous for the value: claimed by %s", e.AbstractType, strings.Join(e.Candidates, ", "))
	}
	return fmt.Sprintf("abstract type %s must resolve to an object type at runtime for value of type %s", e.AbstractType, e.ValueType)
}

func (e *AbstractResolutionError) Unwrap() error { return e.Cause }

// IsAbstractResolutionError reports whether err wraps an AbstractResolutionError.
func IsAbstractResolutionError(err error) bool {
	var target *AbstractResolutionError
	return errors.As(err, &target)
}

// PossibleTypes returns the object types that a value of t may have at runtime.
func (s *Schema) PossibleTypes(t *Type) []*Type {
	switch t.Kind {
	case TypeKindObject:
		return []*Type{t}
	case TypeKindInterface, TypeKindUnion:
		out := make([]*Type, 0, len(t.PossibleTypes))
		for _, name := range t.PossibleTypes {
			if pt := s.Types[name]; pt != nil {
				out = append(out, pt)
			}
		}
		return out
	}
	return nil
}

// IsPossibleType reports whether the object type named objectType is a member
// of (or implements) the abstract type.
func (s *Schema) IsPossibleType(abstract *Type, objectType string) bool {
	if abstract.Kind == TypeKindObject {
		return abstract.Name == objectType
	}
	return slices.Contains(abstract.PossibleTypes, objectType)
}

// DoesTypeApply reports whether a fragment type condition applies to the
// given object type: exact match, implemented interface, or union membership.
func (s *Schema) DoesTypeApply(objectType *Type, condition string) bool {
	if condition == "" || condition == objectType.Name {
		return true
	}
	cond := s.Types[condition]
	if cond == nil || !cond.IsAbstract() {
		return false
	}
	return s.IsPossibleType(cond, objectType.Name)
}

// ResolveAbstractType determines the concrete object type of a value produced
// for an interface or union field. The abstract type's TypeResolver wins when
// bound; otherwise every possible type's IsTypeOf is probed and exactly one
// must claim the value. When no possible type has a discriminator the value
// may name itself via a "__typename" map key or a GraphQLTypename method.
// The returned name is always one of the abstract type's possible types.
func ResolveAbstractType(ctx context.Context, s *Schema, abstract *Type, value any) (string, error) {
	if !abstract.IsAbstract() {
		return "", &AbstractResolutionError{AbstractType: abstract.Name, Cause: fmt.Errorf("%s is not an interface or union", abstract.Name)}
	}

	var name string
	switch {
	case abstract.ResolveType != nil:
		resolved, err := abstract.ResolveType(ctx, value)
		if err != nil {
			return "", &AbstractResolutionError{AbstractType: abstract.Name, Cause: err}
		}
		name = resolved
	default:
		var (
			claims   []string
			probed   bool
			possible = s.PossibleTypes(abstract)
		)
		for _, pt := range possible {
			if pt.IsTypeOf == nil {
				continue
			}
			probed = true
			if pt.IsTypeOf(ctx, value) {
				claims = append(claims, pt.Name)
			}
		}
		switch {
		case len(claims) == 1:
			name = claims[0]
		case len(claims) > 1:
			return "", &AbstractResolutionError{AbstractType: abstract.Name, Candidates: claims}
		case !probed:
			name = typenameOf(value)
		}
	}

	if name == "" {
		return "", &AbstractResolutionError{AbstractType: abstract.Name, ValueType: describeValue(value)}
	}
	if !s.IsPossibleType(abstract, name) {
		return "", &AbstractResolutionError{AbstractType: abstract.Name, Resolved: name}
	}
	return name, nil
}
