package schema

// Built-in scalar and directive definitions present in every schema.

func builtinScalars() []*Type {
	return []*Type{
		{Name: "Int", Kind: TypeKindScalar, Codec: IntCodec,
			Description: "The `Int` scalar type represents non-fractional signed whole numeric values. Int can represent values between -(2^31) and 2^31 - 1."},
		{Name: "Float", Kind: TypeKindScalar, Codec: FloatCodec,
			Description: "The `Float` scalar type represents signed double-precision fractional values as specified by [IEEE 754](http://en.wikipedia.org/wiki/IEEE_floating_point)."},
		{Name: "String", Kind: TypeKindScalar, Codec: StringCodec,
			Description: "The `String` scalar type represents textual data, represented as UTF-8 character sequences. The String type is most often used by GraphQL to represent free-form human-readable text."},
		{Name: "Boolean", Kind: TypeKindScalar, Codec: BooleanCodec,
			Description: "The `Boolean` scalar type represents `true` or `false`."},
		{Name: "ID", Kind: TypeKindScalar, Codec: IDCodec,
			Description: "The `ID` scalar type represents a unique identifier, often used to refetch an object or as key for a cache. The ID type appears in a JSON response as a String; however, it is not intended to be human-readable. When expected as an input type, any string (such as `\"4\"`) or integer (such as `4`) input value will be accepted as an ID."},
	}
}

func builtinDirectives() []*Directive {
	return []*Directive{
		{
			Name:        "include",
			Description: "Directs the executor to include this field or fragment only when the `if` argument is true.",
			Locations:   []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
			Arguments:   []*InputValue{{Name: "if", Description: "Included when true.", Type: NonNullType(NamedType("Boolean"))}},
		},
		{
			Name:        "skip",
			Description: "Directs the executor to skip this field or fragment when the `if` argument is true.",
			Locations:   []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
			Arguments:   []*InputValue{{Name: "if", Description: "Skipped when true.", Type: NonNullType(NamedType("Boolean"))}},
		},
		{
			Name:        "deprecated",
			Description: "Marks an element of a GraphQL schema as no longer supported.",
			Locations:   []string{"FIELD_DEFINITION", "ARGUMENT_DEFINITION", "INPUT_FIELD_DEFINITION", "ENUM_VALUE"},
			Arguments:   []*InputValue{{Name: "reason", Type: NamedType("String"), DefaultValue: DefaultDeprecationReason}},
		},
		{
			Name:        "specifiedBy",
			Description: "Exposes a URL that specifies the behavior of this scalar.",
			Locations:   []string{"SCALAR"},
			Arguments:   []*InputValue{{Name: "url", Type: NonNullType(NamedType("String"))}},
		},
	}
}

// DefaultDeprecationReason is used when @deprecated carries no reason.
const DefaultDeprecationReason = "No longer supported"

// IsBuiltinType reports whether name is a built-in scalar or an
// introspection type.
func IsBuiltinType(name string) bool {
	switch name {
	case "Int", "Float", "String", "Boolean", "ID":
		return true
	}
	return len(name) > 1 && name[:2] == "__"
}

// IsBuiltinDirective reports whether the directive is predefined by GraphQL.
func IsBuiltinDirective(name string) bool {
	switch name {
	case "include", "skip", "deprecated", "specifiedBy", "oneOf", "defer":
		return true
	}
	return false
}
