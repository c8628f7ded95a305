package introspection

import (
	"fmt"

	schema "github.com/hanpama/gqlengine/internal/schema"
)

// extend returns a copy of s with the introspection types registered and
// the __schema and __type fields added to the query root.
func extend(s *schema.Schema) (*schema.Schema, error) {
	b := schema.NewBuilderFrom(s)
	for _, t := range []*schema.Type{
		schemaType(),
		typeType(),
		fieldType(),
		inputValueType(),
		enumValueType(),
		directiveType(),
		typeKindEnum(),
		directiveLocationEnum(),
	} {
		if b.Type(t.Name) != nil {
			return nil, fmt.Errorf("introspection: type %s is already defined", t.Name)
		}
		b.AddType(t)
	}

	query := b.Type(s.QueryType)
	if query == nil {
		return nil, fmt.Errorf("introspection: query type %q not found", s.QueryType)
	}
	query.AddField(schema.NewField("__schema", nonNull("__Schema"), "Access the current type schema of this server."))
	query.AddField(schema.NewField("__type", named("__Type"), "Request the type information of a single type.").
		AddArgument(schema.NewInputValue("name", nonNull("String"), "The name of the type to look up.")))

	return b.Build()
}

func named(name string) *schema.TypeRef { return schema.NamedType(name) }

func nonNull(name string) *schema.TypeRef { return schema.NonNullType(schema.NamedType(name)) }

// nonNullList is [name!]!
func nonNullList(name string) *schema.TypeRef {
	return schema.NonNullType(schema.ListType(nonNull(name)))
}

// list is [name!]
func list(name string) *schema.TypeRef {
	return schema.ListType(nonNull(name))
}

func includeDeprecated() *schema.InputValue {
	return schema.NewInputValue("includeDeprecated", named("Boolean"), "").WithDefault(false)
}

func schemaType() *schema.Type {
	t := schema.NewObject("__Schema",
		schema.NewField("description", named("String"), ""),
		schema.NewField("types", nonNullList("__Type"), "A list of all types supported by this server."),
		schema.NewField("queryType", nonNull("__Type"), "The type that query operations will be rooted at."),
		schema.NewField("mutationType", named("__Type"), "If this server supports mutation, the type that mutation operations will be rooted at."),
		schema.NewField("subscriptionType", named("__Type"), "If this server support subscription, the type that subscription operations will be rooted at."),
		schema.NewField("directives", nonNullList("__Directive"), "A list of all directives supported by this server."),
	)
	t.Description = "A GraphQL Schema defines the capabilities of a GraphQL server. It exposes all available types and directives on the server, as well as the entry points for query, mutation, and subscription operations."
	return t
}

func typeType() *schema.Type {
	t := schema.NewObject("__Type",
		schema.NewField("kind", nonNull("__TypeKind"), ""),
		schema.NewField("name", named("String"), ""),
		schema.NewField("description", named("String"), ""),
		schema.NewField("specifiedByURL", named("String"), ""),
		schema.NewField("fields", list("__Field"), "").AddArgument(includeDeprecated()),
		schema.NewField("interfaces", list("__Type"), ""),
		schema.NewField("possibleTypes", list("__Type"), ""),
		schema.NewField("enumValues", list("__EnumValue"), "").AddArgument(includeDeprecated()),
		schema.NewField("inputFields", list("__InputValue"), "").AddArgument(includeDeprecated()),
		schema.NewField("ofType", named("__Type"), ""),
		schema.NewField("isOneOf", named("Boolean"), ""),
	)
	t.Description = "The fundamental unit of any GraphQL Schema is the type. There are many kinds of types in GraphQL as represented by the `__TypeKind` enum."
	return t
}

func fieldType() *schema.Type {
	t := schema.NewObject("__Field",
		schema.NewField("name", nonNull("String"), ""),
		schema.NewField("description", named("String"), ""),
		schema.NewField("args", nonNullList("__InputValue"), "").AddArgument(includeDeprecated()),
		schema.NewField("type", nonNull("__Type"), ""),
		schema.NewField("isDeprecated", nonNull("Boolean"), ""),
		schema.NewField("deprecationReason", named("String"), ""),
	)
	t.Description = "Object and Interface types are described by a list of Fields, each of which has a name, potentially a list of arguments, and a return type."
	return t
}

func inputValueType() *schema.Type {
	t := schema.NewObject("__InputValue",
		schema.NewField("name", nonNull("String"), ""),
		schema.NewField("description", named("String"), ""),
		schema.NewField("type", nonNull("__Type"), ""),
		schema.NewField("defaultValue", named("String"), "A GraphQL-formatted string representing the default value for this input value."),
		schema.NewField("isDeprecated", nonNull("Boolean"), ""),
		schema.NewField("deprecationReason", named("String"), ""),
	)
	t.Description = "Arguments provided to Fields or Directives and the input fields of an InputObject are represented as Input Values which describe their type and optionally a default value."
	return t
}

func enumValueType() *schema.Type {
	t := schema.NewObject("__EnumValue",
		schema.NewField("name", nonNull("String"), ""),
		schema.NewField("description", named("String"), ""),
		schema.NewField("isDeprecated", nonNull("Boolean"), ""),
		schema.NewField("deprecationReason", named("String"), ""),
	)
	t.Description = "One possible value for a given Enum. Enum values are unique values, not a placeholder for a string or numeric value."
	return t
}

func directiveType() *schema.Type {
	t := schema.NewObject("__Directive",
		schema.NewField("name", nonNull("String"), ""),
		schema.NewField("description", named("String"), ""),
		schema.NewField("isRepeatable", nonNull("Boolean"), ""),
		schema.NewField("locations", nonNullList("__DirectiveLocation"), ""),
		schema.NewField("args", nonNullList("__InputValue"), "").AddArgument(includeDeprecated()),
	)
	t.Description = "A Directive provides a way to describe alternate runtime execution and type validation behavior in a GraphQL document."
	return t
}

func typeKindEnum() *schema.Type {
	t := schema.NewEnum("__TypeKind",
		"SCALAR", "OBJECT", "INTERFACE", "UNION", "ENUM", "INPUT_OBJECT", "LIST", "NON_NULL")
	t.Description = "An enum describing what kind of type a given `__Type` is."
	return t
}

func directiveLocationEnum() *schema.Type {
	t := schema.NewEnum("__DirectiveLocation",
		"QUERY", "MUTATION", "SUBSCRIPTION", "FIELD", "FRAGMENT_DEFINITION", "FRAGMENT_SPREAD",
		"INLINE_FRAGMENT", "VARIABLE_DEFINITION", "SCHEMA", "SCALAR", "OBJECT", "FIELD_DEFINITION",
		"ARGUMENT_DEFINITION", "INTERFACE", "UNION", "ENUM", "ENUM_VALUE", "INPUT_OBJECT",
		"INPUT_FIELD_DEFINITION")
	t.Description = "A Directive can be adjacent to many parts of the GraphQL language, a __DirectiveLocation describes one such possible adjacencies."
	return t
}
