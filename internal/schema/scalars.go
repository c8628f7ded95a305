package schema

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// ScalarCodec converts scalar values between their input, internal and
// output representations.
type ScalarCodec interface {
	// Serialize converts an internal value into a JSON-safe output value.
	Serialize(value any) (any, error)
	// ParseValue coerces an input value (variable or literal) into its
	// internal form.
	ParseValue(value any) (any, error)
}

// ScalarFuncs implements ScalarCodec with plain functions. A nil function
// passes values through unchanged.
type ScalarFuncs struct {
	SerializeFunc  func(value any) (any, error)
	ParseValueFunc func(value any) (any, error)
}

func (c ScalarFuncs) Serialize(value any) (any, error) {
	if c.SerializeFunc == nil {
		return value, nil
	}
	return c.SerializeFunc(value)
}

func (c ScalarFuncs) ParseValue(value any) (any, error) {
	if c.ParseValueFunc == nil {
		return value, nil
	}
	return c.ParseValueFunc(value)
}

// ErrInvalidScalar is wrapped by every codec failure of the built-in scalars.
var ErrInvalidScalar = errors.New("invalid scalar value")

func invalidScalar(typeName string, value any) error {
	return fmt.Errorf("%w: %s cannot represent %s", ErrInvalidScalar, typeName, formatValue(value))
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	}
	if b, err := json.Marshal(value); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", value)
}

// Built-in scalar codecs.
var (
	IntCodec     ScalarCodec = ScalarFuncs{SerializeFunc: coerceInt, ParseValueFunc: coerceInt}
	FloatCodec   ScalarCodec = ScalarFuncs{SerializeFunc: coerceFloat, ParseValueFunc: coerceFloat}
	StringCodec  ScalarCodec = ScalarFuncs{SerializeFunc: serializeString, ParseValueFunc: parseString}
	BooleanCodec ScalarCodec = ScalarFuncs{SerializeFunc: coerceBoolean, ParseValueFunc: coerceBoolean}
	IDCodec      ScalarCodec = ScalarFuncs{SerializeFunc: coerceID, ParseValueFunc: coerceID}
)

func coerceInt(value any) (any, error) {
	if n, ok := value.(json.Number); ok {
		i, err := n.Int64()
		if err != nil {
			return nil, invalidScalar("Int", value)
		}
		value = i
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return nil, invalidScalar("Int", value)
	}
	var i int64
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i = rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt32 {
			return nil, invalidScalar("Int", value)
		}
		i = int64(u)
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return nil, invalidScalar("Int", value)
		}
		if f < math.MinInt32 || f > math.MaxInt32 {
			return nil, invalidScalar("Int", value)
		}
		i = int64(f)
	default:
		return nil, invalidScalar("Int", value)
	}
	if i < math.MinInt32 || i > math.MaxInt32 {
		return nil, invalidScalar("Int", value)
	}
	return int32(i), nil
}

func coerceFloat(value any) (any, error) {
	if n, ok := value.(json.Number); ok {
		f, err := n.Float64()
		if err != nil {
			return nil, invalidScalar("Float", value)
		}
		value = f
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return nil, invalidScalar("Float", value)
	}
	var f float64
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f = float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		f = float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		f = rv.Float()
	default:
		return nil, invalidScalar("Float", value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, invalidScalar("Float", value)
	}
	return f, nil
}

func serializeString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case fmt.Stringer:
		return v.String(), nil
	case encoding.TextMarshaler:
		b, err := v.MarshalText()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidScalar, err)
		}
		return string(b), nil
	}
	rv := reflect.ValueOf(value)
	if rv.IsValid() && rv.Kind() == reflect.String {
		return rv.String(), nil
	}
	if f, err := coerceFloat(value); err == nil {
		return strconv.FormatFloat(f.(float64), 'f', -1, 64), nil
	}
	return nil, invalidScalar("String", value)
}

func parseString(value any) (any, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	return nil, invalidScalar("String", value)
}

func coerceBoolean(value any) (any, error) {
	rv := reflect.ValueOf(value)
	if rv.IsValid() && rv.Kind() == reflect.Bool {
		return rv.Bool(), nil
	}
	return nil, invalidScalar("Boolean", value)
}

func coerceID(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case json.Number:
		if _, err := v.Int64(); err != nil {
			return nil, invalidScalar("ID", value)
		}
		return v.String(), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return nil, invalidScalar("ID", value)
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			return strconv.FormatInt(int64(f), 10), nil
		}
	}
	return nil, invalidScalar("ID", value)
}

// DateTimeCodec serializes time.Time and *timestamppb.Timestamp values as
// RFC 3339 strings and parses them back into time.Time.
var DateTimeCodec ScalarCodec = ScalarFuncs{
	SerializeFunc: func(value any) (any, error) {
		switch v := value.(type) {
		case time.Time:
			return v.UTC().Format(time.RFC3339Nano), nil
		case *time.Time:
			if v == nil {
				return nil, nil
			}
			return v.UTC().Format(time.RFC3339Nano), nil
		case *timestamppb.Timestamp:
			if err := v.CheckValid(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidScalar, err)
			}
			return v.AsTime().Format(time.RFC3339Nano), nil
		case string:
			t, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				return nil, invalidScalar("DateTime", value)
			}
			return t.UTC().Format(time.RFC3339Nano), nil
		}
		return nil, invalidScalar("DateTime", value)
	},
	ParseValueFunc: func(value any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, invalidScalar("DateTime", value)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, invalidScalar("DateTime", value)
		}
		return t, nil
	},
}

// DurationCodec serializes time.Duration and *durationpb.Duration values
// using Go duration notation ("1h30m").
var DurationCodec ScalarCodec = ScalarFuncs{
	SerializeFunc: func(value any) (any, error) {
		switch v := value.(type) {
		case time.Duration:
			return v.String(), nil
		case *durationpb.Duration:
			if err := v.CheckValid(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidScalar, err)
			}
			return v.AsDuration().String(), nil
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, invalidScalar("Duration", value)
			}
			return d.String(), nil
		}
		return nil, invalidScalar("Duration", value)
	},
	ParseValueFunc: func(value any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, invalidScalar("Duration", value)
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, invalidScalar("Duration", value)
		}
		return d, nil
	},
}

// StandardScalars returns the extra scalar codecs that SDL schemas may bind
// by declaring `scalar DateTime` or `scalar Duration`.
func StandardScalars() map[string]ScalarCodec {
	return map[string]ScalarCodec{
		"DateTime": DateTimeCodec,
		"Duration": DurationCodec,
	}
}

// SerializeLeaf converts an internal scalar or enum value into its output form.
func SerializeLeaf(t *Type, value any) (any, error) {
	switch t.Kind {
	case TypeKindScalar:
		if t.Codec == nil {
			return value, nil
		}
		return t.Codec.Serialize(value)
	case TypeKindEnum:
		for _, ev := range t.EnumValues {
			if enumEqual(ev.Internal(), value) {
				return ev.Name, nil
			}
		}
		return nil, fmt.Errorf("%w: enum %s cannot represent %s", ErrInvalidScalar, t.Name, formatValue(value))
	}
	return nil, fmt.Errorf("type %s is not a leaf type", t.Name)
}

// ParseLeaf coerces an input value of a scalar or enum type. Enum input is
// the member name; the result is the member's internal value.
func ParseLeaf(t *Type, value any) (any, error) {
	switch t.Kind {
	case TypeKindScalar:
		if t.Codec == nil {
			return value, nil
		}
		return t.Codec.ParseValue(value)
	case TypeKindEnum:
		name, ok := value.(string)
		if ok {
			if ev := t.EnumValue(name); ev != nil {
				return ev.Internal(), nil
			}
		}
		return nil, fmt.Errorf("value %s does not exist in %q enum", formatValue(value), t.Name)
	}
	return nil, fmt.Errorf("type %s is not a leaf type", t.Name)
}

func enumEqual(internal, value any) bool {
	if value == nil {
		return false
	}
	if reflect.TypeOf(value).Comparable() && internal == value {
		return true
	}
	// named string types (type Color string) match by underlying value
	rv := reflect.ValueOf(value)
	if rv.IsValid() && rv.Kind() == reflect.String {
		if s, ok := internal.(string); ok {
			return rv.String() == s
		}
	}
	return false
}
