package schema_test

import (
	"math"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func TestBuiltinCodecs(t *testing.T) {
	tests := []struct {
		name    string
		codec   schema.ScalarCodec
		parse   bool
		in      any
		want    any
		wantErr bool
	}{
		{name: "Int from int", codec: schema.IntCodec, in: 42, want: int32(42)},
		{name: "Int from integral float", codec: schema.IntCodec, in: float64(7), want: int32(7)},
		{name: "Int from json number", codec: schema.IntCodec, parse: true, in: json.Number("12"), want: int32(12)},
		{name: "Int rejects fraction", codec: schema.IntCodec, in: 1.5, wantErr: true},
		{name: "Int rejects string", codec: schema.IntCodec, in: "42", wantErr: true},
		{name: "Int rejects overflow", codec: schema.IntCodec, in: int64(math.MaxInt32) + 1, wantErr: true},
		{name: "Float from int", codec: schema.FloatCodec, in: 3, want: float64(3)},
		{name: "Float rejects NaN", codec: schema.FloatCodec, in: math.NaN(), wantErr: true},
		{name: "String serializes bool", codec: schema.StringCodec, in: true, want: "true"},
		{name: "String parse rejects int", codec: schema.StringCodec, parse: true, in: int64(1), wantErr: true},
		{name: "Boolean", codec: schema.BooleanCodec, in: false, want: false},
		{name: "Boolean rejects int", codec: schema.BooleanCodec, parse: true, in: 1, wantErr: true},
		{name: "ID from int", codec: schema.IDCodec, parse: true, in: int64(4), want: "4"},
		{name: "ID from string", codec: schema.IDCodec, in: "abc", want: "abc"},
		{name: "ID rejects bool", codec: schema.IDCodec, in: true, wantErr: true},
		{name: "DateTime from timestamppb", codec: schema.DateTimeCodec,
			in: timestamppb.New(time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)), want: "2020-05-01T00:00:00Z"},
		{name: "DateTime parse", codec: schema.DateTimeCodec, parse: true,
			in: "2020-05-01T00:00:00Z", want: time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)},
		{name: "DateTime rejects garbage", codec: schema.DateTimeCodec, parse: true, in: "yesterday", wantErr: true},
		{name: "Duration from durationpb", codec: schema.DurationCodec, in: durationpb.New(90 * time.Second), want: "1m30s"},
		{name: "Duration parse", codec: schema.DurationCodec, parse: true, in: "2h", want: 2 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				got any
				err error
			)
			if tt.parse {
				got, err = tt.codec.ParseValue(tt.in)
			} else {
				got, err = tt.codec.Serialize(tt.in)
			}
			if tt.wantErr {
				require.ErrorIs(t, err, schema.ErrInvalidScalar)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

type color string

func TestLeafEnum(t *testing.T) {
	enum := schema.NewEnum("Color", "RED", "GREEN")
	enum.EnumValue("GREEN").Value = 2

	got, err := schema.SerializeLeaf(enum, color("RED"))
	require.NoError(t, err)
	require.Equal(t, "RED", got)

	got, err = schema.SerializeLeaf(enum, 2)
	require.NoError(t, err)
	require.Equal(t, "GREEN", got)

	_, err = schema.SerializeLeaf(enum, "BLUE")
	require.Error(t, err)

	got, err = schema.ParseLeaf(enum, "GREEN")
	require.NoError(t, err)
	require.Equal(t, 2, got)

	_, err = schema.ParseLeaf(enum, "BLUE")
	require.Error(t, err)
}
