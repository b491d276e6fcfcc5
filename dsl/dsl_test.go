package dsl

import (
	"testing"

	"github.com/danielhkuo/fieldbook/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Query
	}{
		{"lettuce.weight >= 100", Query{Group: "lettuce", Field: "weight", Operator: OpGte, Value: "100"}},
		{"cows", Query{Group: "cows"}},
		{"  roma_tomatoes  ", Query{Group: "roma_tomatoes"}},
		{"fish", Query{Group: "fish"}},
		{"lettuce.weight<=100", Query{Group: "lettuce", Field: "weight", Operator: OpLte, Value: "100"}},
		{"lettuce.weight < 100", Query{Group: "lettuce", Field: "weight", Operator: OpLt, Value: "100"}},
		{"lettuce.weight > 2.5", Query{Group: "lettuce", Field: "weight", Operator: OpGt, Value: "2.5"}},
		{"lettuce.weight != 0", Query{Group: "lettuce", Field: "weight", Operator: OpNe, Value: "0"}},
		{"cows.organic == true", Query{Group: "cows", Field: "organic", Operator: OpEq, Value: "true"}},
		{"lettuce.grade is 'Premium'", Query{Group: "lettuce", Field: "grade", Operator: OpIs, Value: "Premium"}},
		{"lettuce.grade IS Premium", Query{Group: "lettuce", Field: "grade", Operator: OpIs, Value: "Premium"}},
		{"lettuce.notes like 'crisp leaves'", Query{Group: "lettuce", Field: "notes", Operator: OpLike, Value: "crisp leaves"}},
		{"lettuce.notes == 'this is it'", Query{Group: "lettuce", Field: "notes", Operator: OpEq, Value: "this is it"}},
		{"lettuce.notes is 'a == b'", Query{Group: "lettuce", Field: "notes", Operator: OpIs, Value: "a == b"}},
		{"lettuce.notes != 'a==b'", Query{Group: "lettuce", Field: "notes", Operator: OpNe, Value: "a==b"}},
		{"lettuce.notes == 'x >= y'", Query{Group: "lettuce", Field: "notes", Operator: OpEq, Value: "x >= y"}},
		{"lettuce.notes like 'is it'", Query{Group: "lettuce", Field: "notes", Operator: OpLike, Value: "is it"}},
		{"lettuce.notes is 'like new'", Query{Group: "lettuce", Field: "notes", Operator: OpIs, Value: "like new"}},
		{"fish.finish is 'ok'", Query{Group: "fish", Field: "finish", Operator: OpIs, Value: "ok"}},
		{"lettuce.notes is ''", Query{Group: "lettuce", Field: "notes", Operator: OpIs, Value: ""}},
		{"lettuce.notes is 'it's'", Query{Group: "lettuce", Field: "notes", Operator: OpIs, Value: "it's"}},
		{"lettuce.notes is 'open", Query{Group: "lettuce", Field: "notes", Operator: OpIs, Value: "open"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input  string
		reason string
	}{
		{"", "empty query"},
		{"   ", "empty query"},
		{"cows weight 200", "invalid bare-query characters"},
		{"Cows", "invalid bare-query characters"},
		{"cows2", "invalid bare-query characters"},
		{"lettuce.weight 100", "invalid operator"},
		{"lettuce.weight >=", "missing operand"},
		{">= 100", "missing operand"},
		{"lettuce.weight is", "missing operand"},
		{"weight >= 100", "invalid field reference"},
		{"a.b.c == 1", "invalid field reference"},
		{".weight == 1", "invalid field reference"},
		{"lettuce. == 1", "invalid field reference"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, apperr.KindParse, e.Kind)
			assert.Equal(t, tt.reason, e.Message)
			assert.Equal(t, tt.input, e.Query)
			assert.NotEmpty(t, apperr.Hint(err))
		})
	}
}

func TestQueryStringRoundTrip(t *testing.T) {
	for _, q := range []Query{
		{Group: "cows"},
		{Group: "lettuce", Field: "weight", Operator: OpGte, Value: "100"},
		{Group: "lettuce", Field: "notes", Operator: OpLike, Value: "crisp leaves"},
		{Group: "lettuce", Field: "notes", Operator: OpIs, Value: ""},
	} {
		t.Run(q.String(), func(t *testing.T) {
			got, err := Parse(q.String())
			require.NoError(t, err)
			assert.Equal(t, q, got)
			assert.Equal(t, q.IsBare(), got.Field == "")
		})
	}
}
