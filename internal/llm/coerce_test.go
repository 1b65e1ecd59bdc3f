package llm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeObject(t *testing.T) {
	data, err := DecodeObject("Sure! ```json\n{\"totalScore\": 81}\n```")
	require.NoError(t, err)
	assert.Equal(t, 81.0, data["totalScore"])

	_, err = DecodeObject("   ")
	assert.Error(t, err)

	_, err = DecodeObject(`["not", "an", "object"]`)
	assert.Error(t, err)

	_, err = DecodeObject(`null`)
	assert.Error(t, err)

	_, err = DecodeObject(`{"unterminated": `)
	assert.Error(t, err)
}

func TestCoerceFloat(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   float64
		wantOK bool
	}{
		{"number", 42.5, 42.5, true},
		{"int", 7, 7, true},
		{"numeric string", " 88 ", 88, true},
		{"percent string", "91%", 91, true},
		{"word string", "high", 0, false},
		{"empty string", "", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
		{"nan", math.NaN(), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceFloat(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerceBool(t *testing.T) {
	assert.True(t, CoerceBool(true))
	assert.True(t, CoerceBool(" Yes "))
	assert.True(t, CoerceBool(1.0))
	assert.False(t, CoerceBool("no"))
	assert.False(t, CoerceBool(nil))
}

func TestCoerceStrings(t *testing.T) {
	assert.Equal(t, []string{"go", "sql"}, CoerceStrings([]any{" go ", "", nil, "sql"}))
	assert.Equal(t, []string{"single"}, CoerceStrings("single"))
	assert.Equal(t, []string{}, CoerceStrings(nil))
	assert.Equal(t, []string{"3.5"}, CoerceStrings([]any{3.5}))
}

func TestCoerceObjects(t *testing.T) {
	objs := CoerceObjects([]any{map[string]any{"a": 1.0}, "skip", nil})
	require.Len(t, objs, 1)
	assert.Equal(t, 1.0, objs[0]["a"])
	assert.Nil(t, CoerceObjects("nope"))
	assert.Empty(t, CoerceObject(nil))
}
