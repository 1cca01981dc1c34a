package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readDef() *Definition {
	return &Definition{
		Name:        "file_read",
		Description: "Read the contents of a file",
		Schema: Schema{
			Fields: []Field{
				{Name: "path", Type: TypeString, Required: true, Aliases: []string{"file", "filename"}},
				{Name: "max_bytes", Type: TypeInteger},
			},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		params     map[string]any
		wantFields []string
		wantKinds  []ViolationKind
	}{
		{
			name:   "valid call",
			params: map[string]any{"path": "main.go"},
		},
		{
			name:       "missing required",
			params:     map[string]any{},
			wantFields: []string{"path"},
			wantKinds:  []ViolationKind{MissingRequired},
		},
		{
			name:       "nil parameters",
			params:     nil,
			wantFields: []string{"path"},
			wantKinds:  []ViolationKind{MissingRequired},
		},
		{
			name:       "wrong type",
			params:     map[string]any{"path": 42.0},
			wantFields: []string{"path"},
			wantKinds:  []ViolationKind{WrongType},
		},
		{
			name:       "unknown field",
			params:     map[string]any{"path": "a", "mode": "fast"},
			wantFields: []string{"mode"},
			wantKinds:  []ViolationKind{UnknownField},
		},
		{
			name:       "declared fields before unknown, unknown sorted",
			params:     map[string]any{"zz": 1.0, "aa": 2.0},
			wantFields: []string{"path", "aa", "zz"},
			wantKinds:  []ViolationKind{MissingRequired, UnknownField, UnknownField},
		},
		{
			name:   "integral float accepted for integer",
			params: map[string]any{"path": "a", "max_bytes": 4096.0},
		},
		{
			name:       "fractional float rejected for integer",
			params:     map[string]any{"path": "a", "max_bytes": 0.5},
			wantFields: []string{"max_bytes"},
			wantKinds:  []ViolationKind{WrongType},
		},
		{
			name:   "optional field absent is fine",
			params: map[string]any{"path": "a"},
		},
	}

	def := readDef()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := Validate(Call{Name: def.Name, Parameters: tt.params}, def)
			require.Len(t, violations, len(tt.wantFields))
			for i, v := range violations {
				assert.Equal(t, tt.wantFields[i], v.Field)
				assert.Equal(t, tt.wantKinds[i], v.Kind)
				assert.NotEmpty(t, v.Message)
			}
		})
	}
}

func TestValidateDeterministic(t *testing.T) {
	def := readDef()
	call := Call{Name: def.Name, Parameters: map[string]any{"c": 1.0, "b": 2.0, "a": 3.0}}

	first := Validate(call, def)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Validate(call, def))
	}
}

func TestValidateTypes(t *testing.T) {
	def := &Definition{
		Name: "shapes",
		Schema: Schema{Fields: []Field{
			{Name: "s", Type: TypeString},
			{Name: "n", Type: TypeNumber},
			{Name: "i", Type: TypeInteger},
			{Name: "b", Type: TypeBoolean},
			{Name: "a", Type: TypeArray},
			{Name: "o", Type: TypeObject},
		}},
	}

	ok := map[string]any{
		"s": "x",
		"n": 1.5,
		"i": 3.0,
		"b": true,
		"a": []any{"x"},
		"o": map[string]any{"k": "v"},
	}
	assert.Empty(t, Validate(Call{Name: "shapes", Parameters: ok}, def))

	bad := map[string]any{
		"s": 1.0,
		"n": "1.5",
		"i": "3",
		"b": "true",
		"a": "x",
		"o": []any{},
	}
	violations := Validate(Call{Name: "shapes", Parameters: bad}, def)
	require.Len(t, violations, 6)
	for _, v := range violations {
		assert.Equal(t, WrongType, v.Kind)
	}
}

func TestValidateEnum(t *testing.T) {
	def := &Definition{
		Name: "mode_tool",
		Schema: Schema{Fields: []Field{
			{Name: "mode", Type: TypeString, Required: true, Enum: []string{"fast", "safe"}},
		}},
	}

	assert.Empty(t, Validate(Call{Parameters: map[string]any{"mode": "fast"}}, def))

	violations := Validate(Call{Parameters: map[string]any{"mode": "turbo"}}, def)
	require.Len(t, violations, 1)
	assert.Equal(t, ConstraintFailed, violations[0].Kind)
}
