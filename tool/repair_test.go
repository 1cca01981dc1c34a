package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDef() *Definition {
	return &Definition{
		Name: "file_write",
		Schema: Schema{
			Fields: []Field{
				{Name: "path", Type: TypeString, Required: true, Aliases: []string{"file", "filename", "filepath"}},
				{Name: "content", Type: TypeString, Required: true, Aliases: []string{"text", "data", "body"}},
				{Name: "append", Type: TypeBoolean, Default: false},
			},
		},
	}
}

func repairCall(t *testing.T, def *Definition, params map[string]any) (Call, []RepairAction, []Violation) {
	t.Helper()
	call := Call{Name: def.Name, Parameters: params}
	return Repair(call, Validate(call, def), def)
}

func TestRepairAliasResolution(t *testing.T) {
	def := writeDef()

	tests := []struct {
		name     string
		params   map[string]any
		wantKey  string
		wantVal  any
		resolved bool
	}{
		{
			name:     "declared alias",
			params:   map[string]any{"filename": "a.go", "content": "x"},
			wantKey:  "path",
			wantVal:  "a.go",
			resolved: true,
		},
		{
			name:     "case and separator normalization",
			params:   map[string]any{"filePath": "a.go", "content": "x"},
			wantKey:  "path",
			wantVal:  "a.go",
			resolved: true,
		},
		{
			name:     "unique prefix match",
			params:   map[string]any{"path": "a.go", "conten": "x"},
			wantKey:  "content",
			wantVal:  "x",
			resolved: true,
		},
		{
			name:     "short prefix not matched",
			params:   map[string]any{"path": "a.go", "con": "x"},
			resolved: false,
		},
		{
			name:     "unrelated field left alone",
			params:   map[string]any{"path": "a.go", "content": "x", "wibble": 1.0},
			resolved: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repaired, actions, remaining := repairCall(t, def, tt.params)
			if tt.resolved {
				assert.Empty(t, remaining)
				assert.Equal(t, tt.wantVal, repaired.Parameters[tt.wantKey])
				require.NotEmpty(t, actions)
				assert.Equal(t, "renamed_field", actions[0].Action)
			} else {
				assert.NotEmpty(t, remaining)
			}
		})
	}
}

func TestRepairAliasDoesNotOverwrite(t *testing.T) {
	def := writeDef()

	// Both the canonical name and an alias are present. Renaming would
	// clobber one of the two values, so the alias stays an unknown field.
	repaired, _, remaining := repairCall(t, def, map[string]any{
		"path":     "real.go",
		"filename": "other.go",
		"content":  "x",
	})
	assert.Equal(t, "real.go", repaired.Parameters["path"])
	require.Len(t, remaining, 1)
	assert.Equal(t, UnknownField, remaining[0].Kind)
	assert.Equal(t, "filename", remaining[0].Field)
}

func TestRepairCoercion(t *testing.T) {
	def := &Definition{
		Name: "limits",
		Schema: Schema{Fields: []Field{
			{Name: "count", Type: TypeInteger, Required: true},
			{Name: "ratio", Type: TypeNumber},
			{Name: "force", Type: TypeBoolean},
			{Name: "tags", Type: TypeArray},
			{Name: "label", Type: TypeString},
		}},
	}

	t.Run("lossless coercions apply", func(t *testing.T) {
		repaired, actions, remaining := repairCall(t, def, map[string]any{
			"count": "42",
			"ratio": "0.5",
			"force": "true",
			"tags":  "solo",
		})
		assert.Empty(t, remaining)
		assert.Len(t, actions, 4)
		assert.Equal(t, float64(42), repaired.Parameters["count"])
		assert.Equal(t, 0.5, repaired.Parameters["ratio"])
		assert.Equal(t, true, repaired.Parameters["force"])
		assert.Equal(t, []any{"solo"}, repaired.Parameters["tags"])
	})

	t.Run("object not wrapped into array", func(t *testing.T) {
		_, _, remaining := repairCall(t, def, map[string]any{
			"count": 1.0,
			"tags":  map[string]any{"k": "v"},
		})
		require.Len(t, remaining, 1)
		assert.Equal(t, WrongType, remaining[0].Kind)
		assert.Equal(t, "tags", remaining[0].Field)
	})

	t.Run("float string stays wrong type for integer", func(t *testing.T) {
		_, _, remaining := repairCall(t, def, map[string]any{"count": "4.5"})
		require.Len(t, remaining, 1)
		assert.Equal(t, WrongType, remaining[0].Kind)
		assert.Equal(t, "count", remaining[0].Field)
	})

	t.Run("fractional float never truncated", func(t *testing.T) {
		_, actions, remaining := repairCall(t, def, map[string]any{"count": 4.5})
		assert.Empty(t, actions)
		require.Len(t, remaining, 1)
		assert.Equal(t, WrongType, remaining[0].Kind)
	})

	t.Run("no coercion into strings", func(t *testing.T) {
		_, _, remaining := repairCall(t, def, map[string]any{"count": 1.0, "label": 7.0})
		require.Len(t, remaining, 1)
		assert.Equal(t, "label", remaining[0].Field)
	})

	t.Run("non boolean string not coerced", func(t *testing.T) {
		_, _, remaining := repairCall(t, def, map[string]any{"count": 1.0, "force": "yes"})
		require.Len(t, remaining, 1)
		assert.Equal(t, "force", remaining[0].Field)
	})
}

func TestRepairDefaultFill(t *testing.T) {
	def := &Definition{
		Name: "file_list",
		Schema: Schema{Fields: []Field{
			{Name: "path", Type: TypeString, Required: true, Default: "."},
			{Name: "pattern", Type: TypeString, Required: true},
		}},
	}

	t.Run("default fills missing required", func(t *testing.T) {
		repaired, actions, remaining := repairCall(t, def, map[string]any{"pattern": "*.go"})
		assert.Empty(t, remaining)
		require.Len(t, actions, 1)
		assert.Equal(t, "filled_default", actions[0].Action)
		assert.Equal(t, ".", repaired.Parameters["path"])
	})

	t.Run("missing required without default stays violated", func(t *testing.T) {
		_, actions, remaining := repairCall(t, def, map[string]any{"path": "src"})
		assert.Empty(t, actions)
		require.Len(t, remaining, 1)
		assert.Equal(t, MissingRequired, remaining[0].Kind)
		assert.Equal(t, "pattern", remaining[0].Field)
	})
}

func TestRepairAliasThenCoerce(t *testing.T) {
	def := &Definition{
		Name: "head",
		Schema: Schema{Fields: []Field{
			{Name: "path", Type: TypeString, Required: true, Aliases: []string{"file"}},
			{Name: "lines", Type: TypeInteger, Required: true, Aliases: []string{"count"}},
		}},
	}

	// The renamed field's value still needs coercion; the passes compose.
	repaired, actions, remaining := repairCall(t, def, map[string]any{
		"file":  "a.go",
		"count": "10",
	})
	assert.Empty(t, remaining)
	assert.Len(t, actions, 3)
	assert.Equal(t, "a.go", repaired.Parameters["path"])
	assert.Equal(t, float64(10), repaired.Parameters["lines"])
}

func TestRepairDoesNotMutateInput(t *testing.T) {
	def := writeDef()
	params := map[string]any{"filename": "a.go", "content": "x"}
	call := Call{Name: def.Name, Parameters: params}

	Repair(call, Validate(call, def), def)

	assert.Equal(t, "a.go", params["filename"])
	_, ok := params["path"]
	assert.False(t, ok)
}

func TestRepairNoViolations(t *testing.T) {
	def := writeDef()
	call := Call{Name: def.Name, Parameters: map[string]any{"path": "a", "content": "b"}}

	repaired, actions, remaining := Repair(call, nil, def)
	assert.Empty(t, actions)
	assert.Empty(t, remaining)
	assert.Equal(t, call.Parameters, repaired.Parameters)
}

func TestResolveAliasAmbiguity(t *testing.T) {
	schema := &Schema{Fields: []Field{
		{Name: "source", Aliases: []string{"input"}},
		{Name: "sink", Aliases: []string{"input"}},
	}}

	// Both fields claim the alias, so resolution must refuse to guess.
	assert.Equal(t, "", resolveAlias("input", schema))
	assert.Equal(t, "source", resolveAlias("Source", schema))
}
