package tool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoDef(name string) *Definition {
	return &Definition{
		Name:        name,
		Description: "Echo the message back",
		Schema: Schema{Fields: []Field{
			{Name: "message", Type: TypeString, Required: true, Aliases: []string{"msg", "text"}},
		}},
		Handler: func(_ context.Context, params map[string]any) (any, error) {
			return params["message"], nil
		},
	}
}

func TestRouterResolvePrecedence(t *testing.T) {
	enhanced := NewRegistry()
	legacy := NewRegistry()

	legacyDef := echoDef("echo")
	legacyDef.Description = "legacy"
	enhancedDef := echoDef("echo")
	enhancedDef.Description = "enhanced"

	legacy.Register(legacyDef)
	legacy.Register(&Definition{Name: "legacy_only", Handler: legacyDef.Handler})
	enhanced.Register(enhancedDef)

	r := NewRouter(enhanced, legacy)

	def, ok := r.Resolve("echo")
	require.True(t, ok)
	assert.Equal(t, "enhanced", def.Description)

	def, ok = r.Resolve("legacy_only")
	require.True(t, ok)
	assert.Equal(t, "legacy_only", def.Name)

	_, ok = r.Resolve("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"echo", "legacy_only"}, r.Names())
	assert.Equal(t, 2, r.Len())
}

func TestRegistryLastWriteWins(t *testing.T) {
	reg := NewRegistry()

	first := echoDef("echo")
	first.Description = "first"
	second := echoDef("echo")
	second.Description = "second"

	reg.Register(first)
	reg.Register(second)

	def, ok := reg.Get("echo")
	require.True(t, ok)
	assert.Equal(t, "second", def.Description)
	assert.Equal(t, 1, reg.Len())
}

func TestRouterExecute(t *testing.T) {
	reg := NewRegistry()
	reg.Register(echoDef("echo"))
	r := NewRouter(nil, reg)

	t.Run("valid call succeeds", func(t *testing.T) {
		result := r.Execute(context.Background(), Call{
			ID: "c1", Name: "echo",
			Parameters: map[string]any{"message": "hi"},
		})
		assert.True(t, result.Success)
		assert.Equal(t, "c1", result.CallID)
		assert.Equal(t, "echo", result.ToolName)
		assert.Equal(t, "hi", result.Output)
	})

	t.Run("unknown tool", func(t *testing.T) {
		result := r.Execute(context.Background(), Call{Name: "nope"})
		require.False(t, result.Success)
		assert.Equal(t, ErrKindNotFound, result.Error.Kind)
	})

	t.Run("repairable call is repaired and executed", func(t *testing.T) {
		result := r.Execute(context.Background(), Call{
			Name:       "echo",
			Parameters: map[string]any{"msg": "aliased"},
		})
		require.True(t, result.Success)
		assert.Equal(t, "aliased", result.Output)
	})

	t.Run("unrepairable call fails validation with violations", func(t *testing.T) {
		result := r.Execute(context.Background(), Call{
			Name:       "echo",
			Parameters: map[string]any{"unrelated": 1.0},
		})
		require.False(t, result.Success)
		assert.Equal(t, ErrKindValidation, result.Error.Kind)

		violations, ok := result.Error.Detail.([]Violation)
		require.True(t, ok)
		assert.NotEmpty(t, violations)
	})

	t.Run("heuristic extraction goes through repair", func(t *testing.T) {
		// Shape validates as-is, but the heuristic tag still routes the
		// call through repair before execution.
		result := r.Execute(context.Background(), Call{
			Name:             "echo",
			Parameters:       map[string]any{"message": "loose"},
			ExtractionMethod: "heuristic",
		})
		require.True(t, result.Success)
		assert.Equal(t, "loose", result.Output)
	})
}

func TestRouterExecuteHandlerFailures(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&Definition{
		Name:   "boom",
		Schema: Schema{},
		Handler: func(_ context.Context, _ map[string]any) (any, error) {
			return nil, errors.New("disk on fire")
		},
	})
	reg.Register(&Definition{
		Name:   "panics",
		Schema: Schema{},
		Handler: func(_ context.Context, _ map[string]any) (any, error) {
			panic("unexpected nil")
		},
	})
	reg.Register(&Definition{
		Name:    "slow",
		Schema:  Schema{},
		Timeout: 20 * time.Millisecond,
		Handler: func(ctx context.Context, _ map[string]any) (any, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return "done", nil
			}
		},
	})
	r := NewRouter(nil, reg)

	t.Run("handler error", func(t *testing.T) {
		result := r.Execute(context.Background(), Call{Name: "boom"})
		require.False(t, result.Success)
		assert.Equal(t, ErrKindHandler, result.Error.Kind)
		assert.Contains(t, result.Error.Message, "disk on fire")
	})

	t.Run("handler panic is captured", func(t *testing.T) {
		result := r.Execute(context.Background(), Call{Name: "panics"})
		require.False(t, result.Success)
		assert.Equal(t, ErrKindHandler, result.Error.Kind)
		assert.Contains(t, result.Error.Message, "unexpected nil")
	})

	t.Run("per-definition timeout", func(t *testing.T) {
		result := r.Execute(context.Background(), Call{Name: "slow"})
		require.False(t, result.Success)
		assert.Equal(t, ErrKindTimeout, result.Error.Kind)
	})
}

func TestFormatUsage(t *testing.T) {
	def := &Definition{
		Name:        "file_read",
		Description: "Read the contents of a file",
		Schema: Schema{Fields: []Field{
			{Name: "path", Type: TypeString, Required: true},
			{Name: "max_bytes", Type: TypeInteger},
		}},
	}

	usage := FormatUsage(def)
	assert.Equal(t, "file_read(path: string, max_bytes: integer?) - Read the contents of a file", usage)
}

func TestFormatViolations(t *testing.T) {
	assert.Empty(t, FormatViolations("echo", nil))

	out := FormatViolations("echo", []Violation{
		{Field: "message", Kind: MissingRequired, Message: `required field "message" is missing`},
	})
	assert.Contains(t, out, `"echo"`)
	assert.Contains(t, out, "message")
	assert.Contains(t, out, "call the tool again")
}
