package tool

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// defaultHandlerTimeout bounds a handler invocation when the definition
// does not declare its own timeout.
const defaultHandlerTimeout = 60 * time.Second

// Router resolves tool names across two coexisting registries and executes
// calls against them. The enhanced registry shadows the legacy one: a name
// present in both resolves to the enhanced definition.
type Router struct {
	enhanced *Registry
	legacy   *Registry
	logger   *slog.Logger

	// defaultTimeout applies to handlers without a per-definition timeout.
	defaultTimeout time.Duration
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithLogger sets the router's logger.
func WithLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithDefaultTimeout sets the fallback handler timeout.
func WithDefaultTimeout(d time.Duration) RouterOption {
	return func(r *Router) {
		r.defaultTimeout = d
	}
}

// NewRouter creates a router over the given registries. Either registry may
// be nil, in which case an empty one is used.
func NewRouter(enhanced, legacy *Registry, opts ...RouterOption) *Router {
	if enhanced == nil {
		enhanced = NewRegistry()
	}
	if legacy == nil {
		legacy = NewRegistry()
	}
	r := &Router{
		enhanced:       enhanced,
		legacy:         legacy,
		logger:         slog.Default(),
		defaultTimeout: defaultHandlerTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the effective definition for a tool name, enhanced
// registry first, then legacy.
func (r *Router) Resolve(name string) (*Definition, bool) {
	if def, ok := r.enhanced.Get(name); ok {
		return def, true
	}
	return r.legacy.Get(name)
}

// Names returns the effective tool name set in sorted order, deduplicating
// names that appear in both registries.
func (r *Router) Names() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, name := range r.enhanced.Names() {
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for _, name := range r.legacy.Names() {
		if _, ok := seen[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Definitions returns the effective definitions in Names() order.
func (r *Router) Definitions() []*Definition {
	var defs []*Definition
	for _, name := range r.Names() {
		if def, ok := r.Resolve(name); ok {
			defs = append(defs, def)
		}
	}
	return defs
}

// Len returns the number of effective tool names.
func (r *Router) Len() int {
	return len(r.Names())
}

// Execute resolves, validates, repairs if needed, and invokes the handler
// for one call. All failure modes are captured in the returned Result; a
// handler error, panic, or timeout never propagates to the caller.
func (r *Router) Execute(ctx context.Context, call Call) Result {
	def, ok := r.Resolve(call.Name)
	if !ok {
		return failedResult(call, ErrKindNotFound,
			fmt.Sprintf("no tool named %q is registered", call.Name), nil)
	}

	violations := Validate(call, def)

	// Heuristic extractions always pass through repair: the pipeline built
	// them from loose text and they carry lower trust even when the shape
	// happens to validate.
	if len(violations) > 0 || call.ExtractionMethod == "heuristic" {
		repaired, actions, remaining := Repair(call, violations, def)
		if len(actions) > 0 {
			r.logger.Debug("Repaired tool call",
				"tool", call.Name,
				"call_id", call.ID,
				"actions", len(actions))
		}
		if len(remaining) > 0 {
			return failedResult(call, ErrKindValidation,
				fmt.Sprintf("parameters failed schema validation for %q after repair", call.Name),
				remaining)
		}
		call = repaired
	}

	return r.invoke(ctx, def, call)
}

// invoke runs the handler with a per-call timeout and panic recovery.
func (r *Router) invoke(ctx context.Context, def *Definition, call Call) (result Result) {
	timeout := def.Timeout
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Tool handler panicked",
				"tool", def.Name,
				"call_id", call.ID,
				"panic", rec)
			result = failedResult(call, ErrKindHandler,
				fmt.Sprintf("handler for %q panicked: %v", def.Name, rec), nil)
		}
	}()

	output, err := def.Handler(ctx, call.Parameters)
	if err != nil {
		kind := ErrKindHandler
		if ctx.Err() == context.DeadlineExceeded {
			kind = ErrKindTimeout
		}
		return failedResult(call, kind, err.Error(), nil)
	}
	if ctx.Err() == context.DeadlineExceeded {
		return failedResult(call, ErrKindTimeout,
			fmt.Sprintf("handler for %q exceeded %s timeout", def.Name, timeout), nil)
	}

	return Result{
		CallID:   call.ID,
		ToolName: def.Name,
		Success:  true,
		Output:   output,
	}
}
