// Package coordinator drives an LLM through an iterative tool-use loop:
// assemble a prompt, request a completion, extract tool calls from the
// reply, execute them through the router, and decide whether to continue,
// retry with feedback, or terminate.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/qhy991/vagent/extract"
	"github.com/qhy991/vagent/llm"
	"github.com/qhy991/vagent/tool"
)

// Default loop bounds.
const (
	DefaultMaxIterations   = 10
	DefaultNoToolCallLimit = 3
)

// CompletionPredicate decides whether the task is done, given every tool
// result accumulated so far in execution order.
type CompletionPredicate func(results []tool.Result) bool

// MessageHook observes each message as it is appended to the session
// history, e.g. for external logging. Called synchronously from the loop.
type MessageHook func(msg TaskMessage)

// Task describes one delegated unit of work.
type Task struct {
	// Description is the natural-language task statement.
	Description string

	// Complete reports task completion over the accumulated results.
	// A nil predicate never succeeds, so the session runs until the
	// iteration budget is consumed.
	Complete CompletionPredicate
}

// Coordinator runs coordination sessions. One Coordinator may serve many
// concurrent sessions; it holds no per-session state.
type Coordinator struct {
	completer llm.Completer
	router    *tool.Router
	pipeline  *extract.Pipeline
	logger    *slog.Logger
	hook      MessageHook

	maxIterations   int
	noToolCallLimit int
	temperature     *float64
	maxTokens       int
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithMaxIterations bounds the number of loop iterations per session.
func WithMaxIterations(n int) Option {
	return func(c *Coordinator) {
		c.maxIterations = n
	}
}

// WithNoToolCallLimit sets how many consecutive replies without a parseable
// tool call are tolerated before the session fails.
func WithNoToolCallLimit(n int) Option {
	return func(c *Coordinator) {
		c.noToolCallLimit = n
	}
}

// WithCoordinatorLogger sets the logger.
func WithCoordinatorLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithMessageHook sets the streaming hook invoked once per appended message.
func WithMessageHook(hook MessageHook) Option {
	return func(c *Coordinator) {
		c.hook = hook
	}
}

// WithTemperature sets the sampling temperature for completions.
func WithTemperature(t float64) Option {
	return func(c *Coordinator) {
		c.temperature = &t
	}
}

// WithMaxTokens caps completion length.
func WithMaxTokens(n int) Option {
	return func(c *Coordinator) {
		c.maxTokens = n
	}
}

// New creates a coordinator over a completion service and a tool router.
// A router with zero tools is a configuration error: a session that cannot
// execute anything must not start.
func New(completer llm.Completer, router *tool.Router, opts ...Option) (*Coordinator, error) {
	if completer == nil {
		return nil, fmt.Errorf("completer is required")
	}
	if router == nil || router.Len() == 0 {
		return nil, fmt.Errorf("router must have at least one registered tool")
	}

	c := &Coordinator{
		completer:       completer,
		router:          router,
		logger:          slog.Default(),
		maxIterations:   DefaultMaxIterations,
		noToolCallLimit: DefaultNoToolCallLimit,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.pipeline == nil {
		c.pipeline = extract.NewPipeline(extract.WithKnownNames(router.Names))
	}
	return c, nil
}

// Run executes one coordination session to termination. Terminal states are
// reported in the Outcome; the returned error is reserved for invalid task
// input, never for in-loop faults.
func (c *Coordinator) Run(ctx context.Context, task Task) (*Outcome, error) {
	if task.Description == "" {
		return nil, fmt.Errorf("task description is required")
	}

	sess := newSession(c.maxIterations)
	c.append(sess, newMessage(RoleUser, task.Description, ""))

	c.logger.Info("Session started",
		"session_id", sess.id,
		"max_iterations", c.maxIterations,
		"tools", c.router.Len())

	var results []tool.Result
	noToolCall := 0

	for sess.iteration < sess.maxIterations {
		// Cancellation is honored between iterations.
		if err := ctx.Err(); err != nil {
			return c.finish(sess, StatusFailed, ReasonCancelled, err.Error()), nil
		}

		sess.iteration++
		iterationsTotal.Inc()

		reply, err := c.complete(ctx, sess, task)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return c.finish(sess, StatusFailed, ReasonCancelled, err.Error()), nil
			}
			// Service errors are retryable, bounded by the same
			// threshold as empty extractions.
			noToolCall++
			c.logger.Warn("LLM completion failed",
				"session_id", sess.id,
				"iteration", sess.iteration,
				"error", err)
			if noToolCall >= c.noToolCallLimit {
				return c.finish(sess, StatusFailed, ReasonNoToolCall,
					fmt.Sprintf("no usable reply across %d attempts, last service error: %v", noToolCall, err)), nil
			}
			c.append(sess, newMessage(RoleSystem, correctiveMessage(), sess.lastID()))
			continue
		}

		parentID := sess.lastID()
		assistant := c.append(sess, newMessage(RoleAssistant, reply, parentID))

		calls := c.pipeline.Extract(reply)
		if len(calls) == 0 {
			noToolCall++
			if noToolCall >= c.noToolCallLimit {
				return c.finish(sess, StatusFailed, ReasonNoToolCall,
					fmt.Sprintf("no parseable tool call found across %d attempts", noToolCall)), nil
			}
			c.append(sess, newMessage(RoleSystem, correctiveMessage(), assistant.ID))
			continue
		}
		noToolCall = 0
		extractionsTotal.WithLabelValues(calls[0].ExtractionMethod).Inc()

		// Calls execute strictly in extraction order; one failure does
		// not abort the rest of the batch.
		for _, call := range calls {
			result := c.router.Execute(ctx, call)
			observeToolResult(call.Name, result.Success, errKind(result))
			c.append(sess, newResultMessage(result, assistant.ID))
			results = append(results, result)
		}

		if task.Complete != nil && task.Complete(results) {
			return c.finish(sess, StatusSucceeded, ReasonCompleted, ""), nil
		}
	}

	return c.finish(sess, StatusExhausted, ReasonExhausted,
		fmt.Sprintf("iteration budget of %d consumed without completion", sess.maxIterations)), nil
}

// complete assembles the prompt from the history and requests a completion.
func (c *Coordinator) complete(ctx context.Context, sess *session, task Task) (string, error) {
	messages := make([]llm.Message, 0, len(sess.history)+1)
	messages = append(messages, llm.Message{
		Role:    "system",
		Content: systemPrompt(c.router, task.Description),
	})
	for _, msg := range sess.history {
		messages = append(messages, toLLMMessage(msg))
	}

	start := time.Now()
	resp, err := c.completer.Complete(ctx, llm.Request{
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	llmRequestSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// toLLMMessage maps a task message onto the three chat roles providers
// accept. Tool results travel back as user turns.
func toLLMMessage(msg TaskMessage) llm.Message {
	switch msg.Role {
	case RoleToolResult:
		return llm.Message{Role: "user", Content: formatResultContent(*msg.ToolResult)}
	case RoleSystem:
		return llm.Message{Role: "system", Content: msg.Content}
	case RoleAssistant:
		return llm.Message{Role: "assistant", Content: msg.Content}
	default:
		return llm.Message{Role: "user", Content: msg.Content}
	}
}

// append adds a message to the session history and notifies the hook.
func (c *Coordinator) append(sess *session, msg TaskMessage) TaskMessage {
	sess.append(msg)
	if c.hook != nil {
		c.hook(msg)
	}
	return msg
}

// finish transitions the session to a terminal status and builds the outcome.
func (c *Coordinator) finish(sess *session, status Status, reason, lastErr string) *Outcome {
	sess.status = status
	sessionsTotal.WithLabelValues(string(status)).Inc()

	c.logger.Info("Session finished",
		"session_id", sess.id,
		"status", status,
		"reason", reason,
		"iterations", sess.iteration)

	return &Outcome{
		SessionID: sess.id,
		Status:    status,
		History:   sess.history,
		Diagnostic: Diagnostic{
			Iterations: sess.iteration,
			Reason:     reason,
			LastError:  lastErr,
		},
	}
}

// errKind extracts the error kind label for metrics.
func errKind(result tool.Result) string {
	if result.Error == nil {
		return ""
	}
	return result.Error.Kind
}
