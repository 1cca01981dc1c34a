// Package extract turns free-form LLM reply text into candidate tool calls.
// It applies an ordered sequence of strategies, stopping at the first one
// that yields at least one syntactically parseable call, and tags every
// call with the strategy that produced it.
package extract

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/qhy991/vagent/tool"
)

// Extraction method tags recorded on produced calls.
const (
	MethodDirect    = "direct"
	MethodFenced    = "fenced"
	MethodScan      = "scan"
	MethodHeuristic = "heuristic"
)

// Strategy is one algorithm for recovering tool calls from text. A strategy
// returns nil when it finds nothing; the pipeline then falls through to the
// next one.
type Strategy struct {
	Name string
	Run  func(p *Pipeline, text string) []tool.Call
}

// Pipeline extracts tool calls from raw LLM output.
type Pipeline struct {
	strategies []Strategy
	logger     *slog.Logger

	// knownNames supplies the registry's tool names for the heuristic
	// strategy. Nil disables heuristic extraction.
	knownNames func() []string
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithKnownNames supplies the tool names the heuristic strategy may match.
func WithKnownNames(names func() []string) PipelineOption {
	return func(p *Pipeline) {
		p.knownNames = names
	}
}

// WithPipelineLogger sets the pipeline's logger.
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates a pipeline with the standard strategy order:
// direct JSON, fenced code blocks, balanced-brace scan, keyword heuristic.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		strategies: []Strategy{
			{Name: MethodDirect, Run: (*Pipeline).extractDirect},
			{Name: MethodFenced, Run: (*Pipeline).extractFenced},
			{Name: MethodScan, Run: (*Pipeline).extractScan},
			{Name: MethodHeuristic, Run: (*Pipeline).extractHeuristic},
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Extract runs the strategies in order over one reply and returns the calls
// from the first strategy that produced any. Empty text yields an empty
// slice, not an error.
func (p *Pipeline) Extract(raw string) []tool.Call {
	if raw == "" {
		return nil
	}

	for _, s := range p.strategies {
		calls := s.Run(p, raw)
		if len(calls) == 0 {
			continue
		}
		for i := range calls {
			calls[i].ExtractionMethod = s.Name
			if calls[i].ID == "" {
				calls[i].ID = uuid.New().String()
			}
		}
		p.logger.Debug("Extracted tool calls",
			"strategy", s.Name,
			"count", len(calls))
		return calls
	}

	return nil
}
