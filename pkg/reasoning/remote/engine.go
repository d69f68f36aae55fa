// Package remote implements the LLM-backed reasoning engine. It runs in hybrid
// mode: problems the local engine can answer with a verified result never leave
// the process, and a failed LLM call degrades that one solve to the local engine.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"agentic-reasoning-be/pkg/llm"
	"agentic-reasoning-be/pkg/reasoning"
	"agentic-reasoning-be/pkg/reasoning/local"

	"golang.org/x/time/rate"
)

const promptTemplate = `You are a technical assistant. For the following question, provide your response as a JSON object with this exact structure:
{
  "reasoning_steps": ["step 1 explanation", "step 2 explanation", "step 3 explanation"],
  "final_answer": "your complete answer here"
}

Make your reasoning steps clear and logical. Each step should explain your thought process.

User question: %s

Response (JSON only, no markdown):`

type Options struct {
	// RequestsPerSecond caps calls to the provider. Zero or less disables the limit.
	RequestsPerSecond float64
	// Timeout bounds a single provider call.
	Timeout time.Duration
}

type Engine struct {
	provider llm.LLMProvider
	local    *local.Engine
	limiter  *rate.Limiter
	timeout  time.Duration
	traces   *reasoning.TraceLog
	stats    *reasoning.Stats
	now      func() time.Time
}

var _ reasoning.Engine = (*Engine)(nil)

func New(provider llm.LLMProvider, base *local.Engine, opts Options) (*Engine, error) {
	if provider == nil {
		return nil, errors.New("remote engine: provider is nil")
	}
	if base == nil {
		return nil, errors.New("remote engine: local base engine is nil")
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Engine{
		provider: provider,
		local:    base,
		limiter:  limiter,
		timeout:  opts.Timeout,
		traces:   reasoning.NewTraceLog(),
		stats:    reasoning.NewStats(),
		now:      time.Now,
	}, nil
}

func (e *Engine) Name() string {
	return "remote:" + e.provider.Name()
}

func (e *Engine) Solve(ctx context.Context, problemText, problemID string) (*reasoning.Result, error) {
	if e.local.CanSolveConfidently(problemText) {
		res, err := e.local.Solve(ctx, problemText, problemID)
		if err != nil {
			return nil, err
		}
		e.traces.Append(res.Traces...)
		e.stats.Record(res)
		return res, nil
	}

	start := e.now()
	rec := e.traces.NewRecorder(problemID)
	tool := reasoning.ToolPtr(reasoning.ToolLanguageModel)
	rec.Step("", "Delegating to language model "+e.provider.Name(), tool, 1.0)

	raw, err := e.generate(ctx, problemText)
	if err != nil {
		rec.Step("", "Language model unavailable, solving locally: "+err.Error(), nil, 0.5)
		rec.Commit()

		res, localErr := e.local.Solve(ctx, problemText, problemID)
		if localErr != nil {
			return nil, fmt.Errorf("remote solve failed (%v) and local fallback failed: %w", err, localErr)
		}
		e.traces.Append(res.Traces...)
		e.stats.Record(res)
		return res, nil
	}

	answer, steps, structured := parseResponse(raw)
	confidence := 0.6
	if structured {
		confidence = 0.85
	}

	subID := problemID + "_sub_1"
	for _, step := range steps {
		rec.Step(subID, step, tool, confidence)
	}

	res := &reasoning.Result{
		ProblemID:         problemID,
		FinalAnswer:       answer,
		OverallConfidence: confidence,
		Success:           answer != "",
		Subproblems: []reasoning.Subproblem{{
			ID:          subID,
			Description: problemText,
			Answer:      answer,
			Tool:        tool,
			Confidence:  confidence,
		}},
		ReasoningSteps:     steps,
		VerificationPassed: structured,
		ExecutionTime:      e.now().Sub(start).Seconds(),
		Traces:             rec.Commit(),
	}
	e.stats.Record(res)
	return res, nil
}

func (e *Engine) generate(ctx context.Context, problemText string) (string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}
	return e.provider.Generate(ctx, fmt.Sprintf(promptTemplate, problemText),
		llm.WithTemperature(0.2),
		llm.WithJSONOutput(),
	)
}

type structuredAnswer struct {
	ReasoningSteps []string `json:"reasoning_steps"`
	FinalAnswer    *string  `json:"final_answer"`
}

// parseResponse reads the JSON answer shape, tolerating markdown fences. When
// the model ignores the format the raw text becomes the answer.
func parseResponse(raw string) (answer string, steps []string, structured bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed structuredAnswer
	if err := json.Unmarshal([]byte(cleaned), &parsed); err == nil && parsed.FinalAnswer != nil && parsed.ReasoningSteps != nil {
		return strings.TrimSpace(*parsed.FinalAnswer), parsed.ReasoningSteps, true
	}

	return strings.TrimSpace(raw), []string{
		"Received and processed user query",
		"Generated response from AI model",
		"Formatting response for display",
	}, false
}

func (e *Engine) PerformanceStats() map[string]any {
	stats := e.stats.Snapshot()
	stats["engine"] = e.Name()
	stats["total_traces"] = e.traces.Len()
	stats["hybrid"] = true
	return stats
}

func (e *Engine) Traces() []reasoning.Trace {
	return e.traces.Snapshot()
}
