// Package local implements the deterministic, always-available reasoning engine.
package local

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"agentic-reasoning-be/pkg/reasoning"
)

const EngineName = "local"

var sentenceSplitter = regexp.MustCompile(`[?;\n]+|\.\s+`)

type Engine struct {
	traces *reasoning.TraceLog
	stats  *reasoning.Stats
	now    func() time.Time
}

var _ reasoning.Engine = (*Engine)(nil)

func New() (*Engine, error) {
	return &Engine{
		traces: reasoning.NewTraceLog(),
		stats:  reasoning.NewStats(),
		now:    time.Now,
	}, nil
}

func (e *Engine) Name() string {
	return EngineName
}

func (e *Engine) Solve(ctx context.Context, problemText, problemID string) (*reasoning.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(problemText)
	if text == "" {
		return nil, fmt.Errorf("problem %s: empty problem text", problemID)
	}

	start := e.now()
	rec := e.traces.NewRecorder(problemID)
	rec.Step("", "Received problem: "+truncate(text, 120), nil, 1.0)

	parts := decompose(text)
	rec.Step("", fmt.Sprintf("Decomposed into %d subproblem(s)", len(parts)), nil, 1.0)

	result := &reasoning.Result{
		ProblemID:          problemID,
		Success:            true,
		VerificationPassed: true,
		Subproblems:        make([]reasoning.Subproblem, 0, len(parts)),
		ReasoningSteps:     make([]string, 0, len(parts)*2),
	}

	answers := make([]string, 0, len(parts))
	var confidenceSum float64
	for i, part := range parts {
		subID := fmt.Sprintf("%s_sub_%d", problemID, i+1)
		outcome := solvePart(part)
		tool := reasoning.ToolPtr(outcome.tool)

		for _, step := range outcome.steps {
			rec.Step(subID, step, tool, outcome.confidence)
		}
		result.ReasoningSteps = append(result.ReasoningSteps, outcome.steps...)
		result.Subproblems = append(result.Subproblems, reasoning.Subproblem{
			ID:          subID,
			Description: part,
			Answer:      outcome.answer,
			Tool:        tool,
			Confidence:  outcome.confidence,
		})

		confidenceSum += outcome.confidence
		if outcome.answer == "" {
			result.Success = false
		} else {
			answers = append(answers, outcome.answer)
		}
		if !outcome.verified {
			result.VerificationPassed = false
		}
	}

	result.OverallConfidence = confidenceSum / float64(len(parts))
	switch {
	case len(answers) == 0:
		result.FinalAnswer = "Unable to determine an answer"
	case len(answers) == 1:
		result.FinalAnswer = answers[0]
	default:
		result.FinalAnswer = strings.Join(answers, "; ")
	}

	verdict := "Verification passed"
	if !result.VerificationPassed {
		verdict = "Verification failed"
	}
	rec.Step("", verdict, nil, result.OverallConfidence)

	result.ExecutionTime = e.now().Sub(start).Seconds()
	result.Traces = rec.Commit()
	e.stats.Record(result)
	return result, nil
}

// CanSolveConfidently reports whether the local tools alone produce a verified
// answer for text. The hybrid remote engine uses it to keep arithmetic local.
func (e *Engine) CanSolveConfidently(problemText string) bool {
	for _, part := range decompose(strings.TrimSpace(problemText)) {
		outcome := solvePart(part)
		if outcome.answer == "" || !outcome.verified || outcome.confidence < 0.9 {
			return false
		}
	}
	return true
}

func (e *Engine) PerformanceStats() map[string]any {
	stats := e.stats.Snapshot()
	stats["engine"] = EngineName
	stats["total_traces"] = e.traces.Len()
	return stats
}

func (e *Engine) Traces() []reasoning.Trace {
	return e.traces.Snapshot()
}

func decompose(text string) []string {
	var parts []string
	for _, p := range sentenceSplitter.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return []string{text}
	}
	return parts
}

func solvePart(part string) *toolOutcome {
	if outcome, ok := geometry(part); ok {
		return outcome
	}
	if outcome, ok := calculator(part); ok {
		return outcome
	}
	return textParser(part)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
