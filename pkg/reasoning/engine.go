package reasoning

import (
	"context"
	"time"
)

// Tool identifies which reasoning tool produced a step.
type Tool string

const (
	ToolCalculator         Tool = "calculator"
	ToolGeometryCalculator Tool = "geometric_calculator"
	ToolTextParser         Tool = "text_parser"
	ToolLanguageModel      Tool = "language_model"
)

// Engine is the capability set the orchestration layer needs from a reasoning backend.
// Implementations must be safe for concurrent use.
type Engine interface {
	Name() string
	Solve(ctx context.Context, problemText, problemID string) (*Result, error)
	PerformanceStats() map[string]any
	// Traces returns a snapshot of the engine-wide, append-only trace log.
	Traces() []Trace
}

// Subproblem is one decomposed unit of a problem.
type Subproblem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Answer      string  `json:"answer,omitempty"`
	Tool        *Tool   `json:"tool,omitempty"`
	Confidence  float64 `json:"confidence"`
}

type Result struct {
	ProblemID          string       `json:"problem_id"`
	FinalAnswer        string       `json:"final_answer"`
	OverallConfidence  float64      `json:"overall_confidence"`
	ExecutionTime      float64      `json:"execution_time"`
	Success            bool         `json:"success"`
	Subproblems        []Subproblem `json:"subproblems"`
	ReasoningSteps     []string     `json:"reasoning_steps"`
	VerificationPassed bool         `json:"verification_passed"`
	Traces             []Trace      `json:"-"`
	Error              string       `json:"error,omitempty"`
}

type Trace struct {
	StepID       string    `json:"step_id"`
	ProblemID    string    `json:"problem_id"`
	Description  string    `json:"description"`
	SubproblemID string    `json:"subproblem_id"`
	ToolUsed     *Tool     `json:"tool_used"`
	Confidence   float64   `json:"confidence"`
	Timestamp    time.Time `json:"timestamp"`
}

// FailedResult builds the structured result recorded when a solve call errors.
func FailedResult(problemID string, err error) *Result {
	return &Result{
		ProblemID:      problemID,
		Success:        false,
		Subproblems:    []Subproblem{},
		ReasoningSteps: []string{},
		Error:          err.Error(),
	}
}

func ToolPtr(t Tool) *Tool {
	return &t
}
