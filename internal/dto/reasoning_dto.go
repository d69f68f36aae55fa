package dto

import "time"

type SendMessageRequest struct {
	Message   string `json:"message"`
	SessionId string `json:"session_id" validate:"omitempty,max=128"`
}

type ResultSummaryDTO struct {
	ProblemId          string   `json:"problem_id"`
	FinalAnswer        string   `json:"final_answer"`
	Confidence         float64  `json:"confidence"`
	ExecutionTime      float64  `json:"execution_time"`
	Success            bool     `json:"success"`
	SubproblemsCount   int      `json:"subproblems_count"`
	ReasoningSteps     []string `json:"reasoning_steps"`
	VerificationPassed bool     `json:"verification_passed"`
	Error              string   `json:"error,omitempty"`
}

type TraceDTO struct {
	StepId       string    `json:"step_id"`
	Description  string    `json:"description"`
	SubproblemId string    `json:"subproblem_id"`
	ToolUsed     *string   `json:"tool_used"`
	Confidence   float64   `json:"confidence"`
	Timestamp    time.Time `json:"timestamp"`
}

type SendMessageResponse struct {
	SessionId        string           `json:"session_id"`
	BackendMode      string           `json:"backend_mode"`
	Result           ResultSummaryDTO `json:"result"`
	ReasoningTraces  []TraceDTO       `json:"reasoning_traces"`
	PerformanceStats map[string]any   `json:"performance_stats"`
}

type CapabilitiesResponse struct {
	ProblemTypes []string `json:"problem_types"`
	Tools        []string `json:"tools"`
	Features     []string `json:"features"`
}

type StatusResponse struct {
	ActiveMode     string `json:"active_mode"`
	DesiredMode    string `json:"desired_mode"`
	Engine         string `json:"engine"`
	Constructions  int    `json:"constructions"`
	ActiveSessions int    `json:"active_sessions"`
}
