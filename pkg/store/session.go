package store

import (
	"sync"
	"time"

	"agentic-reasoning-be/pkg/reasoning"
)

// TimedResult is a result stamped with the orchestration clock at append time.
type TimedResult struct {
	Timestamp time.Time         `json:"timestamp"`
	Result    *reasoning.Result `json:"result"`
}

type TimedTrace struct {
	Timestamp time.Time       `json:"timestamp"`
	Trace     reasoning.Trace `json:"trace"`
}

// ReasoningSession is the append-only record of one conversation.
// Entries are never reordered or mutated once appended.
type ReasoningSession struct {
	ID        string
	StartTime time.Time

	mu          sync.RWMutex
	results     []TimedResult
	traces      []TimedTrace
	nextProblem int
}

// SessionSummary is the wire view of a session.
type SessionSummary struct {
	SessionID     string        `json:"session_id"`
	StartTime     time.Time     `json:"start_time"`
	Duration      float64       `json:"duration"`
	TotalProblems int           `json:"total_problems"`
	Results       []TimedResult `json:"results"`
	Traces        []TimedTrace  `json:"traces"`
}

func NewReasoningSession(id string, now time.Time) *ReasoningSession {
	return &ReasoningSession{ID: id, StartTime: now}
}

// NextProblemID reserves the ordinal for the next message solved in this session.
func (s *ReasoningSession) NextProblemID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextProblem++
	return s.nextProblem
}

func (s *ReasoningSession) AddResult(at time.Time, result *reasoning.Result) {
	s.mu.Lock()
	s.results = append(s.results, TimedResult{Timestamp: at, Result: result})
	s.mu.Unlock()
}

func (s *ReasoningSession) AddTraces(at time.Time, traces ...reasoning.Trace) {
	s.mu.Lock()
	for _, tr := range traces {
		s.traces = append(s.traces, TimedTrace{Timestamp: at, Trace: tr})
	}
	s.mu.Unlock()
}

// RecentTraces returns at most n of the latest traces, oldest first.
func (s *ReasoningSession) RecentTraces(n int) []TimedTrace {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if len(s.traces) > n {
		start = len(s.traces) - n
	}
	out := make([]TimedTrace, len(s.traces)-start)
	copy(out, s.traces[start:])
	return out
}

func (s *ReasoningSession) ResultCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

func (s *ReasoningSession) Summary(now time.Time) *SessionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]TimedResult, len(s.results))
	copy(results, s.results)
	traces := make([]TimedTrace, len(s.traces))
	copy(traces, s.traces)

	return &SessionSummary{
		SessionID:     s.ID,
		StartTime:     s.StartTime,
		Duration:      now.Sub(s.StartTime).Seconds(),
		TotalProblems: len(results),
		Results:       results,
		Traces:        traces,
	}
}
