package reasoning

import (
	"fmt"
	"sync"
	"time"
)

// TraceLog is an append-only, concurrency-safe record of reasoning steps.
type TraceLog struct {
	mu     sync.RWMutex
	traces []Trace
	now    func() time.Time
}

func NewTraceLog() *TraceLog {
	return &TraceLog{now: time.Now}
}

// Recorder collects the steps of one solve call and flushes them into the log.
type Recorder struct {
	log       *TraceLog
	problemID string
	steps     []Trace
}

func (l *TraceLog) NewRecorder(problemID string) *Recorder {
	return &Recorder{log: l, problemID: problemID}
}

func (r *Recorder) Step(subproblemID, description string, tool *Tool, confidence float64) {
	r.steps = append(r.steps, Trace{
		StepID:       fmt.Sprintf("%s_step_%d", r.problemID, len(r.steps)+1),
		ProblemID:    r.problemID,
		Description:  description,
		SubproblemID: subproblemID,
		ToolUsed:     tool,
		Confidence:   confidence,
		Timestamp:    r.log.now(),
	})
}

// Commit appends the collected steps as one contiguous block and returns them.
func (r *Recorder) Commit() []Trace {
	r.log.mu.Lock()
	r.log.traces = append(r.log.traces, r.steps...)
	r.log.mu.Unlock()

	out := make([]Trace, len(r.steps))
	copy(out, r.steps)
	return out
}

// Append adds traces recorded elsewhere, for engines that delegate a solve.
func (l *TraceLog) Append(traces ...Trace) {
	l.mu.Lock()
	l.traces = append(l.traces, traces...)
	l.mu.Unlock()
}

func (l *TraceLog) Snapshot() []Trace {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Trace, len(l.traces))
	copy(out, l.traces)
	return out
}

func (l *TraceLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.traces)
}
