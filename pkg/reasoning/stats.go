package reasoning

import "sync"

// Stats accumulates the performance counters reported by PerformanceStats.
type Stats struct {
	mu              sync.Mutex
	totalProblems   int
	successful      int
	totalTime       float64
	totalConfidence float64
	toolUsage       map[Tool]int
}

func NewStats() *Stats {
	return &Stats{toolUsage: make(map[Tool]int)}
}

func (s *Stats) Record(result *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalProblems++
	if result.Success {
		s.successful++
	}
	s.totalTime += result.ExecutionTime
	s.totalConfidence += result.OverallConfidence
	for _, sp := range result.Subproblems {
		if sp.Tool != nil {
			s.toolUsage[*sp.Tool]++
		}
	}
}

func (s *Stats) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	usage := make(map[string]int, len(s.toolUsage))
	for tool, n := range s.toolUsage {
		usage[string(tool)] = n
	}

	out := map[string]any{
		"total_problems":         s.totalProblems,
		"successful_problems":    s.successful,
		"success_rate":           0.0,
		"average_execution_time": 0.0,
		"average_confidence":     0.0,
		"tool_usage":             usage,
	}
	if s.totalProblems > 0 {
		n := float64(s.totalProblems)
		out["success_rate"] = float64(s.successful) / n
		out["average_execution_time"] = s.totalTime / n
		out["average_confidence"] = s.totalConfidence / n
	}
	return out
}
