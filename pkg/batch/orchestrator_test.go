package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"agentic-reasoning-be/internal/pkg/logger"
	"agentic-reasoning-be/pkg/reasoning"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEngine answers every problem with its text reversed and counts calls.
type countingEngine struct {
	calls atomic.Int32
	fail  string
	panic string
}

func (e *countingEngine) Name() string { return "counting" }

func (e *countingEngine) Solve(_ context.Context, text, id string) (*reasoning.Result, error) {
	e.calls.Add(1)
	switch text {
	case e.fail:
		return nil, errors.New("engine exploded")
	case e.panic:
		panic("unexpected state")
	}
	return &reasoning.Result{
		ProblemID:          id,
		FinalAnswer:        "answer:" + text,
		OverallConfidence:  0.9,
		Success:            true,
		VerificationPassed: true,
		ReasoningSteps:     []string{"looked at it"},
	}, nil
}

func (e *countingEngine) PerformanceStats() map[string]any { return map[string]any{} }
func (e *countingEngine) Traces() []reasoning.Trace        { return nil }

type pipelineFunc func(ctx context.Context, req ProcessRequest) (*ProcessReport, error)

func (f pipelineFunc) Process(ctx context.Context, req ProcessRequest) (*ProcessReport, error) {
	return f(ctx, req)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr error
		schema  bool
	}{
		{"id and problem_statement", "id,problem_statement\n1,2+2\n", nil, false},
		{"problem only, odd casing", " Problem \n2+2\n", nil, false},
		{"header only", "id,problem_statement\n", ErrEmptyInput, false},
		{"empty file", "", ErrEmptyInput, false},
		{"missing problem column", "id,question\n1,2+2\n", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ReadCSV(strings.NewReader(tt.csv))
			require.NoError(t, err)

			err = Validate(table)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.schema:
				var schemaErr *SchemaError
				require.ErrorAs(t, err, &schemaErr)
				assert.ElementsMatch(t, []string{"problem", "problem_statement"}, schemaErr.Missing)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunSchemaErrorMakesNoSolveCalls(t *testing.T) {
	engine := &countingEngine{}
	orch := NewOrchestrator(NewDataPipeline(engine, 2, logger.NewNopLogger()), logger.NewNopLogger(), 5)

	input := writeFile(t, "in.csv", "id,question\n1,What is 2+2\n")
	_, err := orch.Run(context.Background(), input, filepath.Join(t.TempDir(), "out.csv"), 5)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Zero(t, engine.calls.Load())
}

func TestRunPipelineFailureIsStructured(t *testing.T) {
	tests := []struct {
		name     string
		pipeline Pipeline
	}{
		{"error", pipelineFunc(func(context.Context, ProcessRequest) (*ProcessReport, error) {
			return nil, errors.New("disk full")
		})},
		{"panic", pipelineFunc(func(context.Context, ProcessRequest) (*ProcessReport, error) {
			panic("nil map")
		})},
		{"nil report", pipelineFunc(func(context.Context, ProcessRequest) (*ProcessReport, error) {
			return nil, nil
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orch := NewOrchestrator(tt.pipeline, logger.NewNopLogger(), 5)
			input := writeFile(t, "in.csv", "id,problem_statement\n1,2+2\n2,3+3\n")

			res, err := orch.Run(context.Background(), input, filepath.Join(t.TempDir(), "out.csv"), 5)
			require.NoError(t, err)
			assert.Equal(t, StatusFailed, res.Status)
			assert.Zero(t, res.ProducedRows)
			assert.NotEmpty(t, res.Error)
			assert.Equal(t, 2, res.TotalInputRows)
		})
	}
}

func TestRunEndToEnd(t *testing.T) {
	engine := &countingEngine{}
	orch := NewOrchestrator(NewDataPipeline(engine, 2, logger.NewNopLogger()), logger.NewNopLogger(), 5)

	input := writeFile(t, "in.csv", "id,problem_statement\n1,What is 2+2\n2,What is 3*3\n3,What is 10-4\n")
	output := filepath.Join(t.TempDir(), "nested", "out.csv")

	res, err := orch.Run(context.Background(), input, output, 0)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, res.Status)
	assert.Equal(t, 3, res.TotalInputRows)
	assert.Equal(t, 3, res.ProducedRows)
	assert.Equal(t, 3, res.ReportedResults)
	assert.Equal(t, output, res.OutputArtifact)
	assert.Equal(t, 3, res.Statistics["total_problems"])
	assert.EqualValues(t, 3, engine.calls.Load())

	assert.Equal(t, "1", res.Rows[0]["id"])
	assert.Equal(t, "answer:What is 2+2", res.Rows[0]["final_answer"])
	assert.Equal(t, "true", res.Rows[0]["success"])

	_, err = os.Stat(output + ".report.json")
	assert.NoError(t, err)
}

func TestRunReportsCountMismatchWithoutFailing(t *testing.T) {
	// claims two results but writes one row
	pipeline := pipelineFunc(func(_ context.Context, req ProcessRequest) (*ProcessReport, error) {
		err := os.WriteFile(req.OutputPath, []byte("id,final_answer\n1,4\n"), 0o644)
		return &ProcessReport{Status: "completed", TotalProblems: 2, ResultsCount: 2}, err
	})
	orch := NewOrchestrator(pipeline, logger.NewNopLogger(), 5)
	input := writeFile(t, "in.csv", "problem\n2+2\n3+3\n")

	res, err := orch.Run(context.Background(), input, filepath.Join(t.TempDir(), "out.csv"), 5)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, res.Status)
	assert.Equal(t, 1, res.ProducedRows)
	assert.Equal(t, 2, res.ReportedResults)
}
