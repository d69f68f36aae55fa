// Package batch runs reasoning over uploaded CSV tables. The Orchestrator owns
// validation and result reconciliation; the Pipeline owns per-row solving.
package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agentic-reasoning-be/internal/pkg/logger"
	"agentic-reasoning-be/internal/pkg/metrics"
)

const logModule = "BatchOrchestrator"

// ProblemColumns are the accepted problem text headers, in preference order.
var ProblemColumns = []string{"problem_statement", "problem"}

// IDColumns are the optional row identifier headers.
var IDColumns = []string{"id", "problem_id"}

var ErrEmptyInput = errors.New("CSV file is empty")

type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	quoted := make([]string, len(e.Missing))
	for i, col := range e.Missing {
		quoted[i] = "'" + col + "'"
	}
	return fmt.Sprintf("CSV must include a %s column.", strings.Join(quoted, " or "))
}

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// JobResult is produced once per Run. Rows is the verified re-read of the
// output artifact.
type JobResult struct {
	Status          Status              `json:"status"`
	TotalInputRows  int                 `json:"total_input_rows"`
	ProducedRows    int                 `json:"produced_rows"`
	ReportedResults int                 `json:"reported_results"`
	Rows            []map[string]string `json:"rows"`
	Statistics      map[string]any      `json:"statistics"`
	OutputArtifact  string              `json:"output_artifact"`
	Error           string              `json:"error,omitempty"`

	Input *Table `json:"-"`
}

type ProcessRequest struct {
	InputPath      string
	OutputPath     string
	BatchSize      int
	DetailedOutput bool
	GenerateReport bool
}

type ProcessReport struct {
	Status        string
	TotalProblems int
	ResultsCount  int
	Statistics    map[string]any
	ReportPath    string
}

// Pipeline solves every row of a CSV file and writes the output artifact.
type Pipeline interface {
	Process(ctx context.Context, req ProcessRequest) (*ProcessReport, error)
}

type Orchestrator struct {
	pipeline         Pipeline
	log              logger.ILogger
	defaultBatchSize int
}

func NewOrchestrator(pipeline Pipeline, log logger.ILogger, defaultBatchSize int) *Orchestrator {
	if defaultBatchSize <= 0 {
		defaultBatchSize = 5
	}
	return &Orchestrator{pipeline: pipeline, log: log, defaultBatchSize: defaultBatchSize}
}

// Validate checks a table before any solving happens.
func Validate(t *Table) error {
	if t.Len() == 0 {
		return ErrEmptyInput
	}
	if _, ok := t.Column(ProblemColumns...); !ok {
		return &SchemaError{Missing: []string{"problem", "problem_statement"}}
	}
	return nil
}

// Run validates the input, delegates to the pipeline and reconciles its output.
// Only read and validation errors are returned; pipeline failures come back as
// a failed JobResult.
func (o *Orchestrator) Run(ctx context.Context, inputPath, outputPath string, batchSize int) (*JobResult, error) {
	table, err := ReadCSVFile(inputPath)
	if err != nil {
		return nil, err
	}
	if err := Validate(table); err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = o.defaultBatchSize
	}

	result := &JobResult{
		TotalInputRows: table.Len(),
		OutputArtifact: outputPath,
		Statistics:     map[string]any{},
		Input:          table,
	}

	report, err := o.process(ctx, ProcessRequest{
		InputPath:      inputPath,
		OutputPath:     outputPath,
		BatchSize:      batchSize,
		DetailedOutput: true,
		GenerateReport: true,
	})
	if err != nil {
		return o.fail(result, err), nil
	}

	produced, err := ReadCSVFile(outputPath)
	if err != nil {
		return o.fail(result, fmt.Errorf("read output artifact: %w", err)), nil
	}

	result.Status = StatusSucceeded
	result.ProducedRows = produced.Len()
	result.ReportedResults = report.ResultsCount
	result.Rows = produced.Rows
	if report.Statistics != nil {
		result.Statistics = report.Statistics
	}

	if report.ResultsCount != result.ProducedRows {
		o.log.Warn(logModule, "Pipeline result count does not match output artifact", map[string]interface{}{
			"reported": report.ResultsCount,
			"produced": result.ProducedRows,
			"output":   outputPath,
		})
	}

	metrics.RecordBatchJob(string(result.Status), result.ProducedRows)
	o.log.Info(logModule, "Batch job finished", map[string]interface{}{
		"input_rows":    result.TotalInputRows,
		"produced_rows": result.ProducedRows,
		"output":        outputPath,
	})
	return result, nil
}

func (o *Orchestrator) process(ctx context.Context, req ProcessRequest) (report *ProcessReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	report, err = o.pipeline.Process(ctx, req)
	if err == nil && report == nil {
		err = errors.New("pipeline returned no report")
	}
	return report, err
}

func (o *Orchestrator) fail(result *JobResult, err error) *JobResult {
	result.Status = StatusFailed
	result.ProducedRows = 0
	result.Rows = nil
	result.Error = err.Error()

	metrics.RecordBatchJob(string(result.Status), 0)
	o.log.Error(logModule, "Batch job failed", map[string]interface{}{
		"error":      err.Error(),
		"input_rows": result.TotalInputRows,
	})
	return result
}
