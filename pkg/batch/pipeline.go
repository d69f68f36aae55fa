package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"agentic-reasoning-be/internal/pkg/logger"
	"agentic-reasoning-be/pkg/reasoning"

	"golang.org/x/sync/errgroup"
)

var (
	baseColumns     = []string{"id", "problem_statement", "final_answer", "confidence", "success", "execution_time"}
	detailedColumns = []string{"subproblems_count", "reasoning_steps", "verification_passed", "error"}
)

// DataPipeline is the default Pipeline. Batches run one after another; rows
// inside a batch are solved concurrently.
type DataPipeline struct {
	engine      reasoning.Engine
	concurrency int
	log         logger.ILogger

	// OnResult, when set, receives every row result after it is solved.
	OnResult func(*reasoning.Result)
}

func NewDataPipeline(engine reasoning.Engine, concurrency int, log logger.ILogger) *DataPipeline {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &DataPipeline{engine: engine, concurrency: concurrency, log: log}
}

type rowInput struct {
	id   string
	text string
}

type rowOutput struct {
	input  rowInput
	result *reasoning.Result
	err    error
}

func (p *DataPipeline) Process(ctx context.Context, req ProcessRequest) (*ProcessReport, error) {
	table, err := ReadCSVFile(req.InputPath)
	if err != nil {
		return nil, err
	}
	textCol, ok := table.Column(ProblemColumns...)
	if !ok {
		return nil, &SchemaError{Missing: []string{"problem", "problem_statement"}}
	}
	idCol, hasID := table.Column(IDColumns...)

	inputs := make([]rowInput, table.Len())
	for i, row := range table.Rows {
		id := ""
		if hasID {
			id = strings.TrimSpace(row[idCol])
		}
		if id == "" {
			id = fmt.Sprintf("problem_%d", i+1)
		}
		inputs[i] = rowInput{id: id, text: row[textCol]}
	}

	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = len(inputs)
	}

	outputs := make([]rowOutput, 0, len(inputs))
	batches := 0
	for start := 0; start < len(inputs); start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("batch %d: %w", batches+1, err)
		}
		end := start + batchSize
		if end > len(inputs) {
			end = len(inputs)
		}

		outputs = append(outputs, p.runBatch(ctx, inputs[start:end])...)
		batches++

		p.log.Debug(logModule, "Batch processed", map[string]interface{}{
			"batch": batches,
			"rows":  end - start,
		})
	}

	if dir := filepath.Dir(req.OutputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	header, records := encodeOutputs(outputs, req.DetailedOutput)
	if err := writeCSVFile(req.OutputPath, header, records); err != nil {
		return nil, err
	}

	stats := statistics(outputs, batches)
	report := &ProcessReport{
		Status:        "completed",
		TotalProblems: len(inputs),
		ResultsCount:  len(records),
		Statistics:    stats,
	}

	if req.GenerateReport {
		report.ReportPath = req.OutputPath + ".report.json"
		data, err := json.MarshalIndent(map[string]any{
			"generated_at": time.Now().UTC(),
			"input_file":   filepath.Base(req.InputPath),
			"output_file":  filepath.Base(req.OutputPath),
			"statistics":   stats,
		}, "", "  ")
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(report.ReportPath, data, 0o644); err != nil {
			return nil, fmt.Errorf("write report: %w", err)
		}
	}

	return report, nil
}

// runBatch never fails as a whole; a row that errors or panics is recorded as
// a failed row.
func (p *DataPipeline) runBatch(ctx context.Context, rows []rowInput) []rowOutput {
	out := make([]rowOutput, len(rows))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, row := range rows {
		g.Go(func() error {
			out[i] = p.solveRow(ctx, row)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (p *DataPipeline) solveRow(ctx context.Context, row rowInput) (out rowOutput) {
	out.input = row
	defer func() {
		if r := recover(); r != nil {
			out.result = nil
			out.err = fmt.Errorf("solve panic: %v", r)
		}
		if out.err == nil && out.result == nil {
			out.err = fmt.Errorf("problem %s: engine returned no result", row.id)
		}
		if out.err != nil {
			p.log.Warn(logModule, "Row failed", map[string]interface{}{
				"problem_id": row.id,
				"error":      out.err.Error(),
			})
			out.result = reasoning.FailedResult(row.id, out.err)
		}
		if p.OnResult != nil {
			p.OnResult(out.result)
		}
	}()

	if strings.TrimSpace(row.text) == "" {
		out.err = fmt.Errorf("problem %s: empty problem text", row.id)
		return out
	}
	out.result, out.err = p.engine.Solve(ctx, row.text, row.id)
	return out
}

func encodeOutputs(outputs []rowOutput, detailed bool) ([]string, [][]string) {
	header := append([]string{}, baseColumns...)
	if detailed {
		header = append(header, detailedColumns...)
	}

	records := make([][]string, 0, len(outputs))
	for _, o := range outputs {
		res := o.result
		record := []string{
			o.input.id,
			o.input.text,
			res.FinalAnswer,
			strconv.FormatFloat(res.OverallConfidence, 'f', 3, 64),
			strconv.FormatBool(res.Success),
			strconv.FormatFloat(res.ExecutionTime, 'f', 4, 64),
		}
		if detailed {
			record = append(record,
				strconv.Itoa(len(res.Subproblems)),
				strings.Join(res.ReasoningSteps, " | "),
				strconv.FormatBool(res.VerificationPassed),
				res.Error,
			)
		}
		records = append(records, record)
	}
	return header, records
}

func statistics(outputs []rowOutput, batches int) map[string]any {
	var successful int
	var confidence, elapsed float64
	for _, o := range outputs {
		if o.result.Success {
			successful++
		}
		confidence += o.result.OverallConfidence
		elapsed += o.result.ExecutionTime
	}

	stats := map[string]any{
		"total_problems":         len(outputs),
		"successful":             successful,
		"failed":                 len(outputs) - successful,
		"success_rate":           0.0,
		"average_confidence":     0.0,
		"average_execution_time": 0.0,
		"batches":                batches,
	}
	if n := float64(len(outputs)); n > 0 {
		stats["success_rate"] = float64(successful) / n
		stats["average_confidence"] = confidence / n
		stats["average_execution_time"] = elapsed / n
	}
	return stats
}
