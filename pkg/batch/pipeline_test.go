package batch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"agentic-reasoning-be/internal/pkg/logger"
	"agentic-reasoning-be/pkg/reasoning"
	"agentic-reasoning-be/pkg/reasoning/local"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessIsolatesFailingRows(t *testing.T) {
	engine := &countingEngine{fail: "bad", panic: "worse"}
	p := NewDataPipeline(engine, 3, logger.NewNopLogger())

	var mu sync.Mutex
	var seen []string
	p.OnResult = func(r *reasoning.Result) {
		mu.Lock()
		seen = append(seen, r.ProblemID)
		mu.Unlock()
	}

	input := writeFile(t, "in.csv", "problem_statement\nok one\nbad\nworse\n \nok two\n")
	output := filepath.Join(t.TempDir(), "out.csv")

	report, err := p.Process(context.Background(), ProcessRequest{
		InputPath: input, OutputPath: output, BatchSize: 2, DetailedOutput: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, report.TotalProblems)
	assert.Equal(t, 4, report.ResultsCount)
	assert.Equal(t, 2, report.Statistics["successful"])
	assert.Equal(t, 2, report.Statistics["failed"])
	assert.Equal(t, 2, report.Statistics["batches"])
	assert.Len(t, seen, 4)

	table, err := ReadCSVFile(output)
	require.NoError(t, err)
	require.Equal(t, 4, table.Len())
	assert.Equal(t, append(append([]string{}, baseColumns...), detailedColumns...), table.Header)

	// positional ids when the id column is absent, order preserved
	for i, want := range []string{"problem_1", "problem_2", "problem_3", "problem_4"} {
		assert.Equal(t, want, table.Rows[i]["id"])
	}
	assert.Equal(t, "false", table.Rows[1]["success"])
	assert.Contains(t, table.Rows[1]["error"], "engine exploded")
	assert.Contains(t, table.Rows[2]["error"], "panic")
	assert.Equal(t, "true", table.Rows[3]["success"])
}

func TestProcessWithoutDetailOrReport(t *testing.T) {
	p := NewDataPipeline(&countingEngine{}, 1, logger.NewNopLogger())
	input := writeFile(t, "in.csv", "ID,Problem\n,x\nq7,y\n")
	output := filepath.Join(t.TempDir(), "out.csv")

	report, err := p.Process(context.Background(), ProcessRequest{InputPath: input, OutputPath: output, BatchSize: 5})
	require.NoError(t, err)
	assert.Empty(t, report.ReportPath)

	table, err := ReadCSVFile(output)
	require.NoError(t, err)
	assert.Equal(t, baseColumns, table.Header)
	assert.Equal(t, "problem_1", table.Rows[0]["id"])
	assert.Equal(t, "q7", table.Rows[1]["id"])
}

func TestProcessStopsOnCancelledContext(t *testing.T) {
	engine := &countingEngine{}
	p := NewDataPipeline(engine, 1, logger.NewNopLogger())
	input := writeFile(t, "in.csv", "problem\na\nb\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Process(ctx, ProcessRequest{InputPath: input, OutputPath: filepath.Join(t.TempDir(), "out.csv"), BatchSize: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, engine.calls.Load())
}

func TestProcessWithLocalEngine(t *testing.T) {
	engine, err := local.New()
	require.NoError(t, err)
	p := NewDataPipeline(engine, 4, logger.NewNopLogger())

	input := writeFile(t, "in.csv", "id,problem_statement\n1,What is 12 * 7?\n2,What is three plus four\n")
	output := filepath.Join(t.TempDir(), "out.csv")

	_, err = p.Process(context.Background(), ProcessRequest{InputPath: input, OutputPath: output, BatchSize: 5, DetailedOutput: true})
	require.NoError(t, err)

	table, err := ReadCSVFile(output)
	require.NoError(t, err)
	assert.Equal(t, "84", table.Rows[0]["final_answer"])
	assert.Equal(t, "7", table.Rows[1]["final_answer"])
}

func TestReadCSVPadsShortRowsAndSkipsBlankLines(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("\ufeffid,problem,extra\n1,2+2\n,,\n2,3+3,x,y\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "problem", "extra"}, table.Header)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "", table.Rows[0]["extra"])
	assert.Equal(t, "x", table.Rows[1]["extra"])
	assert.Len(t, table.Head(5), 2)
}

func TestReadCSVAcceptsBareQuotes(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("id,problem\n1,How long is an A 5\" pipe\n2,\"quoted, with comma\"\n"))
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, `How long is an A 5" pipe`, table.Rows[0]["problem"])
	assert.Equal(t, "quoted, with comma", table.Rows[1]["problem"])
}
