package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"path/filepath"
	"testing"
	"time"

	"agentic-reasoning-be/internal/config"
	"agentic-reasoning-be/internal/dto"
	"agentic-reasoning-be/internal/pkg/logger"
	"agentic-reasoning-be/internal/repository/memory"
	"agentic-reasoning-be/pkg/reasoning"
	"agentic-reasoning-be/pkg/reasoning/factory"
	"agentic-reasoning-be/pkg/reasoning/local"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResolver hands out one engine. beforeReturn runs once, on the first call.
type stubResolver struct {
	engine       reasoning.Engine
	beforeReturn func()
}

func (r *stubResolver) Resolve(context.Context) (reasoning.Engine, factory.Mode, error) {
	if hook := r.beforeReturn; hook != nil {
		r.beforeReturn = nil
		hook()
	}
	return r.engine, factory.ModeLocal, nil
}

func (r *stubResolver) Status() factory.Status {
	return factory.Status{ActiveMode: factory.ModeLocal, DesiredMode: factory.ModeLocal, Engine: r.engine.Name()}
}

func csvUpload(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestUploadCSVKeepsSameSecondUploadsApart(t *testing.T) {
	engine, err := local.New()
	require.NoError(t, err)

	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	sessions := memory.NewSessionRepository(time.Hour, time.Minute).WithClock(func() time.Time { return fixed })
	dir := t.TempDir()
	resolver := &stubResolver{engine: engine}
	svc := NewBatchService(resolver, sessions, nil,
		config.AppConfig{UploadDir: filepath.Join(dir, "uploads"), OutputDir: filepath.Join(dir, "output")},
		config.BatchConfig{BatchSize: 5, Concurrency: 2},
		logger.NewNopLogger(),
	)

	// the second upload is saved while the first is between saving and processing
	var second *dto.UploadCSVResponse
	resolver.beforeReturn = func() {
		var err error
		second, err = svc.UploadCSV(context.Background(), csvUpload(t, "problems.csv", "id,problem\nB1,100 * 3\nB2,2 + 2\n"))
		require.NoError(t, err)
	}

	first, err := svc.UploadCSV(context.Background(), csvUpload(t, "problems.csv", "id,problem\nA1,What is 12 * 7?\n"))
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.NotEqual(t, first.Filename, second.Filename)
	assert.Contains(t, first.Filename, "20240301_100000_")

	assert.Equal(t, 1, first.FileInfo.RowsCount)
	require.Len(t, first.Results, 1)
	assert.Equal(t, "A1", first.Results[0]["id"])
	assert.Equal(t, "84", first.Results[0]["final_answer"])

	assert.Equal(t, 2, second.FileInfo.RowsCount)
	require.Len(t, second.Results, 2)
	assert.Equal(t, "300", second.Results[0]["final_answer"])

	summary, err := sessions.Summarize(first.SessionId)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalProblems)
}

func TestUploadCSVRejectsBeforeProcessing(t *testing.T) {
	engine, err := local.New()
	require.NoError(t, err)
	sessions := memory.NewSessionRepository(time.Hour, time.Minute)
	dir := t.TempDir()
	svc := NewBatchService(&stubResolver{engine: engine}, sessions, nil,
		config.AppConfig{UploadDir: filepath.Join(dir, "uploads"), OutputDir: filepath.Join(dir, "output")},
		config.BatchConfig{BatchSize: 5, Concurrency: 1},
		logger.NewNopLogger(),
	)

	_, err = svc.UploadCSV(context.Background(), csvUpload(t, "q.csv", "id,question\n1,2+2\n"))
	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.ErrorIs(t, err, ErrInvalidUpload)
	assert.Zero(t, sessions.Count())
}
