package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"agentic-reasoning-be/internal/config"
	"agentic-reasoning-be/internal/constant"
	"agentic-reasoning-be/internal/dto"
	"agentic-reasoning-be/internal/mapper"
	"agentic-reasoning-be/internal/pkg/logger"
	"agentic-reasoning-be/internal/pkg/metrics"
	"agentic-reasoning-be/internal/repository/memory"
	"agentic-reasoning-be/pkg/batch"
	"agentic-reasoning-be/pkg/events"
	"agentic-reasoning-be/pkg/reasoning"

	"github.com/google/uuid"
)

var (
	ErrInvalidUpload    = errors.New("invalid upload")
	ErrArtifactNotFound = errors.New("artifact not found")
)

// UploadError carries the caller-facing reason an upload was rejected.
type UploadError struct {
	Reason string
}

func (e *UploadError) Error() string { return e.Reason }

func (e *UploadError) Unwrap() error { return ErrInvalidUpload }

type IBatchService interface {
	UploadCSV(ctx context.Context, file *multipart.FileHeader) (*dto.UploadCSVResponse, error)
	ArtifactPath(filename string) (string, error)
}

type batchService struct {
	resolver    EngineResolver
	sessions    *memory.SessionRepository
	publisher   *events.Publisher
	mapper      *mapper.ReasoningMapper
	logger      logger.ILogger
	uploadDir   string
	outputDir   string
	batchSize   int
	concurrency int
}

func NewBatchService(
	resolver EngineResolver,
	sessions *memory.SessionRepository,
	publisher *events.Publisher,
	appCfg config.AppConfig,
	batchCfg config.BatchConfig,
	log logger.ILogger,
) IBatchService {
	return &batchService{
		resolver:    resolver,
		sessions:    sessions,
		publisher:   publisher,
		mapper:      mapper.NewReasoningMapper(),
		logger:      log,
		uploadDir:   appCfg.UploadDir,
		outputDir:   appCfg.OutputDir,
		batchSize:   batchCfg.BatchSize,
		concurrency: batchCfg.Concurrency,
	}
}

func (s *batchService) UploadCSV(ctx context.Context, file *multipart.FileHeader) (*dto.UploadCSVResponse, error) {
	if file == nil {
		return nil, &UploadError{Reason: "No file uploaded"}
	}
	if file.Filename == "" {
		return nil, &UploadError{Reason: "No file selected"}
	}
	if !strings.HasSuffix(strings.ToLower(file.Filename), ".csv") {
		return nil, &UploadError{Reason: "Only CSV files are allowed"}
	}

	// the session id keeps same-second uploads of one file name apart
	sessionId := uuid.NewString()
	filename := fmt.Sprintf("%s_%s_%s",
		s.sessions.Now().Format(constant.UploadTimestampLayout), sessionId[:8], secureFilename(file.Filename))
	inputPath := filepath.Join(s.uploadDir, filename)
	if err := saveUpload(file, inputPath); err != nil {
		return nil, err
	}

	engine, _, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	session := s.sessions.GetOrCreate(sessionId)

	pipeline := batch.NewDataPipeline(engine, s.concurrency, s.logger)
	pipeline.OnResult = func(r *reasoning.Result) {
		now := s.sessions.Now()
		session.AddResult(now, r)
		session.AddTraces(now, r.Traces...)
	}
	orchestrator := batch.NewOrchestrator(pipeline, s.logger, s.batchSize)

	outputName := constant.ProcessedFilePrefix + sessionId + ".csv"
	res, err := orchestrator.Run(ctx, inputPath, filepath.Join(s.outputDir, outputName), s.batchSize)
	if err != nil {
		_ = s.sessions.Clear(sessionId)
		return nil, uploadValidationError(err)
	}
	metrics.SetActiveSessions(s.sessions.Count())

	processing := s.mapper.ToProcessingResults(res)
	publishSessionEvent(ctx, s.publisher, s.logger, s.sessions, sessionId, events.TypeBatchCompleted, map[string]interface{}{
		"filename":           filename,
		"processing_results": processing,
	})

	return &dto.UploadCSVResponse{
		SessionId:         sessionId,
		Filename:          filename,
		FileInfo:          s.mapper.ToFileInfo(res.Input),
		ProcessingResults: processing,
		Results:           s.mapper.ToResultPreview(res),
	}, nil
}

// ArtifactPath resolves a download name inside the output directory. Anything
// that is not a plain file name there is reported as not found.
func (s *batchService) ArtifactPath(filename string) (string, error) {
	name := filepath.Base(filepath.Clean(filename))
	if name != filename || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", ErrArtifactNotFound
	}

	path := filepath.Join(s.outputDir, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", ErrArtifactNotFound
	}
	return path, nil
}

func uploadValidationError(err error) error {
	var schemaErr *batch.SchemaError
	var parseErr *csv.ParseError
	switch {
	case errors.Is(err, batch.ErrEmptyInput):
		return &UploadError{Reason: batch.ErrEmptyInput.Error()}
	case errors.As(err, &schemaErr):
		return &UploadError{Reason: schemaErr.Error()}
	case errors.As(err, &parseErr):
		return &UploadError{Reason: fmt.Sprintf("Invalid CSV file: %v", parseErr.Err)}
	}
	return err
}

func saveUpload(file *multipart.FileHeader, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("save upload: %w", err)
	}
	return dst.Close()
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// secureFilename keeps an ASCII-only base name safe to join onto a directory.
func secureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, "._")
	if name == "" {
		return fmt.Sprintf("upload_%d.csv", time.Now().UnixNano())
	}
	return name
}
