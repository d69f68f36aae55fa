package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agentic-reasoning-be/internal/constant"
	"agentic-reasoning-be/internal/dto"
	"agentic-reasoning-be/internal/mapper"
	"agentic-reasoning-be/internal/pkg/logger"
	"agentic-reasoning-be/internal/pkg/metrics"
	"agentic-reasoning-be/internal/repository/memory"
	"agentic-reasoning-be/pkg/events"
	"agentic-reasoning-be/pkg/reasoning"
	"agentic-reasoning-be/pkg/reasoning/factory"
	"agentic-reasoning-be/pkg/store"

	"github.com/google/uuid"
)

var ErrEmptyMessage = errors.New("empty message")

// EngineResolver hands out the live reasoning engine for each request.
type EngineResolver interface {
	Resolve(ctx context.Context) (reasoning.Engine, factory.Mode, error)
	Status() factory.Status
}

type IReasoningService interface {
	SubmitMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	GetSession(ctx context.Context, sessionId string) (*store.SessionSummary, error)
	ClearSession(ctx context.Context, sessionId string) error
	Capabilities() *dto.CapabilitiesResponse
	Status() *dto.StatusResponse
}

type reasoningService struct {
	resolver  EngineResolver
	sessions  *memory.SessionRepository
	publisher *events.Publisher
	mapper    *mapper.ReasoningMapper
	logger    logger.ILogger
}

func NewReasoningService(
	resolver EngineResolver,
	sessions *memory.SessionRepository,
	publisher *events.Publisher,
	log logger.ILogger,
) IReasoningService {
	return &reasoningService{
		resolver:  resolver,
		sessions:  sessions,
		publisher: publisher,
		mapper:    mapper.NewReasoningMapper(),
		logger:    log,
	}
}

func (s *reasoningService) SubmitMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	sessionId := strings.TrimSpace(req.SessionId)
	if sessionId == "" {
		sessionId = uuid.NewString()
	}

	engine, mode, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	session := s.sessions.GetOrCreate(sessionId)
	problemId := fmt.Sprintf("problem_%d", session.NextProblemID())

	s.logger.Info("ReasoningService", "Processing problem", map[string]interface{}{
		"session_id": sessionId,
		"problem_id": problemId,
		"engine":     engine.Name(),
		"preview":    preview(message, 100),
	})

	result := solveIsolated(ctx, engine, message, problemId)
	if result.Error != "" {
		s.logger.Warn("ReasoningService", "Solve failed", map[string]interface{}{
			"session_id": sessionId,
			"problem_id": problemId,
			"error":      result.Error,
		})
	}

	// append to the session this request started with; a concurrent clear must
	// not bring it back
	now := s.sessions.Now()
	session.AddResult(now, result)
	session.AddTraces(now, result.Traces...)
	metrics.RecordSolve(string(mode), result.Success)
	metrics.SetActiveSessions(s.sessions.Count())

	s.publish(ctx, sessionId, events.TypeResultAppended, map[string]interface{}{
		"result": s.mapper.ToResultSummary(result),
	})
	if len(result.Traces) > 0 {
		s.publish(ctx, sessionId, events.TypeTraceAppended, map[string]interface{}{
			"traces": result.Traces,
		})
	}

	return &dto.SendMessageResponse{
		SessionId:        sessionId,
		BackendMode:      string(mode),
		Result:           s.mapper.ToResultSummary(result),
		ReasoningTraces:  s.mapper.ToTraceDTOs(session.RecentTraces(constant.TraceDisplayLimit)),
		PerformanceStats: engine.PerformanceStats(),
	}, nil
}

func (s *reasoningService) GetSession(ctx context.Context, sessionId string) (*store.SessionSummary, error) {
	return s.sessions.Summarize(sessionId)
}

func (s *reasoningService) ClearSession(ctx context.Context, sessionId string) error {
	if err := s.sessions.Clear(sessionId); err != nil {
		return err
	}
	metrics.SetActiveSessions(s.sessions.Count())
	s.publish(ctx, sessionId, events.TypeSessionCleared, map[string]interface{}{})
	return nil
}

func (s *reasoningService) Capabilities() *dto.CapabilitiesResponse {
	return &dto.CapabilitiesResponse{
		ProblemTypes: constant.CapabilityProblemTypes,
		Tools:        constant.CapabilityTools,
		Features:     constant.CapabilityFeatures,
	}
}

func (s *reasoningService) Status() *dto.StatusResponse {
	st := s.resolver.Status()
	return &dto.StatusResponse{
		ActiveMode:     string(st.ActiveMode),
		DesiredMode:    string(st.DesiredMode),
		Engine:         st.Engine,
		Constructions:  st.Constructions,
		ActiveSessions: s.sessions.Count(),
	}
}

func (s *reasoningService) publish(ctx context.Context, sessionId, eventType string, data map[string]interface{}) {
	publishSessionEvent(ctx, s.publisher, s.logger, s.sessions, sessionId, eventType, data)
}

// solveIsolated turns an engine error or panic into a failed result so one bad
// problem never takes the request down.
func solveIsolated(ctx context.Context, engine reasoning.Engine, text, problemId string) (result *reasoning.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = reasoning.FailedResult(problemId, fmt.Errorf("engine panic: %v", r))
		}
	}()

	res, err := engine.Solve(ctx, text, problemId)
	if err != nil {
		return reasoning.FailedResult(problemId, err)
	}
	if res == nil {
		return reasoning.FailedResult(problemId, errors.New("engine returned no result"))
	}
	return res
}

func publishSessionEvent(
	ctx context.Context,
	publisher *events.Publisher,
	log logger.ILogger,
	sessions *memory.SessionRepository,
	sessionId, eventType string,
	data map[string]interface{},
) {
	if publisher == nil {
		return
	}
	evt := events.SessionEvent{Type: eventType, Data: data, OccurredAt: sessions.Now()}
	if err := publisher.Publish(ctx, sessionId, evt); err != nil {
		log.Warn("SessionEvents", "Failed to publish session event", map[string]interface{}{
			"session_id": sessionId,
			"type":       eventType,
			"error":      err.Error(),
		})
	}
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
