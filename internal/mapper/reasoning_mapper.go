package mapper

import (
	"path/filepath"

	"agentic-reasoning-be/internal/constant"
	"agentic-reasoning-be/internal/dto"
	"agentic-reasoning-be/pkg/batch"
	"agentic-reasoning-be/pkg/reasoning"
	"agentic-reasoning-be/pkg/store"
)

type ReasoningMapper struct{}

func NewReasoningMapper() *ReasoningMapper {
	return &ReasoningMapper{}
}

func (m *ReasoningMapper) ToResultSummary(r *reasoning.Result) dto.ResultSummaryDTO {
	if r == nil {
		return dto.ResultSummaryDTO{}
	}
	steps := r.ReasoningSteps
	if steps == nil {
		steps = []string{}
	}
	return dto.ResultSummaryDTO{
		ProblemId:          r.ProblemID,
		FinalAnswer:        r.FinalAnswer,
		Confidence:         r.OverallConfidence,
		ExecutionTime:      r.ExecutionTime,
		Success:            r.Success,
		SubproblemsCount:   len(r.Subproblems),
		ReasoningSteps:     steps,
		VerificationPassed: r.VerificationPassed,
		Error:              r.Error,
	}
}

func (m *ReasoningMapper) ToTraceDTOs(traces []store.TimedTrace) []dto.TraceDTO {
	out := make([]dto.TraceDTO, 0, len(traces))
	for _, t := range traces {
		var tool *string
		if t.Trace.ToolUsed != nil {
			name := string(*t.Trace.ToolUsed)
			tool = &name
		}
		out = append(out, dto.TraceDTO{
			StepId:       t.Trace.StepID,
			Description:  t.Trace.Description,
			SubproblemId: t.Trace.SubproblemID,
			ToolUsed:     tool,
			Confidence:   t.Trace.Confidence,
			Timestamp:    t.Trace.Timestamp,
		})
	}
	return out
}

func (m *ReasoningMapper) ToFileInfo(t *batch.Table) dto.FileInfoDTO {
	if t == nil {
		return dto.FileInfoDTO{Columns: []string{}, SampleRows: []map[string]string{}}
	}
	return dto.FileInfoDTO{
		RowsCount:  t.Len(),
		Columns:    t.Header,
		SampleRows: t.Head(constant.UploadSampleRows),
	}
}

// ToProcessingResults reports the artifact by file name only; the download
// route resolves it inside the output directory.
func (m *ReasoningMapper) ToProcessingResults(res *batch.JobResult) dto.ProcessingResultsDTO {
	out := dto.ProcessingResultsDTO{
		Status:        string(res.Status),
		TotalProblems: res.TotalInputRows,
		Statistics:    res.Statistics,
		Error:         res.Error,
	}
	if res.Status == batch.StatusSucceeded {
		out.ResultsCount = res.ReportedResults
		out.VerifiedRows = res.ProducedRows
		out.OutputFile = filepath.Base(res.OutputArtifact)
	}
	if out.Statistics == nil {
		out.Statistics = map[string]any{}
	}
	return out
}

func (m *ReasoningMapper) ToResultPreview(res *batch.JobResult) []map[string]string {
	if len(res.Rows) <= constant.UploadPreviewResults {
		if res.Rows == nil {
			return []map[string]string{}
		}
		return res.Rows
	}
	return res.Rows[:constant.UploadPreviewResults]
}
