package dto

type FileInfoDTO struct {
	RowsCount  int                 `json:"rows_count"`
	Columns    []string            `json:"columns"`
	SampleRows []map[string]string `json:"sample_rows"`
}

type ProcessingResultsDTO struct {
	Status        string         `json:"status"`
	TotalProblems int            `json:"total_problems"`
	ResultsCount  int            `json:"results_count"`
	VerifiedRows  int            `json:"verified_rows"`
	Statistics    map[string]any `json:"statistics"`
	OutputFile    string         `json:"output_file,omitempty"`
	Error         string         `json:"error,omitempty"`
}

type UploadCSVResponse struct {
	SessionId         string               `json:"session_id"`
	Filename          string               `json:"filename"`
	FileInfo          FileInfoDTO          `json:"file_info"`
	ProcessingResults ProcessingResultsDTO `json:"processing_results"`
	Results           []map[string]string  `json:"results"`
}
