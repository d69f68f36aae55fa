package constant

const (
	// TraceDisplayLimit is how many of the session's latest traces a message response carries.
	TraceDisplayLimit = 10

	UploadSampleRows     = 3
	UploadPreviewResults = 5

	UploadTimestampLayout = "20060102_150405"
	ProcessedFilePrefix   = "processed_"
)

var (
	CapabilityProblemTypes = []string{
		"Arithmetic calculations",
		"Logical reasoning",
		"Geometric problems",
		"Algebraic equations",
		"Word problems",
	}

	CapabilityTools = []string{
		"Calculator Tool",
		"Symbolic Solver Tool",
		"Rule Engine Tool",
		"Geometric Calculator Tool",
		"Text Parser Tool",
	}

	CapabilityFeatures = []string{
		"Real-time reasoning traces",
		"Confidence scoring",
		"Result verification",
		"CSV batch processing",
		"Performance metrics",
	}
)
