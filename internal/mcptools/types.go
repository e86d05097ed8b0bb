package mcptools

// --- MCP tool types for the multiparagraph server mode (-serve-mcp) ---
// Unset optional fields fall back to the values the server was started with.

// RealignInput is the input for the realign MCP tool.
type RealignInput struct {
	BAM              string   `json:"bam,omitempty" jsonschema:"read alignment file"`
	Ref              string   `json:"ref,omitempty" jsonschema:"reference FASTA"`
	Inputs           []string `json:"input" jsonschema:"candidate JSON files, processed in order"`
	Output           string   `json:"output" jsonschema:"path of the combined JSON report"`
	Paragraph        string   `json:"paragraph,omitempty" jsonschema:"tool invocation, optionally with a wrapper prefix"`
	Threads          int      `json:"threads,omitempty" jsonschema:"candidates processed concurrently"`
	ParagraphThreads int      `json:"paragraphThreads,omitempty" jsonschema:"threads per tool invocation"`
	ScratchDir       string   `json:"scratchDir,omitempty" jsonschema:"base directory for the run's working area"`
	KeepScratch      bool     `json:"keepScratch,omitempty" jsonschema:"keep the working area after the run"`
	MaxEvents        int      `json:"maxEvents,omitempty" jsonschema:"process at most this many candidates"`
	MinLength        int      `json:"minLength,omitempty" jsonschema:"drop candidates shorter than this"`
	ExtendedOutput   bool     `json:"extendedOutput,omitempty" jsonschema:"keep failure records in the report"`
	TimeoutSeconds   int      `json:"timeoutSeconds,omitempty" jsonschema:"per-invocation timeout in seconds"`
}

// RealignOutput is the result of the realign MCP tool.
type RealignOutput struct {
	Status      string   `json:"status"` // "completed" or "failed"
	Output      string   `json:"output,omitempty"`
	Dispatched  int      `json:"dispatched"`
	Succeeded   int      `json:"succeeded"`
	Failed      int      `json:"failed"`
	FailedIDs   []string `json:"failedIds,omitempty"`
	ScratchPath string   `json:"scratchPath,omitempty"`
	Message     string   `json:"message,omitempty"`
}

// ReportStatusInput is the input for the report_status MCP tool.
type ReportStatusInput struct {
	Path string `json:"path" jsonschema:"combined JSON report to summarize"`
}

// ReportStatusOutput is the result of the report_status MCP tool.
type ReportStatusOutput struct {
	Path              string   `json:"path"`
	Total             int      `json:"total"`
	Succeeded         int      `json:"succeeded"`
	FailedIDs         []string `json:"failedIds,omitempty"`
	MissingStatistics []string `json:"missingStatistics,omitempty"`
}

// GraphDiagramInput is the input for the graph_diagram MCP tool.
type GraphDiagramInput struct {
	Path string `json:"path" jsonschema:"combined JSON report"`
	ID   string `json:"id" jsonschema:"candidate ID to draw"`
}

// GraphDiagramOutput is the result of the graph_diagram MCP tool.
type GraphDiagramOutput struct {
	ID      string `json:"id"`
	Mermaid string `json:"mermaid"`
}
