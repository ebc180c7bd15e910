package ir

// Version constants for exported documents and the tool.
const (
	// IRVersion is the document schema version.
	IRVersion = "1"

	// EngineVersion is the dynq version.
	EngineVersion = "0.1.0"
)
