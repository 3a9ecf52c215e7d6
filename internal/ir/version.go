package ir

// Version constants for the journal schema and engine.
const (
	// IRVersion is the encoding version of MatchState.IR().
	IRVersion = "1"

	// EngineVersion is the rally engine version.
	EngineVersion = "0.1.0"
)
