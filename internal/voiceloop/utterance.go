package voiceloop

import (
	"time"

	"github.com/axon-cua/agent/internal/pipeline"
)

// Utterance is one monotonically numbered voice turn (spec.md §3).
type Utterance struct {
	ID                int
	StartedAt         time.Time
	RawTranscript     string
	CleanedTranscript string
	Screenshot        []byte
	Status            pipeline.Status
}
