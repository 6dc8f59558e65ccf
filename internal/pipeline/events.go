package pipeline

import (
	"fmt"
	"sort"

	"github.com/nguyentantai21042004/voice-note/internal/intake"
	"github.com/nguyentantai21042004/voice-note/internal/models"
)

// Step is one independently failable stage.
type Step int

const (
	StepNone Step = iota
	StepTranscribe
	StepRefine
	StepGenerate
)

func (s Step) String() string {
	switch s {
	case StepNone:
		return "none"
	case StepTranscribe:
		return "transcribe"
	case StepRefine:
		return "refine"
	case StepGenerate:
		return "generate"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Advisory status lines for the transcription step.
const (
	StatusUploading = "Uploading to local engine..."
	StatusListening = "AI is listening and writing..."
)

type EventType string

const (
	EventSnapshot EventType = "snapshot"
	EventStatus   EventType = "status"
	EventError    EventType = "error"
)

// Event is delivered to subscribers after the session lock is released.
// Handlers may call session operations; events those raise are delivered
// once the current handler returns. Handlers must not subscribe or
// unsubscribe from inside the callback.
type Event struct {
	Type     EventType
	Step     Step
	Status   string
	Message  string
	Err      error
	Snapshot Snapshot
}

// Snapshot is an immutable copy of the session slots at one version.
type Snapshot struct {
	SessionID     string
	Version       uint64
	File          intake.MediaFile
	Transcript    *models.Transcript
	Refined       *models.RefinedText
	Note          *models.GeneratedNote
	HasCredential bool
	InFlight      []Step
}

func (s Snapshot) HasFile() bool {
	return !s.File.IsZero()
}

// WorkingText applies the refined-over-raw precedence to this snapshot.
func (s Snapshot) WorkingText() (string, bool) {
	return models.ResolveWorkingText(s.Transcript, s.Refined)
}

func topic(sessionID string) string {
	return "pipeline:" + sessionID
}

func sortedSteps(m map[Step]bool) []Step {
	var out []Step
	for s, on := range m {
		if on {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
