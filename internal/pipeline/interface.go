package pipeline

import (
	"context"

	"github.com/nguyentantai21042004/voice-note/internal/credential"
	"github.com/nguyentantai21042004/voice-note/internal/intake"
	"github.com/nguyentantai21042004/voice-note/internal/models"
)

// Session owns one media-to-article run: the accepted file and the three step
// results. Each slot has a single writer, the step that produces it.
type Session interface {
	ID() string

	SelectFile(c intake.Candidate) (intake.MediaFile, error)
	// Reset clears the file together with every downstream result.
	Reset()

	SetCredential(text string) error
	// UseCredential holds an already validated credential.
	UseCredential(cred credential.ServiceCredential) error
	ClearCredential()

	Transcribe(ctx context.Context, cfg models.TranscriptionConfig) (models.Transcript, error)
	Refine(ctx context.Context, llm models.LLMConfig) (models.RefinedText, error)
	// EditRefinedText replaces the refined text by hand. Empty text clears it.
	EditRefinedText(text string) error
	// Generate builds the article from the current working text. Calling it
	// again regenerates and replaces the previous note.
	Generate(ctx context.Context, llm models.LLMConfig) (models.GeneratedNote, error)

	WorkingText() (string, bool)
	Snapshot() Snapshot
	Subscribe(fn func(Event)) (unsubscribe func(), err error)
}
