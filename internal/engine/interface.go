package engine

import (
	"context"
	"io"

	"github.com/nguyentantai21042004/voice-note/internal/models"
)

// Client talks to the remote processing engine. Every method is one blocking
// request with no automatic retry.
type Client interface {
	Transcribe(ctx context.Context, req TranscribeRequest) (models.Transcript, error)
	Refine(ctx context.Context, transcript string, llm models.LLMConfig) (models.RefinedText, error)
	Generate(ctx context.Context, workingText string, llm models.LLMConfig) (models.GeneratedNote, error)
}

// Profile selects which form fields /transcribe receives.
type Profile int

const (
	// ProfileLocal sends model_size and, unless auto, language.
	ProfileLocal Profile = iota
	// ProfileCredential sends credentials_json instead of model settings.
	ProfileCredential
)

type TranscribeRequest struct {
	Filename string
	Content  io.Reader
	Profile  Profile
	Config   models.TranscriptionConfig
	// CredentialsJSON is only sent with ProfileCredential and only when non-empty.
	CredentialsJSON string
	// OnUploaded is called once the request body has been fully written.
	OnUploaded func()
}
