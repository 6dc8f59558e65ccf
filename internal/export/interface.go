package export

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/voice-note/internal/models"
)

// Document is everything one finished run produced.
type Document struct {
	// Name is the source file name. Output files are named after its stem.
	Name       string
	Transcript models.Transcript
	Refined    *models.RefinedText
	Note       models.GeneratedNote
	CreatedAt  time.Time
}

// Files lists what Export wrote. Refined is empty when there was no refined text;
// the docx paths are empty when rendering them failed.
type Files struct {
	Dir            string
	Transcript     string
	TranscriptDocx string
	Refined        string
	Markdown       string
	Docx           string
}

// Exporter writes a run's results to disk.
type Exporter interface {
	Export(ctx context.Context, doc Document) (Files, error)
}
