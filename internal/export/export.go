package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	transcriptFile     = "transcription.txt"
	transcriptDocxFile = "transcription.docx"
	refinedFile        = "refined.txt"
)

// Export writes the raw transcript, the refined text when present, and the
// note as markdown and docx into <outputDir>/<stem>/.
func (e *implExporter) Export(ctx context.Context, doc Document) (Files, error) {
	stem := fileStem(doc.Name)
	if stem == "" {
		return Files{}, fmt.Errorf("export: document has no name")
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	dir := filepath.Join(e.outputDir, stem)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Files{}, fmt.Errorf("create output dir: %w", err)
	}

	files := Files{
		Dir:            dir,
		Transcript:     filepath.Join(dir, transcriptFile),
		TranscriptDocx: filepath.Join(dir, transcriptDocxFile),
		Markdown:       filepath.Join(dir, stem+".md"),
		Docx:           filepath.Join(dir, stem+".docx"),
	}

	if err := os.WriteFile(files.Transcript, []byte(doc.Transcript.Text), 0644); err != nil {
		return Files{}, fmt.Errorf("write transcript: %w", err)
	}

	if doc.Refined != nil && doc.Refined.Text != "" {
		files.Refined = filepath.Join(dir, refinedFile)
		if err := os.WriteFile(files.Refined, []byte(doc.Refined.Text), 0644); err != nil {
			return Files{}, fmt.Errorf("write refined text: %w", err)
		}
	}

	md := renderMarkdown(doc)
	if err := os.WriteFile(files.Markdown, []byte(md), 0644); err != nil {
		return Files{}, fmt.Errorf("write markdown: %w", err)
	}

	// The text copies are already on disk, so docx failures only warn.
	if err := markdownToDocx(doc.Note.Title, doc.Note.Content, files.Docx); err != nil {
		e.logger.Warn(ctx, "Failed to write note docx for %s: %v", stem, err)
		files.Docx = ""
	}
	if err := transcriptToDocx(stem, doc.Transcript.Text, files.TranscriptDocx); err != nil {
		e.logger.Warn(ctx, "Failed to write transcript docx for %s: %v", stem, err)
		files.TranscriptDocx = ""
	}

	e.logger.Info(ctx, "[EXPORT] %s -> %s", doc.Name, dir)
	return files, nil
}

func renderMarkdown(doc Document) string {
	return fmt.Sprintf("# %s\n\n_%s_\n\n%s\n",
		doc.Note.Title,
		doc.CreatedAt.Format("2006-01-02 15:04"),
		strings.TrimSpace(doc.Note.Content),
	)
}

func fileStem(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
