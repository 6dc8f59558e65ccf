package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/nguyentantai21042004/voice-note/internal/apperr"
	"github.com/nguyentantai21042004/voice-note/internal/config"
	"github.com/nguyentantai21042004/voice-note/internal/credential"
	"github.com/nguyentantai21042004/voice-note/internal/export"
	"github.com/nguyentantai21042004/voice-note/internal/intake"
	"github.com/nguyentantai21042004/voice-note/internal/logger"
	"github.com/nguyentantai21042004/voice-note/internal/pipeline"
)

// Process orchestrates one file through transcription, optional refinement,
// note generation and export.
func (p *implProcessor) Process(ctx context.Context, path string) error {
	startTime := time.Now()

	sess := p.newSession()
	ctx = logger.WithRunID(ctx, sess.ID())

	unsubscribe, err := sess.Subscribe(p.logEvent(ctx))
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer unsubscribe()

	candidate, err := intake.FromPath(path)
	if err != nil {
		return fmt.Errorf("open media: %w", err)
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting: %s (%s)", path, humanize.Bytes(uint64(candidate.Size)))
	p.logger.Info(ctx, "========================================")

	// Step 1: Select
	if _, err := sess.SelectFile(candidate); err != nil {
		return fmt.Errorf("select: %w", err)
	}

	if p.cfg.Transcription.Profile == config.ProfileGCP {
		if err := p.loadCredential(sess); err != nil {
			return err
		}
	}

	// Step 2: Transcribe
	tr, err := sess.Transcribe(ctx, p.cfg.TranscriptionSettings())
	if err != nil {
		return fmt.Errorf("transcribe: %w", err)
	}
	p.logger.Info(ctx, "Transcript: %s characters", humanize.Comma(int64(len([]rune(tr.Text)))))

	llm, err := p.cfg.LLMSettings()
	if err != nil {
		return fmt.Errorf("llm settings: %w", err)
	}

	// Step 3: Refine (optional, failure falls back to the raw transcript)
	if p.cfg.Pipeline.Refine {
		if _, err := sess.Refine(ctx, llm); err != nil {
			p.logger.Warn(ctx, "Refinement skipped, using raw transcript: %s", apperr.MessageOf(err))
		}
	}

	// Step 4: Generate
	note, err := sess.Generate(ctx, llm)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	// Step 5: Export
	snap := sess.Snapshot()
	files, err := p.exporter.Export(ctx, export.Document{
		Name:       candidate.Name,
		Transcript: *snap.Transcript,
		Refined:    snap.Refined,
		Note:       note,
		CreatedAt:  startTime,
	})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	// Step 6: Move source to archived folder
	if err := p.moveToArchived(ctx, path); err != nil {
		p.logger.Warn(ctx, "Failed to move source to archived folder: %v", err)
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Processing completed successfully!")
	p.logger.Info(ctx, "Note: %s", note.Title)
	p.logger.Info(ctx, "Output: %s", files.Dir)
	p.logger.Info(ctx, "Processing time: %s", time.Since(startTime).Round(time.Millisecond))
	p.logger.Info(ctx, "========================================")

	return nil
}

// ProcessAll runs Process for every path, at most performance.max_concurrent at a time.
func (p *implProcessor) ProcessAll(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		p.logger.Info(ctx, "No media files to process")
		return nil
	}

	sem := newSemaphore(p.cfg.Performance.MaxConcurrent)
	results := make(chan error, len(paths))

	p.logger.Info(ctx, "Found %d media files to process", len(paths))

	launched := 0
	for i, path := range paths {
		if err := sem.acquire(ctx); err != nil {
			break
		}
		launched++
		p.logger.Info(ctx, "[%d/%d] Queued: %s", i+1, len(paths), filepath.Base(path))
		go func(path string) {
			defer sem.release()
			err := p.Process(ctx, path)
			if err != nil {
				p.logger.Error(ctx, "Failed to process %s: %v", path, err)
			}
			results <- err
		}(path)
	}

	failCount := len(paths) - launched
	for i := 0; i < launched; i++ {
		if err := <-results; err != nil {
			failCount++
		}
	}

	p.logger.Info(ctx, "Batch complete: %d success, %d failed", len(paths)-failCount, failCount)
	if failCount > 0 {
		return fmt.Errorf("%d of %d files failed", failCount, len(paths))
	}
	return ctx.Err()
}

func (p *implProcessor) loadCredential(sess pipeline.Session) error {
	cred, err := credential.LoadFile(p.cfg.Transcription.CredentialsFile)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	return sess.UseCredential(cred)
}

// logEvent mirrors session status and error events into the log.
func (p *implProcessor) logEvent(ctx context.Context) func(pipeline.Event) {
	return func(e pipeline.Event) {
		switch e.Type {
		case pipeline.EventStatus:
			p.logger.Info(ctx, "[%s] %s", e.Step, e.Status)
		case pipeline.EventSnapshot:
			p.logger.Debug(ctx, "Session v%d (in flight: %v)", e.Snapshot.Version, e.Snapshot.InFlight)
		}
	}
}
