package pipeline

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/voice-note/internal/apperr"
	"github.com/nguyentantai21042004/voice-note/internal/engine"
	"github.com/nguyentantai21042004/voice-note/internal/models"
)

// Transcribe uploads the selected file. Success replaces the transcript and
// clears refined text and note in the same update, so no stale result survives.
// Failure leaves every slot untouched.
func (s *implSession) Transcribe(ctx context.Context, cfg models.TranscriptionConfig) (models.Transcript, error) {
	ctx = s.ctx(ctx)

	if s.profile == engine.ProfileLocal && !cfg.ModelSize.Valid() {
		return models.Transcript{}, apperr.New(apperr.KindValidation, "transcribe",
			fmt.Sprintf("Unknown model size %q", cfg.ModelSize))
	}

	s.mu.Lock()
	if s.file.IsZero() {
		s.mu.Unlock()
		return models.Transcript{}, ErrNoFile
	}
	if s.busy[StepTranscribe] {
		s.mu.Unlock()
		return models.Transcript{}, ErrStepBusy
	}
	s.busy[StepTranscribe] = true
	file := s.file
	epoch := s.epoch
	creds := s.credential.JSON()
	s.mu.Unlock()

	s.logger.Info(ctx, "Transcribing %s (model=%s, language=%s)", file.Name(), cfg.ModelSize, cfg.Language)
	s.publish(Event{Type: EventStatus, Step: StepTranscribe, Status: StatusUploading})

	content, err := file.Open()
	if err != nil {
		err = apperr.Wrap(apperr.KindValidation, "transcribe", "Could not read the selected file", err)
		return models.Transcript{}, s.fail(ctx, StepTranscribe, err)
	}
	defer content.Close()

	tr, err := s.engine.Transcribe(ctx, engine.TranscribeRequest{
		Filename:        file.Name(),
		Content:         content,
		Profile:         s.profile,
		Config:          cfg,
		CredentialsJSON: creds,
		OnUploaded: func() {
			s.publish(Event{Type: EventStatus, Step: StepTranscribe, Status: StatusListening})
		},
	})
	if err != nil {
		return models.Transcript{}, s.fail(ctx, StepTranscribe, err)
	}

	s.mu.Lock()
	delete(s.busy, StepTranscribe)
	if s.epoch != epoch {
		snap := s.commitLocked()
		s.mu.Unlock()
		s.publish(Event{Type: EventSnapshot, Step: StepTranscribe, Snapshot: snap})
		return models.Transcript{}, ErrSessionReset
	}
	s.transcript = &tr
	s.refined = nil
	s.note = nil
	s.epoch++
	snap := s.commitLocked()
	s.mu.Unlock()

	s.logger.Info(ctx, "Transcription completed: %d characters", len([]rune(tr.Text)))
	s.publish(Event{Type: EventSnapshot, Step: StepTranscribe, Snapshot: snap})
	return tr, nil
}

// Refine rewrites the raw transcript. A failed call keeps the previous refined text.
func (s *implSession) Refine(ctx context.Context, llm models.LLMConfig) (models.RefinedText, error) {
	ctx = s.ctx(ctx)

	if err := llm.Validate(); err != nil {
		return models.RefinedText{}, apperr.Wrap(apperr.KindValidation, "refine", err.Error(), err)
	}

	s.mu.Lock()
	if s.transcript == nil {
		s.mu.Unlock()
		return models.RefinedText{}, ErrNoTranscript
	}
	if s.busy[StepRefine] {
		s.mu.Unlock()
		return models.RefinedText{}, ErrStepBusy
	}
	s.busy[StepRefine] = true
	text := s.transcript.Text
	epoch := s.epoch
	s.mu.Unlock()

	s.logger.Info(ctx, "Refining transcript with %s", llm)

	refined, err := s.engine.Refine(ctx, text, llm)
	if err != nil {
		return models.RefinedText{}, s.fail(ctx, StepRefine, err)
	}

	s.mu.Lock()
	delete(s.busy, StepRefine)
	if s.epoch != epoch {
		snap := s.commitLocked()
		s.mu.Unlock()
		s.publish(Event{Type: EventSnapshot, Step: StepRefine, Snapshot: snap})
		return models.RefinedText{}, ErrSessionReset
	}
	s.refined = refinedOrNil(refined.Text)
	snap := s.commitLocked()
	s.mu.Unlock()

	s.logger.Info(ctx, "Refinement completed")
	s.publish(Event{Type: EventSnapshot, Step: StepRefine, Snapshot: snap})
	return refined, nil
}

// Generate resolves the working text at call time, so a refined text edited
// after an earlier generation is what a regeneration sends.
func (s *implSession) Generate(ctx context.Context, llm models.LLMConfig) (models.GeneratedNote, error) {
	ctx = s.ctx(ctx)

	if err := llm.Validate(); err != nil {
		return models.GeneratedNote{}, apperr.Wrap(apperr.KindValidation, "generate", err.Error(), err)
	}

	s.mu.Lock()
	text, ok := models.ResolveWorkingText(s.transcript, s.refined)
	if !ok {
		s.mu.Unlock()
		return models.GeneratedNote{}, ErrNoWorkingText
	}
	if s.busy[StepGenerate] {
		s.mu.Unlock()
		return models.GeneratedNote{}, ErrStepBusy
	}
	s.busy[StepGenerate] = true
	usingRefined := s.refined != nil
	epoch := s.epoch
	s.mu.Unlock()

	s.logger.Info(ctx, "Generating note with %s (refined=%t)", llm, usingRefined)

	note, err := s.engine.Generate(ctx, text, llm)
	if err != nil {
		return models.GeneratedNote{}, s.fail(ctx, StepGenerate, err)
	}

	s.mu.Lock()
	delete(s.busy, StepGenerate)
	if s.epoch != epoch {
		snap := s.commitLocked()
		s.mu.Unlock()
		s.publish(Event{Type: EventSnapshot, Step: StepGenerate, Snapshot: snap})
		return models.GeneratedNote{}, ErrSessionReset
	}
	s.note = &note
	snap := s.commitLocked()
	s.mu.Unlock()

	s.logger.Info(ctx, "Note generated: %s", note.Title)
	s.publish(Event{Type: EventSnapshot, Step: StepGenerate, Snapshot: snap})
	return note, nil
}

// fail releases the step, reports err to subscribers and returns it unchanged.
func (s *implSession) fail(ctx context.Context, step Step, err error) error {
	s.mu.Lock()
	delete(s.busy, step)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Error(ctx, "Step %s failed: %v", step, err)
	s.publish(Event{
		Type:     EventError,
		Step:     step,
		Message:  apperr.MessageOf(err),
		Err:      err,
		Snapshot: snap,
	})
	return err
}
