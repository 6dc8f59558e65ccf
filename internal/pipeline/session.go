package pipeline

import (
	"context"

	"github.com/nguyentantai21042004/voice-note/internal/apperr"
	"github.com/nguyentantai21042004/voice-note/internal/credential"
	"github.com/nguyentantai21042004/voice-note/internal/intake"
	"github.com/nguyentantai21042004/voice-note/internal/logger"
	"github.com/nguyentantai21042004/voice-note/internal/models"
)

func (s *implSession) ID() string {
	return s.id
}

func (s *implSession) ctx(ctx context.Context) context.Context {
	return logger.WithRunID(ctx, s.id)
}

// SelectFile validates c and makes it the session's file. A rejected candidate
// leaves the previous selection in place.
func (s *implSession) SelectFile(c intake.Candidate) (intake.MediaFile, error) {
	ctx := s.ctx(context.Background())

	f, err := s.validator.Accept(c)
	if err != nil {
		s.logger.Warn(ctx, "Rejected %s: %v", c.Name, err)
		return intake.MediaFile{}, err
	}

	s.mu.Lock()
	if s.busy[StepTranscribe] {
		s.mu.Unlock()
		return intake.MediaFile{}, ErrStepBusy
	}
	if s.transcript != nil {
		s.mu.Unlock()
		return intake.MediaFile{}, ErrResetRequired
	}
	s.file = f
	s.epoch++
	snap := s.commitLocked()
	s.mu.Unlock()

	s.logger.Info(ctx, "Selected %s (%s, %s)", f.Name(), f.Kind(), f.SizeLabel())
	s.publish(Event{Type: EventSnapshot, Snapshot: snap})
	return f, nil
}

func (s *implSession) Reset() {
	s.mu.Lock()
	s.file = intake.MediaFile{}
	s.transcript = nil
	s.refined = nil
	s.note = nil
	s.epoch++
	snap := s.commitLocked()
	s.mu.Unlock()

	s.logger.Info(s.ctx(context.Background()), "Pipeline reset")
	s.publish(Event{Type: EventSnapshot, Snapshot: snap})
}

// SetCredential validates a service account document and keeps it in memory.
func (s *implSession) SetCredential(text string) error {
	cred, err := credential.Parse(text)
	if err != nil {
		return err
	}
	return s.UseCredential(cred)
}

func (s *implSession) UseCredential(cred credential.ServiceCredential) error {
	if cred.IsZero() {
		return apperr.New(apperr.KindValidation, "credential", credential.MsgEmpty)
	}

	s.mu.Lock()
	s.credential = cred
	snap := s.commitLocked()
	s.mu.Unlock()

	s.logger.Info(s.ctx(context.Background()), "Credential set: %s", cred)
	s.publish(Event{Type: EventSnapshot, Snapshot: snap})
	return nil
}

func (s *implSession) ClearCredential() {
	s.mu.Lock()
	s.credential = credential.ServiceCredential{}
	snap := s.commitLocked()
	s.mu.Unlock()

	s.publish(Event{Type: EventSnapshot, Snapshot: snap})
}

func (s *implSession) EditRefinedText(text string) error {
	s.mu.Lock()
	if s.transcript == nil {
		s.mu.Unlock()
		return ErrNoTranscript
	}
	s.refined = refinedOrNil(text)
	snap := s.commitLocked()
	s.mu.Unlock()

	s.publish(Event{Type: EventSnapshot, Step: StepRefine, Snapshot: snap})
	return nil
}

func (s *implSession) WorkingText() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.ResolveWorkingText(s.transcript, s.refined)
}

func (s *implSession) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for every event of this session. Events arrive in
// publish order. When no other delivery is running they are delivered before
// the publishing call returns.
func (s *implSession) Subscribe(fn func(Event)) (func(), error) {
	return s.events.subscribe(fn)
}

func (s *implSession) publish(e Event) {
	s.events.publish(e)
}

// commitLocked bumps the version and returns the new snapshot.
func (s *implSession) commitLocked() Snapshot {
	s.version++
	return s.snapshotLocked()
}

func (s *implSession) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID:     s.id,
		Version:       s.version,
		File:          s.file,
		Transcript:    clone(s.transcript),
		Refined:       clone(s.refined),
		Note:          clone(s.note),
		HasCredential: !s.credential.IsZero(),
		InFlight:      sortedSteps(s.busy),
	}
}

func refinedOrNil(text string) *models.RefinedText {
	if text == "" {
		return nil
	}
	return &models.RefinedText{Text: text}
}
