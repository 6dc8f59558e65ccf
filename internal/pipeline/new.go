package pipeline

import (
	"sync"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/voice-note/internal/credential"
	"github.com/nguyentantai21042004/voice-note/internal/engine"
	"github.com/nguyentantai21042004/voice-note/internal/intake"
	"github.com/nguyentantai21042004/voice-note/internal/logger"
	"github.com/nguyentantai21042004/voice-note/internal/models"
)

type implSession struct {
	id        string
	validator intake.Validator
	engine    engine.Client
	logger    logger.Logger
	profile   engine.Profile
	events    *dispatcher

	mu         sync.Mutex
	version    uint64
	epoch      uint64
	busy       map[Step]bool
	file       intake.MediaFile
	transcript *models.Transcript
	refined    *models.RefinedText
	note       *models.GeneratedNote
	credential credential.ServiceCredential
}

type Option func(*implSession)

// WithProfile selects the /transcribe profile. The default is engine.ProfileLocal.
func WithProfile(p engine.Profile) Option {
	return func(s *implSession) {
		s.profile = p
	}
}

// New creates an empty Session.
func New(v intake.Validator, client engine.Client, log logger.Logger, opts ...Option) Session {
	s := &implSession{
		id:        uuid.NewString(),
		validator: v,
		engine:    client,
		logger:    log,
		profile:   engine.ProfileLocal,
		busy:      make(map[Step]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.events = newDispatcher(topic(s.id))
	return s
}
