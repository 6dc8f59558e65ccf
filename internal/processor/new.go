package processor

import (
	"github.com/nguyentantai21042004/voice-note/internal/config"
	"github.com/nguyentantai21042004/voice-note/internal/export"
	"github.com/nguyentantai21042004/voice-note/internal/intake"
	"github.com/nguyentantai21042004/voice-note/internal/logger"
	"github.com/nguyentantai21042004/voice-note/internal/pipeline"
)

// SessionFactory returns a fresh session for each processed file.
type SessionFactory func() pipeline.Session

type implProcessor struct {
	cfg        *config.Config
	validator  intake.Validator
	newSession SessionFactory
	exporter   export.Exporter
	logger     logger.Logger
}

// New creates a new Processor instance
func New(cfg *config.Config, v intake.Validator, newSession SessionFactory, exp export.Exporter, log logger.Logger) Processor {
	return &implProcessor{
		cfg:        cfg,
		validator:  v,
		newSession: newSession,
		exporter:   exp,
		logger:     log,
	}
}
