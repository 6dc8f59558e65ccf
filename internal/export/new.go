package export

import (
	"github.com/nguyentantai21042004/voice-note/internal/logger"
)

type implExporter struct {
	outputDir string
	logger    logger.Logger
}

// New creates an Exporter writing one folder per document under outputDir.
func New(outputDir string, log logger.Logger) Exporter {
	return &implExporter{
		outputDir: outputDir,
		logger:    log,
	}
}
