package engine

import (
	"net/http"
	"strings"
	"time"

	"github.com/nguyentantai21042004/voice-note/internal/logger"
)

const (
	pathTranscribe   = "/transcribe"
	pathRefineText   = "/refine_text"
	pathGenerateNote = "/generate_note"
)

type implClient struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	logger  logger.Logger
}

type Option func(*implClient)

// WithTimeout bounds each engine call. Zero disables the client-side timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *implClient) {
		c.timeout = d
	}
}

// New creates an engine Client for the service at baseURL.
func New(baseURL string, log logger.Logger, opts ...Option) Client {
	c := &implClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = &http.Client{Timeout: c.timeout}
	return c
}

func (c *implClient) url(path string) string {
	return c.baseURL + path
}
