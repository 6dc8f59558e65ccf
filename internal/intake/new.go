package intake

import "strings"

// DefaultExtensions is the accepted set of the reference deployment.
var DefaultExtensions = []string{".mp3", ".wav", ".mp4", ".m4a", ".ogg", ".webm"}

// videoExtensions are containers shown as video in display metadata.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
}

type implValidator struct {
	extensions []string
	allowed    map[string]bool
}

// New creates a Validator for the given extensions. An empty list means DefaultExtensions.
func New(extensions []string) Validator {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	v := &implValidator{allowed: make(map[string]bool, len(extensions))}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if v.allowed[ext] {
			continue
		}
		v.allowed[ext] = true
		v.extensions = append(v.extensions, ext)
	}
	return v
}
