package intake

import (
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/voice-note/internal/apperr"
)

// Accept classifies c by file extension only. Content bytes are never inspected.
func (v *implValidator) Accept(c Candidate) (MediaFile, error) {
	if strings.TrimSpace(c.Name) == "" {
		return MediaFile{}, apperr.New(apperr.KindValidation, "accept", "No file selected")
	}

	ext := strings.ToLower(filepath.Ext(c.Name))
	if !v.allowed[ext] {
		return MediaFile{}, apperr.New(apperr.KindValidation, "accept", v.rejectionMessage())
	}

	kind := KindAudio
	if videoExtensions[ext] {
		kind = KindVideo
	}

	return MediaFile{
		name: c.Name,
		size: c.Size,
		kind: kind,
		open: c.Open,
	}, nil
}

// Accepts reports whether name has an accepted extension.
func (v *implValidator) Accepts(name string) bool {
	return v.allowed[strings.ToLower(filepath.Ext(name))]
}

// Extensions returns the accepted set in configuration order.
func (v *implValidator) Extensions() []string {
	out := make([]string, len(v.extensions))
	copy(out, v.extensions)
	return out
}

func (v *implValidator) rejectionMessage() string {
	return "Supported formats: " + strings.Join(v.extensions, ",")
}
