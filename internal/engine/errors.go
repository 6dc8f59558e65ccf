package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nguyentantai21042004/voice-note/internal/apperr"
)

// User-facing fallbacks when the engine gives no reason of its own.
const (
	MsgTranscribeFailed      = "Processing failed"
	MsgTranscribeUnavailable = "An error occurred during transcription."
	MsgRefineFailed          = "Failed to refine text. Ensure Ollama/Local LLM is running."
	MsgGenerateFailed        = "Generation failed"
	MsgGenerateUnavailable   = "Failed to generate note. Check LLM connection."
)

const maxErrorBody = 1 << 20

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// extractDetail returns the engine's "detail" field. Strings come back verbatim,
// other JSON values in compact form. Missing, null or malformed bodies yield "".
func extractDetail(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var eb errorBody
	if err := json.Unmarshal(data, &eb); err != nil {
		return ""
	}
	raw := strings.TrimSpace(string(eb.Detail))
	if raw == "" || raw == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		return s
	}
	return raw
}

// statusError converts a non-2xx response into a typed error.
func statusError(resp *http.Response, kind apperr.Kind, op, fallback string) error {
	msg := extractDetail(resp.Body)
	if msg == "" {
		msg = fallback
	}
	return &apperr.Error{
		Kind:    kind,
		Op:      op,
		Message: msg,
		Cause:   &StatusError{Code: resp.StatusCode},
	}
}

// StatusError records the HTTP status of a failed engine call.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("engine http %d %s", e.Code, http.StatusText(e.Code))
}
