package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/nguyentantai21042004/voice-note/internal/apperr"
	"github.com/nguyentantai21042004/voice-note/internal/models"
)

type transcribeResponse struct {
	Transcript *string `json:"transcript"`
}

// Transcribe uploads the media file as a single multipart request.
// The body is streamed, so large videos are never held in memory.
func (c *implClient) Transcribe(ctx context.Context, req TranscribeRequest) (models.Transcript, error) {
	if req.Content == nil {
		return models.Transcript{}, apperr.New(apperr.KindValidation, "transcribe", "No file selected")
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := writeTranscribeForm(mw, req)
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
		if err == nil && req.OnUploaded != nil {
			req.OnUploaded()
		}
	}()
	// Unblock the writer if the transport stopped reading early.
	defer func() {
		pr.Close()
		<-done
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(pathTranscribe), pr)
	if err != nil {
		return models.Transcript{}, apperr.Wrap(apperr.KindUnavailable, "transcribe", MsgTranscribeUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	c.logger.Debug(ctx, "POST %s file=%s profile=%d", pathTranscribe, req.Filename, req.Profile)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return models.Transcript{}, apperr.Wrap(apperr.KindUnavailable, "transcribe", MsgTranscribeUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Transcript{}, statusError(resp, apperr.KindRejected, "transcribe", MsgTranscribeFailed)
	}

	var out transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.Transcript{}, apperr.Wrap(apperr.KindUnavailable, "transcribe", MsgTranscribeUnavailable,
			fmt.Errorf("decode response: %w", err))
	}
	if out.Transcript == nil {
		return models.Transcript{}, apperr.New(apperr.KindUnavailable, "transcribe", MsgTranscribeUnavailable)
	}

	return models.Transcript{Text: *out.Transcript}, nil
}

// writeTranscribeForm writes the form fields in the order the engine documents:
// file first, then either model settings or the service account document.
func writeTranscribeForm(mw *multipart.Writer, req TranscribeRequest) error {
	fw, err := mw.CreateFormFile("file", req.Filename)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(fw, req.Content); err != nil {
		return fmt.Errorf("copy file content: %w", err)
	}

	switch req.Profile {
	case ProfileCredential:
		if req.CredentialsJSON != "" {
			if err := mw.WriteField("credentials_json", req.CredentialsJSON); err != nil {
				return fmt.Errorf("write credentials_json: %w", err)
			}
		}
	default:
		if err := mw.WriteField("model_size", string(req.Config.ModelSize)); err != nil {
			return fmt.Errorf("write model_size: %w", err)
		}
		if lang, ok := req.Config.WireLanguage(); ok {
			if err := mw.WriteField("language", lang); err != nil {
				return fmt.Errorf("write language: %w", err)
			}
		}
	}

	return nil
}
