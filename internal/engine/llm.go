package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nguyentantai21042004/voice-note/internal/apperr"
	"github.com/nguyentantai21042004/voice-note/internal/models"
)

// llmRequest is the body of /refine_text and /generate_note. api_key is always
// present; an empty value tells the engine to use its local defaults.
type llmRequest struct {
	Transcript string `json:"transcript"`
	APIKey     string `json:"api_key"`
	BaseURL    string `json:"base_url,omitempty"`
	Model      string `json:"model"`
}

type refineResponse struct {
	RefinedText *string `json:"refined_text"`
}

type generateResponse struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func newLLMRequest(text string, llm models.LLMConfig) llmRequest {
	return llmRequest{
		Transcript: text,
		APIKey:     llm.APIKey(),
		BaseURL:    llm.BaseURL(),
		Model:      llm.Model,
	}
}

// Refine asks the engine to rewrite the transcript in a soft, polite tone.
// Every failure is reported as unavailable.
func (c *implClient) Refine(ctx context.Context, transcript string, llm models.LLMConfig) (models.RefinedText, error) {
	resp, err := c.postJSON(ctx, pathRefineText, newLLMRequest(transcript, llm))
	if err != nil {
		return models.RefinedText{}, apperr.Wrap(apperr.KindUnavailable, "refine", MsgRefineFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.RefinedText{}, statusError(resp, apperr.KindUnavailable, "refine", MsgRefineFailed)
	}

	var out refineResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.RefinedText{}, apperr.Wrap(apperr.KindUnavailable, "refine", MsgRefineFailed,
			fmt.Errorf("decode response: %w", err))
	}
	if out.RefinedText == nil {
		return models.RefinedText{}, apperr.New(apperr.KindUnavailable, "refine", MsgRefineFailed)
	}

	return models.RefinedText{Text: *out.RefinedText}, nil
}

// Generate asks the engine for an article built from workingText.
func (c *implClient) Generate(ctx context.Context, workingText string, llm models.LLMConfig) (models.GeneratedNote, error) {
	resp, err := c.postJSON(ctx, pathGenerateNote, newLLMRequest(workingText, llm))
	if err != nil {
		return models.GeneratedNote{}, apperr.Wrap(apperr.KindUnavailable, "generate", MsgGenerateUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.GeneratedNote{}, statusError(resp, apperr.KindRejected, "generate", MsgGenerateFailed)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.GeneratedNote{}, apperr.Wrap(apperr.KindUnavailable, "generate", MsgGenerateUnavailable,
			fmt.Errorf("decode response: %w", err))
	}
	if out.Title == nil || out.Content == nil {
		return models.GeneratedNote{}, apperr.New(apperr.KindUnavailable, "generate", MsgGenerateUnavailable)
	}

	return models.GeneratedNote{Title: *out.Title, Content: *out.Content}, nil
}

func (c *implClient) postJSON(ctx context.Context, path string, body llmRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug(ctx, "POST %s model=%s base_url=%s hosted=%t", path, body.Model, body.BaseURL, body.APIKey != "")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	return resp, nil
}
