package models

import "fmt"

// Endpoint is where the engine should send language model requests.
// It is either a LocalEndpoint or a HostedEndpoint.
type Endpoint interface {
	URL() string
	APIKey() string
	isEndpoint()
}

// LocalEndpoint is a keyless, OpenAI-compatible server such as Ollama.
type LocalEndpoint struct {
	BaseURL string
}

func (e LocalEndpoint) URL() string    { return e.BaseURL }
func (e LocalEndpoint) APIKey() string { return "" }
func (LocalEndpoint) isEndpoint()      {}

// HostedEndpoint is a provider that needs an API key. An empty BaseURL lets the
// engine use its provider default.
type HostedEndpoint struct {
	BaseURL string
	Key     string
}

func (e HostedEndpoint) URL() string    { return e.BaseURL }
func (e HostedEndpoint) APIKey() string { return e.Key }
func (HostedEndpoint) isEndpoint()      {}

// LLMConfig is shared by refinement and note generation.
type LLMConfig struct {
	Endpoint Endpoint
	Model    string
}

// APIKey returns the key to send, "" for local endpoints.
func (c LLMConfig) APIKey() string {
	if c.Endpoint == nil {
		return ""
	}
	return c.Endpoint.APIKey()
}

func (c LLMConfig) BaseURL() string {
	if c.Endpoint == nil {
		return ""
	}
	return c.Endpoint.URL()
}

// String never includes the API key.
func (c LLMConfig) String() string {
	kind := "local"
	if _, ok := c.Endpoint.(HostedEndpoint); ok {
		kind = "hosted"
	}
	return fmt.Sprintf("%s(%s, model=%s)", kind, c.BaseURL(), c.Model)
}

func (c LLMConfig) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("llm model is required")
	}
	if h, ok := c.Endpoint.(HostedEndpoint); ok && h.Key == "" {
		return fmt.Errorf("hosted llm endpoint needs an api key")
	}
	return nil
}
