// Package credential validates Google Cloud service account documents for the
// hosted speech profile. Credentials are kept in memory and never written to disk.
package credential

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nguyentantai21042004/voice-note/internal/apperr"
)

const serviceAccountType = "service_account"

// User-visible rejection reasons.
const (
	MsgEmpty          = "Cannot be empty"
	MsgInvalidJSON    = "Invalid JSON format"
	MsgInvalidAccount = "Invalid Service Account JSON"
)

// ServiceCredential is a structurally valid service account document.
type ServiceCredential struct {
	raw         string
	projectID   string
	clientEmail string
}

func (c ServiceCredential) ProjectID() string   { return c.projectID }
func (c ServiceCredential) ClientEmail() string { return c.clientEmail }

// JSON returns the document exactly as it was supplied.
func (c ServiceCredential) JSON() string { return c.raw }

func (c ServiceCredential) IsZero() bool { return c.raw == "" }

// String identifies the account without exposing key material.
func (c ServiceCredential) String() string {
	if c.IsZero() {
		return "service_account(none)"
	}
	return fmt.Sprintf("service_account(%s)", c.clientEmail)
}

// Parse requires a JSON object whose "type" is "service_account".
func Parse(text string) (ServiceCredential, error) {
	if strings.TrimSpace(text) == "" {
		return ServiceCredential{}, apperr.New(apperr.KindValidation, "credential", MsgEmpty)
	}

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return ServiceCredential{}, apperr.Wrap(apperr.KindValidation, "credential", MsgInvalidJSON, err)
	}
	if parsed == nil {
		return ServiceCredential{}, apperr.New(apperr.KindValidation, "credential", MsgInvalidJSON)
	}

	doc, ok := parsed.(map[string]any)
	if !ok {
		return ServiceCredential{}, apperr.New(apperr.KindValidation, "credential", MsgInvalidAccount)
	}

	if t, _ := doc["type"].(string); t != serviceAccountType {
		return ServiceCredential{}, apperr.New(apperr.KindValidation, "credential", MsgInvalidAccount)
	}

	projectID, _ := doc["project_id"].(string)
	clientEmail, _ := doc["client_email"].(string)
	return ServiceCredential{
		raw:         text,
		projectID:   projectID,
		clientEmail: clientEmail,
	}, nil
}

// LoadFile reads and validates a credential document from path.
func LoadFile(path string) (ServiceCredential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ServiceCredential{}, fmt.Errorf("read credentials file: %w", err)
	}
	return Parse(string(data))
}
