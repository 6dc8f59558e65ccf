package models

import (
	"fmt"
	"strings"
)

// ModelSize selects the speech model used by the local transcription engine.
type ModelSize string

const (
	ModelTiny   ModelSize = "tiny"
	ModelBase   ModelSize = "base"
	ModelSmall  ModelSize = "small"
	ModelMedium ModelSize = "medium"
	ModelLarge  ModelSize = "large"
)

var modelSizes = []ModelSize{ModelTiny, ModelBase, ModelSmall, ModelMedium, ModelLarge}

func (m ModelSize) Valid() bool {
	for _, s := range modelSizes {
		if m == s {
			return true
		}
	}
	return false
}

// ParseModelSize normalizes s and checks it against the known sizes.
func ParseModelSize(s string) (ModelSize, error) {
	m := ModelSize(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown model size %q (want one of %s)", s, joinSizes())
	}
	return m, nil
}

func joinSizes() string {
	names := make([]string, len(modelSizes))
	for i, s := range modelSizes {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// LanguageAuto asks the engine to detect the spoken language.
const LanguageAuto = "auto"

type TranscriptionConfig struct {
	ModelSize ModelSize
	Language  string
}

// WireLanguage returns the language field to send. Auto detection is expressed by
// leaving the field out, so ok is false for "" and "auto".
func (c TranscriptionConfig) WireLanguage() (lang string, ok bool) {
	lang = strings.TrimSpace(c.Language)
	if lang == "" || strings.EqualFold(lang, LanguageAuto) {
		return "", false
	}
	return lang, true
}

type Transcript struct {
	Text string
}

// RefinedText is the tone-refined transcript, possibly edited by hand.
type RefinedText struct {
	Text string
}

// GeneratedNote is the finished article.
type GeneratedNote struct {
	Title   string
	Content string
}

// ResolveWorkingText picks the text sent to note generation: the refined text when
// one is present, the raw transcript otherwise. ok is false when neither exists.
func ResolveWorkingText(transcript *Transcript, refined *RefinedText) (text string, ok bool) {
	if refined != nil && refined.Text != "" {
		return refined.Text, true
	}
	if transcript != nil && transcript.Text != "" {
		return transcript.Text, true
	}
	return "", false
}
