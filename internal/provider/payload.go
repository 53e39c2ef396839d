package provider

import (
	"encoding/json"
	"fmt"
)

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type chatPart struct {
	Text string `json:"text"`
}

type chatContent struct {
	Parts []chatPart `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type chatRequest struct {
	Contents         []chatContent    `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

// BuildPayload assembles the JSON body for one request. A non-empty system
// prompt is concatenated before the user prompt with a blank-line separator.
func BuildPayload(kind Kind, model, systemPrompt, prompt string) ([]byte, error) {
	full := prompt
	if systemPrompt != "" {
		full = systemPrompt + "\n\n" + prompt
	}

	switch kind {
	case Generation:
		return json.Marshal(generateRequest{
			Model:  model,
			Prompt: full,
			Stream: false,
		})
	case Chat:
		return json.Marshal(chatRequest{
			Contents: []chatContent{
				{Parts: []chatPart{{Text: full}}},
			},
			GenerationConfig: generationConfig{
				Temperature:     0.7,
				MaxOutputTokens: 1000,
			},
		})
	default:
		return nil, fmt.Errorf("unknown provider kind: %v", kind)
	}
}
