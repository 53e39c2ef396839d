package provider

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPayload_Generation(t *testing.T) {
	data, err := BuildPayload(Generation, "llama3.2", "", "say hi")
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, "llama3.2", out["model"])
	require.Equal(t, "say hi", out["prompt"])
	require.Equal(t, false, out["stream"])
}

func TestBuildPayload_GenerationWithSystemPrompt(t *testing.T) {
	data, err := BuildPayload(Generation, "llama3.2", "You are terse.", "say hi")
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, "You are terse.\n\nsay hi", out["prompt"])
}

func TestBuildPayload_Chat(t *testing.T) {
	data, err := BuildPayload(Chat, "gemini-1.5-flash", "", "say hi")
	require.NoError(t, err)

	var out struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
		GenerationConfig struct {
			Temperature     float64 `json:"temperature"`
			MaxOutputTokens int     `json:"maxOutputTokens"`
		} `json:"generationConfig"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out.Contents, 1)
	require.Len(t, out.Contents[0].Parts, 1)
	require.Equal(t, "say hi", out.Contents[0].Parts[0].Text)
	require.Equal(t, 0.7, out.GenerationConfig.Temperature)
	require.Equal(t, 1000, out.GenerationConfig.MaxOutputTokens)
}

func TestBuildPayload_UnknownKind(t *testing.T) {
	_, err := BuildPayload(Kind(99), "m", "", "p")
	require.Error(t, err)
}
