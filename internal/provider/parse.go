package provider

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseError means the HTTP call itself succeeded but the body is not the
// JSON shape the provider schema promises.
type ParseError struct {
	Kind   Kind
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s response: %s", e.Kind, e.Reason)
}

type generateResponse struct {
	Response *string `json:"response"`
}

type chatResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// ParseResponse extracts the generated text from a success body. It is a
// pure function: the same body and kind always yield the same result.
func ParseResponse(kind Kind, body []byte) (string, error) {
	switch kind {
	case Generation:
		var out generateResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return "", &ParseError{Kind: kind, Reason: err.Error()}
		}
		if out.Response == nil {
			return "", &ParseError{Kind: kind, Reason: "missing 'response' field"}
		}
		return *out.Response, nil
	case Chat:
		var out chatResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return "", &ParseError{Kind: kind, Reason: err.Error()}
		}
		if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
			return "", &ParseError{Kind: kind, Reason: "missing candidates[0].content.parts[0].text"}
		}
		return out.Candidates[0].Content.Parts[0].Text, nil
	default:
		return "", &ParseError{Kind: kind, Reason: "unknown provider kind"}
	}
}

// ErrorMessage tries to decode a provider error object, first from stdout
// then from stderr. Both `{"error":"..."}` and `{"error":{"message":"..."}}`
// shapes are understood. When neither body parses, the raw stderr text is
// returned (or stdout when stderr is empty).
func ErrorMessage(stdout, stderr []byte) string {
	for _, body := range [][]byte{stdout, stderr} {
		if msg, ok := decodeErrorBody(body); ok {
			return "Error: " + msg
		}
	}
	raw := strings.TrimSpace(string(stderr))
	if raw == "" {
		raw = strings.TrimSpace(string(stdout))
	}
	if raw == "" {
		raw = "request failed"
	}
	return "Error: " + raw
}

// ErrorBody decodes a single provider error object, reporting whether one
// was present.
func ErrorBody(body []byte) (string, bool) {
	return decodeErrorBody(body)
}

func decodeErrorBody(body []byte) (string, bool) {
	if len(body) == 0 {
		return "", false
	}
	var wrapper struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil || len(wrapper.Error) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(wrapper.Error, &s); err == nil && s != "" {
		return s, true
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(wrapper.Error, &obj); err == nil && obj.Message != "" {
		return obj.Message, true
	}
	return "", false
}

var thinkRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThink removes delimited reasoning blocks from model output and trims
// the surrounding whitespace.
func StripThink(text string) string {
	return strings.TrimSpace(thinkRe.ReplaceAllString(text, ""))
}
