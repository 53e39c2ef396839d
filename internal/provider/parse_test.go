package provider

import (
	"errors"
	"testing"
)

func TestParseResponse_Generation(t *testing.T) {
	text, err := ParseResponse(Generation, []byte(`{"response":"hi"}`))
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if text != "hi" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestParseResponse_GenerationMissingField(t *testing.T) {
	_, err := ParseResponse(Generation, []byte(`{"done":true}`))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseResponse_MalformedJSON(t *testing.T) {
	_, err := ParseResponse(Generation, []byte(`{nope`))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseResponse_Chat(t *testing.T) {
	body := []byte(`{"candidates":[{"content":{"parts":[{"text":"hello"}]}}]}`)
	text, err := ParseResponse(Chat, body)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if text != "hello" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestParseResponse_ChatEmptyCandidates(t *testing.T) {
	_, err := ParseResponse(Chat, []byte(`{"candidates":[]}`))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseResponse_IsPure(t *testing.T) {
	body := []byte(`{"response":"same"}`)
	a, err1 := ParseResponse(Generation, body)
	b, err2 := ParseResponse(Generation, body)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v %v", err1, err2)
	}
	if a != b {
		t.Fatalf("same input must give same output: %q vs %q", a, b)
	}
}

func TestErrorMessage_ObjectShape(t *testing.T) {
	msg := ErrorMessage([]byte(`{"error":{"message":"rate limited"}}`), nil)
	if msg != "Error: rate limited" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestErrorMessage_StringShape(t *testing.T) {
	msg := ErrorMessage([]byte(`{"error":"model not found"}`), nil)
	if msg != "Error: model not found" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestErrorMessage_FallsBackToStderr(t *testing.T) {
	msg := ErrorMessage([]byte("not json"), []byte("curl: (7) connection refused"))
	if msg != "Error: curl: (7) connection refused" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestErrorMessage_Empty(t *testing.T) {
	if msg := ErrorMessage(nil, nil); msg != "Error: request failed" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestStripThink(t *testing.T) {
	got := StripThink("<think>reasoning</think>  Final answer")
	if got != "Final answer" {
		t.Fatalf("unexpected strip result: %q", got)
	}
}

func TestStripThink_NoBlock(t *testing.T) {
	if got := StripThink("  plain  "); got != "plain" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestStripThink_Multiline(t *testing.T) {
	in := "<think>line one\nline two</think>\nanswer"
	if got := StripThink(in); got != "answer" {
		t.Fatalf("unexpected: %q", got)
	}
}
