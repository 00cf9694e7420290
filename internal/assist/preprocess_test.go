package assist

import (
	"errors"
	"strings"
	"testing"
)

func TestPreprocess_Validation(t *testing.T) {
	p := NewPreprocessor(20, []string{"Gambling", " "})

	if _, err := p.Preprocess("   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if _, err := p.Preprocess(strings.Repeat("x", 21)); !errors.Is(err, ErrMessageTooLong) {
		t.Fatalf("expected ErrMessageTooLong, got %v", err)
	}
	if _, err := p.Preprocess("best GAMBLING spots"); !errors.Is(err, ErrForbiddenContent) {
		t.Fatalf("expected ErrForbiddenContent, got %v", err)
	}
}

func TestPreprocess_LengthIsRuneBased(t *testing.T) {
	p := NewPreprocessor(5, nil)

	// Five Arabic characters are more than five bytes but exactly five runes.
	if _, err := p.Preprocess("مرحبا"); err != nil {
		t.Fatalf("five runes must pass: %v", err)
	}
	if _, err := p.Preprocess("مرحبان"); !errors.Is(err, ErrMessageTooLong) {
		t.Fatalf("expected ErrMessageTooLong, got %v", err)
	}
}

func TestPreprocess_Normalization(t *testing.T) {
	p := NewPreprocessor(0, nil)

	cases := []struct {
		in   string
		want string
	}{
		{"  Hello   WORLD  ", "hello world"},
		{"hi <script src=\"x\">alert('x')</script> there", "hi there"},
		{"u r teh best", "you are the best"},
		{"wat r u selling", "what are you selling"},
		{"im 2 busy 4 this", "i am to busy for this"},
		{"show me some properties", "show me some properties"},
		{"r rural areas available", "are rural areas available"},
		{"vila prices pls", "villa prices please"},
	}
	for _, tc := range cases {
		got, err := p.Preprocess(tc.in)
		if err != nil {
			t.Fatalf("Preprocess(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Preprocess(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewPreprocessor_Defaults(t *testing.T) {
	p := NewPreprocessor(0, []string{"  Casino ", ""})
	if p.MaxChars != 1000 {
		t.Fatalf("expected default max, got %d", p.MaxChars)
	}
	if len(p.Forbidden) != 1 || p.Forbidden[0] != "casino" {
		t.Fatalf("forbidden list not normalized: %v", p.Forbidden)
	}
}
