package assist

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestChunkText(t *testing.T) {
	if got := ChunkText("   ", 100); got != nil {
		t.Fatalf("blank text must yield no chunks, got %v", got)
	}
	if got := ChunkText("short reply", 100); len(got) != 1 || got[0] != "short reply" {
		t.Fatalf("small text must stay one chunk, got %v", got)
	}

	text := strings.Repeat("word ", 50)
	chunks := ChunkText(text, 32)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if len(c) >= 32 {
			t.Fatalf("chunk exceeds the byte cap: %d bytes", len(c))
		}
	}
	if strings.Join(chunks, " ") != strings.TrimSpace(text) {
		t.Fatal("chunks must reassemble the original text")
	}

	// A single oversized word becomes its own chunk rather than being split.
	long := strings.Repeat("x", 64)
	chunks = ChunkText("a "+long+" b", 32)
	found := false
	for _, c := range chunks {
		if c == long {
			found = true
		}
	}
	if !found {
		t.Fatalf("oversized word must survive whole: %v", chunks)
	}
}

func TestHandleAudioMessage_MissingAudio(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.HandleAudioMessage(context.Background(), nil, "c1", nil)
	if !errors.Is(err, ErrMissingAudio) {
		t.Fatalf("expected ErrMissingAudio, got %v", err)
	}
}

func TestHandleAudioMessage_Flow(t *testing.T) {
	svc, f := newTestService(t)
	f.scribe.transcript = "who are you?"

	out, err := svc.HandleAudioMessage(context.Background(), []byte{1, 2, 3}, "c1", nil)
	if err != nil {
		t.Fatalf("HandleAudioMessage: %v", err)
	}
	if out.UserMessage != "who are you?" {
		t.Fatalf("transcript missing: %q", out.UserMessage)
	}
	want := "I am Test Bot. How can I assist you with the digital services?"
	if out.Message != want {
		t.Fatalf("unexpected reply: %q", out.Message)
	}

	decoded, err := base64.StdEncoding.DecodeString(out.AudioBase64)
	if err != nil {
		t.Fatalf("audio is not valid base64: %v", err)
	}
	if string(decoded) != "AUD:"+want {
		t.Fatalf("unexpected synthesized payload: %q", decoded)
	}
}

func TestHandleAudioMessage_TranscribeError(t *testing.T) {
	svc, f := newTestService(t)
	f.scribe.err = errors.New("bad wav")

	_, err := svc.HandleAudioMessage(context.Background(), []byte{1}, "c1", nil)
	var up *UpstreamError
	if !errors.As(err, &up) || up.Provider != "stt" {
		t.Fatalf("expected stt upstream error, got %v", err)
	}
}

func TestHandleAudioMessage_SynthesisError(t *testing.T) {
	svc, f := newTestService(t)
	f.scribe.transcript = "who are you?"
	f.speech.err = errors.New("voice down")

	_, err := svc.HandleAudioMessage(context.Background(), []byte{1}, "c1", nil)
	var up *UpstreamError
	if !errors.As(err, &up) || up.Provider != "tts" {
		t.Fatalf("expected tts upstream error, got %v", err)
	}
}
