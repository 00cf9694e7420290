// Package assist – audio flow
//
// The audio flow wraps the text pipeline: inbound audio is transcribed and
// fed to HandleMessage, the finalized reply is synthesized back to speech.
// Synthesis providers cap the payload size per request, so long replies are
// split into word-boundary chunks under the byte limit, synthesized
// independently, and the binary results concatenated. Base64 encoding happens
// once at the boundary.
package assist

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"

	"github.com/aellithy/go-portfolio-assistant/internal/domain"
)

// ChunkText splits text into word-boundary chunks whose UTF-8 size stays
// under maxBytes. A single word longer than maxBytes becomes its own chunk;
// the provider rejects it rather than us corrupting it mid-rune.
func ChunkText(text string, maxBytes int) []string {
	if maxBytes <= 0 {
		maxBytes = 5000
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder
	for _, w := range words {
		// +1 for the joining space
		if current.Len() > 0 && current.Len()+1+len(w) >= maxBytes {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(w)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// synthesize renders text to a single base64 audio payload, chunking under
// the configured byte cap and concatenating the binary results.
func (s *Service) synthesize(ctx context.Context, text, lang string) (string, error) {
	var buf bytes.Buffer
	for _, chunk := range ChunkText(text, s.opts.TTSMaxBytes) {
		audio, err := s.Speech.Synthesize(ctx, chunk, lang)
		if err != nil {
			return "", upstream("tts", err)
		}
		buf.Write(audio)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// HandleAudioMessage transcribes the recording, runs the text pipeline on
// the transcript, and attaches synthesized speech for the reply.
func (s *Service) HandleAudioMessage(ctx context.Context, audio []byte, conversationID string, history []domain.Turn) (*AudioReply, error) {
	ctx, span := s.tracer.Start(ctx, "Service.HandleAudioMessage")
	defer span.End()

	if len(audio) == 0 {
		return nil, ErrMissingAudio
	}

	transcript, err := s.Transcriber.Transcribe(ctx, audio)
	if err != nil {
		err = upstream("stt", err)
		observeUpstream(err)
		return nil, err
	}

	reply, err := s.HandleMessage(ctx, transcript, conversationID, history)
	if err != nil {
		return nil, err
	}

	out := &AudioReply{Reply: *reply, UserMessage: transcript}
	if reply.Message != "" {
		encoded, err := s.synthesize(ctx, reply.Message, reply.UserLanguage)
		if err != nil {
			observeUpstream(err)
			return nil, err
		}
		out.AudioBase64 = encoded
	}
	return out, nil
}
