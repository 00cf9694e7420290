// Package providers implements the external collaborators of the assistant
// pipeline: the OpenAI client (chat completion, Whisper transcription, speech
// synthesis) and the translation client.
package providers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/aellithy/go-portfolio-assistant/internal/domain"
)

// Completion sampling parameters.
const (
	completionTemperature = 0.5
	completionMaxTokens   = 800
)

// OpenAIClient implements the pipeline's Completer, SpeechSynthesizer, and
// Transcriber contracts on top of the OpenAI API.
type OpenAIClient struct {
	client    *openai.Client
	chatModel string
	sttModel  string
	ttsModel  string
	ttsVoice  string
}

// NewOpenAIClient constructs an OpenAIClient for the given key and models.
// Empty model names fall back to gpt-4 / whisper-1 / tts-1 with the alloy
// voice.
func NewOpenAIClient(apiKey, chatModel, sttModel, ttsModel, ttsVoice string) *OpenAIClient {
	if chatModel == "" {
		chatModel = openai.GPT4
	}
	if sttModel == "" {
		sttModel = openai.Whisper1
	}
	if ttsModel == "" {
		ttsModel = string(openai.TTSModel1)
	}
	if ttsVoice == "" {
		ttsVoice = string(openai.VoiceAlloy)
	}
	return &OpenAIClient{
		client:    openai.NewClient(apiKey),
		chatModel: chatModel,
		sttModel:  sttModel,
		ttsModel:  ttsModel,
		ttsVoice:  ttsVoice,
	}
}

// Complete sends the system prompt and turn sequence to the chat-completions
// API and returns the first choice's content.
func (c *OpenAIClient) Complete(ctx context.Context, system string, turns []domain.Turn) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, t := range turns {
		role := openai.ChatMessageRoleUser
		if t.Role == domain.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Message})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    messages,
		Temperature: completionTemperature,
		MaxTokens:   completionMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Transcribe converts recorded audio to text with Whisper. The buffer is
// spooled to a temporary file because the API wants a named upload; the file
// is removed on every exit path.
func (c *OpenAIClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("assist_audio_%d.wav", time.Now().UnixNano()))
	if err := os.WriteFile(tmpPath, audio, 0o600); err != nil {
		return "", fmt.Errorf("spool audio: %w", err)
	}
	defer os.Remove(tmpPath)

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.sttModel,
		FilePath: tmpPath,
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	return resp.Text, nil
}

// Synthesize renders one text chunk to audio bytes. Language is carried in
// the text itself; the voice is fixed by configuration.
func (c *OpenAIClient) Synthesize(ctx context.Context, text, _ string) ([]byte, error) {
	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(c.ttsModel),
		Input: text,
		Voice: openai.SpeechVoice(c.ttsVoice),
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("speech read: %w", err)
	}
	return audio, nil
}
