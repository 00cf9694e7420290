// Assistant HTTP handlers.
//
// This file exposes the conversational endpoints:
//   - POST /assistant/chat        (text message in, structured reply out)
//   - POST /assistant/chat/audio  (multipart audio in, reply plus speech out)
//
// Handlers are transport-thin: they validate input, call the assistant
// service, and translate pipeline errors into HTTP responses.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aellithy/go-portfolio-assistant/internal/assist"
	"github.com/aellithy/go-portfolio-assistant/internal/domain"
)

// maxAudioBytes bounds the uploaded recording size (the router also caps the
// whole request body).
const maxAudioBytes = 10 << 20

//
// Service contracts (context-aware)
//

// AssistantService defines the conversational operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AssistantService interface {
	// HandleMessage runs one text message through the reply pipeline.
	HandleMessage(ctx context.Context, message, conversationID string, history []domain.Turn) (*assist.Reply, error)
	// HandleAudioMessage transcribes a recording, answers it, and returns
	// synthesized speech alongside the reply.
	HandleAudioMessage(ctx context.Context, audio []byte, conversationID string, history []domain.Turn) (*assist.AudioReply, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints of the assistant API.
type Handlers struct {
	svc AssistantService
}

// New constructs and returns a Handlers instance bound to the given service.
func New(svc AssistantService) *Handlers {
	return &Handlers{svc: svc}
}

//
// DTOs
//

// TurnDTO is one prior exchange supplied by the client.
type TurnDTO struct {
	// Role is "user" or "assistant"; anything else is treated as "user".
	Role string `json:"role" example:"user"`
	// Message is the text of that turn.
	Message string `json:"message" example:"do you have any villas?"`
}

// ChatRequest is the JSON payload for the text endpoint.
type ChatRequest struct {
	// Message is the user's utterance.
	Message string `json:"message" binding:"required" example:"tell me about the skyline tower project"`
	// ConversationID groups turns of one visitor; a fresh ID is assigned
	// when empty.
	ConversationID string `json:"conversationId" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	// History is the prior exchange, oldest first.
	History []TurnDTO `json:"history"`
}

// ChatResponse is the reply envelope shared by both endpoints.
//
// Message is null when a resolved entity carries the whole answer. The
// slice fields are always present, empty rather than null.
type ChatResponse struct {
	Message        *string         `json:"message"`
	Product        *domain.Entity  `json:"product"`
	Project        *domain.Entity  `json:"project"`
	Developer      *domain.Entity  `json:"developer"`
	User           *domain.Entity  `json:"user"`
	Products       []domain.Entity `json:"products"`
	Projects       []domain.Entity `json:"projects"`
	Developers     []domain.Entity `json:"developers"`
	Links          []domain.Link   `json:"links"`
	Suggestions    []domain.Entity `json:"suggestions"`
	UserLanguage   string          `json:"userLanguage" example:"en"`
	ConversationID string          `json:"conversationId"`
}

// AudioChatResponse extends ChatResponse with the transcript and the
// synthesized speech.
type AudioChatResponse struct {
	ChatResponse
	// UserMessage is the Whisper transcript of the uploaded recording.
	UserMessage string `json:"userMessage"`
	// Audio is the base64-encoded synthesized reply; empty when the reply
	// had no text.
	Audio string `json:"audio"`
	// Translations is reserved for per-language variants of the reply and is
	// currently always null.
	Translations any `json:"translations"`
}

//
// Helpers
//

// toTurns converts client history into domain turns, coercing unknown roles
// to "user".
func toTurns(in []TurnDTO) []domain.Turn {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Turn, 0, len(in))
	for _, t := range in {
		role := domain.RoleUser
		if t.Role == domain.RoleAssistant {
			role = domain.RoleAssistant
		}
		out = append(out, domain.Turn{Role: role, Message: t.Message})
	}
	return out
}

// toResponse maps a pipeline reply onto the wire envelope.
func toResponse(r *assist.Reply, conversationID string) ChatResponse {
	resp := ChatResponse{
		Product:        r.Product,
		Project:        r.Project,
		Developer:      r.Developer,
		User:           r.User,
		Products:       r.Products,
		Projects:       r.Projects,
		Developers:     r.Developers,
		Links:          r.Links,
		Suggestions:    []domain.Entity{},
		UserLanguage:   r.UserLanguage,
		ConversationID: conversationID,
	}
	if r.Message != "" {
		msg := r.Message
		resp.Message = &msg
	}
	if resp.Products == nil {
		resp.Products = []domain.Entity{}
	}
	if resp.Projects == nil {
		resp.Projects = []domain.Entity{}
	}
	if resp.Developers == nil {
		resp.Developers = []domain.Entity{}
	}
	if resp.Links == nil {
		resp.Links = []domain.Link{}
	}
	return resp
}

// failPipeline maps pipeline errors onto HTTP statuses and stable codes.
func failPipeline(c *gin.Context, err error) {
	var up *assist.UpstreamError
	switch {
	case errors.Is(err, assist.ErrEmptyMessage):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message must not be empty")
	case errors.Is(err, assist.ErrMessageTooLong):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message exceeds the maximum length")
	case errors.Is(err, assist.ErrMissingAudio):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "audio file required")
	case errors.Is(err, assist.ErrForbiddenContent):
		fail(c, http.StatusUnprocessableEntity, ErrCodePolicyRejected, "message contains forbidden content")
	case errors.Is(err, assist.ErrEmptyCompletion):
		fail(c, http.StatusInternalServerError, ErrCodeGenerationFailed, "the model returned an empty reply")
	case errors.As(err, &up):
		failWithDetails(c, http.StatusInternalServerError, ErrCodeUpstreamFailed,
			up.Provider+" request failed", up.Err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

//
// Handlers
//

// Chat godoc
// @ID          chat
// @Summary     Send a chat message
// @Description Runs one user message through the reply pipeline and returns the structured reply in the user's language.
// @Tags        Assistant
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.ChatRequest  true  "Chat payload"
//
// @Success     200  {object}  handlers.ChatResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     422  {object}  handlers.ErrorResponse  "Forbidden content"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /assistant/chat [post]
func (h *Handlers) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	conversationID := strings.TrimSpace(req.ConversationID)
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	reply, err := h.svc.HandleMessage(c.Request.Context(), req.Message, conversationID, toTurns(req.History))
	if err != nil {
		failPipeline(c, err)
		return
	}
	ok(c, http.StatusOK, toResponse(reply, conversationID))
}

// ChatAudio godoc
// @ID          chatAudio
// @Summary     Send a voice message
// @Description Transcribes the uploaded recording, answers it, and returns the reply together with synthesized speech.
// @Tags        Assistant
// @Accept      multipart/form-data
// @Produce     json
//
// @Param       audio           formData  file    true   "Recorded audio"
// @Param       conversationId  formData  string  false  "Conversation ID"
// @Param       history         formData  string  false  "Prior turns as a JSON array"
//
// @Success     200  {object}  handlers.AudioChatResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     422  {object}  handlers.ErrorResponse  "Forbidden content"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /assistant/chat/audio [post]
func (h *Handlers) ChatAudio(c *gin.Context) {
	file, _, err := c.Request.FormFile("audio")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "audio file required")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "could not read audio file")
		return
	}

	conversationID := strings.TrimSpace(c.PostForm("conversationId"))
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	var history []TurnDTO
	if raw := strings.TrimSpace(c.PostForm("history")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &history); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "history must be a JSON array of turns")
			return
		}
	}

	reply, err := h.svc.HandleAudioMessage(c.Request.Context(), audio, conversationID, toTurns(history))
	if err != nil {
		failPipeline(c, err)
		return
	}

	resp := AudioChatResponse{
		ChatResponse: toResponse(&reply.Reply, conversationID),
		UserMessage:  reply.UserMessage,
		Audio:        reply.AudioBase64,
	}
	ok(c, http.StatusOK, resp)
}
