package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/aellithy/go-portfolio-assistant/internal/assist"
	"github.com/aellithy/go-portfolio-assistant/internal/domain"
)

type fakeAssistant struct {
	reply      *assist.Reply
	audioReply *assist.AudioReply
	err        error

	gotMessage string
	gotConvID  string
	gotHistory []domain.Turn
	gotAudio   []byte
}

func (f *fakeAssistant) HandleMessage(_ context.Context, message, conversationID string, history []domain.Turn) (*assist.Reply, error) {
	f.gotMessage = message
	f.gotConvID = conversationID
	f.gotHistory = history
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func (f *fakeAssistant) HandleAudioMessage(_ context.Context, audio []byte, conversationID string, history []domain.Turn) (*assist.AudioReply, error) {
	f.gotAudio = audio
	f.gotConvID = conversationID
	f.gotHistory = history
	if f.err != nil {
		return nil, f.err
	}
	return f.audioReply, nil
}

func newTestRouter(svc *fakeAssistant) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(svc)
	r.POST("/assistant/chat", h.Chat)
	r.POST("/assistant/chat/audio", h.ChatAudio)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChat_Success(t *testing.T) {
	svc := &fakeAssistant{reply: &assist.Reply{
		Message:      "Hello!",
		Links:        []domain.Link{{Label: "Skyline", URL: "https://example.com/product/p1"}},
		Products:     []domain.Entity{},
		Projects:     []domain.Entity{},
		Developers:   []domain.Entity{},
		UserLanguage: "en",
	}}
	r := newTestRouter(svc)

	w := postJSON(t, r, "/assistant/chat", ChatRequest{
		Message:        "hi",
		ConversationID: "conv-7",
		History:        []TurnDTO{{Role: "assistant", Message: "previous"}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message == nil || *resp.Message != "Hello!" {
		t.Fatalf("unexpected message: %v", resp.Message)
	}
	if resp.ConversationID != "conv-7" {
		t.Fatalf("conversation id not echoed: %q", resp.ConversationID)
	}
	if len(resp.Links) != 1 || resp.Suggestions == nil {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if svc.gotConvID != "conv-7" || len(svc.gotHistory) != 1 || svc.gotHistory[0].Role != domain.RoleAssistant {
		t.Fatalf("service received wrong arguments: %q %+v", svc.gotConvID, svc.gotHistory)
	}
}

func TestChat_NullMessageForEntityReply(t *testing.T) {
	svc := &fakeAssistant{reply: &assist.Reply{
		Product:      &domain.Entity{ID: "p1", Name: "Skyline", Image: "img"},
		Products:     []domain.Entity{{ID: "p1", Name: "Skyline", Image: "img"}},
		UserLanguage: "en",
	}}
	r := newTestRouter(svc)

	w := postJSON(t, r, "/assistant/chat", ChatRequest{Message: "product: skyline"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if string(raw["message"]) != "null" {
		t.Fatalf("entity reply must serialize message as null, got %s", raw["message"])
	}
	if string(raw["links"]) != "[]" {
		t.Fatalf("nil links must serialize as [], got %s", raw["links"])
	}
}

func TestChat_AssignsConversationID(t *testing.T) {
	svc := &fakeAssistant{reply: &assist.Reply{Message: "ok", UserLanguage: "en"}}
	r := newTestRouter(svc)

	w := postJSON(t, r, "/assistant/chat", ChatRequest{Message: "hi"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ConversationID == "" || resp.ConversationID != svc.gotConvID {
		t.Fatalf("a fresh conversation id must be assigned and echoed: %q vs %q",
			resp.ConversationID, svc.gotConvID)
	}
}

func TestChat_InvalidJSON(t *testing.T) {
	r := newTestRouter(&fakeAssistant{})

	req := httptest.NewRequest(http.MethodPost, "/assistant/chat", strings.NewReader("{nope"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Code != ErrCodeBadRequest {
		t.Fatalf("unexpected code: %q", resp.Code)
	}
}

func TestChat_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"empty message", assist.ErrEmptyMessage, http.StatusBadRequest, ErrCodeBadRequest},
		{"too long", assist.ErrMessageTooLong, http.StatusBadRequest, ErrCodeBadRequest},
		{"forbidden", assist.ErrForbiddenContent, http.StatusUnprocessableEntity, ErrCodePolicyRejected},
		{"empty completion", assist.ErrEmptyCompletion, http.StatusInternalServerError, ErrCodeGenerationFailed},
		{"upstream", &assist.UpstreamError{Provider: "openai", Err: errors.New("quota")}, http.StatusInternalServerError, ErrCodeUpstreamFailed},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&fakeAssistant{err: tc.err})
			w := postJSON(t, r, "/assistant/chat", ChatRequest{Message: "x"})
			if w.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, w.Code)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if resp.Code != tc.wantCode {
				t.Fatalf("expected code %q, got %q", tc.wantCode, resp.Code)
			}
		})
	}
}

func TestChatAudio_Success(t *testing.T) {
	svc := &fakeAssistant{audioReply: &assist.AudioReply{
		Reply:       assist.Reply{Message: "Spoken reply", UserLanguage: "en"},
		UserMessage: "what time is it",
		AudioBase64: "QVVE",
	}}
	r := newTestRouter(svc)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("audio", "msg.wav")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte{1, 2, 3}); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	_ = mw.WriteField("conversationId", "conv-9")
	_ = mw.WriteField("history", `[{"role":"user","message":"earlier"}]`)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/assistant/chat/audio", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp AudioChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.UserMessage != "what time is it" || resp.Audio != "QVVE" {
		t.Fatalf("unexpected audio payload: %+v", resp)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode raw response: %v", err)
	}
	if string(raw["translations"]) != "null" {
		t.Fatalf("translations must serialize as null, got %s", raw["translations"])
	}
	if string(svc.gotAudio) != "\x01\x02\x03" || svc.gotConvID != "conv-9" {
		t.Fatalf("service received wrong arguments: %v %q", svc.gotAudio, svc.gotConvID)
	}
	if len(svc.gotHistory) != 1 || svc.gotHistory[0].Message != "earlier" {
		t.Fatalf("history not forwarded: %+v", svc.gotHistory)
	}
}

func TestChatAudio_MissingFile(t *testing.T) {
	r := newTestRouter(&fakeAssistant{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("conversationId", "c1")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/assistant/chat/audio", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestChatAudio_BadHistoryJSON(t *testing.T) {
	r := newTestRouter(&fakeAssistant{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("audio", "msg.wav")
	_, _ = fw.Write([]byte{1})
	_ = mw.WriteField("history", "{not an array")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/assistant/chat/audio", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
