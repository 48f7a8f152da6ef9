package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/socialwiz/wingman/config"
	"github.com/socialwiz/wingman/server/mocks"
	"github.com/socialwiz/wingman/server/processing"
	"github.com/socialwiz/wingman/server/provider"
	"github.com/socialwiz/wingman/server/vision"
)

func newTestHandler(groq, gemini *mocks.MockGenerator, visionMock *mocks.MockVision) *ChatHandler {
	var extractor *vision.Extractor
	if visionMock != nil {
		extractor = vision.NewExtractor(visionMock, zap.NewNop())
	}
	p := processing.NewProcessor(processing.ProcessorOptions{
		Groq:      groq,
		Gemini:    gemini,
		Extractor: extractor,
		Logger:    zap.NewNop(),
		Chat: config.ChatConfig{
			FallbackPolicy:    config.FallbackPropagate,
			GenerationTimeout: 5 * time.Second,
			VisionTimeout:     5 * time.Second,
			MaxOutputTokens:   1024,
		},
	})
	return NewChatHandler(p, 10<<20, zap.NewNop())
}

type formFile struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, fields map[string]string, file *formFile) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+file.field+`"; filename="`+file.filename+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestChatRewrite(t *testing.T) {
	gemini := mocks.NewMockGenerator("gemini", `{"reply": "Not much, just living my best life. You?"}`)
	h := newTestHandler(mocks.NewMockGenerator("groq", ""), gemini, nil)

	req := multipartRequest(t, map[string]string{
		"mode":             "rewrite",
		"original_message": "Hey, what are you up to?",
		"draft":            "Nothing much",
		"mood":             "casual",
	}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Not much, just living my best life. You?", body["reply"])
}

func TestChatMissingRequiredField(t *testing.T) {
	gemini := mocks.NewMockGenerator("gemini", `{"reply": "x"}`)
	h := newTestHandler(mocks.NewMockGenerator("groq", ""), gemini, nil)

	req := multipartRequest(t, map[string]string{
		"mode":             "rewrite",
		"original_message": "Hey",
	}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, gemini.Calls)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body["type"])
}

func TestChatInvalidMode(t *testing.T) {
	h := newTestHandler(mocks.NewMockGenerator("groq", ""), mocks.NewMockGenerator("gemini", ""), nil)

	req := multipartRequest(t, map[string]string{"mode": "mode4"}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid mode")
}

func TestChatIcebreaker(t *testing.T) {
	groq := mocks.NewMockGenerator("groq", `{"reply": "Would you rather always be early or always be late?"}`)
	h := newTestHandler(groq, mocks.NewMockGenerator("gemini", ""), nil)

	req := multipartRequest(t, map[string]string{
		"mode":        "icebreaker",
		"opener_type": "would_you_rather",
	}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, groq.Calls, 1)
}

func TestChatCurveballWithImage(t *testing.T) {
	gemini := mocks.NewMockGenerator("gemini", `{"reply": "Well, that escalated quickly!"}`)
	visionMock := &mocks.MockVision{
		DescribeFunc: func(ctx context.Context, instruction string, image provider.Image) (string, error) {
			return "A chat where one side stopped replying mid-topic.", nil
		},
	}
	h := newTestHandler(mocks.NewMockGenerator("groq", ""), gemini, visionMock)

	req := multipartRequest(t, map[string]string{
		"mode":      "curveball",
		"situation": "She left me on read for two days",
		"mood":      "sarcastic",
	}, &formFile{
		field:       "file",
		filename:    "chat.png",
		contentType: "image/png",
		data:        []byte{0x89, 0x50, 0x4e, 0x47},
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, visionMock.Instructions, 1)
	assert.Contains(t, gemini.Calls[0].Prompt, "A chat where one side stopped replying mid-topic.")
}

func TestChatRejectsDisallowedMIME(t *testing.T) {
	gemini := mocks.NewMockGenerator("gemini", `{"reply": "x"}`)
	h := newTestHandler(mocks.NewMockGenerator("groq", ""), gemini, &mocks.MockVision{})

	req := multipartRequest(t, map[string]string{
		"mode":      "curveball",
		"situation": "odd moment",
	}, &formFile{
		field:       "file",
		filename:    "notes.pdf",
		contentType: "application/pdf",
		data:        []byte("%PDF-1.4"),
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "application/pdf")
	assert.Empty(t, gemini.Calls)
}

func TestChatDisabledTraitsParsing(t *testing.T) {
	gemini := mocks.NewMockGenerator("gemini", `{"reply": "ok"}`)
	h := newTestHandler(mocks.NewMockGenerator("groq", ""), gemini, nil)

	req := multipartRequest(t, map[string]string{
		"mode":             "rewrite",
		"original_message": "hi",
		"draft":            "hey",
		"disabled_traits":  " bold_energy , flirty_vibes ",
	}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, gemini.Calls, 1)
	assert.NotContains(t, gemini.Calls[0].Prompt, "Bold energy")
	assert.NotContains(t, gemini.Calls[0].Prompt, "Flirty vibes")
	assert.Contains(t, gemini.Calls[0].Prompt, "Fun vibes only")
}

func TestChatProviderErrorStatus(t *testing.T) {
	gemini := &mocks.MockGenerator{
		ProviderName: "gemini",
		GenerateFunc: func(ctx context.Context, prompt string, opts provider.Options) (string, error) {
			return "", context.Canceled
		},
	}
	h := newTestHandler(mocks.NewMockGenerator("groq", ""), gemini, nil)

	req := multipartRequest(t, map[string]string{
		"mode":             "rewrite",
		"original_message": "hi",
		"draft":            "hey",
	}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "provider_error", body["type"])
	assert.NotContains(t, body, "reply")
}

func TestInfoHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	InfoHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	modes, ok := body["modes"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, modes, "rewrite")
	assert.Contains(t, modes, "icebreaker")
	assert.Contains(t, modes, "curveball")
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	HealthHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
