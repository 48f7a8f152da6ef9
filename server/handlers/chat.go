// Package handlers contains the HTTP handlers for the chat API.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/socialwiz/wingman/errors"
	"github.com/socialwiz/wingman/server/middleware"
	"github.com/socialwiz/wingman/server/processing"
	"github.com/socialwiz/wingman/server/provider"
)

// allowedImageTypes is the MIME whitelist for chat screenshot uploads.
var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
}

// ChatHandler serves POST /v1/chat, the single multipart endpoint for all
// three modes.
type ChatHandler struct {
	processor      *processing.Processor
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(processor *processing.Processor, maxUploadBytes int64, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		processor:      processor,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		errors.WriteError(w, errors.NewValidationError(requestID,
			"request must be multipart/form-data within the upload size limit",
			map[string]interface{}{"error": err.Error()}))
		return
	}

	mode := strings.ToLower(strings.TrimSpace(r.FormValue("mode")))
	disabledTraits := parseDisabledTraits(r.FormValue("disabled_traits"))

	image, werr := h.readImage(r, requestID)
	if werr != nil {
		errors.WriteError(w, werr)
		return
	}

	var (
		reply processing.Reply
		err   error
	)
	switch mode {
	case "rewrite":
		reply, err = h.processor.Rewrite(r.Context(), processing.RewriteRequest{
			OriginalMessage: r.FormValue("original_message"),
			Draft:           r.FormValue("draft"),
			Mood:            r.FormValue("mood"),
			PersonalContext: r.FormValue("context"),
			DisabledTraits:  disabledTraits,
			Image:           image,
		})
	case "icebreaker":
		reply, err = h.processor.Icebreaker(r.Context(), processing.IcebreakerRequest{
			OpenerType:     r.FormValue("opener_type"),
			Context:        r.FormValue("context"),
			DisabledTraits: disabledTraits,
		})
	case "curveball":
		reply, err = h.processor.Curveball(r.Context(), processing.CurveballRequest{
			Situation:      r.FormValue("situation"),
			Mood:           r.FormValue("mood"),
			DisabledTraits: disabledTraits,
			Image:          image,
		})
	default:
		errors.WriteError(w, errors.NewValidationError(requestID,
			fmt.Sprintf("invalid mode %q, must be rewrite, icebreaker, or curveball", mode),
			map[string]interface{}{"field": "mode"}))
		return
	}

	if err != nil {
		var werr *errors.WingmanError
		if stderrors.As(err, &werr) {
			errors.WriteError(w, werr)
			return
		}
		errors.WriteError(w, errors.NewInternalError(requestID, err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reply); err != nil {
		h.logger.Error("failed to encode chat response",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
	}
}

// readImage pulls the optional screenshot out of the form and enforces the
// MIME whitelist. A missing file is not an error.
func (h *ChatHandler) readImage(r *http.Request, requestID string) (*provider.Image, *errors.WingmanError) {
	file, header, err := r.FormFile("file")
	if err != nil {
		if stderrors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, errors.NewValidationError(requestID, "could not read uploaded file",
			map[string]interface{}{"field": "file", "error": err.Error()})
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		return nil, errors.NewValidationError(requestID,
			fmt.Sprintf("file must be one of: PNG, JPEG, WEBP, HEIC, HEIF. Received: %s", contentType),
			map[string]interface{}{"field": "file", "content_type": contentType})
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewValidationError(requestID, "could not read uploaded file",
			map[string]interface{}{"field": "file", "error": err.Error()})
	}

	return &provider.Image{Data: data, MIME: contentType}, nil
}

func parseDisabledTraits(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	traits := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			traits = append(traits, t)
		}
	}
	return traits
}
