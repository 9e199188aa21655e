package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gwi.com/chat-assistant/internal/core"
	"gwi.com/chat-assistant/internal/store"
)

// Multipart bodies above this size are spooled to temporary files.
const maxMultipartMemory = 32 << 20

type APIHandler struct {
	chatService *core.ChatService
	catalog     *core.ModelCatalog
	uploads     *core.UploadService
	logger      zerolog.Logger
}

func NewAPIHandler(cs *core.ChatService, mc *core.ModelCatalog, us *core.UploadService, logger zerolog.Logger) *APIHandler {
	return &APIHandler{
		chatService: cs,
		catalog:     mc,
		uploads:     us,
		logger:      logger,
	}
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

func (h *APIHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Web-based Chat Assistant API"})
}

type ListModelsResponse struct {
	Models []string `json:"models"`
}

func (h *APIHandler) ListModelsHandler(w http.ResponseWriter, r *http.Request) {
	models, err := h.catalog.ListModels(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListModelsResponse{Models: models})
}

type ChatResponse struct {
	ConversationID string `json:"conversation_id"`
	Response       string `json:"response"`
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid form body: "+err.Error())
		return
	}
	if _, ok := r.PostForm["message"]; !ok {
		writeDetail(w, http.StatusUnprocessableEntity, "message is required")
		return
	}

	out, err := h.chatService.Chat(r.Context(), core.ChatInput{
		Message:        r.PostForm.Get("message"),
		ConversationID: r.PostForm.Get("conversation_id"),
		Model:          r.PostForm.Get("model"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		ConversationID: out.ConversationID,
		Response:       out.Reply,
	})
}

type UploadResponse struct {
	Filename    string `json:"filename"`
	Message     string `json:"message"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size"`
}

func (h *APIHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid multipart body: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()

	stored, err := h.uploads.Store(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Filename:    stored.Filename,
		Message:     "File uploaded successfully.",
		ContentType: stored.ContentType,
		Size:        stored.Size,
	})
}

type StartConversationResponse struct {
	ConversationID string `json:"conversation_id"`
}

func (h *APIHandler) StartConversationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := h.chatService.StartConversation(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, StartConversationResponse{ConversationID: id})
}

type ConversationHistoryResponse struct {
	ConversationID string          `json:"conversation_id"`
	History        []store.Message `json:"history"`
}

func (h *APIHandler) ConversationHistoryHandler(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	history, err := h.chatService.History(r.Context(), conversationID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ConversationHistoryResponse{
		ConversationID: conversationID,
		History:        history,
	})
}

// writeError maps the service error taxonomy to a status code. The error text
// is returned to the client as-is.
func (h *APIHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrConversationNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrEmptyMessage):
		status = http.StatusUnprocessableEntity
	}

	event := h.logger.Warn()
	if status >= http.StatusInternalServerError {
		event = h.logger.Error()
	}

	var upstreamErr *core.UpstreamError
	var storageErr *core.StorageError
	switch {
	case errors.As(err, &upstreamErr):
		event = event.Str("error_kind", "upstream").Str("provider", upstreamErr.Provider)
	case errors.As(err, &storageErr):
		event = event.Str("error_kind", "storage")
	}

	event.Err(err).
		Str("path", r.URL.Path).
		Str("request_id", middleware.GetReqID(r.Context())).
		Int("status", status).
		Msg("request failed")

	writeDetail(w, status, err.Error())
}

// parseForm accepts urlencoded and multipart bodies.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxMultipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
