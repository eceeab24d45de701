package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"socialnet/chat-service/internal/auth"
	"socialnet/chat-service/internal/service"
)

type Handler struct {
	service  service.ChatService
	logger   *logrus.Logger
	validate *validator.Validate
}

func NewHandler(svc service.ChatService, logger *logrus.Logger) *Handler {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		service:  svc,
		logger:   logger,
		validate: validate,
	}
}

// GET /chats
func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	chats, err := h.service.GetUserChats(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chats)
}

// POST /chats
func (h *Handler) CreateChat(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req CreateChatRequest
	if !h.decode(w, r, &req) {
		return
	}

	chat, err := h.service.GetOrCreateChat(r.Context(), userID, req.OtherUserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chat)
}

// GET /chats/{chatID}
func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	chat, err := h.service.GetChat(r.Context(), chi.URLParam(r, "chatID"), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chat)
}

// POST /chats/{chatID}/messages
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req SendMessageRequest
	if !h.decode(w, r, &req) {
		return
	}

	msg, err := h.service.SendMessage(r.Context(), chi.URLParam(r, "chatID"), userID, req.Content())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// GET /chats/{chatID}/messages?page=&limit=
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	limit, err := queryInt(r, "limit", service.DefaultPageSize)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	result, err := h.service.GetChatMessages(r.Context(), chi.URLParam(r, "chatID"), userID, page, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// PATCH /chats/{chatID}/messages/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	count, err := h.service.MarkMessagesAsRead(r.Context(), chi.URLParam(r, "chatID"), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MarkReadResponse{
		Count:   count,
		Message: fmt.Sprintf("%d messages marked as read.", count),
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Status:     "error",
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid JSON body.",
		})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeValidationError(w, err)
		return false
	}
	return true
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}
