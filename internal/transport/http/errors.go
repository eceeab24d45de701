package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"socialnet/chat-service/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrCannotChatWithSelf):
		return http.StatusBadRequest, "Cannot create a chat with yourself."
	case errors.Is(err, models.ErrInvalidArgument):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, models.ErrChatNotFound):
		return http.StatusNotFound, "Chat not found."
	case errors.Is(err, models.ErrUserNotFound):
		return http.StatusNotFound, "User not found."
	case errors.Is(err, models.ErrNotParticipant):
		return http.StatusForbidden, "User is not a participant in this chat."
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized. Authentication token is required."
	default:
		return http.StatusInternalServerError, "An unexpected internal server error occurred."
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("Request failed")
	}
	writeJSON(w, status, ErrorResponse{
		Status:     "error",
		StatusCode: status,
		Message:    message,
	})
}

func writeValidationError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{
		Status:     "error",
		StatusCode: http.StatusBadRequest,
		Message:    "Validation failed.",
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			resp.Errors = append(resp.Errors, FieldError{
				Field:   fe.Field(),
				Message: fieldMessage(fe),
				Value:   fe.Value(),
			})
		}
	} else {
		resp.Errors = []FieldError{{Message: err.Error()}}
	}

	writeJSON(w, http.StatusBadRequest, resp)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("%s is required.", fe.Field())
	case "uuid":
		return fmt.Sprintf("%s must be a valid user id.", fe.Field())
	default:
		return fmt.Sprintf("%s failed the %s check.", fe.Field(), fe.Tag())
	}
}
