package http

type CreateChatRequest struct {
	OtherUserID string `json:"otherUserId" validate:"required,uuid"`
}

// SendMessageRequest accepts the text under "text" or, for older clients,
// under "message". Length is checked by the service once the text is
// trimmed.
type SendMessageRequest struct {
	Text    string `json:"text" validate:"required_without=Message"`
	Message string `json:"message"`
}

func (r SendMessageRequest) Content() string {
	if r.Text != "" {
		return r.Text
	}
	return r.Message
}

type MarkReadResponse struct {
	Count   int    `json:"count"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Status     string       `json:"status"`
	StatusCode int          `json:"statusCode"`
	Message    string       `json:"message"`
	Errors     []FieldError `json:"errors,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}
