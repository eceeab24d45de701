package service

import (
	"fmt"

	"github.com/google/uuid"

	"socialnet/chat-service/internal/models"
)

// OrderPair canonicalizes two user ids into (low, high) so that the same
// two users always resolve to the same chat, whoever starts it. Ids are
// compared in their canonical UUID text form, which matches the byte order
// Postgres uses for the uuid type.
func OrderPair(userA, userB string) (string, string, error) {
	a, err := parseID(userA)
	if err != nil {
		return "", "", err
	}
	b, err := parseID(userB)
	if err != nil {
		return "", "", err
	}

	if a == b {
		return "", "", models.ErrCannotChatWithSelf
	}
	if a < b {
		return a, b, nil
	}
	return b, a, nil
}

func parseID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: malformed id %q", models.ErrInvalidArgument, id)
	}
	return parsed.String(), nil
}
