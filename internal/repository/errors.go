package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"socialnet/chat-service/internal/models"
)

const (
	pgForeignKeyViolation       = pq.ErrorCode("23503")
	pgUniqueViolation           = pq.ErrorCode("23505")
	pgCheckViolation            = pq.ErrorCode("23514")
	pgInvalidTextRepresentation = pq.ErrorCode("22P02")
	pgSerializationFailure      = pq.ErrorCode("40001")
	pgDeadlockDetected          = pq.ErrorCode("40P01")
)

// maxConflictAttempts bounds reruns of a statement or transaction that lost
// a row conflict to a concurrent status update.
const maxConflictAttempts = 5

func asPQError(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}

func isUniqueViolation(err error) bool {
	pqErr, ok := asPQError(err)
	return ok && pqErr.Code == pgUniqueViolation
}

func isConflict(err error) bool {
	pqErr, ok := asPQError(err)
	return ok && (pqErr.Code == pgSerializationFailure || pqErr.Code == pgDeadlockDetected)
}

func retryConflicts(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxConflictAttempts; attempt++ {
		if err = fn(); !isConflict(err) {
			return err
		}
	}
	return err
}

// translateError maps constraint failures onto domain errors.
func translateError(err error) error {
	pqErr, ok := asPQError(err)
	if !ok {
		return err
	}
	switch pqErr.Code {
	case pgForeignKeyViolation:
		if strings.Contains(pqErr.Constraint, "chat_id") {
			return fmt.Errorf("%w: %v", models.ErrChatNotFound, err)
		}
		return fmt.Errorf("%w: %v", models.ErrUserNotFound, err)
	case pgCheckViolation, pgInvalidTextRepresentation:
		return fmt.Errorf("%w: %v", models.ErrInvalidArgument, err)
	default:
		return err
	}
}
