package models

import "errors"

var (
	ErrCannotChatWithSelf = errors.New("cannot chat with self")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrChatNotFound       = errors.New("chat not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotParticipant     = errors.New("user is not a participant in this chat")
	ErrUnauthorized       = errors.New("unauthorized")
)
