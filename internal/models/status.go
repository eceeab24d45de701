package models

import (
	"database/sql/driver"
	"fmt"
)

// MessageStatus is the delivery state of a message. States are ordered
// sent < delivered < read and a message never moves backwards.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

var knownStatuses = map[MessageStatus]struct{}{
	StatusSent:      {},
	StatusDelivered: {},
	StatusRead:      {},
}

func ParseMessageStatus(s string) (MessageStatus, error) {
	st := MessageStatus(s)
	if _, ok := knownStatuses[st]; !ok {
		return "", fmt.Errorf("unknown message status %q", s)
	}
	return st, nil
}

func (s MessageStatus) Valid() bool {
	_, ok := knownStatuses[s]
	return ok
}

func (s MessageStatus) String() string {
	return string(s)
}

// Value implements driver.Valuer so the status binds to the message_status enum.
func (s MessageStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid message status %q", string(s))
	}
	return string(s), nil
}

// Scan implements sql.Scanner.
func (s *MessageStatus) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into MessageStatus", src)
	}
	st, err := ParseMessageStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}
