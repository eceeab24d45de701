package models

import (
	"time"
)

// UserSummary is the public profile of a chat participant.
type UserSummary struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"profilePictureUrl"`
}

// Chat is a two-party conversation. UserID1 is always the lower of the two
// participant ids, UserID2 the higher one.
type Chat struct {
	ID        string       `json:"id"`
	UserID1   string       `json:"user1Id"`
	UserID2   string       `json:"user2Id"`
	User1     *UserSummary `json:"user1,omitempty"`
	User2     *UserSummary `json:"user2,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// HasParticipant reports whether userID is one of the two chat members.
func (c *Chat) HasParticipant(userID string) bool {
	return c.UserID1 == userID || c.UserID2 == userID
}


type Message struct {
	ID        string        `json:"id"`
	ChatID    string        `json:"chatId"`
	SenderID  string        `json:"senderId"`
	Content   string        `json:"message"`
	Status    MessageStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	ReadAt    *time.Time    `json:"readAt,omitempty"`
	Sender    *UserSummary  `json:"sender,omitempty"`
}

// MessagePage is one page of chat history, ordered oldest first.
type MessagePage struct {
	TotalPages    int        `json:"totalPages"`
	CurrentPage   int        `json:"currentPage"`
	TotalMessages int        `json:"totalMessages"`
	Messages      []*Message `json:"messages"`
}

// MessageBatch is what a history read returns from storage: the messages,
// the chat's message count taken from the same snapshot, and how many
// messages the read moved to delivered.
type MessageBatch struct {
	Messages  []*Message
	Total     int
	Delivered int
}

// ChatSummary is a chat as seen from one participant in the chat list.
type ChatSummary struct {
	ID          string       `json:"id"`
	UserID1     string       `json:"-"`
	UserID2     string       `json:"-"`
	User1       *UserSummary `json:"-"`
	User2       *UserSummary `json:"-"`
	OtherUser   *UserSummary `json:"otherUser"`
	LastMessage *Message     `json:"lastMessage"`
	UnreadCount int          `json:"unreadCount"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// OtherParticipant returns the summary of the member that is not userID.
func (s *ChatSummary) OtherParticipant(userID string) *UserSummary {
	if s.UserID1 == userID {
		return s.User2
	}
	return s.User1
}

// LastActivity is the time the chat list is ordered by.
func (s *ChatSummary) LastActivity() time.Time {
	if s.LastMessage != nil {
		return s.LastMessage.CreatedAt
	}
	return s.UpdatedAt
}
