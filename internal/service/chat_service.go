//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"socialnet/chat-service/internal/metrics"
	"socialnet/chat-service/internal/models"
	"socialnet/chat-service/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPageSize     = 30
	MaxPageSize         = 100
	DefaultHistoryLimit = 50
	MaxMessageLength    = 2000
)

type ChatService interface {
	GetOrCreateChat(ctx context.Context, userID, otherUserID string) (*models.Chat, error)
	GetChat(ctx context.Context, chatID, userID string) (*models.Chat, error)
	GetUserChats(ctx context.Context, userID string) ([]*models.ChatSummary, error)
	SendMessage(ctx context.Context, chatID, senderID, content string) (*models.Message, error)
	GetChatMessages(ctx context.Context, chatID, userID string, page, limit int) (*models.MessagePage, error)
	GetChatMessagesBefore(ctx context.Context, chatID, userID string, limit int, beforeMessageID string) ([]*models.Message, error)
	MarkMessagesAsRead(ctx context.Context, chatID, userID string) (int, error)
}

type chatService struct {
	repository repository.ChatRepository
	logger     *logrus.Logger
	metrics    *metrics.Metrics
}

func NewChatService(repo repository.ChatRepository, logger *logrus.Logger, m *metrics.Metrics) ChatService {
	return &chatService{
		repository: repo,
		logger:     logger,
		metrics:    m,
	}
}

func (s *chatService) GetOrCreateChat(ctx context.Context, userID, otherUserID string) (*models.Chat, error) {
	low, high, err := OrderPair(userID, otherUserID)
	if err != nil {
		return nil, err
	}

	existingChat, err := s.repository.GetChatByUsers(ctx, low, high)
	if err == nil {
		return existingChat, nil
	}
	if !errors.Is(err, models.ErrChatNotFound) {
		s.logger.WithError(err).Error("Failed to look up chat")
		return nil, err
	}

	chat := &models.Chat{
		ID:      uuid.New().String(),
		UserID1: low,
		UserID2: high,
	}

	if err := s.repository.CreateChat(ctx, chat); err != nil {
		if !errors.Is(err, models.ErrUserNotFound) {
			s.logger.WithError(err).Error("Failed to create chat")
		}
		return nil, err
	}

	// A concurrent request may have won the insert; either way the row for
	// the pair is the one to return.
	created, err := s.repository.GetChatByUsers(ctx, low, high)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load created chat")
		return nil, err
	}

	if created.ID == chat.ID {
		s.metrics.ChatCreated()
		s.logger.WithFields(logrus.Fields{
			"chat_id":  created.ID,
			"user_id1": low,
			"user_id2": high,
		}).Info("Chat created")
	}

	return created, nil
}

func (s *chatService) GetChat(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	return s.participantChat(ctx, chatID, userID, models.ErrNotParticipant)
}

func (s *chatService) GetUserChats(ctx context.Context, userID string) ([]*models.ChatSummary, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, err
	}

	summaries, err := s.repository.GetUserChatSummaries(ctx, id)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get user chats")
		return nil, err
	}

	for _, summary := range summaries {
		summary.OtherUser = summary.OtherParticipant(id)
	}
	SortChatSummaries(summaries)

	if summaries == nil {
		summaries = []*models.ChatSummary{}
	}
	return summaries, nil
}

// SortChatSummaries orders chats by their latest message, newest first.
// Chats without messages fall back to their own activity time.
func SortChatSummaries(summaries []*models.ChatSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastActivity().After(summaries[j].LastActivity())
	})
}

func (s *chatService) SendMessage(ctx context.Context, chatID, senderID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message text cannot be empty", models.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, fmt.Errorf("%w: message text exceeds %d characters", models.ErrInvalidArgument, MaxMessageLength)
	}

	chat, err := s.participantChat(ctx, chatID, senderID, models.ErrNotParticipant)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:       uuid.New().String(),
		ChatID:   chat.ID,
		SenderID: canonicalID(senderID),
		Content:  content,
		Status:   models.StatusSent,
	}

	if err := s.repository.CreateMessage(ctx, msg); err != nil {
		s.logger.WithError(err).Error("Failed to send message")
		return nil, err
	}

	s.metrics.MessageSent()
	s.logger.WithFields(logrus.Fields{
		"message_id": msg.ID,
		"chat_id":    msg.ChatID,
		"sender_id":  msg.SenderID,
	}).Info("Message sent")

	return msg, nil
}

// GetChatMessages returns the page-th block of limit messages counted back
// from the newest one. Fetching history marks everything the other
// participant sent as delivered; the returned page and counts come from the
// same snapshot and show the state before that update.
func (s *chatService) GetChatMessages(ctx context.Context, chatID, userID string, page, limit int) (*models.MessagePage, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be a positive integer", models.ErrInvalidArgument)
	}
	if limit < 1 || limit > MaxPageSize {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", models.ErrInvalidArgument, MaxPageSize)
	}

	chat, err := s.participantChat(ctx, chatID, userID, models.ErrNotParticipant)
	if err != nil {
		return nil, err
	}

	batch, err := s.repository.GetMessagePage(ctx, chat.ID, canonicalID(userID), limit, (page-1)*limit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get chat messages")
		return nil, err
	}
	s.recordDelivered(chat.ID, userID, batch.Delivered)

	return &models.MessagePage{
		TotalPages:    (batch.Total + limit - 1) / limit,
		CurrentPage:   page,
		TotalMessages: batch.Total,
		Messages:      batch.Messages,
	}, nil
}

// GetChatMessagesBefore is the cursor flavour of GetChatMessages.
func (s *chatService) GetChatMessagesBefore(ctx context.Context, chatID, userID string, limit int, beforeMessageID string) ([]*models.Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	chat, err := s.participantChat(ctx, chatID, userID, models.ErrNotParticipant)
	if err != nil {
		return nil, err
	}

	if beforeMessageID != "" {
		if beforeMessageID, err = parseID(beforeMessageID); err != nil {
			return nil, err
		}
	}

	batch, err := s.repository.GetMessagesBefore(ctx, chat.ID, canonicalID(userID), limit, beforeMessageID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get chat messages")
		return nil, err
	}
	s.recordDelivered(chat.ID, userID, batch.Delivered)

	return batch.Messages, nil
}

func (s *chatService) recordDelivered(chatID, userID string, count int) {
	if count > 0 {
		s.metrics.StatusChanged(models.StatusDelivered, count)
		s.logger.WithFields(logrus.Fields{
			"chat_id": chatID,
			"user_id": userID,
			"count":   count,
		}).Debug("Messages delivered")
	}
}

// MarkMessagesAsRead marks everything the other participant sent as read.
// A chat the user does not belong to is reported as not found.
func (s *chatService) MarkMessagesAsRead(ctx context.Context, chatID, userID string) (int, error) {
	chat, err := s.participantChat(ctx, chatID, userID, models.ErrChatNotFound)
	if err != nil {
		if errors.Is(err, models.ErrInvalidArgument) {
			return 0, models.ErrChatNotFound
		}
		return 0, err
	}

	count, err := s.repository.MarkMessagesAsRead(ctx, chat.ID, canonicalID(userID))
	if err != nil {
		s.logger.WithError(err).Error("Failed to mark messages as read")
		return 0, err
	}

	s.metrics.StatusChanged(models.StatusRead, count)
	s.logger.WithFields(logrus.Fields{
		"chat_id": chat.ID,
		"user_id": userID,
		"count":   count,
	}).Info("Messages marked as read")

	return count, nil
}

// participantChat loads the chat and checks membership, reporting
// outsiders with notMember.
func (s *chatService) participantChat(ctx context.Context, chatID, userID string, notMember error) (*models.Chat, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}

	cid, err := uuid.Parse(chatID)
	if err != nil {
		return nil, models.ErrChatNotFound
	}

	chat, err := s.repository.GetChatByID(ctx, cid.String())
	if err != nil {
		if !errors.Is(err, models.ErrChatNotFound) {
			s.logger.WithError(err).Error("Failed to get chat")
		}
		return nil, err
	}

	if !chat.HasParticipant(uid) {
		return nil, notMember
	}

	return chat, nil
}

// canonicalID lowercases a UUID the way Postgres renders it. Callers have
// already validated the id.
func canonicalID(id string) string {
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed.String()
	}
	return id
}
