package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"socialnet/chat-service/internal/mocks"
	"socialnet/chat-service/internal/models"
)

const chatID = "99999999-9999-4999-8999-999999999999"

func newTestService(t *testing.T) (*mocks.MockChatRepository, ChatService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockChatRepository(ctrl)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return repo, NewChatService(repo, logger, nil)
}

func testChat() *models.Chat {
	return &models.Chat{
		ID:      chatID,
		UserID1: alice,
		UserID2: bob,
		User1:   &models.UserSummary{ID: alice, Username: "alice"},
		User2:   &models.UserSummary{ID: bob, Username: "bob"},
	}
}

func TestChatService_GetOrCreateChat(t *testing.T) {
	ctx := context.Background()

	t.Run("should return the existing chat for either argument order", func(t *testing.T) {
		req := require.New(t)
		repo, svc := newTestService(t)
		existing := testChat()

		repo.EXPECT().GetChatByUsers(ctx, alice, bob).Return(existing, nil).Times(2)
		repo.EXPECT().CreateChat(gomock.Any(), gomock.Any()).Times(0)

		first, err := svc.GetOrCreateChat(ctx, alice, bob)
		req.NoError(err)
		second, err := svc.GetOrCreateChat(ctx, bob, alice)
		req.NoError(err)
		req.Equal(first.ID, second.ID)
	})

	t.Run("should create the chat with an ordered pair and re-read it", func(t *testing.T) {
		req := require.New(t)
		repo, svc := newTestService(t)

		var inserted *models.Chat
		gomock.InOrder(
			repo.EXPECT().GetChatByUsers(ctx, alice, bob).Return(nil, models.ErrChatNotFound),
			repo.EXPECT().CreateChat(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, c *models.Chat) error {
				inserted = c
				return nil
			}),
			repo.EXPECT().GetChatByUsers(ctx, alice, bob).DoAndReturn(func(_ context.Context, _, _ string) (*models.Chat, error) {
				chat := testChat()
				chat.ID = inserted.ID
				return chat, nil
			}),
		)

		chat, err := svc.GetOrCreateChat(ctx, bob, alice)
		req.NoError(err)
		req.Equal(alice, inserted.UserID1)
		req.Equal(bob, inserted.UserID2)
		req.Equal(inserted.ID, chat.ID)
		req.NotNil(chat.User1)
		req.NotNil(chat.User2)
	})

	t.Run("should return the row of a concurrent creator", func(t *testing.T) {
		req := require.New(t)
		repo, svc := newTestService(t)
		winner := testChat()

		gomock.InOrder(
			repo.EXPECT().GetChatByUsers(ctx, alice, bob).Return(nil, models.ErrChatNotFound),
			repo.EXPECT().CreateChat(ctx, gomock.Any()).Return(nil),
			repo.EXPECT().GetChatByUsers(ctx, alice, bob).Return(winner, nil),
		)

		chat, err := svc.GetOrCreateChat(ctx, alice, bob)
		req.NoError(err)
		req.Equal(chatID, chat.ID)
	})

	t.Run("should fail for a self chat without touching storage", func(t *testing.T) {
		repo, svc := newTestService(t)
		repo.EXPECT().GetChatByUsers(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.GetOrCreateChat(ctx, alice, alice)
		require.ErrorIs(t, err, models.ErrCannotChatWithSelf)
	})

	t.Run("should propagate unknown users", func(t *testing.T) {
		repo, svc := newTestService(t)
		repo.EXPECT().GetChatByUsers(ctx, alice, carol).Return(nil, models.ErrChatNotFound)
		repo.EXPECT().CreateChat(ctx, gomock.Any()).Return(models.ErrUserNotFound)

		_, err := svc.GetOrCreateChat(ctx, carol, alice)
		require.ErrorIs(t, err, models.ErrUserNotFound)
	})

	t.Run("should propagate storage failures on lookup", func(t *testing.T) {
		repo, svc := newTestService(t)
		boom := errors.New("connection reset")
		repo.EXPECT().GetChatByUsers(ctx, alice, bob).Return(nil, boom)

		_, err := svc.GetOrCreateChat(ctx, alice, bob)
		require.ErrorIs(t, err, boom)
	})
}

func TestChatService_GetChat(t *testing.T) {
	ctx := context.Background()

	t.Run("should return the chat to a participant", func(t *testing.T) {
		repo, svc := newTestService(t)
		repo.EXPECT().GetChatByID(ctx, chatID).Return(testChat(), nil)

		chat, err := svc.GetChat(ctx, chatID, bob)
		require.NoError(t, err)
		require.Equal(t, chatID, chat.ID)
	})

	t.Run("should forbid outsiders", func(t *testing.T) {
		repo, svc := newTestService(t)
		repo.EXPECT().GetChatByID(ctx, chatID).Return(testChat(), nil)

		_, err := svc.GetChat(ctx, chatID, carol)
		require.ErrorIs(t, err, models.ErrNotParticipant)
	})

	t.Run("should report malformed chat ids as not found", func(t *testing.T) {
		repo, svc := newTestService(t)
		repo.EXPECT().GetChatByID(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.GetChat(ctx, "42", alice)
		require.ErrorIs(t, err, models.ErrChatNotFound)
	})
}

func TestChatService_SendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("should store the message as sent", func(t *testing.T) {
		req := require.New(t)
		repo, svc := newTestService(t)

		repo.EXPECT().GetChatByID(ctx, chatID).Return(testChat(), nil)
		repo.EXPECT().CreateMessage(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, msg *models.Message) error {
			req.Equal(chatID, msg.ChatID)
			req.Equal(alice, msg.SenderID)
			req.Equal("hi", msg.Content)
			req.Equal(models.StatusSent, msg.Status)
			msg.CreatedAt = time.Now()
			msg.Sender = &models.UserSummary{ID: alice, Username: "alice"}
			return nil
		})

		msg, err := svc.SendMessage(ctx, chatID, alice, "  hi  ")
		req.NoError(err)
		req.Equal(models.StatusSent, msg.Status)
		req.Equal("alice", msg.Sender.Username)
	})

	t.Run("should fail when the chat does not exist", func(t *testing.T) {
		repo, svc := newTestService(t)
		repo.EXPECT().GetChatByID(ctx, chatID).Return(nil, models.ErrChatNotFound)

		_, err := svc.SendMessage(ctx, chatID, alice, "hi")
		require.ErrorIs(t, err, models.ErrChatNotFound)
	})

	t.Run("should forbid senders outside the chat", func(t *testing.T) {
		repo, svc := newTestService(t)
		repo.EXPECT().GetChatByID(ctx, chatID).Return(testChat(), nil)
		repo.EXPECT().CreateMessage(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.SendMessage(ctx, chatID, carol, "hi")
		require.ErrorIs(t, err, models.ErrNotParticipant)
	})

	t.Run("should reject blank and oversized text", func(t *testing.T) {
		repo, svc := newTestService(t)
		repo.EXPECT().GetChatByID(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.SendMessage(ctx, chatID, alice, "   ")
		require.ErrorIs(t, err, models.ErrInvalidArgument)

		_, err = svc.SendMessage(ctx, chatID, alice, strings.Repeat("x", MaxMessageLength+1))
		require.ErrorIs(t, err, models.ErrInvalidArgument)
	})

	t.Run("should measure the length after trimming", func(t *testing.T) {
		req := require.New(t)
		repo, svc := newTestService(t)
		text := strings.Repeat("x", MaxMessageLength)

		repo.EXPECT().GetChatByID(ctx, chatID).Return(testChat(), nil)
		repo.EXPECT().CreateMessage(ctx, gomock.Any()).Return(nil)

		msg, err := svc.SendMessage(ctx, chatID, alice, "  "+text+"\n\t ")
		req.NoError(err)
		req.Equal(text, msg.Content)
	})
}

func TestChatService_GetChatMessages(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m2 := &models.Message{ID: "m2", SenderID: alice, Status: models.StatusSent, CreatedAt: base.Add(time.Minute)}
	m3 := &models.Message{ID: "m3", SenderID: alice, Status: models.StatusSent, CreatedAt: base.Add(2 * time.Minute)}

	t.Run("should page from the newest block in one storage call", func(t *testing.T) {
		req := require.New(t)
		repo, svc := newTestService(t)

		gomock.InOrder(
			repo.EXPECT().GetChatByID(ctx, chatID).Return(testChat(), nil),
			repo.EXPECT().GetMessagePage(ctx, chatID, bob, 2, 0).Return(&models.MessageBatch{
				Messages:  []*models.Message{m2, m3},
				Total:     3,
				Delivered: 2,
			}, nil),
		)

		page, err := svc.GetChatMessages(ctx, chatID, bob, 1, 2)
		req.NoError(err)
		req.Equal(2, page.TotalPages)
		req.Equal(1, page.CurrentPage)
		req.Equal(3, page.TotalMessages)
		req.Equal([]*models.Message{m2, m3}, page.Messages)
		req.Equal(models.StatusSent, page.Messages[0].Status)
	})

	t.Run("should compute the offset of later pages", func(t *testing.T) {
		req := require.New(t)
		repo, svc := newTestService(t)

		repo.EXPECT().GetChatByID(ctx, chatID).Return(testChat(), nil)
		repo.EXPECT().GetMessagePage(ctx, chatID, alice, 2, 2).Return(&models.MessageBatch{
			Messages: []*models.Message{},
			Total:    3,
		}, nil)

		page, err := svc.GetChatMessages(ctx, chatID, alice, 2, 2)
		req.NoError(err)
		req.Equal(2, page.CurrentPage)
		req.Equal(2, page.TotalPages)
	})

	t.Run("should report zero pages for an empty chat", func(t *testing.T) {
		req := require.New(t)
		repo, svc := newTestService(t)

		repo.EXPECT().GetChatByID(ctx, chatID).Return(testChat(), nil)
		repo.EXPECT().GetMessagePage(ctx, chatID, alice, DefaultPageSize, 0).Return(&models.MessageBatch{
			Messages: []*models.Message{},
		}, nil)

		page, err := svc.GetChatMessages(ctx, chatID, alice, 1, DefaultPageSize)
		req.NoError(err)
		req.Equal(0, page.TotalPages)
		req.Empty(page.Messages)
	})

	t.Run("should canonicalize the reader id", func(t *testing.T) {
		repo, svc := newTestService(t)

		repo.EXPECT().GetChatByID(ctx, chatID).Return(testChat(), nil)
		repo.EXPECT().GetMessagePage(ctx, chatID, bob, 30, 0).Return(&models.MessageBatch{Messages: []*models.Message{}}, nil)

		_, err := svc.GetChatMessages(ctx, chatID, strings.ToUpper(bob), 1, 30)
		require.NoError(t, err)
	})

	t.Run("should forbid outsiders and not read history", func(t *testing.T) {
		repo, svc := newTestService(t)
		repo.EXPECT().GetChatByID(ctx, chatID).Return(testChat(), nil)
		repo.EXPECT().GetMessagePage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.GetChatMessages(ctx, chatID, carol, 1, 30)
		require.ErrorIs(t, err, models.ErrNotParticipant)
	})

	t.Run("should validate page and limit", func(t *testing.T) {
		repo, svc := newTestService(t)
		repo.EXPECT().GetChatByID(gomock.Any(), gomock.Any()).Times(0)

		for _, tc := range []struct{ page, limit int }{{0, 30}, {1, 0}, {1, MaxPageSize + 1}} {
			_, err := svc.GetChatMessages(ctx, chatID, alice, tc.page, tc.limit)
			require.ErrorIs(t, err, models.ErrInvalidArgument)
		}
	})

	t.Run("should return nothing when the history read fails", func(t *testing.T) {
		repo, svc := newTestService(t)
		boom := errors.New("could not serialize access")

		repo.EXPECT().GetChatByID(ctx, chatID).Return(testChat(), nil)
		repo.EXPECT().GetMessagePage(ctx, chatID, bob, 30, 0).Return(nil, boom)

		page, err := svc.GetChatMessages(ctx, chatID, bob, 1, 30)
		require.ErrorIs(t, err, boom)
		require.Nil(t, page)
	})
}

func TestChatService_GetChatMessagesBefore(t *testing.T) {
	ctx := context.Background()
	cursor := "44444444-4444-4444-8444-444444444444"

	t.Run("should default and clamp the limit", func(t *testing.T) {
		repo, svc := newTestService(t)
		empty := &models.MessageBatch{Messages: []*models.Message{}}

		repo.EXPECT().GetChatByID(ctx, chatID).Return(testChat(), nil).Times(2)
		repo.EXPECT().GetMessagesBefore(ctx, chatID, bob, DefaultHistoryLimit, "").Return(empty, nil)
		repo.EXPECT().GetMessagesBefore(ctx, chatID, bob, MaxPageSize, cursor).Return(empty, nil)

		_, err := svc.GetChatMessagesBefore(ctx, chatID, bob, 0, "")
		require.NoError(t, err)
		_, err = svc.GetChatMessagesBefore(ctx, chatID, bob, 1000, strings.ToUpper(cursor))
		require.NoError(t, err)
	})

	t.Run("should return the batch messages", func(t *testing.T) {
		req := require.New(t)
		repo, svc := newTestService(t)
		msg := &models.Message{ID: "m1", SenderID: alice, Status: models.StatusSent}

		repo.EXPECT().GetChatByID(ctx, chatID).Return(testChat(), nil)
		repo.EXPECT().GetMessagesBefore(ctx, chatID, bob, 10, cursor).Return(&models.MessageBatch{
			Messages:  []*models.Message{msg},
			Delivered: 1,
		}, nil)

		messages, err := svc.GetChatMessagesBefore(ctx, chatID, bob, 10, cursor)
		req.NoError(err)
		req.Equal([]*models.Message{msg}, messages)
	})

	t.Run("should reject a malformed cursor", func(t *testing.T) {
		repo, svc := newTestService(t)
		repo.EXPECT().GetChatByID(ctx, chatID).Return(testChat(), nil)
		repo.EXPECT().GetMessagesBefore(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.GetChatMessagesBefore(ctx, chatID, bob, 10, "nope")
		require.ErrorIs(t, err, models.ErrInvalidArgument)
	})
}

func TestChatService_MarkMessagesAsRead(t *testing.T) {
	ctx := context.Background()

	t.Run("should return the number of messages marked", func(t *testing.T) {
		repo, svc := newTestService(t)
		repo.EXPECT().GetChatByID(ctx, chatID).Return(testChat(), nil)
		repo.EXPECT().MarkMessagesAsRead(ctx, chatID, bob).Return(1, nil)

		count, err := svc.MarkMessagesAsRead(ctx, chatID, bob)
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})

	t.Run("should treat nothing to mark as success", func(t *testing.T) {
		repo, svc := newTestService(t)
		repo.EXPECT().GetChatByID(ctx, chatID).Return(testChat(), nil)
		repo.EXPECT().MarkMessagesAsRead(ctx, chatID, alice).Return(0, nil)

		count, err := svc.MarkMessagesAsRead(ctx, chatID, alice)
		require.NoError(t, err)
		require.Zero(t, count)
	})

	t.Run("should report outsiders as not found", func(t *testing.T) {
		repo, svc := newTestService(t)
		repo.EXPECT().GetChatByID(ctx, chatID).Return(testChat(), nil)
		repo.EXPECT().MarkMessagesAsRead(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.MarkMessagesAsRead(ctx, chatID, carol)
		require.ErrorIs(t, err, models.ErrChatNotFound)
	})

	t.Run("should report missing chats as not found", func(t *testing.T) {
		repo, svc := newTestService(t)
		repo.EXPECT().GetChatByID(ctx, chatID).Return(nil, models.ErrChatNotFound)

		_, err := svc.MarkMessagesAsRead(ctx, chatID, alice)
		require.ErrorIs(t, err, models.ErrChatNotFound)
	})
}

func TestChatService_GetUserChats(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	aliceSummary := &models.UserSummary{ID: alice, Username: "alice"}
	bobSummary := &models.UserSummary{ID: bob, Username: "bob"}
	carolSummary := &models.UserSummary{ID: carol, Username: "carol"}

	t.Run("should resolve the other user and order by last message", func(t *testing.T) {
		req := require.New(t)
		repo, svc := newTestService(t)

		// Repository order follows chat activity, which lags behind the
		// latest message of the bob chat.
		withCarol := &models.ChatSummary{
			ID: "c-carol", UserID1: bob, UserID2: carol, User1: bobSummary, User2: carolSummary,
			UpdatedAt:   base.Add(3 * time.Hour),
			LastMessage: &models.Message{ID: "x", CreatedAt: base.Add(time.Hour)},
		}
		withAlice := &models.ChatSummary{
			ID: "c-alice", UserID1: alice, UserID2: bob, User1: aliceSummary, User2: bobSummary,
			UpdatedAt:   base.Add(time.Hour),
			LastMessage: &models.Message{ID: "y", CreatedAt: base.Add(2 * time.Hour)},
			UnreadCount: 4,
		}
		empty := &models.ChatSummary{
			ID: "c-empty", UserID1: alice, UserID2: bob, User1: aliceSummary, User2: bobSummary,
			UpdatedAt: base.Add(90 * time.Minute),
		}

		repo.EXPECT().GetUserChatSummaries(ctx, bob).Return([]*models.ChatSummary{withCarol, withAlice, empty}, nil)

		chats, err := svc.GetUserChats(ctx, bob)
		req.NoError(err)
		req.Len(chats, 3)
		req.Equal("c-alice", chats[0].ID)
		req.Equal("c-empty", chats[1].ID)
		req.Equal("c-carol", chats[2].ID)

		req.Equal(aliceSummary, chats[0].OtherUser)
		req.Equal(4, chats[0].UnreadCount)
		req.Equal(carolSummary, chats[2].OtherUser)
	})

	t.Run("should return an empty list for users without chats", func(t *testing.T) {
		repo, svc := newTestService(t)
		repo.EXPECT().GetUserChatSummaries(ctx, carol).Return(nil, nil)

		chats, err := svc.GetUserChats(ctx, carol)
		require.NoError(t, err)
		require.NotNil(t, chats)
		require.Empty(t, chats)
	})
}
