//go:generate go run go.uber.org/mock/mockgen -source=chat_repository.go -destination=../mocks/mock_chat_repository.go -package=mocks

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"socialnet/chat-service/internal/models"
)

type ChatRepository interface {
	CreateChat(ctx context.Context, chat *models.Chat) error
	GetChatByID(ctx context.Context, id string) (*models.Chat, error)
	GetChatByUsers(ctx context.Context, userID1, userID2 string) (*models.Chat, error)
	GetUserChatSummaries(ctx context.Context, userID string) ([]*models.ChatSummary, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessagePage(ctx context.Context, chatID, readerID string, limit, offset int) (*models.MessageBatch, error)
	GetMessagesBefore(ctx context.Context, chatID, readerID string, limit int, beforeMessageID string) (*models.MessageBatch, error)
	MarkMessagesAsRead(ctx context.Context, chatID, readerID string) (int, error)
	UserExists(ctx context.Context, userID string) (bool, error)
	InitializeTables(ctx context.Context) error
}

type chatRepository struct {
	db *sql.DB
}

func NewChatRepository(db *sql.DB) ChatRepository {
	return &chatRepository{
		db: db,
	}
}

// The message_status enum is declared in transition order, so status
// comparisons in SQL follow sent < delivered < read.
func (r *chatRepository) InitializeTables(ctx context.Context) error {
	query := `
	DO $$ BEGIN
		CREATE TYPE message_status AS ENUM ('sent', 'delivered', 'read');
	EXCEPTION
		WHEN duplicate_object THEN NULL;
	END $$;

	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		username TEXT NOT NULL UNIQUE,
		avatar_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS chats (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id1 UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		user_id2 UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT chats_users_unique UNIQUE (user_id1, user_id2),
		CONSTRAINT chats_users_ordered CHECK (user_id1 < user_id2)
	);

	CREATE TABLE IF NOT EXISTS messages (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		chat_id UUID NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		sender_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		status message_status NOT NULL DEFAULT 'sent',
		created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp(),
		read_at TIMESTAMPTZ
	);

	CREATE INDEX IF NOT EXISTS idx_messages_chat_created ON messages(chat_id, created_at DESC, id DESC);
	CREATE INDEX IF NOT EXISTS idx_messages_chat_status ON messages(chat_id, status);
	CREATE INDEX IF NOT EXISTS idx_chats_user1 ON chats(user_id1);
	CREATE INDEX IF NOT EXISTS idx_chats_user2 ON chats(user_id2);
	`

	_, err := r.db.ExecContext(ctx, query)
	return err
}

const selectChat = `
	SELECT c.id, c.user_id1, c.user_id2, c.created_at, c.updated_at,
		u1.username, u1.avatar_url, u2.username, u2.avatar_url
	FROM chats c
	JOIN users u1 ON u1.id = c.user_id1
	JOIN users u2 ON u2.id = c.user_id2
	`

const selectMessage = `
	SELECT m.id, m.chat_id, m.sender_id, m.content, m.status, m.created_at, m.read_at,
		s.username, s.avatar_url
	FROM messages m
	JOIN users s ON s.id = m.sender_id
	`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChat(row rowScanner) (*models.Chat, error) {
	var chat models.Chat
	var user1, user2 models.UserSummary
	var avatar1, avatar2 sql.NullString
	err := row.Scan(
		&chat.ID, &chat.UserID1, &chat.UserID2, &chat.CreatedAt, &chat.UpdatedAt,
		&user1.Username, &avatar1, &user2.Username, &avatar2,
	)
	if err != nil {
		return nil, err
	}
	user1.ID, user1.AvatarURL = chat.UserID1, nullString(avatar1)
	user2.ID, user2.AvatarURL = chat.UserID2, nullString(avatar2)
	chat.User1, chat.User2 = &user1, &user2
	return &chat, nil
}

func scanMessage(row rowScanner) (*models.Message, error) {
	var msg models.Message
	var sender models.UserSummary
	var readAt sql.NullTime
	var avatar sql.NullString
	err := row.Scan(
		&msg.ID, &msg.ChatID, &msg.SenderID, &msg.Content, &msg.Status, &msg.CreatedAt, &readAt,
		&sender.Username, &avatar,
	)
	if err != nil {
		return nil, err
	}
	if readAt.Valid {
		msg.ReadAt = &readAt.Time
	}
	sender.ID, sender.AvatarURL = msg.SenderID, nullString(avatar)
	msg.Sender = &sender
	return &msg, nil
}

// CreateChat inserts the chat unless a chat for the same pair already
// exists. A conflicting row is left untouched; callers re-read by pair.
func (r *chatRepository) CreateChat(ctx context.Context, chat *models.Chat) error {
	query := `
	INSERT INTO chats (id, user_id1, user_id2)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id1, user_id2) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, chat.ID, chat.UserID1, chat.UserID2)
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return translateError(err)
	}
	return nil
}

func (r *chatRepository) GetChatByID(ctx context.Context, id string) (*models.Chat, error) {
	query := selectChat + `WHERE c.id = $1`

	chat, err := scanChat(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrChatNotFound
		}
		return nil, translateError(err)
	}

	return chat, nil
}

// GetChatByUsers expects the pair already ordered.
func (r *chatRepository) GetChatByUsers(ctx context.Context, userID1, userID2 string) (*models.Chat, error) {
	query := selectChat + `WHERE c.user_id1 = $1 AND c.user_id2 = $2`

	chat, err := scanChat(r.db.QueryRowContext(ctx, query, userID1, userID2))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrChatNotFound
		}
		return nil, translateError(err)
	}

	return chat, nil
}

// GetUserChatSummaries loads every chat of userID together with its latest
// message and the number of messages userID has not read yet, in one query.
// Rows come back by chat activity; the caller decides the final order.
func (r *chatRepository) GetUserChatSummaries(ctx context.Context, userID string) ([]*models.ChatSummary, error) {
	query := `
	SELECT c.id, c.user_id1, c.user_id2, c.created_at, c.updated_at,
		u1.username, u1.avatar_url, u2.username, u2.avatar_url,
		lm.id, lm.sender_id, lm.content, lm.status, lm.created_at, lm.read_at,
		ls.username, ls.avatar_url,
		(
			SELECT COUNT(*) FROM messages um
			WHERE um.chat_id = c.id AND um.sender_id <> $1 AND um.status IN ('sent', 'delivered')
		) AS unread_count
	FROM chats c
	JOIN users u1 ON u1.id = c.user_id1
	JOIN users u2 ON u2.id = c.user_id2
	LEFT JOIN LATERAL (
		SELECT m.id, m.sender_id, m.content, m.status, m.created_at, m.read_at
		FROM messages m
		WHERE m.chat_id = c.id
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT 1
	) lm ON TRUE
	LEFT JOIN users ls ON ls.id = lm.sender_id
	WHERE c.user_id1 = $1 OR c.user_id2 = $1
	ORDER BY c.updated_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var summaries []*models.ChatSummary
	for rows.Next() {
		var (
			s                models.ChatSummary
			user1, user2     models.UserSummary
			avatar1, avatar2 sql.NullString
			msgID, senderID  sql.NullString
			content, status  sql.NullString
			createdAt        sql.NullTime
			readAt           sql.NullTime
			senderName       sql.NullString
			senderAvatar     sql.NullString
		)
		err := rows.Scan(
			&s.ID, &s.UserID1, &s.UserID2, &s.CreatedAt, &s.UpdatedAt,
			&user1.Username, &avatar1, &user2.Username, &avatar2,
			&msgID, &senderID, &content, &status, &createdAt, &readAt,
			&senderName, &senderAvatar,
			&s.UnreadCount,
		)
		if err != nil {
			return nil, err
		}
		user1.ID, user1.AvatarURL = s.UserID1, nullString(avatar1)
		user2.ID, user2.AvatarURL = s.UserID2, nullString(avatar2)
		s.User1, s.User2 = &user1, &user2

		if msgID.Valid {
			st, err := models.ParseMessageStatus(status.String)
			if err != nil {
				return nil, err
			}
			last := &models.Message{
				ID:        msgID.String,
				ChatID:    s.ID,
				SenderID:  senderID.String,
				Content:   content.String,
				Status:    st,
				CreatedAt: createdAt.Time,
				Sender: &models.UserSummary{
					ID:        senderID.String,
					Username:  senderName.String,
					AvatarURL: nullString(senderAvatar),
				},
			}
			if readAt.Valid {
				last.ReadAt = &readAt.Time
			}
			s.LastMessage = last
		}
		summaries = append(summaries, &s)
	}

	return summaries, rows.Err()
}

// CreateMessage stores msg as sent and bumps the chat's activity time.
// ID, CreatedAt, Status and Sender are filled from the stored row.
func (r *chatRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
	WITH inserted AS (
		INSERT INTO messages (id, chat_id, sender_id, content, status)
		VALUES ($1, $2, $3, $4, 'sent')
		RETURNING id, chat_id, sender_id, content, status, created_at, read_at
	)
	SELECT i.id, i.chat_id, i.sender_id, i.content, i.status, i.created_at, i.read_at,
		s.username, s.avatar_url
	FROM inserted i
	JOIN users s ON s.id = i.sender_id
	`

	stored, err := scanMessage(tx.QueryRowContext(ctx, query, msg.ID, msg.ChatID, msg.SenderID, msg.Content))
	if err != nil {
		return translateError(err)
	}

	result, err := tx.ExecContext(ctx, `UPDATE chats SET updated_at = NOW() WHERE id = $1`, msg.ChatID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return models.ErrChatNotFound
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	*msg = *stored
	return nil
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// GetMessagePage returns the block of messages starting offset messages
// back from the newest one, ordered oldest first, with the chat's message
// count. Both come from one snapshot, and the reader's incoming messages
// are moved to delivered in the same transaction. Messages committed after
// the snapshot are neither returned nor delivered.
func (r *chatRepository) GetMessagePage(ctx context.Context, chatID, readerID string, limit, offset int) (*models.MessageBatch, error) {
	var batch *models.MessageBatch

	err := r.inSnapshot(ctx, func(tx *sql.Tx) error {
		var total int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE chat_id = $1`, chatID).Scan(&total)
		if err != nil {
			return err
		}

		query := selectMessage + `
		WHERE m.chat_id = $1
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $2 OFFSET $3
		`
		messages, err := queryMessages(ctx, tx, query, chatID, limit, offset)
		if err != nil {
			return err
		}

		delivered, err := markDelivered(ctx, tx, chatID, readerID)
		if err != nil {
			return err
		}

		batch = &models.MessageBatch{Messages: messages, Total: total, Delivered: delivered}
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}

	return batch, nil
}

// GetMessagesBefore returns up to limit messages older than
// beforeMessageID, ordered oldest first, and delivers the reader's incoming
// messages in the same transaction. An empty cursor starts from the newest
// message; an unknown cursor yields no messages. Total is not filled.
func (r *chatRepository) GetMessagesBefore(ctx context.Context, chatID, readerID string, limit int, beforeMessageID string) (*models.MessageBatch, error) {
	var query string
	var args []any

	if beforeMessageID != "" {
		query = selectMessage + `
		WHERE m.chat_id = $1
		AND (m.created_at, m.id) < (
			SELECT b.created_at, b.id FROM messages b WHERE b.id = $2 AND b.chat_id = $1
		)
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $3
		`
		args = []any{chatID, beforeMessageID, limit}
	} else {
		query = selectMessage + `
		WHERE m.chat_id = $1
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $2
		`
		args = []any{chatID, limit}
	}

	var batch *models.MessageBatch

	err := r.inSnapshot(ctx, func(tx *sql.Tx) error {
		messages, err := queryMessages(ctx, tx, query, args...)
		if err != nil {
			return err
		}

		delivered, err := markDelivered(ctx, tx, chatID, readerID)
		if err != nil {
			return err
		}

		batch = &models.MessageBatch{Messages: messages, Delivered: delivered}
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}

	return batch, nil
}

// inSnapshot runs fn in a REPEATABLE READ transaction. A concurrent status
// update on the same rows aborts the transaction with a serialization
// failure; fn is then rerun on a fresh snapshot.
func (r *chatRepository) inSnapshot(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return retryConflicts(func() error {
		tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit()
	})
}

func queryMessages(ctx context.Context, q dbtx, query string, args ...any) ([]*models.Message, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []*models.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// markDelivered moves messages the reader received from sent to
// delivered. Messages already delivered or read are left alone.
func markDelivered(ctx context.Context, q dbtx, chatID, readerID string) (int, error) {
	query := `
	UPDATE messages
	SET status = 'delivered'
	WHERE chat_id = $1 AND sender_id <> $2 AND status < 'delivered'
	`

	return execCount(ctx, q, query, chatID, readerID)
}

// MarkMessagesAsRead moves every message the reader received to read.
func (r *chatRepository) MarkMessagesAsRead(ctx context.Context, chatID, readerID string) (int, error) {
	query := `
	UPDATE messages
	SET status = 'read', read_at = NOW()
	WHERE chat_id = $1 AND sender_id <> $2 AND status < 'read'
	`

	var count int
	err := retryConflicts(func() error {
		var err error
		count, err = execCount(ctx, r.db, query, chatID, readerID)
		return err
	})
	if err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

func (r *chatRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, translateError(err)
	}
	return exists, nil
}

func execCount(ctx context.Context, q dbtx, query string, args ...any) (int, error) {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
