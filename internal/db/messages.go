package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/matcheco/matcheco/backend/portal-service/internal/models"
)

// FirstUserFactoryID returns the user's oldest factory, 0 when they own
// none.
func (db *Database) FirstUserFactoryID(ctx context.Context, userID int64) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`SELECT id FROM factories WHERE user_id = $1 ORDER BY created_at ASC LIMIT 1`, userID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to find user factory: %w", err)
	}
	return id, nil
}

// FactoryOwner returns the owning user of a factory, 0 when the factory
// does not exist.
func (db *Database) FactoryOwner(ctx context.Context, factoryID int64) (int64, error) {
	var owner int64
	err := db.Pool.QueryRow(ctx,
		`SELECT user_id FROM factories WHERE id = $1`, factoryID,
	).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to find factory owner: %w", err)
	}
	return owner, nil
}

// GetOrCreateConversation returns the conversation linking the two
// factories, creating it with both participants when absent.
func (db *Database) GetOrCreateConversation(ctx context.Context, aFactory, bFactory, userA, userB int64) (int64, error) {
	var cid int64
	err := db.Pool.QueryRow(ctx,
		`SELECT cp1.conversation_id
		 FROM conversation_participants cp1
		 JOIN conversation_participants cp2 ON cp1.conversation_id = cp2.conversation_id
		 WHERE cp1.factory_id = $1 AND cp2.factory_id = $2
		 LIMIT 1`, aFactory, bFactory,
	).Scan(&cid)
	if err == nil {
		return cid, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up conversation: %w", err)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx,
		`INSERT INTO conversations DEFAULT VALUES RETURNING id`,
	).Scan(&cid); err != nil {
		return 0, fmt.Errorf("failed to create conversation: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO conversation_participants (conversation_id, factory_id, user_id)
		 VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`, cid, aFactory, userA); err != nil {
		return 0, fmt.Errorf("failed to add participant: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO conversation_participants (conversation_id, factory_id, user_id)
		 VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`, cid, bFactory, userB); err != nil {
		return 0, fmt.Errorf("failed to add participant: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit conversation: %w", err)
	}
	return cid, nil
}

// InsertMessage appends a message to a conversation.
func (db *Database) InsertMessage(ctx context.Context, conversationID, senderUserID int64, body string) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO messages (conversation_id, sender_user_id, body) VALUES ($1, $2, $3)`,
		conversationID, senderUserID, body)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// IsParticipant reports whether the user takes part in the conversation.
func (db *Database) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	var one int
	err := db.Pool.QueryRow(ctx,
		`SELECT 1 FROM conversation_participants WHERE conversation_id = $1 AND user_id = $2`,
		conversationID, userID,
	).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check participation: %w", err)
	}
	return true, nil
}

// Participants lists every factory in the conversation with its contact
// columns.
func (db *Database) Participants(ctx context.Context, conversationID int64) ([]models.Participant, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT cp.factory_id, cp.user_id, f.factory_name, f.industry_type, f.email
		 FROM conversation_participants cp
		 JOIN factories f ON f.id = cp.factory_id
		 WHERE cp.conversation_id = $1`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var out []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.FactoryID, &p.UserID, &p.FactoryName, &p.IndustryType, &p.Email); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListThreads returns the user's conversations, newest first, each with
// participants and a last-message preview.
func (db *Database) ListThreads(ctx context.Context, userID int64) ([]models.Thread, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT c.id, c.created_at
		 FROM conversations c
		 JOIN conversation_participants cp ON c.id = cp.conversation_id
		 WHERE cp.user_id = $1
		 ORDER BY c.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}

	var threads []models.Thread
	for rows.Next() {
		var t models.Thread
		if err := rows.Scan(&t.ConversationID, &t.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		threads = append(threads, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range threads {
		parts, err := db.Participants(ctx, threads[i].ConversationID)
		if err != nil {
			return nil, err
		}
		threads[i].Participants = parts

		var last models.Message
		err = db.Pool.QueryRow(ctx,
			`SELECT id, sender_user_id, body, created_at FROM messages
			 WHERE conversation_id = $1 ORDER BY created_at DESC LIMIT 1`,
			threads[i].ConversationID,
		).Scan(&last.ID, &last.SenderUserID, &last.Body, &last.CreatedAt)
		if err == nil {
			threads[i].LastMessage = &last
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to load last message: %w", err)
		}
	}
	return threads, nil
}

// ConversationMessages returns the full history, oldest first.
func (db *Database) ConversationMessages(ctx context.Context, conversationID int64) ([]models.Message, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, sender_user_id, body, created_at FROM messages
		 WHERE conversation_id = $1 ORDER BY created_at ASC`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderUserID, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
