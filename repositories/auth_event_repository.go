package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blogem/authsession/models"
)

// AuthEventRepository handles authentication audit persistence
type AuthEventRepository interface {
	Create(ctx context.Context, event *models.AuthEvent) error
	ListRecent(ctx context.Context, limit int) ([]models.AuthEvent, error)
}

type sqliteAuthEventRepository struct {
	db *sql.DB
}

// NewAuthEventRepository creates a new auth event repository
func NewAuthEventRepository(db *sql.DB) AuthEventRepository {
	return &sqliteAuthEventRepository{db: db}
}

// Create inserts a new auth event, filling in the ID and timestamp when unset
func (r *sqliteAuthEventRepository) Create(ctx context.Context, event *models.AuthEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO auth_events (id, timestamp, account_id, kind, state, error_code, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.Timestamp,
		event.AccountID,
		string(event.Kind),
		string(event.State),
		event.ErrorCode,
		event.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to create auth event: %w", err)
	}
	return nil
}

// ListRecent returns up to limit events, newest first
func (r *sqliteAuthEventRepository) ListRecent(ctx context.Context, limit int) ([]models.AuthEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, timestamp, account_id, kind, state, error_code, message
		FROM auth_events
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query auth events: %w", err)
	}
	defer rows.Close()

	var events []models.AuthEvent
	for rows.Next() {
		var event models.AuthEvent
		var kind, state string
		if err := rows.Scan(
			&event.ID,
			&event.Timestamp,
			&event.AccountID,
			&kind,
			&state,
			&event.ErrorCode,
			&event.Message,
		); err != nil {
			return nil, fmt.Errorf("failed to scan auth event: %w", err)
		}
		event.Kind = models.AuthEventKind(kind)
		event.State = models.AuthenticationState(state)
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auth events: %w", err)
	}

	return events, nil
}
