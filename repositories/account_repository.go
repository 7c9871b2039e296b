package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/blogem/authsession/models"
)

// ErrAccountNotFound is returned when no account row matches
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository persists the signed-in account and its raw ID token
type AccountRepository interface {
	// GetCurrent returns the most recently saved account, or nil when there is none
	GetCurrent(ctx context.Context) (*models.Account, string, error)
	GetByID(ctx context.Context, homeAccountID string) (*models.Account, string, error)
	Save(ctx context.Context, account *models.Account, rawIDToken string) error
	Delete(ctx context.Context, homeAccountID string) error
}

type accountRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db, now: time.Now}
}

// GetCurrent retrieves the most recently updated account
func (r *accountRepository) GetCurrent(ctx context.Context) (*models.Account, string, error) {
	query := `
		SELECT home_account_id, username, name, environment, id_token
		FROM accounts
		ORDER BY updated_at DESC
		LIMIT 1
	`

	account, rawIDToken, err := r.scan(r.db.QueryRowContext(ctx, query))
	if errors.Is(err, ErrAccountNotFound) {
		return nil, "", nil
	}
	return account, rawIDToken, err
}

// GetByID retrieves an account by its home account ID
func (r *accountRepository) GetByID(ctx context.Context, homeAccountID string) (*models.Account, string, error) {
	query := `
		SELECT home_account_id, username, name, environment, id_token
		FROM accounts
		WHERE home_account_id = ?
	`

	return r.scan(r.db.QueryRowContext(ctx, query, homeAccountID))
}

func (r *accountRepository) scan(row *sql.Row) (*models.Account, string, error) {
	var account models.Account
	var rawIDToken string
	err := row.Scan(
		&account.HomeAccountID,
		&account.Username,
		&account.Name,
		&account.Environment,
		&rawIDToken,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrAccountNotFound
		}
		return nil, "", fmt.Errorf("failed to scan account: %w", err)
	}
	return &account, rawIDToken, nil
}

// Save inserts or updates an account
func (r *accountRepository) Save(ctx context.Context, account *models.Account, rawIDToken string) error {
	if account == nil || account.HomeAccountID == "" {
		return fmt.Errorf("account with home account ID is required")
	}

	query := `
		INSERT INTO accounts (home_account_id, username, name, environment, id_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(home_account_id) DO UPDATE SET
			username = excluded.username,
			name = excluded.name,
			environment = excluded.environment,
			id_token = excluded.id_token,
			updated_at = excluded.updated_at
	`

	now := r.now()
	_, err := r.db.ExecContext(ctx, query,
		account.HomeAccountID,
		account.Username,
		account.Name,
		account.Environment,
		rawIDToken,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// Delete removes an account; deleting an unknown account is not an error
func (r *accountRepository) Delete(ctx context.Context, homeAccountID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM accounts WHERE home_account_id = ?", homeAccountID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}
