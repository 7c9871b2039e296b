package repositories

import (
	"database/sql"
)

// Repositories struct holds all repository interfaces
type Repositories struct {
	Accounts   AccountRepository
	AuthEvents AuthEventRepository
	Secrets    *SecretStore
}

// NewRepositories creates and initializes all repositories
func NewRepositories(db *sql.DB, keyringService string) *Repositories {
	return &Repositories{
		Accounts:   NewAccountRepository(db),
		AuthEvents: NewAuthEventRepository(db),
		Secrets:    NewSecretStore(keyringService),
	}
}
