package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/sharearecipe/internal/model"
)

type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

func scanAccount(scanner interface{ Scan(...any) error }) (*model.Account, error) {
	var a model.Account
	err := scanner.Scan(&a.UID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const accountCols = `uid, email, password_hash, created_at`

func (s *AccountStore) Create(uid, email, passwordHash string) (*model.Account, error) {
	_, err := s.db.Exec(
		`INSERT INTO accounts (uid, email, password_hash) VALUES (?, ?, ?)`,
		uid, email, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return s.GetByUID(uid)
}

func (s *AccountStore) GetByUID(uid string) (*model.Account, error) {
	row := s.db.QueryRow(`SELECT `+accountCols+` FROM accounts WHERE uid = ?`, uid)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// GetByEmail matches case-insensitively.
func (s *AccountStore) GetByEmail(email string) (*model.Account, error) {
	row := s.db.QueryRow(`SELECT `+accountCols+` FROM accounts WHERE email = ?`, email)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return a, nil
}

func (s *AccountStore) Delete(uid string) error {
	_, err := s.db.Exec(`DELETE FROM accounts WHERE uid = ?`, uid)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}
