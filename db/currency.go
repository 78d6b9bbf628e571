package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// CurrencyStore is the Postgres-backed currency collaborator. Rows are keyed
// by lowercased username so rewards and lookups agree regardless of how a
// display name was capitalized in chat.
type CurrencyStore struct {
	DB *sql.DB
}

// AddCurrency grants amount coins to every name, creating rows as needed.
// All grants happen in one transaction so a batch reward is all-or-nothing.
func (s *CurrencyStore) AddCurrency(ctx context.Context, names []string, amount int) error {
	if len(names) == 0 || amount == 0 {
		return nil
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin currency tx: %w", err)
	}
	for _, name := range names {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO currency (username, display_name, balance, updated_at)
			 VALUES ($1, $2, $3, NOW())
			 ON CONFLICT (username) DO UPDATE SET
			   balance = currency.balance + EXCLUDED.balance,
			   display_name = EXCLUDED.display_name,
			   updated_at = NOW()`,
			strings.ToLower(name), name, amount); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("grant currency to %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit currency tx: %w", err)
	}
	return nil
}

// Balance returns name's coin balance, zero for unknown viewers.
func (s *CurrencyStore) Balance(ctx context.Context, name string) (int, error) {
	var balance int
	err := s.DB.QueryRowContext(ctx,
		`SELECT balance FROM currency WHERE username = $1`, strings.ToLower(name)).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query balance for %s: %w", name, err)
	}
	return balance, nil
}
