package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/topup-store/internal/database"
	"github.com/safar/topup-store/internal/models"
	"github.com/shopspring/decimal"
)

func CreateUser(ctx context.Context, db *sql.DB, username, role string, balance decimal.Decimal) (*models.User, error) {
	user := &models.User{}

	query := `
		INSERT INTO users (username, role, balance, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, username, role, balance, created_at, updated_at`

	err := db.QueryRowContext(ctx, query, username, role, balance).Scan(
		&user.ID,
		&user.Username,
		&user.Role,
		&user.Balance,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func GetUser(ctx context.Context, db *sql.DB, id int64) (*models.User, error) {
	user := &models.User{}

	query := `
		SELECT id, username, role, balance, created_at, updated_at
		FROM users
		WHERE id = $1`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Role,
		&user.Balance,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

// DebitBalance reserves the full amount from the user's wallet or fails. The
// row is locked before the balance check, then the decrement is additionally
// guarded by "balance >= amount" so a miscounted read can never drive the
// balance negative.
func DebitBalance(ctx context.Context, tx *sql.Tx, userID int64, amount decimal.Decimal) error {
	var balance decimal.Decimal
	err := tx.QueryRowContext(ctx,
		`SELECT balance FROM users WHERE id = $1 FOR UPDATE`,
		userID).Scan(&balance)
	if err != nil {
		if err == sql.ErrNoRows {
			return database.ErrUserNotFound
		}
		return fmt.Errorf("lock user %d: %w", userID, err)
	}

	if balance.LessThan(amount) {
		return database.ErrInsufficientBalance
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE users
		 SET balance = balance - $1,
		     updated_at = NOW()
		 WHERE id = $2
		   AND balance >= $1`,
		amount, userID)
	if err != nil {
		return fmt.Errorf("debit balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrInsufficientBalance
	}

	return nil
}
