package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"pointsadmin/internal/apperrors"
	"pointsadmin/internal/models"
)

type BalanceRepo struct {
	DB DBTX
}

func (r *BalanceRepo) CreateBalance(ctx context.Context, userID uuid.UUID) error {
	const createBalance = `
	INSERT INTO balances (user_id, available, frozen)
	VALUES ($1, 0, 0)
	`

	_, err := r.DB.Exec(ctx, createBalance, userID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("user balance already exists: %w", err)
		}

		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *BalanceRepo) GetBalance(ctx context.Context, userID uuid.UUID) (models.Balance, error) {
	const getBalanceByUserID = `
	SELECT user_id, available, frozen FROM balances
	WHERE user_id = $1
	`

	rows, _ := r.DB.Query(ctx, getBalanceByUserID, userID)
	balance, err := pgx.CollectOneRow(rows, rowToBalance)

	switch {
	case err == nil:
		return balance, nil
	case errors.Is(err, pgx.ErrNoRows):
		return balance, apperrors.ErrUserNotFound
	default:
		return balance, fmt.Errorf("db error: %w", err)
	}
}

// ApplyDelta moves points between buckets (or out of them) in one statement.
// The CHECK constraints on balances make any overdraw fail atomically, so
// callers never observe a negative bucket.
func (r *BalanceRepo) ApplyDelta(ctx context.Context, userID uuid.UUID, availableDelta int64, frozenDelta int64) (models.Balance, error) {
	const applyDelta = `
	UPDATE balances
	SET available = available + $2, frozen = frozen + $3
	WHERE user_id = $1
	RETURNING user_id, available, frozen
	`

	rows, _ := r.DB.Query(ctx, applyDelta, userID, availableDelta, frozenDelta)
	balance, err := pgx.CollectOneRow(rows, rowToBalance)

	switch {
	case err == nil:
		return balance, nil
	case errors.Is(err, pgx.ErrNoRows):
		return balance, apperrors.ErrUserNotFound
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation {
			return balance, fmt.Errorf("balance would become negative: %w", err)
		}
		return balance, fmt.Errorf("db error: %w", err)
	}
}

func rowToBalance(row pgx.CollectableRow) (models.Balance, error) {
	var b models.Balance
	err := row.Scan(&b.UserID, &b.Available, &b.Frozen)
	return b, err
}
