package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"pointsadmin/internal/apperrors"
	"pointsadmin/internal/models"
	"pointsadmin/internal/repository"
)

type WithdrawalRepo struct {
	DB DBTX
}

// CreateRequest inserts the pending row and moves points from available to
// frozen. Both statements run on the same DBTX; call it inside InTx so the
// reservation is atomic.
func (r *WithdrawalRepo) CreateRequest(ctx context.Context, arg repository.CreateRequestParams) (models.WithdrawalRequest, error) {
	const createRequest = `
	INSERT INTO withdrawal_requests (id, user_id, points, money, bank_info, status, requested_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, user_id, points, money, bank_info, status, requested_at, settled_at
	`

	req := models.WithdrawalRequest{
		ID:          uuid.New(),
		UserID:      arg.UserID,
		Points:      arg.Points,
		Money:       arg.Money,
		BankInfo:    arg.BankInfo,
		Status:      models.WithdrawalStatusPending,
		RequestedAt: time.Now(),
	}

	rows, _ := r.DB.Query(ctx, createRequest, req.ID, req.UserID, req.Points, req.Money, req.BankInfo, req.Status, req.RequestedAt)
	req, err := pgx.CollectOneRow(rows, rowToRequest)
	if err != nil {
		return req, fmt.Errorf("db error: %w", err)
	}

	balanceRepo := &BalanceRepo{DB: r.DB}
	if _, err := balanceRepo.ApplyDelta(ctx, req.UserID, -req.Points, +req.Points); err != nil {
		return req, err
	}

	return req, nil
}

func (r *WithdrawalRepo) GetRequest(ctx context.Context, id uuid.UUID) (models.WithdrawalRequest, error) {
	const getRequest = `
	SELECT id, user_id, points, money, bank_info, status, requested_at, settled_at
	FROM withdrawal_requests
	WHERE id = $1
	`

	rows, _ := r.DB.Query(ctx, getRequest, id)
	req, err := pgx.CollectOneRow(rows, rowToRequest)

	switch {
	case err == nil:
		return req, nil
	case errors.Is(err, pgx.ErrNoRows):
		return req, apperrors.ErrRequestNotFound
	default:
		return req, fmt.Errorf("db error: %w", err)
	}
}

func (r *WithdrawalRepo) ListRequests(ctx context.Context, status string) ([]models.WithdrawalRequest, error) {
	const listRequests = `
	SELECT id, user_id, points, money, bank_info, status, requested_at, settled_at
	FROM withdrawal_requests
	WHERE ($1 = '' OR status = $1)
	ORDER BY requested_at
	`

	rows, _ := r.DB.Query(ctx, listRequests, status)
	requests, err := pgx.CollectRows(rows, rowToRequest)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return requests, nil
}

func (r *WithdrawalRepo) ListRequestIDs(ctx context.Context) ([]uuid.UUID, error) {
	const listIDs = `
	SELECT id FROM withdrawal_requests
	ORDER BY requested_at
	`

	rows, _ := r.DB.Query(ctx, listIDs)
	ids, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (uuid.UUID, error) {
		var id uuid.UUID
		err := row.Scan(&id)
		return id, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return ids, nil
}

// MarkSettled flips PENDING -> SETTLED as one conditional update, so two
// concurrent settle calls on the same id cannot both observe the pending
// state. The losing caller gets ErrRequestNotPending.
func (r *WithdrawalRepo) MarkSettled(ctx context.Context, id uuid.UUID) (models.WithdrawalRequest, error) {
	const markSettled = `
	UPDATE withdrawal_requests
	SET status = $2, settled_at = $3
	WHERE id = $1 AND status = $4
	RETURNING id, user_id, points, money, bank_info, status, requested_at, settled_at
	`

	rows, _ := r.DB.Query(ctx, markSettled, id, models.WithdrawalStatusSettled, time.Now(), models.WithdrawalStatusPending)
	req, err := pgx.CollectOneRow(rows, rowToRequest)

	switch {
	case err == nil:
		return req, nil
	case errors.Is(err, pgx.ErrNoRows):
		// Either the row is missing or it is already settled
		_, getErr := r.GetRequest(ctx, id)
		switch {
		case getErr == nil:
			return req, apperrors.ErrRequestNotPending
		default:
			return req, getErr
		}
	default:
		return req, fmt.Errorf("db error: %w", err)
	}
}

func (r *WithdrawalRepo) DeleteRequest(ctx context.Context, id uuid.UUID) (models.WithdrawalRequest, error) {
	const deleteRequest = `
	DELETE FROM withdrawal_requests
	WHERE id = $1
	RETURNING id, user_id, points, money, bank_info, status, requested_at, settled_at
	`

	rows, _ := r.DB.Query(ctx, deleteRequest, id)
	req, err := pgx.CollectOneRow(rows, rowToRequest)

	switch {
	case err == nil:
		return req, nil
	case errors.Is(err, pgx.ErrNoRows):
		return req, apperrors.ErrRequestNotFound
	default:
		return req, fmt.Errorf("db error: %w", err)
	}
}

func rowToRequest(row pgx.CollectableRow) (models.WithdrawalRequest, error) {
	var req models.WithdrawalRequest
	err := row.Scan(&req.ID, &req.UserID, &req.Points, &req.Money, &req.BankInfo, &req.Status, &req.RequestedAt, &req.SettledAt)
	return req, err
}
