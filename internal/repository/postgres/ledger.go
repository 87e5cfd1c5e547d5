package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"pointsadmin/internal/models"
	"pointsadmin/internal/repository"
)

type LedgerRepo struct {
	DB DBTX
}

func (r *LedgerRepo) Append(ctx context.Context, arg repository.AppendEntryParams) (models.LedgerEntry, error) {
	const appendEntry = `
	INSERT INTO ledger_entries (id, user_id, type, points_delta, remarks, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, user_id, type, points_delta, remarks, created_at
	`

	entry := models.LedgerEntry{
		ID:          uuid.New(),
		UserID:      arg.UserID,
		Type:        arg.Type,
		PointsDelta: arg.PointsDelta,
		Remarks:     arg.Remarks,
		CreatedAt:   time.Now(),
	}

	rows, _ := r.DB.Query(ctx, appendEntry, entry.ID, entry.UserID, entry.Type, entry.PointsDelta, entry.Remarks, entry.CreatedAt)
	entry, err := pgx.CollectOneRow(rows, rowToEntry)
	if err != nil {
		return entry, fmt.Errorf("db error: %w", err)
	}

	return entry, nil
}

func (r *LedgerRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.LedgerEntry, error) {
	const listByUser = `
	SELECT id, user_id, type, points_delta, remarks, created_at
	FROM ledger_entries
	WHERE user_id = $1
	ORDER BY created_at
	`

	rows, _ := r.DB.Query(ctx, listByUser, userID)
	entries, err := pgx.CollectRows(rows, rowToEntry)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entries, nil
}

func rowToEntry(row pgx.CollectableRow) (models.LedgerEntry, error) {
	var e models.LedgerEntry
	err := row.Scan(&e.ID, &e.UserID, &e.Type, &e.PointsDelta, &e.Remarks, &e.CreatedAt)
	return e, err
}
