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

type VoucherRepo struct {
	DB DBTX
}

// CreateVoucher is the insert-if-absent primitive behind code uniqueness.
// ON CONFLICT DO NOTHING turns a code collision into zero returned rows
// instead of an error, so concurrent batch jobs cannot both commit the same
// code and the caller can retry with a fresh draw.
func (r *VoucherRepo) CreateVoucher(ctx context.Context, arg repository.CreateVoucherParams) (models.Voucher, error) {
	const createVoucher = `
	INSERT INTO vouchers (id, code, password, face_value, point_value, sale_status, use_status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (code) DO NOTHING
	RETURNING id, code, password, face_value, point_value, sale_status, use_status, created_at
	`

	v := models.Voucher{
		ID:         uuid.New(),
		Code:       arg.Code,
		Password:   arg.Password,
		FaceValue:  arg.FaceValue,
		PointValue: arg.PointValue,
		SaleStatus: models.VoucherSaleStatusOnHold,
		UseStatus:  models.VoucherUseStatusUnused,
		CreatedAt:  time.Now(),
	}

	rows, _ := r.DB.Query(ctx, createVoucher, v.ID, v.Code, v.Password, v.FaceValue, v.PointValue, v.SaleStatus, v.UseStatus, v.CreatedAt)
	v, err := pgx.CollectOneRow(rows, rowToVoucher)

	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, pgx.ErrNoRows):
		return v, apperrors.ErrVoucherCodeTaken
	default:
		return v, fmt.Errorf("db error: %w", err)
	}
}

func (r *VoucherRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	const codeExists = `
	SELECT EXISTS (SELECT 1 FROM vouchers WHERE code = $1)
	`

	var exists bool
	err := r.DB.QueryRow(ctx, codeExists, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

func (r *VoucherRepo) ListVouchers(ctx context.Context) ([]models.Voucher, error) {
	const listVouchers = `
	SELECT id, code, password, face_value, point_value, sale_status, use_status, created_at
	FROM vouchers
	ORDER BY created_at, code
	`

	rows, _ := r.DB.Query(ctx, listVouchers)
	vouchers, err := pgx.CollectRows(rows, rowToVoucher)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return vouchers, nil
}

func rowToVoucher(row pgx.CollectableRow) (models.Voucher, error) {
	var v models.Voucher
	err := row.Scan(&v.ID, &v.Code, &v.Password, &v.FaceValue, &v.PointValue, &v.SaleStatus, &v.UseStatus, &v.CreatedAt)
	return v, err
}
