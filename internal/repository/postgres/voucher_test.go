package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointsadmin/internal/apperrors"
	"pointsadmin/internal/models"
	"pointsadmin/internal/repository"
	"pointsadmin/internal/testutil"
)

func TestVoucher(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	inTx := func(t *testing.T, outerTx DBTX, fn func(pgx.Tx, repository.Storage)) {
		testutil.InTx(outerTx, t, func(innerTx pgx.Tx) {
			storage := NewStorage(innerTx)
			fn(innerTx, storage)
		})
	}

	params := func(code string) repository.CreateVoucherParams {
		return repository.CreateVoucherParams{
			Code:       code,
			Password:   "12345678",
			FaceValue:  decimal.NewFromInt(100),
			PointValue: 1000,
		}
	}

	t.Run("CreateVoucher", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			v, err := storage.Voucher().CreateVoucher(t.Context(), params("1111222233334444"))

			require.NoError(t, err)
			assert.Equal(t, "1111222233334444", v.Code)
			assert.Equal(t, models.VoucherSaleStatusOnHold, v.SaleStatus)
			assert.Equal(t, models.VoucherUseStatusUnused, v.UseStatus)
			assert.True(t, v.FaceValue.Equal(decimal.NewFromInt(100)))
			assert.WithinDuration(t, time.Now(), v.CreatedAt, time.Second)
		})
	})

	t.Run("duplicate code returns taken error", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			_, err := storage.Voucher().CreateVoucher(t.Context(), params("5555666677778888"))
			require.NoError(t, err)

			_, err = storage.Voucher().CreateVoucher(t.Context(), params("5555666677778888"))

			require.ErrorIs(t, err, apperrors.ErrVoucherCodeTaken, "conflict must be the well known error, not a pg error")
		})
	})

	t.Run("CodeExists", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			_, err := storage.Voucher().CreateVoucher(t.Context(), params("0000111122223333"))
			require.NoError(t, err)

			exists, err := storage.Voucher().CodeExists(t.Context(), "0000111122223333")
			require.NoError(t, err)
			assert.True(t, exists)

			exists, err = storage.Voucher().CodeExists(t.Context(), "9999999999999999")
			require.NoError(t, err)
			assert.False(t, exists)
		})
	})

	t.Run("ListVouchers", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			_, err := storage.Voucher().CreateVoucher(t.Context(), params("aaaabbbbccccdddd"))
			require.NoError(t, err)
			_, err = storage.Voucher().CreateVoucher(t.Context(), params("eeeeffffgggghhhh"))
			require.NoError(t, err)

			vouchers, err := storage.Voucher().ListVouchers(t.Context())

			require.NoError(t, err)
			assert.Len(t, vouchers, 2)
		})
	})
}
