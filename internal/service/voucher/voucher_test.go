package voucher

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointsadmin/internal/apperrors"
	"pointsadmin/internal/logger"
	"pointsadmin/internal/models"
	"pointsadmin/internal/repository"
	"pointsadmin/internal/testutil"
)

func digitsParams(count int) GenerateParams {
	return GenerateParams{
		Count:      count,
		FaceValue:  decimal.NewFromInt(100),
		PointValue: 1000,
		CodeRule:   RuleDigits,
		PwdRule:    RuleDigits,
	}
}

func TestService_GenerateBatch(t *testing.T) {
	t.Run("digits batch", func(t *testing.T) {
		store := testutil.NewMemStorage()
		service := NewService(store, logger.NewNoOpLogger())

		vouchers, err := service.GenerateBatch(t.Context(), digitsParams(5))

		require.NoError(t, err)
		require.Len(t, vouchers, 5)

		codes := make(map[string]bool)
		for _, v := range vouchers {
			assert.Len(t, v.Code, models.VoucherCodeLength, "code must be 16 characters")
			assert.Len(t, v.Password, models.VoucherPasswordLength, "password must be 8 characters")
			assert.Regexp(t, `^[0-9]+$`, v.Code, "digits rule must yield digit-only codes")
			assert.Regexp(t, `^[0-9]+$`, v.Password)
			assert.Equal(t, models.VoucherUseStatusUnused, v.UseStatus)
			codes[v.Code] = true
		}
		assert.Len(t, codes, 5, "codes must be pairwise distinct")
	})

	t.Run("large batch pairwise distinct and persisted", func(t *testing.T) {
		store := testutil.NewMemStorage()
		service := NewService(store, logger.NewNoOpLogger())

		vouchers, err := service.GenerateBatch(t.Context(), digitsParams(1000))

		require.NoError(t, err)
		require.Len(t, vouchers, 1000)

		persisted, err := store.ListVouchers(t.Context())
		require.NoError(t, err)
		assert.Len(t, persisted, 1000, "every card must be committed")
	})

	t.Run("count bounds", func(t *testing.T) {
		store := testutil.NewMemStorage()
		service := NewService(store, logger.NewNoOpLogger())

		for _, count := range []int{0, -3, MaxBatchCount + 1} {
			_, err := service.GenerateBatch(t.Context(), digitsParams(count))

			require.ErrorIs(t, err, apperrors.ErrCountOutOfRange, "count=%d", count)
		}
	})

	t.Run("unknown rules", func(t *testing.T) {
		store := testutil.NewMemStorage()
		service := NewService(store, logger.NewNoOpLogger())

		p := digitsParams(1)
		p.CodeRule = "emoji"
		_, err := service.GenerateBatch(t.Context(), p)
		require.ErrorIs(t, err, apperrors.ErrUnknownCharRule)

		p = digitsParams(1)
		p.PwdRule = "emoji"
		_, err = service.GenerateBatch(t.Context(), p)
		require.ErrorIs(t, err, apperrors.ErrUnknownCharRule)
	})

	t.Run("retry budget exhaustion reports slots", func(t *testing.T) {
		store := testutil.NewMemStorage()
		store.VoucherCreateErr = apperrors.ErrVoucherCodeTaken // every insert collides
		service := NewService(store, logger.NewNoOpLogger())

		vouchers, err := service.GenerateBatch(t.Context(), digitsParams(3))

		require.Error(t, err)
		require.ErrorIs(t, err, apperrors.ErrCodeRetryBudget)

		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, []int{0, 1, 2}, genErr.FailedSlots)
		assert.Empty(t, vouchers)
	})

	t.Run("storage error stops the batch", func(t *testing.T) {
		store := testutil.NewMemStorage()
		store.VoucherCreateErr = errors.New("db error: connection lost")
		service := NewService(store, logger.NewNoOpLogger())

		vouchers, err := service.GenerateBatch(t.Context(), digitsParams(3))

		require.Error(t, err)
		assert.NotErrorIs(t, err, apperrors.ErrCodeRetryBudget, "infrastructure failure is not a conflict")
		assert.Empty(t, vouchers)
	})

	t.Run("collisions with persisted codes are retried", func(t *testing.T) {
		store := testutil.NewMemStorage()
		service := NewService(store, logger.NewNoOpLogger())

		// Pre-seed a card, then generate against the same store
		seeded, err := store.CreateVoucher(t.Context(), repository.CreateVoucherParams{
			Code:       "1111222233334444",
			Password:   "12345678",
			FaceValue:  decimal.NewFromInt(100),
			PointValue: 1000,
		})
		require.NoError(t, err)

		vouchers, err := service.GenerateBatch(t.Context(), digitsParams(50))

		require.NoError(t, err)
		for _, v := range vouchers {
			assert.NotEqual(t, seeded.Code, v.Code, "persisted code must never be reissued")
		}
	})
}

func TestService_List(t *testing.T) {
	store := testutil.NewMemStorage()
	service := NewService(store, logger.NewNoOpLogger())

	_, err := service.GenerateBatch(t.Context(), digitsParams(3))
	require.NoError(t, err)

	vouchers, err := service.List(t.Context())

	require.NoError(t, err)
	assert.Len(t, vouchers, 3)
}
