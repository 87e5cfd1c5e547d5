package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"pointsadmin/internal/export"
	"pointsadmin/internal/handlers/middleware"
	"pointsadmin/internal/logger"
	"pointsadmin/internal/models"
	"pointsadmin/internal/service/voucher"
	"pointsadmin/internal/service/withdrawal"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	withdrawalService withdrawalService,
	voucherService voucherService,
	groupStore groupStore,
	logger logger.Logger,
) http.Handler {
	apiadmin := http.NewServeMux()

	apiadmin.Handle("GET /withdrawals", handleListWithdrawals(withdrawalService, logger))
	apiadmin.Handle("POST /withdrawals/settle", handleSettleWithdrawals(withdrawalService, logger))
	apiadmin.Handle("POST /withdrawals/cancel", handleCancelWithdrawals(withdrawalService, logger))

	apiadmin.Handle("POST /vouchers/generate", handleGenerateVouchers(voucherService, logger))
	apiadmin.Handle("GET /vouchers/export", handleExportVouchers(voucherService, logger))

	apiadmin.Handle("GET /settings/groups", handleListGroups(groupStore))
	apiadmin.Handle("GET /settings/groups/{key}", handleGetGroup(groupStore))
	apiadmin.Handle("PUT /settings/groups/{key}", handleSetGroup(groupStore, logger))
	apiadmin.Handle("DELETE /settings/groups/{key}", handleDeleteGroup(groupStore, logger))

	root := http.NewServeMux()
	root.Handle("/api/admin/", http.StripPrefix("/api/admin", apiadmin))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type withdrawalService interface {
	// Settle pending requests: release frozen points, log to the ledger
	// Already settled or missing ids are reported per-id, never reprocessed
	Settle(ctx context.Context, ids []uuid.UUID) (withdrawal.BatchResult, error)

	// Cancel requests: reverse the reservation for pending ones,
	// plain removal for settled ones
	Cancel(ctx context.Context, ids []uuid.UUID) (withdrawal.BatchResult, error)
	CancelAll(ctx context.Context) (withdrawal.BatchResult, error)

	List(ctx context.Context, status string) ([]models.WithdrawalRequest, error)
}

type voucherService interface {
	GenerateBatch(ctx context.Context, p voucher.GenerateParams) ([]models.Voucher, error)
	List(ctx context.Context) ([]models.Voucher, error)
}

type groupStore interface {
	Get(key string) (export.SettingsEntry, error)
	List() []export.SettingsEntry
	Set(entry export.SettingsEntry) error
	Delete(key string) error
}
