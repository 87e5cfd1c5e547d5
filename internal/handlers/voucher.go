package handlers

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"pointsadmin/internal/apperrors"
	"pointsadmin/internal/export"
	"pointsadmin/internal/handlers/render"
	"pointsadmin/internal/logger"
	"pointsadmin/internal/service/voucher"
)

func handleGenerateVouchers(service voucherService, l logger.Logger) http.Handler {
	type request struct {
		Count      int     `json:"count" validate:"required,min=1,max=5000"`
		FaceValue  float64 `json:"face_value" validate:"required,gt=0"`
		PointValue int64   `json:"point_value" validate:"required,gt=0"`
		CodeRule   string  `json:"code_rule" validate:"required,oneof=digits letters mixed"`
		PwdRule    string  `json:"pwd_rule" validate:"required,oneof=digits letters mixed"`
	}

	type voucherItem struct {
		ID       string `json:"id"`
		Code     string `json:"code"`
		Password string `json:"password"`
	}

	type response struct {
		Created     int           `json:"created"`
		Vouchers    []voucherItem `json:"vouchers"`
		FailedSlots []int         `json:"failed_slots,omitempty"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		vouchers, err := service.GenerateBatch(r.Context(), voucher.GenerateParams{
			Count:      req.Count,
			FaceValue:  decimal.NewFromFloat(req.FaceValue),
			PointValue: req.PointValue,
			CodeRule:   req.CodeRule,
			PwdRule:    req.PwdRule,
		})

		resp := response{Created: len(vouchers)}
		for _, v := range vouchers {
			resp.Vouchers = append(resp.Vouchers, voucherItem{ID: v.ID.String(), Code: v.Code, Password: v.Password})
		}

		var genErr *voucher.GenerationError
		switch {
		case err == nil:
			render.JSON(w, resp)
		case errors.As(err, &genErr):
			// Partial batch: committed cards are returned with the failure detail
			resp.FailedSlots = genErr.FailedSlots
			render.JSON(w, resp)
		case errors.Is(err, apperrors.ErrCountOutOfRange), errors.Is(err, apperrors.ErrUnknownCharRule):
			render.ServiceError(w, err.Error(), http.StatusBadRequest)
		default:
			l.Error("Failed to generate vouchers", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleExportVouchers(service voucherService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vouchers, err := service.List(r.Context())
		if err != nil {
			l.Error("Failed to list vouchers for export", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="vouchers.csv"`)
		_, _ = w.Write(export.Vouchers(vouchers))
	})
}
