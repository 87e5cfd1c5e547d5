package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"pointsadmin/internal/apperrors"
	"pointsadmin/internal/handlers/render"
	"pointsadmin/internal/logger"
	"pointsadmin/internal/service/withdrawal"
)

type batchResponse struct {
	Count  int              `json:"count"`
	Failed []failedIDDetail `json:"failed,omitempty"`
}

type failedIDDetail struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

func toBatchResponse(result withdrawal.BatchResult) batchResponse {
	resp := batchResponse{Count: result.Count}
	for _, f := range result.Failed {
		resp.Failed = append(resp.Failed, failedIDDetail{ID: f.ID.String(), Reason: reason(f.Err)})
	}
	return resp
}

func reason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrRequestNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrRequestNotPending):
		return "already_settled"
	default:
		return "storage_error"
	}
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func handleSettleWithdrawals(service withdrawalService, l logger.Logger) http.Handler {
	type request struct {
		IDs []string `json:"ids" validate:"required,min=1,dive,uuid4"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		ids, err := parseIDs(req.IDs)
		if err != nil {
			render.ServiceError(w, "Invalid request identifier", http.StatusBadRequest)
			return
		}

		result, err := service.Settle(r.Context(), ids)

		switch {
		case err == nil:
			render.JSON(w, toBatchResponse(result))
		case errors.Is(err, apperrors.ErrEmptyIDSet):
			render.ServiceError(w, "Empty identifier set", http.StatusBadRequest)
		default:
			l.Error("Failed to settle withdrawals", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleCancelWithdrawals(service withdrawalService, l logger.Logger) http.Handler {
	type request struct {
		IDs []string `json:"ids" validate:"omitempty,dive,uuid4"`
		All bool     `json:"all"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		var result withdrawal.BatchResult
		switch {
		case req.All:
			result, err = service.CancelAll(r.Context())
		default:
			var ids []uuid.UUID
			ids, err = parseIDs(req.IDs)
			if err != nil {
				render.ServiceError(w, "Invalid request identifier", http.StatusBadRequest)
				return
			}
			result, err = service.Cancel(r.Context(), ids)
		}

		switch {
		case err == nil:
			render.JSON(w, toBatchResponse(result))
		case errors.Is(err, apperrors.ErrEmptyIDSet):
			render.ServiceError(w, "Empty identifier set", http.StatusBadRequest)
		default:
			l.Error("Failed to cancel withdrawals", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListWithdrawals(service withdrawalService, l logger.Logger) http.Handler {
	type withdrawalItem struct {
		ID          string     `json:"id"`
		UserID      string     `json:"user_id"`
		Points      int64      `json:"points"`
		Money       float64    `json:"money"`
		BankInfo    string     `json:"bank_info"`
		Status      string     `json:"status"`
		RequestedAt time.Time  `json:"requested_at"`
		SettledAt   *time.Time `json:"settled_at,omitempty"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests, err := service.List(r.Context(), r.URL.Query().Get("status"))

		switch {
		case err == nil:
			items := make([]withdrawalItem, 0, len(requests))
			for _, req := range requests {
				money, _ := req.Money.Float64()
				items = append(items, withdrawalItem{
					ID:          req.ID.String(),
					UserID:      req.UserID.String(),
					Points:      req.Points,
					Money:       money,
					BankInfo:    req.BankInfo,
					Status:      req.Status,
					RequestedAt: req.RequestedAt,
					SettledAt:   req.SettledAt,
				})
			}
			render.JSON(w, items)
		case errors.Is(err, apperrors.ErrUnknownStatus):
			render.ServiceError(w, "Unknown status filter", http.StatusBadRequest)
		default:
			l.Error("Failed to list withdrawals", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
