package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointsadmin/internal/apperrors"
	"pointsadmin/internal/export"
	"pointsadmin/internal/logger"
	"pointsadmin/internal/models"
	"pointsadmin/internal/service/voucher"
	"pointsadmin/internal/service/withdrawal"
)

type stubWithdrawalService struct {
	settleFn    func(ctx context.Context, ids []uuid.UUID) (withdrawal.BatchResult, error)
	cancelFn    func(ctx context.Context, ids []uuid.UUID) (withdrawal.BatchResult, error)
	cancelAllFn func(ctx context.Context) (withdrawal.BatchResult, error)
	listFn      func(ctx context.Context, status string) ([]models.WithdrawalRequest, error)
}

func (s *stubWithdrawalService) Settle(ctx context.Context, ids []uuid.UUID) (withdrawal.BatchResult, error) {
	return s.settleFn(ctx, ids)
}

func (s *stubWithdrawalService) Cancel(ctx context.Context, ids []uuid.UUID) (withdrawal.BatchResult, error) {
	return s.cancelFn(ctx, ids)
}

func (s *stubWithdrawalService) CancelAll(ctx context.Context) (withdrawal.BatchResult, error) {
	return s.cancelAllFn(ctx)
}

func (s *stubWithdrawalService) List(ctx context.Context, status string) ([]models.WithdrawalRequest, error) {
	return s.listFn(ctx, status)
}

type stubVoucherService struct {
	generateFn func(ctx context.Context, p voucher.GenerateParams) ([]models.Voucher, error)
	listFn     func(ctx context.Context) ([]models.Voucher, error)
}

func (s *stubVoucherService) GenerateBatch(ctx context.Context, p voucher.GenerateParams) ([]models.Voucher, error) {
	return s.generateFn(ctx, p)
}

func (s *stubVoucherService) List(ctx context.Context) ([]models.Voucher, error) {
	return s.listFn(ctx)
}

type stubGroupStore struct {
	entries   map[string]export.SettingsEntry
	deleteErr error
}

func (s *stubGroupStore) Get(key string) (export.SettingsEntry, error) {
	e, ok := s.entries[key]
	if !ok {
		return e, apperrors.ErrSettingsKeyNotFound
	}
	return e, nil
}

func (s *stubGroupStore) List() []export.SettingsEntry {
	out := make([]export.SettingsEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out
}

func (s *stubGroupStore) Set(entry export.SettingsEntry) error {
	if s.entries == nil {
		s.entries = make(map[string]export.SettingsEntry)
	}
	s.entries[entry.Key] = entry
	return nil
}

func (s *stubGroupStore) Delete(key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.entries, key)
	return nil
}

func newTestServer(w withdrawalService, v voucherService, g groupStore) *httptest.Server {
	if w == nil {
		w = &stubWithdrawalService{}
	}
	if v == nil {
		v = &stubVoucherService{}
	}
	if g == nil {
		g = &stubGroupStore{}
	}
	return httptest.NewServer(NewRouter(w, v, g, logger.NewNoOpLogger()))
}

func TestHandlers_SettleWithdrawals(t *testing.T) {
	t.Run("settle ok with per id failures", func(t *testing.T) {
		failedID := uuid.New()
		service := &stubWithdrawalService{
			settleFn: func(ctx context.Context, ids []uuid.UUID) (withdrawal.BatchResult, error) {
				require.Len(t, ids, 2)
				return withdrawal.BatchResult{
					Count:  1,
					Failed: []withdrawal.IDError{{ID: failedID, Err: apperrors.ErrRequestNotPending}},
				}, nil
			},
		}
		ts := newTestServer(service, nil, nil)
		defer ts.Close()

		body := `{"ids": ["` + uuid.New().String() + `", "` + failedID.String() + `"]}`
		resp, err := http.Post(ts.URL+"/api/admin/withdrawals/settle", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close() //nolint:errcheck

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got batchResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, 1, got.Count)
		require.Len(t, got.Failed, 1)
		assert.Equal(t, failedID.String(), got.Failed[0].ID)
		assert.Equal(t, "already_settled", got.Failed[0].Reason)
	})

	t.Run("empty ids rejected by validation", func(t *testing.T) {
		ts := newTestServer(nil, nil, nil)
		defer ts.Close()

		resp, err := http.Post(ts.URL+"/api/admin/withdrawals/settle", "application/json", strings.NewReader(`{"ids": []}`))
		require.NoError(t, err)
		defer resp.Body.Close() //nolint:errcheck

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid uuid rejected", func(t *testing.T) {
		ts := newTestServer(nil, nil, nil)
		defer ts.Close()

		resp, err := http.Post(ts.URL+"/api/admin/withdrawals/settle", "application/json", strings.NewReader(`{"ids": ["not-a-uuid"]}`))
		require.NoError(t, err)
		defer resp.Body.Close() //nolint:errcheck

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandlers_CancelWithdrawals(t *testing.T) {
	t.Run("cancel all", func(t *testing.T) {
		called := false
		service := &stubWithdrawalService{
			cancelAllFn: func(ctx context.Context) (withdrawal.BatchResult, error) {
				called = true
				return withdrawal.BatchResult{Count: 7}, nil
			},
		}
		ts := newTestServer(service, nil, nil)
		defer ts.Close()

		resp, err := http.Post(ts.URL+"/api/admin/withdrawals/cancel", "application/json", strings.NewReader(`{"all": true}`))
		require.NoError(t, err)
		defer resp.Body.Close() //nolint:errcheck

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, called, "all=true must route to CancelAll")

		var got batchResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, 7, got.Count)
	})

	t.Run("cancel by ids", func(t *testing.T) {
		id := uuid.New()
		service := &stubWithdrawalService{
			cancelFn: func(ctx context.Context, ids []uuid.UUID) (withdrawal.BatchResult, error) {
				require.Equal(t, []uuid.UUID{id}, ids)
				return withdrawal.BatchResult{Count: 1}, nil
			},
		}
		ts := newTestServer(service, nil, nil)
		defer ts.Close()

		body := `{"ids": ["` + id.String() + `"]}`
		resp, err := http.Post(ts.URL+"/api/admin/withdrawals/cancel", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close() //nolint:errcheck

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("neither all nor ids", func(t *testing.T) {
		service := &stubWithdrawalService{
			cancelFn: func(ctx context.Context, ids []uuid.UUID) (withdrawal.BatchResult, error) {
				return withdrawal.BatchResult{}, apperrors.ErrEmptyIDSet
			},
		}
		ts := newTestServer(service, nil, nil)
		defer ts.Close()

		resp, err := http.Post(ts.URL+"/api/admin/withdrawals/cancel", "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		defer resp.Body.Close() //nolint:errcheck

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandlers_ListWithdrawals(t *testing.T) {
	settledAt := time.Now()
	service := &stubWithdrawalService{
		listFn: func(ctx context.Context, status string) ([]models.WithdrawalRequest, error) {
			assert.Equal(t, models.WithdrawalStatusSettled, status)
			return []models.WithdrawalRequest{
				{
					ID:        uuid.New(),
					UserID:    uuid.New(),
					Points:    500,
					Money:     decimal.NewFromInt(50),
					Status:    models.WithdrawalStatusSettled,
					SettledAt: &settledAt,
				},
			}, nil
		},
	}
	ts := newTestServer(service, nil, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/admin/withdrawals?status=SETTLED")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, float64(500), got[0]["points"])
	assert.Equal(t, "SETTLED", got[0]["status"])
}

func TestHandlers_GenerateVouchers(t *testing.T) {
	t.Run("generate ok", func(t *testing.T) {
		service := &stubVoucherService{
			generateFn: func(ctx context.Context, p voucher.GenerateParams) ([]models.Voucher, error) {
				assert.Equal(t, 2, p.Count)
				assert.Equal(t, voucher.RuleDigits, p.CodeRule)
				return []models.Voucher{
					{ID: uuid.New(), Code: "1111222233334444", Password: "11112222"},
					{ID: uuid.New(), Code: "5555666677778888", Password: "55556666"},
				}, nil
			},
		}
		ts := newTestServer(nil, service, nil)
		defer ts.Close()

		body := `{"count": 2, "face_value": 100, "point_value": 1000, "code_rule": "digits", "pwd_rule": "digits"}`
		resp, err := http.Post(ts.URL+"/api/admin/vouchers/generate", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close() //nolint:errcheck

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got struct {
			Created  int `json:"created"`
			Vouchers []struct {
				Code string `json:"code"`
			} `json:"vouchers"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, 2, got.Created)
		require.Len(t, got.Vouchers, 2)
	})

	t.Run("bad rule rejected by validation", func(t *testing.T) {
		ts := newTestServer(nil, nil, nil)
		defer ts.Close()

		body := `{"count": 2, "face_value": 100, "point_value": 1000, "code_rule": "emoji", "pwd_rule": "digits"}`
		resp, err := http.Post(ts.URL+"/api/admin/vouchers/generate", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close() //nolint:errcheck

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("partial batch reports failed slots", func(t *testing.T) {
		service := &stubVoucherService{
			generateFn: func(ctx context.Context, p voucher.GenerateParams) ([]models.Voucher, error) {
				return []models.Voucher{{ID: uuid.New(), Code: "1111222233334444", Password: "11112222"}},
					&voucher.GenerationError{FailedSlots: []int{1}}
			},
		}
		ts := newTestServer(nil, service, nil)
		defer ts.Close()

		body := `{"count": 2, "face_value": 100, "point_value": 1000, "code_rule": "digits", "pwd_rule": "digits"}`
		resp, err := http.Post(ts.URL+"/api/admin/vouchers/generate", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close() //nolint:errcheck

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got struct {
			Created     int   `json:"created"`
			FailedSlots []int `json:"failed_slots"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, 1, got.Created)
		assert.Equal(t, []int{1}, got.FailedSlots)
	})
}

func TestHandlers_ExportVouchers(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	service := &stubVoucherService{
		listFn: func(ctx context.Context) ([]models.Voucher, error) {
			return []models.Voucher{
				{Code: "0123456789012345", Password: "00112233", CreatedAt: createdAt},
			}, nil
		},
	}
	ts := newTestServer(nil, service, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/admin/vouchers/export")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `="0123456789012345","="00112233",2026-03-14 15:09:26`)
}

func TestHandlers_Groups(t *testing.T) {
	t.Run("set then get", func(t *testing.T) {
		store := &stubGroupStore{}
		ts := newTestServer(nil, nil, store)
		defer ts.Close()

		body := `{"name": "Group One", "web_dir": "/srv/web", "data_dir": "/srv/data"}`
		req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/admin/settings/groups/g1", strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close() //nolint:errcheck
		require.Equal(t, http.StatusOK, resp.StatusCode)

		getResp, err := http.Get(ts.URL + "/api/admin/settings/groups/g1")
		require.NoError(t, err)
		defer getResp.Body.Close() //nolint:errcheck
		require.Equal(t, http.StatusOK, getResp.StatusCode)

		var got groupItem
		require.NoError(t, json.NewDecoder(getResp.Body).Decode(&got))
		assert.Equal(t, "g1", got.Key)
		assert.Equal(t, "Group One", got.Name)
	})

	t.Run("get unknown group", func(t *testing.T) {
		ts := newTestServer(nil, nil, nil)
		defer ts.Close()

		resp, err := http.Get(ts.URL + "/api/admin/settings/groups/nope")
		require.NoError(t, err)
		defer resp.Body.Close() //nolint:errcheck

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("delete protected group", func(t *testing.T) {
		store := &stubGroupStore{deleteErr: apperrors.ErrSettingsKeyProtected}
		ts := newTestServer(nil, nil, store)
		defer ts.Close()

		req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/admin/settings/groups/default", nil)
		require.NoError(t, err)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close() //nolint:errcheck

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
