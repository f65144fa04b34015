package webhook_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"opsdesk/apps/backend/features/webhook"
	"opsdesk/apps/backend/internal/auth"
)

func TestHandler_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepo)
		repo.On("SaveWebhook", mock.Anything, mock.Anything).Return(nil)

		handler := webhook.NewHandler(repo, nil)

		req := httptest.NewRequest("POST", "/webhooks", strings.NewReader(`{"name":"ops","url":"http://hooks.local/ops"}`))
		rr := httptest.NewRecorder()
		handler.Create(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("MissingName", func(t *testing.T) {
		handler := webhook.NewHandler(new(MockRepo), nil)

		req := httptest.NewRequest("POST", "/webhooks", strings.NewReader(`{"url":"http://hooks.local/ops"}`))
		rr := httptest.NewRecorder()
		handler.Create(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandler_QueryLogs(t *testing.T) {
	newHandler := func(guardErr error, repo *MockRepo) *webhook.Handler {
		svc := webhook.NewLogQueryService(repo, &MockGuard{Err: guardErr}, testLogger())
		return webhook.NewHandler(repo, svc)
	}

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepo)
		repo.On("CountDeliveryLogs", mock.Anything, mock.Anything).Return(45, nil)
		repo.On("QueryDeliveryLogs", mock.Anything, mock.Anything, 20, 0).Return(entries(20), nil)

		handler := newHandler(nil, repo)

		req := httptest.NewRequest("GET", "/webhooks/logs", nil)
		rr := httptest.NewRecorder()
		handler.QueryLogs(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		pagination := resp["pagination"].(map[string]interface{})
		assert.Equal(t, float64(45), pagination["total"])
		assert.Equal(t, float64(3), pagination["pages"])
		assert.Equal(t, float64(1), pagination["current_page"])
	})

	t.Run("FiltersPassedThrough", func(t *testing.T) {
		repo := new(MockRepo)
		wantFilter := webhook.LogFilter{WebhookID: "wh-1", Event: "operation.failed", Status: webhook.ClassificationError}
		repo.On("CountDeliveryLogs", mock.Anything, wantFilter).Return(1, nil)
		repo.On("QueryDeliveryLogs", mock.Anything, wantFilter, 10, 0).Return(entries(1), nil)

		handler := newHandler(nil, repo)

		req := httptest.NewRequest("GET", "/webhooks/logs?webhook_id=wh-1&event=operation.failed&status=error&limit=10", nil)
		rr := httptest.NewRecorder()
		handler.QueryLogs(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		repo.AssertExpectations(t)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		handler := newHandler(auth.ErrUnauthorized, new(MockRepo))

		req := httptest.NewRequest("GET", "/webhooks/logs", nil)
		rr := httptest.NewRecorder()
		handler.QueryLogs(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "UNAUTHORIZED")
	})

	t.Run("Forbidden", func(t *testing.T) {
		handler := newHandler(auth.ErrForbidden, new(MockRepo))

		req := httptest.NewRequest("GET", "/webhooks/logs", nil)
		rr := httptest.NewRecorder()
		handler.QueryLogs(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "FORBIDDEN")
	})

	t.Run("RoleNotFound", func(t *testing.T) {
		handler := newHandler(auth.ErrRoleNotFound, new(MockRepo))

		req := httptest.NewRequest("GET", "/webhooks/logs", nil)
		rr := httptest.NewRecorder()
		handler.QueryLogs(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "ROLE_NOT_FOUND")
	})

	t.Run("InvalidPagination", func(t *testing.T) {
		handler := newHandler(nil, new(MockRepo))

		req := httptest.NewRequest("GET", "/webhooks/logs?page=0", nil)
		rr := httptest.NewRecorder()
		handler.QueryLogs(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("InvalidStatusFilter", func(t *testing.T) {
		handler := newHandler(nil, new(MockRepo))

		req := httptest.NewRequest("GET", "/webhooks/logs?status=unclassified", nil)
		rr := httptest.NewRecorder()
		handler.QueryLogs(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("NonNumericPage", func(t *testing.T) {
		handler := newHandler(nil, new(MockRepo))

		req := httptest.NewRequest("GET", "/webhooks/logs?page=abc", nil)
		rr := httptest.NewRecorder()
		handler.QueryLogs(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
