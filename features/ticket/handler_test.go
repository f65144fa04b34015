package ticket_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"opsdesk/apps/backend/features/ticket"
	"opsdesk/apps/backend/internal/auth"
)

func TestHandler_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepo)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)

		svc := ticket.NewService(repo, &MockGuard{}, testLogger())
		handler := ticket.NewHandler(svc)

		req := httptest.NewRequest("POST", "/tickets", strings.NewReader(`{"subject":"printer on fire"}`))
		rr := httptest.NewRecorder()
		handler.Create(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("MissingSubject", func(t *testing.T) {
		svc := ticket.NewService(new(MockRepo), &MockGuard{}, testLogger())
		handler := ticket.NewHandler(svc)

		req := httptest.NewRequest("POST", "/tickets", strings.NewReader(`{"subject":"  "}`))
		rr := httptest.NewRecorder()
		handler.Create(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandler_BulkDelete(t *testing.T) {
	newHandler := func(guardErr error, repo *MockRepo) *ticket.Handler {
		svc := ticket.NewService(repo, &MockGuard{Err: guardErr}, testLogger())
		return ticket.NewHandler(svc)
	}

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepo)
		repo.On("DeleteByIDs", mock.Anything, []string{"t1", "t2"}).Return(int64(2), nil)

		handler := newHandler(nil, repo)

		req := httptest.NewRequest("POST", "/tickets/bulk-delete", strings.NewReader(`{"ticket_ids":["t1","t2"]}`))
		rr := httptest.NewRecorder()
		handler.BulkDelete(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		data := resp["data"].(map[string]interface{})
		assert.Equal(t, float64(2), data["deleted_count"])
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		handler := newHandler(auth.ErrUnauthorized, new(MockRepo))

		req := httptest.NewRequest("POST", "/tickets/bulk-delete", strings.NewReader(`{"ticket_ids":["t1"]}`))
		rr := httptest.NewRecorder()
		handler.BulkDelete(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "UNAUTHORIZED")
	})

	t.Run("Forbidden", func(t *testing.T) {
		handler := newHandler(auth.ErrForbidden, new(MockRepo))

		req := httptest.NewRequest("POST", "/tickets/bulk-delete", strings.NewReader(`{"ticket_ids":["t1"]}`))
		rr := httptest.NewRecorder()
		handler.BulkDelete(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("RoleNotFound", func(t *testing.T) {
		handler := newHandler(auth.ErrRoleNotFound, new(MockRepo))

		req := httptest.NewRequest("POST", "/tickets/bulk-delete", strings.NewReader(`{"ticket_ids":["t1"]}`))
		rr := httptest.NewRecorder()
		handler.BulkDelete(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("EmptyIDList", func(t *testing.T) {
		handler := newHandler(nil, new(MockRepo))

		req := httptest.NewRequest("POST", "/tickets/bulk-delete", strings.NewReader(`{"ticket_ids":[]}`))
		rr := httptest.NewRecorder()
		handler.BulkDelete(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
