package auth_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"opsdesk/apps/backend/internal/auth"
)

// MockRepo implements auth.Repository
type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}
func (m *MockRepo) GetRole(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}
func (m *MockRepo) Save(ctx context.Context, u *auth.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func TestHandler_Login(t *testing.T) {
	jwtSvc := auth.NewJWT("test-secret")

	t.Run("Success", func(t *testing.T) {
		hash, err := auth.HashPassword("hunter2")
		assert.NoError(t, err)

		repo := new(MockRepo)
		repo.On("GetByEmail", mock.Anything, "admin@example.com").Return(&auth.User{
			ID: "u1", Email: "admin@example.com", PasswordHash: hash, Role: auth.RoleAdministrator,
		}, nil)

		handler := auth.NewHandler(repo, jwtSvc)

		req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"email":"Admin@Example.com","password":"hunter2"}`))
		rr := httptest.NewRecorder()
		handler.Login(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		data := resp["data"].(map[string]interface{})
		assert.NotEmpty(t, data["token"])
		assert.Equal(t, "administrator", data["role"])

		// The token round-trips to the user id.
		sub, err := jwtSvc.Verify(data["token"].(string))
		assert.NoError(t, err)
		assert.Equal(t, "u1", sub)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		hash, err := auth.HashPassword("hunter2")
		assert.NoError(t, err)

		repo := new(MockRepo)
		repo.On("GetByEmail", mock.Anything, "admin@example.com").Return(&auth.User{
			ID: "u1", PasswordHash: hash,
		}, nil)

		handler := auth.NewHandler(repo, jwtSvc)

		req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"email":"admin@example.com","password":"wrong"}`))
		rr := httptest.NewRecorder()
		handler.Login(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		repo := new(MockRepo)
		repo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, sql.ErrNoRows)

		handler := auth.NewHandler(repo, jwtSvc)

		req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"email":"ghost@example.com","password":"x"}`))
		rr := httptest.NewRecorder()
		handler.Login(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("MissingFields", func(t *testing.T) {
		handler := auth.NewHandler(new(MockRepo), jwtSvc)

		req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"email":""}`))
		rr := httptest.NewRecorder()
		handler.Login(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
