package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"opsdesk/apps/backend/internal/middleware"
)

type Handler struct {
	repo Repository
	jwt  *JWT
}

func NewHandler(repo Repository, jwt *JWT) *Handler {
	return &Handler{repo: repo, jwt: jwt}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", "invalid request body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "email and password are required", http.StatusBadRequest)
		return
	}

	u, err := h.repo.GetByEmail(ctx, req.Email)
	if err != nil || !ComparePassword(u.PasswordHash, req.Password) {
		slog.InfoContext(ctx, "login rejected", "email", req.Email, "correlationId", correlationID)
		h.writeError(ctx, w, "UNAUTHORIZED", "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.jwt.Sign(u.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to sign token", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to issue token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"data": map[string]string{
			"token": token,
			"role":  u.Role,
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
