package auth

import "time"

const (
	RoleAdministrator = "administrator"
	RoleWorker        = "worker"
	RoleCustomer      = "customer"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
