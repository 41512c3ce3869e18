package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is the stored credential record. HashedPassword and Salt never leave
// the process; handlers serialize UserView instead.
type User struct {
	UserID         string
	Username       string
	Email          string
	HashedPassword string
	Salt           string
	Role           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type UserView struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u User) View() UserView {
	return UserView{
		UserID:    u.UserID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
