package dto

import (
	"time"

	domainuser "staynest/internal/domain/user"
)

type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Roles     []string  `json:"roles"`
	Guest     bool      `json:"guest"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AuthResponse struct {
	User  UserProfile `json:"user"`
	Token string      `json:"token"`
}

func MapUserProfile(u *domainuser.User) UserProfile {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, string(r))
	}
	return UserProfile{
		ID:        string(u.ID),
		Email:     u.Email,
		Name:      u.Name,
		Roles:     roles,
		Guest:     u.Guest,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func NewAuthResponse(u *domainuser.User, token string) AuthResponse {
	return AuthResponse{User: MapUserProfile(u), Token: token}
}
