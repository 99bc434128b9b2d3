package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/subx/internal/models"
	"github.com/desertthunder/subx/internal/shared"
)

var _ UserGateway = (*UserService)(nil)

// UserService implements [UserGateway] against /user.
type UserService struct {
	api *APIService
}

// NewUserService creates a [UserService]. api must carry a session.
func NewUserService(api *APIService) *UserService {
	return &UserService{api: api}
}

type profileRecord struct {
	ID       flexString `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Phone    string     `json:"phone"`
}

// FetchProfile calls GET /user/value, which answers with a one-element array.
func (u *UserService) FetchProfile(ctx context.Context) (models.UserProfile, error) {
	var records []profileRecord
	if err := u.api.callJSON(ctx, http.MethodGet, "/user/value", true, nil, &records); err != nil {
		return models.UserProfile{}, err
	}

	if len(records) == 0 {
		return models.UserProfile{}, shared.ErrEmptyProfile
	}

	r := records[0]
	return models.UserProfile{ID: string(r.ID), Name: r.Name, Email: r.Email, Password: r.Password, Phone: r.Phone}, nil
}

// UpdateProfile calls PUT /user with the full replacement record.
func (u *UserService) UpdateProfile(ctx context.Context, update models.ProfileUpdate) error {
	if err := update.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	_, err := u.api.call(ctx, http.MethodPut, "/user", true, update)
	return err
}
