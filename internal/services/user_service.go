package services

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"kicks/internal/domain"
	"kicks/internal/repos"
	"kicks/internal/validate"
)

type UserService struct {
	Users *repos.UserRepo
}

func NewUserService(users *repos.UserRepo) *UserService { return &UserService{Users: users} }

func (s *UserService) Profile(id string) (*domain.User, error) {
	u, err := s.Users.ByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *UserService) UpdateProfile(id, name string) (*domain.User, error) {
	name, ok := validate.Name(name)
	if !ok {
		return nil, invalid("name is required")
	}
	if err := s.Users.UpdateName(id, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Profile(id)
}

func cleanAddress(a *domain.Address) error {
	for _, f := range []*string{&a.Label, &a.Line1, &a.Line2, &a.City, &a.State, &a.PostalCode, &a.Phone} {
		*f = strings.TrimSpace(*f)
	}
	if err := validate.Struct(a); err != nil {
		return invalid("%s", err.Error())
	}
	return nil
}

// AddAddress saves a new address and returns the refreshed profile.
func (s *UserService) AddAddress(userID string, a domain.Address) (*domain.User, error) {
	if err := cleanAddress(&a); err != nil {
		return nil, err
	}
	a.ID, a.UserID = uuid.NewString(), userID
	if err := s.Users.SaveAddress(&a, true); err != nil {
		return nil, err
	}
	return s.Profile(userID)
}

func (s *UserService) UpdateAddress(userID, id string, a domain.Address) (*domain.User, error) {
	if err := cleanAddress(&a); err != nil {
		return nil, err
	}
	a.ID, a.UserID = id, userID
	if err := s.Users.SaveAddress(&a, false); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Profile(userID)
}

func (s *UserService) DeleteAddress(userID, id string) (*domain.User, error) {
	if err := s.Users.DeleteAddress(userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Profile(userID)
}

func (s *UserService) List() ([]domain.User, error) { return s.Users.List() }
