package store

import (
	"context"
	"strings"

	"todomcp/internal/domain"
	"todomcp/internal/validation"
)

// NewUser holds the fields of AddUser. Avatar defaults to domain.DefaultAvatar.
type NewUser struct {
	Name   string
	Email  string
	Role   domain.Role
	Avatar string
}

func (n NewUser) validate() error {
	var errs validation.Errors
	errs.Add("name", validation.Name(n.Name))
	errs.Add("email", validation.Email(n.Email))
	errs.Add("role", validation.Role(string(n.Role)))
	if err := errs.Err(); err != nil {
		return invalid("%v", err)
	}
	return nil
}

// Users returns every user in collection order.
func (s *Store) Users(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := s.cycle(ctx, "list_users", false, func() error {
		users = append([]domain.User{}, s.data.Users...)
		return nil
	})
	return users, err
}

// User returns one user by id.
func (s *Store) User(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := s.cycle(ctx, "get_user", false, func() error {
		u := s.data.FindUser(id)
		if u == nil {
			return notFound("user", id)
		}
		user = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AddUser creates a user. Requires the manage-users capability.
func (s *Store) AddUser(ctx context.Context, in NewUser) (*domain.User, error) {
	var user domain.User
	err := s.cycle(ctx, "add_user", true, func() error {
		if !s.hasPermission(domain.CapManageUsers) {
			return denied("add user")
		}
		if err := in.validate(); err != nil {
			return err
		}
		avatar := strings.TrimSpace(in.Avatar)
		if avatar == "" {
			avatar = domain.DefaultAvatar
		}
		user = domain.User{
			ID:     s.newID(),
			Name:   in.Name,
			Email:  in.Email,
			Avatar: avatar,
			Role:   in.Role,
		}
		s.data.Users = append(s.data.Users, user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
