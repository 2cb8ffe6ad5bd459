package store

import (
	"context"

	"todomcp/internal/domain"
)

// Login sets the session to userID when that user exists.
func (s *Store) Login(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	err := s.cycle(ctx, "login", true, func() error {
		u := s.data.FindUser(userID)
		if u == nil {
			return notFound("user", userID)
		}
		id := u.ID
		s.data.CurrentUserID = &id
		user = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.LogUserAction("login", userID)
	return &user, nil
}

// Logout clears the session.
func (s *Store) Logout(ctx context.Context) error {
	err := s.cycle(ctx, "logout", true, func() error {
		s.data.CurrentUserID = nil
		return nil
	})
	if err == nil {
		s.logger.LogUserAction("logout", "")
	}
	return err
}

// CurrentUser returns the session user, or nil when logged out or when the
// session points at a user that no longer exists.
func (s *Store) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user *domain.User
	err := s.cycle(ctx, "current_user", false, func() error {
		if u := s.currentUser(); u != nil {
			cp := *u
			user = &cp
		}
		return nil
	})
	return user, err
}

// HasPermission reports whether the current user's role grants c. It is false
// when nobody is logged in.
func (s *Store) HasPermission(ctx context.Context, c domain.Capability) bool {
	var ok bool
	_ = s.cycle(ctx, "has_permission", false, func() error {
		ok = s.hasPermission(c)
		return nil
	})
	return ok
}

// CanEditTask reports whether the current user may edit todo.
func (s *Store) CanEditTask(ctx context.Context, todo *domain.Todo) bool {
	var ok bool
	_ = s.cycle(ctx, "can_edit_task", false, func() error {
		ok = s.canEditTask(todo)
		return nil
	})
	return ok
}

// CanDeleteTask reports whether the current user may delete todo.
func (s *Store) CanDeleteTask(ctx context.Context, todo *domain.Todo) bool {
	var ok bool
	_ = s.cycle(ctx, "can_delete_task", false, func() error {
		ok = s.canDeleteTask(todo)
		return nil
	})
	return ok
}

// Permissions returns the current user's capability set; all false when
// logged out.
func (s *Store) Permissions(ctx context.Context) domain.Permissions {
	var perms domain.Permissions
	_ = s.cycle(ctx, "permissions", false, func() error {
		if u := s.currentUser(); u != nil {
			perms = domain.PermissionsFor(u.Role)
		}
		return nil
	})
	return perms
}

func (s *Store) currentUser() *domain.User {
	id := s.data.SessionUserID()
	if id == "" {
		return nil
	}
	return s.data.FindUser(id)
}

func (s *Store) hasPermission(c domain.Capability) bool {
	u := s.currentUser()
	if u == nil {
		return false
	}
	return domain.PermissionsFor(u.Role).Has(c)
}

// canEditTask: edit-any, or the assignee, or the creator.
func (s *Store) canEditTask(todo *domain.Todo) bool {
	u := s.currentUser()
	if u == nil || todo == nil {
		return false
	}
	if domain.PermissionsFor(u.Role).CanEditAny {
		return true
	}
	return todo.AssigneeID == u.ID || todo.CreatedBy == u.ID
}

// canDeleteTask: delete-any, or the creator. Being the assignee is not enough.
func (s *Store) canDeleteTask(todo *domain.Todo) bool {
	u := s.currentUser()
	if u == nil || todo == nil {
		return false
	}
	if domain.PermissionsFor(u.Role).CanDeleteAny {
		return true
	}
	return todo.CreatedBy == u.ID
}
