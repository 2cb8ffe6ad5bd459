package store

import (
	"context"
	"fmt"

	"todomcp/internal/domain"
	"todomcp/internal/validation"
)

// NewTodo holds the fields of AddTodo. Zero values select the defaults:
// assignee = current user, project = first project, date = today,
// priority = medium, importance = 3.
type NewTodo struct {
	Title      string
	ProjectID  string
	AssigneeID string
	Date       string
	Time       string
	Priority   domain.Priority
	Importance int
	Note       string
}

// TodoUpdate lists the fields UpdateTodo may change. A nil field is left
// untouched; a non-nil field replaces the stored value. Time and Note may be
// cleared by pointing at "".
type TodoUpdate struct {
	Title      *string
	ProjectID  *string
	AssigneeID *string
	Date       *string
	Time       *string
	Priority   *domain.Priority
	Importance *int
	Note       *string
	Completed  *bool
}

// IsEmpty reports whether the update changes nothing.
func (u TodoUpdate) IsEmpty() bool {
	return u.Title == nil && u.ProjectID == nil && u.AssigneeID == nil &&
		u.Date == nil && u.Time == nil && u.Priority == nil &&
		u.Importance == nil && u.Note == nil && u.Completed == nil
}

func (u TodoUpdate) validate() error {
	var errs validation.Errors
	if u.Title != nil {
		errs.Add("title", validation.Title(*u.Title))
	}
	if u.ProjectID != nil {
		errs.Add("project_id", validation.ID(*u.ProjectID))
	}
	if u.AssigneeID != nil {
		errs.Add("assignee_id", validation.ID(*u.AssigneeID))
	}
	if u.Date != nil {
		errs.Add("date", validation.Date(*u.Date))
	}
	if u.Time != nil && *u.Time != "" {
		errs.Add("time", validation.Time(*u.Time))
	}
	if u.Priority != nil {
		errs.Add("priority", validation.Priority(string(*u.Priority)))
	}
	if u.Importance != nil {
		errs.Add("importance", validation.Importance(*u.Importance))
	}
	if u.Note != nil {
		errs.Add("note", validation.Note(*u.Note))
	}
	if err := errs.Err(); err != nil {
		return invalid("%v", err)
	}
	return nil
}

func (n NewTodo) validate() error {
	var errs validation.Errors
	errs.Add("title", validation.Title(n.Title))
	if n.Date != "" {
		errs.Add("date", validation.Date(n.Date))
	}
	if n.Time != "" {
		errs.Add("time", validation.Time(n.Time))
	}
	if n.Priority != "" {
		errs.Add("priority", validation.Priority(string(n.Priority)))
	}
	if n.Importance != 0 {
		errs.Add("importance", validation.Importance(n.Importance))
	}
	errs.Add("note", validation.Note(n.Note))
	if err := errs.Err(); err != nil {
		return invalid("%v", err)
	}
	return nil
}

// TodoFilter narrows Todos. Empty fields match everything; set fields are ANDed.
type TodoFilter struct {
	ProjectID  string
	AssigneeID string
	Status     domain.Status
	Priority   domain.Priority
	Date       string
}

func (f TodoFilter) matches(t *domain.Todo) bool {
	if f.ProjectID != "" && t.ProjectID != f.ProjectID {
		return false
	}
	if f.AssigneeID != "" && t.AssigneeID != f.AssigneeID {
		return false
	}
	if f.Status != "" && t.Status() != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Date != "" && t.Date != f.Date {
		return false
	}
	return true
}

// Todos returns the todos matching f in collection order.
func (s *Store) Todos(ctx context.Context, f TodoFilter) ([]domain.Todo, error) {
	return s.query(ctx, "list_todos", f.matches)
}

// Todo returns one todo by id.
func (s *Store) Todo(ctx context.Context, id string) (*domain.Todo, error) {
	var todo domain.Todo
	err := s.cycle(ctx, "get_todo", false, func() error {
		t := s.data.FindTodo(id)
		if t == nil {
			return notFound("todo", id)
		}
		todo = *t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// AddTodo creates a todo for the current user. Requires the create-task
// capability and, when assigning to someone else, assign-others.
func (s *Store) AddTodo(ctx context.Context, in NewTodo) (*domain.Todo, error) {
	var todo domain.Todo
	err := s.cycle(ctx, "add_todo", true, func() error {
		user := s.currentUser()
		if user == nil || !s.hasPermission(domain.CapCreateTask) {
			return denied("add todo")
		}

		assignee := in.AssigneeID
		if assignee == "" {
			assignee = user.ID
		}
		if assignee != user.ID && !s.hasPermission(domain.CapAssignOthers) {
			return denied("assign todo to another user")
		}

		if err := in.validate(); err != nil {
			return err
		}

		projectID := in.ProjectID
		if projectID == "" {
			if len(s.data.Projects) == 0 {
				return invalid("project_id: no projects exist")
			}
			projectID = s.data.Projects[0].ID
		}
		if err := s.checkRefs(&projectID, &assignee); err != nil {
			return err
		}

		todo = domain.Todo{
			ID:         s.newID(),
			Title:      in.Title,
			ProjectID:  projectID,
			AssigneeID: assignee,
			Date:       in.Date,
			Time:       in.Time,
			Priority:   in.Priority,
			Importance: in.Importance,
			Note:       in.Note,
			CreatedBy:  user.ID,
			CreatedAt:  s.now().UTC(),
		}
		if todo.Date == "" {
			todo.Date = s.today()
		}
		if todo.Priority == "" {
			todo.Priority = domain.DefaultPriority
		}
		if todo.Importance == 0 {
			todo.Importance = domain.DefaultImportance
		}
		s.data.Todos = append(s.data.Todos, todo)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// UpdateTodo applies the present fields of u. Requires edit rights on the
// todo and, when the assignee changes, assign-others.
func (s *Store) UpdateTodo(ctx context.Context, id string, u TodoUpdate) (*domain.Todo, error) {
	var todo domain.Todo
	err := s.cycle(ctx, "update_todo", true, func() error {
		t := s.data.FindTodo(id)
		if t == nil {
			return notFound("todo", id)
		}
		if !s.canEditTask(t) {
			return denied("update todo")
		}
		if u.AssigneeID != nil && *u.AssigneeID != t.AssigneeID && !s.hasPermission(domain.CapAssignOthers) {
			return denied("reassign todo")
		}
		if err := u.validate(); err != nil {
			return err
		}
		if err := s.checkRefs(u.ProjectID, u.AssigneeID); err != nil {
			return err
		}

		if u.Title != nil {
			t.Title = *u.Title
		}
		if u.ProjectID != nil {
			t.ProjectID = *u.ProjectID
		}
		if u.AssigneeID != nil {
			t.AssigneeID = *u.AssigneeID
		}
		if u.Date != nil {
			t.Date = *u.Date
		}
		if u.Time != nil {
			t.Time = *u.Time
		}
		if u.Priority != nil {
			t.Priority = *u.Priority
		}
		if u.Importance != nil {
			t.Importance = *u.Importance
		}
		if u.Note != nil {
			t.Note = *u.Note
		}
		if u.Completed != nil && *u.Completed != t.Completed {
			t.SetCompleted(*u.Completed, s.now())
		}
		todo = *t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// ToggleTodo flips the completion state. Requires edit rights on the todo.
func (s *Store) ToggleTodo(ctx context.Context, id string) (*domain.Todo, error) {
	var todo domain.Todo
	err := s.cycle(ctx, "toggle_todo", true, func() error {
		t := s.data.FindTodo(id)
		if t == nil {
			return notFound("todo", id)
		}
		if !s.canEditTask(t) {
			return denied("toggle todo")
		}
		from := t.Status()
		t.SetCompleted(!t.Completed, s.now())
		s.logger.LogStateTransition("todo "+t.ID, string(from), string(t.Status()))
		todo = *t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// DeleteTodo removes a todo and returns it. Requires delete-any or being the
// creator.
func (s *Store) DeleteTodo(ctx context.Context, id string) (*domain.Todo, error) {
	var todo domain.Todo
	err := s.cycle(ctx, "delete_todo", true, func() error {
		idx := -1
		for i := range s.data.Todos {
			if s.data.Todos[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return notFound("todo", id)
		}
		if !s.canDeleteTask(&s.data.Todos[idx]) {
			return denied("delete todo")
		}
		todo = s.data.Todos[idx]
		s.data.Todos = append(s.data.Todos[:idx], s.data.Todos[idx+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// AssignTodo sets the assignee. Requires assign-others whoever owns the todo.
// It also returns the assignee.
func (s *Store) AssignTodo(ctx context.Context, id, userID string) (*domain.Todo, *domain.User, error) {
	var (
		todo domain.Todo
		user domain.User
	)
	err := s.cycle(ctx, "assign_todo", true, func() error {
		if !s.hasPermission(domain.CapAssignOthers) {
			return denied("assign todo")
		}
		t := s.data.FindTodo(id)
		if t == nil {
			return notFound("todo", id)
		}
		u := s.data.FindUser(userID)
		if u == nil {
			return notFound("user", userID)
		}
		t.AssigneeID = u.ID
		todo = *t
		user = *u
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &todo, &user, nil
}

// checkRefs verifies that the referenced project and assignee exist. Nil
// pointers are skipped.
func (s *Store) checkRefs(projectID, assigneeID *string) error {
	if projectID != nil && s.data.FindProject(*projectID) == nil {
		return fmt.Errorf("%w: project_id: project %q does not exist", ErrInvalidInput, *projectID)
	}
	if assigneeID != nil && s.data.FindUser(*assigneeID) == nil {
		return fmt.Errorf("%w: assignee_id: user %q does not exist", ErrInvalidInput, *assigneeID)
	}
	return nil
}
