package web

import (
	"todomcp/internal/domain"
	"todomcp/internal/store"
	"todomcp/internal/validation"
)

// Request bodies. Field names follow the dashboard's snake_case JSON.

type LoginDTO struct {
	UserID string `json:"user_id"`
}

func (d LoginDTO) validate() error {
	var errs validation.Errors
	errs.Add("user_id", validation.ID(d.UserID))
	return errs.Err()
}

type CreateUserDTO struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar"`
}

func (d CreateUserDTO) validate() error {
	var errs validation.Errors
	errs.Add("name", validation.Name(d.Name))
	errs.Add("email", validation.Email(d.Email))
	errs.Add("role", validation.Role(d.Role))
	return errs.Err()
}

func (d CreateUserDTO) toStore() store.NewUser {
	return store.NewUser{Name: d.Name, Email: d.Email, Role: domain.Role(d.Role), Avatar: d.Avatar}
}

type CreateProjectDTO struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (d CreateProjectDTO) validate() error {
	var errs validation.Errors
	errs.Add("name", validation.Name(d.Name))
	if d.Color != "" {
		errs.Add("color", validation.Color(d.Color))
	}
	return errs.Err()
}

type CreateTodoDTO struct {
	Title      string `json:"title"`
	ProjectID  string `json:"project_id"`
	AssigneeID string `json:"assignee_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Priority   string `json:"priority"`
	Importance *int   `json:"importance"`
	Note       string `json:"note"`
}

func (d CreateTodoDTO) validate() error {
	var errs validation.Errors
	errs.Add("title", validation.Title(d.Title))
	if d.Date != "" {
		errs.Add("date", validation.Date(d.Date))
	}
	if d.Time != "" {
		errs.Add("time", validation.Time(d.Time))
	}
	if d.Priority != "" {
		errs.Add("priority", validation.Priority(d.Priority))
	}
	if d.Importance != nil {
		errs.Add("importance", validation.Importance(*d.Importance))
	}
	errs.Add("note", validation.Note(d.Note))
	return errs.Err()
}

func (d CreateTodoDTO) toStore() store.NewTodo {
	in := store.NewTodo{
		Title:      d.Title,
		ProjectID:  d.ProjectID,
		AssigneeID: d.AssigneeID,
		Date:       d.Date,
		Time:       d.Time,
		Priority:   domain.Priority(d.Priority),
		Note:       d.Note,
	}
	if d.Importance != nil {
		in.Importance = *d.Importance
	}
	return in
}

// UpdateTodoDTO: absent fields are left unchanged.
type UpdateTodoDTO struct {
	Title      *string `json:"title"`
	ProjectID  *string `json:"project_id"`
	AssigneeID *string `json:"assignee_id"`
	Date       *string `json:"date"`
	Time       *string `json:"time"`
	Priority   *string `json:"priority"`
	Importance *int    `json:"importance"`
	Note       *string `json:"note"`
	Completed  *bool   `json:"completed"`
}

func (d UpdateTodoDTO) validate() error {
	var errs validation.Errors
	if d.Title != nil {
		errs.Add("title", validation.Title(*d.Title))
	}
	if d.Date != nil {
		errs.Add("date", validation.Date(*d.Date))
	}
	if d.Time != nil && *d.Time != "" {
		errs.Add("time", validation.Time(*d.Time))
	}
	if d.Priority != nil {
		errs.Add("priority", validation.Priority(*d.Priority))
	}
	if d.Importance != nil {
		errs.Add("importance", validation.Importance(*d.Importance))
	}
	return errs.Err()
}

func (d UpdateTodoDTO) toStore() store.TodoUpdate {
	u := store.TodoUpdate{
		Title:      d.Title,
		ProjectID:  d.ProjectID,
		AssigneeID: d.AssigneeID,
		Date:       d.Date,
		Time:       d.Time,
		Importance: d.Importance,
		Note:       d.Note,
		Completed:  d.Completed,
	}
	if d.Priority != nil {
		p := domain.Priority(*d.Priority)
		u.Priority = &p
	}
	return u
}

type AssignDTO struct {
	UserID string `json:"user_id"`
}

func (d AssignDTO) validate() error {
	var errs validation.Errors
	errs.Add("user_id", validation.ID(d.UserID))
	return errs.Err()
}

// todoFilter reads the /api/todos query parameters.
func todoFilter(project, assignee, status, priority, date string) (store.TodoFilter, error) {
	var errs validation.Errors
	if status != "" {
		errs.Add("status", validation.Status(status))
	}
	if priority != "" {
		errs.Add("priority", validation.Priority(priority))
	}
	if date != "" {
		errs.Add("date", validation.Date(date))
	}
	if err := errs.Err(); err != nil {
		return store.TodoFilter{}, err
	}
	return store.TodoFilter{
		ProjectID:  project,
		AssigneeID: assignee,
		Status:     domain.Status(status),
		Priority:   domain.Priority(priority),
		Date:       date,
	}, nil
}
