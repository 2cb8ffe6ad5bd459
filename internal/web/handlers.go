package web

import (
	"errors"
	"net/http"

	"todomcp/internal/store"

	"github.com/labstack/echo/v4"
)

const (
	msgUserNotFound   = "User not found"
	msgDenied         = "Permission denied"
	msgDeniedNotFound = "Permission denied or not found"
	msgNotLoggedIn    = "Not logged in"
)

type failureBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, failureBody{Error: err.Error()})
}

// refuse maps a store error to a response. Denials and missing records share
// msg and a 403; invalid input is a 400; anything else is a 500.
func (s *Server) refuse(c echo.Context, err error, msg string) error {
	switch {
	case errors.Is(err, store.ErrInvalidInput):
		return badRequest(c, err)
	case store.IsDenial(err):
		return c.JSON(http.StatusForbidden, failureBody{Error: msg})
	default:
		return err
	}
}

// bind decodes the body into dto and runs its checks.
func bind[T interface{ validate() error }](c echo.Context, dto *T) error {
	if err := c.Bind(dto); err != nil {
		return errors.New("malformed request body")
	}
	return (*dto).validate()
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "ok",
		"storage": s.store.Backend().Describe(),
	})
}

func (s *Server) login(c echo.Context) error {
	var dto LoginDTO
	if err := bind(c, &dto); err != nil {
		return badRequest(c, err)
	}
	user, err := s.store.Login(c.Request().Context(), dto.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, failureBody{Error: msgUserNotFound})
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}

func (s *Server) logout(c echo.Context) error {
	if err := s.store.Logout(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (s *Server) currentUser(c echo.Context) error {
	user, err := s.store.CurrentUser(c.Request().Context())
	if err != nil {
		return err
	}
	// A nil *User encodes as null.
	return c.JSON(http.StatusOK, user)
}

func (s *Server) listUsers(c echo.Context) error {
	users, err := s.store.Users(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (s *Server) addUser(c echo.Context) error {
	var dto CreateUserDTO
	if err := bind(c, &dto); err != nil {
		return badRequest(c, err)
	}
	user, err := s.store.AddUser(c.Request().Context(), dto.toStore())
	if err != nil {
		return s.refuse(c, err, msgDenied)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}

func (s *Server) listProjects(c echo.Context) error {
	projects, err := s.store.Projects(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projects)
}

func (s *Server) addProject(c echo.Context) error {
	var dto CreateProjectDTO
	if err := bind(c, &dto); err != nil {
		return badRequest(c, err)
	}
	project, err := s.store.AddProject(c.Request().Context(), store.NewProject{Name: dto.Name, Color: dto.Color})
	if err != nil {
		return s.refuse(c, err, msgDenied)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "project": project})
}

func (s *Server) deleteProject(c echo.Context) error {
	removed, err := s.store.DeleteProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.refuse(c, err, msgDeniedNotFound)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "todosRemoved": removed})
}

func (s *Server) listTodos(c echo.Context) error {
	f, err := todoFilter(
		c.QueryParam("project"),
		c.QueryParam("assignee"),
		c.QueryParam("status"),
		c.QueryParam("priority"),
		c.QueryParam("date"),
	)
	if err != nil {
		return badRequest(c, err)
	}
	todos, err := s.store.Todos(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, todos)
}

func (s *Server) addTodo(c echo.Context) error {
	var dto CreateTodoDTO
	if err := bind(c, &dto); err != nil {
		return badRequest(c, err)
	}
	todo, err := s.store.AddTodo(c.Request().Context(), dto.toStore())
	if err != nil {
		return s.refuse(c, err, msgDenied)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "todo": todo})
}

func (s *Server) updateTodo(c echo.Context) error {
	var dto UpdateTodoDTO
	if err := bind(c, &dto); err != nil {
		return badRequest(c, err)
	}
	todo, err := s.store.UpdateTodo(c.Request().Context(), c.Param("id"), dto.toStore())
	if err != nil {
		return s.refuse(c, err, msgDeniedNotFound)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "todo": todo})
}

func (s *Server) deleteTodo(c echo.Context) error {
	todo, err := s.store.DeleteTodo(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.refuse(c, err, msgDeniedNotFound)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "deleted": todo})
}

func (s *Server) toggleTodo(c echo.Context) error {
	todo, err := s.store.ToggleTodo(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.refuse(c, err, msgDeniedNotFound)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "todo": todo, "completed": todo.Completed})
}

func (s *Server) assignTodo(c echo.Context) error {
	var dto AssignDTO
	if err := bind(c, &dto); err != nil {
		return badRequest(c, err)
	}
	todo, user, err := s.store.AssignTodo(c.Request().Context(), c.Param("id"), dto.UserID)
	if err != nil {
		return s.refuse(c, err, msgDeniedNotFound)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "todo": todo, "assignedTo": user.Name})
}

// summary merges the session summary with counts over every todo. When
// logged out only the error and the global block are present.
func (s *Server) summary(c echo.Context) error {
	ctx := c.Request().Context()
	body := echo.Map{"global": s.store.GlobalStats(ctx)}

	sum, err := s.store.Summary(ctx)
	switch {
	case errors.Is(err, store.ErrNotLoggedIn):
		body["error"] = msgNotLoggedIn
	case err != nil:
		return err
	default:
		body["user"] = sum.User
		body["role"] = sum.Role
		body["permissions"] = sum.Permissions
		body["totalTasks"] = sum.TotalTasks
		body["completed"] = sum.Completed
		body["pending"] = sum.Pending
		body["urgent"] = sum.Urgent
		body["overdue"] = sum.Overdue
		body["todayTasks"] = sum.TodayTasks
		body["allStats"] = sum.AllStats
	}
	return c.JSON(http.StatusOK, body)
}

func (s *Server) overdue(c echo.Context) error {
	todos, err := s.store.OverdueTodos(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, todos)
}

func (s *Server) urgent(c echo.Context) error {
	todos, err := s.store.UrgentTodos(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, todos)
}
