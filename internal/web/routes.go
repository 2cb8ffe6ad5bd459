package web

import "github.com/labstack/echo/v4"

func (s *Server) routes() {
	e := s.echo

	e.GET("/healthz", s.health)
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	api := e.Group("/api")

	api.POST("/login", s.login)
	api.POST("/logout", s.logout)
	api.GET("/current-user", s.currentUser)

	api.GET("/users", s.listUsers)
	api.POST("/users", s.addUser)

	api.GET("/projects", s.listProjects)
	api.POST("/projects", s.addProject)
	api.DELETE("/projects/:id", s.deleteProject)

	api.GET("/todos", s.listTodos)
	api.POST("/todos", s.addTodo)
	api.PUT("/todos/:id", s.updateTodo)
	api.DELETE("/todos/:id", s.deleteTodo)
	api.PATCH("/todos/:id/toggle", s.toggleTodo)
	api.PATCH("/todos/:id/assign", s.assignTodo)

	api.GET("/summary", s.summary)
	api.GET("/overdue", s.overdue)
	api.GET("/urgent", s.urgent)
}
