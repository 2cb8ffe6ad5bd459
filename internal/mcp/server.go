package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"todomcp/internal/domain"
	"todomcp/internal/logging"
	"todomcp/internal/store"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	ServerName    = "todo-mcp-server"
	ServerVersion = "1.0.0"
)

// toolFunc runs one tool. A returned error means the arguments were
// malformed; store refusals are reported inside the payload.
type toolFunc func(ctx context.Context, a args) (any, error)

// Server exposes the store as MCP tools over stdio.
type Server struct {
	store     *store.Store
	logger    *logging.AppLogger
	mcpServer *server.MCPServer
	schemas   map[string]*jsonschema.Schema
}

// NewServer builds the MCP server and registers every tool.
func NewServer(st *store.Store, logger *logging.AppLogger) (*Server, error) {
	if logger == nil {
		logger = logging.GetDefault()
	}
	s := &Server{
		store:   st,
		logger:  logger.With("component", "mcp"),
		schemas: make(map[string]*jsonschema.Schema),
		mcpServer: server.NewMCPServer(ServerName, ServerVersion,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}

	handlers := s.handlers()
	tools := make([]server.ServerTool, 0, len(handlers))
	for _, tool := range Tools() {
		fn, ok := handlers[tool.Name]
		if !ok {
			return nil, fmt.Errorf("no handler for tool %s", tool.Name)
		}
		schema, err := compileArgsSchema(tool)
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", tool.Name, err)
		}
		s.schemas[tool.Name] = schema
		tools = append(tools, server.ServerTool{Tool: tool, Handler: s.wrap(tool.Name, fn)})
	}
	s.mcpServer.AddTools(tools...)

	s.logger.Debug("MCP tools registered", "count", len(tools))
	return s, nil
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// Serve speaks JSON-RPC on in/out until ctx is cancelled or in reaches EOF.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("Todo MCP server running on stdio")
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(s.logger.StandardLog())
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// compileArgsSchema turns the tool's input schema into a strict validator:
// unknown argument names are rejected.
func compileArgsSchema(tool mcp.Tool) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(tool.InputSchema)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	doc["additionalProperties"] = false
	if props, ok := doc["properties"].(map[string]any); ok {
		if imp, ok := props["importance"].(map[string]any); ok {
			imp["type"] = "integer"
		}
	}
	strict, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return jsonschema.CompileString(tool.Name+".json", string(strict))
}

func (s *Server) wrap(name string, fn toolFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		defer s.logger.LogPerformance("tool "+name, start)

		raw := req.GetArguments()
		if raw == nil {
			raw = map[string]any{}
		}
		if err := s.schemas[name].Validate(raw); err != nil {
			s.logger.Debug("Rejected tool arguments", "tool", name, "error", err)
			return invalidResult(describeSchemaError(err)), nil
		}

		payload, err := fn(ctx, args(raw))
		if err != nil {
			s.logger.Debug("Rejected tool arguments", "tool", name, "error", err)
			return invalidResult(err.Error()), nil
		}
		return textResult(payload), nil
	}
}

func textResult(payload any) *mcp.CallToolResult {
	text, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf(`{"success":false,"error":%q}`, err.Error()))
	}
	return mcp.NewToolResultText(string(text))
}

func invalidResult(detail string) *mcp.CallToolResult {
	text, _ := json.Marshal(failure("invalid arguments: " + detail))
	return mcp.NewToolResultError(string(text))
}

// describeSchemaError reports the innermost cause with its argument path.
func describeSchemaError(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := strings.TrimPrefix(ve.InstanceLocation, "/")
	if loc == "" {
		return ve.Message
	}
	return loc + ": " + ve.Message
}

// args reads already schema-checked tool arguments.
type args map[string]any

func (a args) str(key string) string {
	v, _ := a[key].(string)
	return v
}

// optStr returns nil when key is absent.
func (a args) optStr(key string) *string {
	v, ok := a[key].(string)
	if !ok {
		return nil
	}
	return &v
}

func (a args) optInt(key string) *int {
	v, ok := a[key].(float64)
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}

type result map[string]any

func failure(msg string) result {
	return result{"success": false, "error": msg}
}

// list reports todos with their count plus any extra keys.
func list(todos []domain.Todo, extra result) result {
	r := result{"todos": todos, "count": len(todos)}
	for k, v := range extra {
		r[k] = v
	}
	return r
}

// refused collapses denial and not-found into one message, so callers cannot
// tell a forbidden id from a missing one. Shape problems found by the store
// are reported as invalid arguments.
func refused(err error, msg string) (any, error) {
	if errors.Is(err, store.ErrInvalidInput) {
		return nil, err
	}
	return failure(msg), nil
}

func (s *Server) handlers() map[string]toolFunc {
	return map[string]toolFunc{
		ToolLogin:         s.login,
		ToolLogout:        s.logout,
		ToolCurrentUser:   s.currentUser,
		ToolListUsers:     s.listUsers,
		ToolAddUser:       s.addUser,
		ToolListProjects:  s.listProjects,
		ToolAddProject:    s.addProject,
		ToolDeleteProject: s.deleteProject,
		ToolList:          s.listTodos,
		ToolAdd:           s.addTodo,
		ToolUpdate:        s.updateTodo,
		ToolToggle:        s.toggleTodo,
		ToolDelete:        s.deleteTodo,
		ToolAssign:        s.assignTodo,
		ToolByProject:     s.byProject,
		ToolByAssignee:    s.byAssignee,
		ToolByDate:        s.byDate,
		ToolOverdue:       s.queryTool(s.store.OverdueTodos, result{"overdue": true}),
		ToolUrgent:        s.queryTool(s.store.UrgentTodos, result{"priority": domain.PriorityUrgent}),
		ToolPending:       s.queryTool(s.store.PendingTodos, result{"completed": false}),
		ToolCompleted:     s.queryTool(s.store.CompletedTodos, result{"completed": true}),
		ToolSummary:       s.summary,
	}
}

func (s *Server) login(ctx context.Context, a args) (any, error) {
	user, err := s.store.Login(ctx, a.str("user_id"))
	if err != nil {
		return failure("User not found"), nil
	}
	return result{"success": true, "user": user}, nil
}

func (s *Server) logout(ctx context.Context, _ args) (any, error) {
	if err := s.store.Logout(ctx); err != nil {
		return failure(err.Error()), nil
	}
	return result{"success": true, "message": "Logged out"}, nil
}

func (s *Server) currentUser(ctx context.Context, _ args) (any, error) {
	user, err := s.store.CurrentUser(ctx)
	if err != nil || user == nil {
		return result{"error": "Not logged in"}, nil
	}
	return user, nil
}

func (s *Server) listUsers(ctx context.Context, _ args) (any, error) {
	users, err := s.store.Users(ctx)
	if err != nil {
		return failure(err.Error()), nil
	}
	return result{"users": users, "count": len(users)}, nil
}

func (s *Server) addUser(ctx context.Context, a args) (any, error) {
	user, err := s.store.AddUser(ctx, store.NewUser{
		Name:   a.str("name"),
		Email:  a.str("email"),
		Role:   domain.Role(a.str("role")),
		Avatar: a.str("avatar"),
	})
	if err != nil {
		return refused(err, "Permission denied or failed to create user")
	}
	return result{"success": true, "user": user}, nil
}

func (s *Server) listProjects(ctx context.Context, _ args) (any, error) {
	projects, err := s.store.Projects(ctx)
	if err != nil {
		return failure(err.Error()), nil
	}
	return result{"projects": projects, "count": len(projects)}, nil
}

func (s *Server) addProject(ctx context.Context, a args) (any, error) {
	project, err := s.store.AddProject(ctx, store.NewProject{Name: a.str("name"), Color: a.str("color")})
	if err != nil {
		return refused(err, "Permission denied or failed to create project")
	}
	return result{"success": true, "project": project}, nil
}

func (s *Server) deleteProject(ctx context.Context, a args) (any, error) {
	removed, err := s.store.DeleteProject(ctx, a.str("project_id"))
	if err != nil {
		return refused(err, "Permission denied or project not found")
	}
	return result{"success": true, "message": "Project deleted", "todosRemoved": removed}, nil
}

func (s *Server) listTodos(ctx context.Context, _ args) (any, error) {
	todos, err := s.store.Todos(ctx, store.TodoFilter{})
	if err != nil {
		return failure(err.Error()), nil
	}
	return list(todos, nil), nil
}

func (s *Server) addTodo(ctx context.Context, a args) (any, error) {
	in := store.NewTodo{
		Title:      a.str("title"),
		ProjectID:  a.str("project_id"),
		AssigneeID: a.str("assignee_id"),
		Date:       a.str("date"),
		Time:       a.str("time"),
		Priority:   domain.Priority(a.str("priority")),
		Note:       a.str("note"),
	}
	if n := a.optInt("importance"); n != nil {
		in.Importance = *n
	}
	todo, err := s.store.AddTodo(ctx, in)
	if err != nil {
		return refused(err, "Permission denied or failed to create todo")
	}
	return result{"success": true, "todo": todo}, nil
}

func (s *Server) updateTodo(ctx context.Context, a args) (any, error) {
	u := store.TodoUpdate{
		Title:      a.optStr("title"),
		ProjectID:  a.optStr("project_id"),
		AssigneeID: a.optStr("assignee_id"),
		Date:       a.optStr("date"),
		Time:       a.optStr("time"),
		Importance: a.optInt("importance"),
		Note:       a.optStr("note"),
	}
	if p := a.optStr("priority"); p != nil {
		prio := domain.Priority(*p)
		u.Priority = &prio
	}
	todo, err := s.store.UpdateTodo(ctx, a.str("todo_id"), u)
	if err != nil {
		return refused(err, "Permission denied or todo not found")
	}
	return result{"success": true, "todo": todo}, nil
}

func (s *Server) toggleTodo(ctx context.Context, a args) (any, error) {
	todo, err := s.store.ToggleTodo(ctx, a.str("todo_id"))
	if err != nil {
		return refused(err, "Permission denied or todo not found")
	}
	return result{"success": true, "todo": todo, "completed": todo.Completed}, nil
}

func (s *Server) deleteTodo(ctx context.Context, a args) (any, error) {
	todo, err := s.store.DeleteTodo(ctx, a.str("todo_id"))
	if err != nil {
		return refused(err, "Permission denied or todo not found")
	}
	return result{"success": true, "deleted": todo}, nil
}

func (s *Server) assignTodo(ctx context.Context, a args) (any, error) {
	todo, user, err := s.store.AssignTodo(ctx, a.str("todo_id"), a.str("user_id"))
	if err != nil {
		return refused(err, "Permission denied, todo not found, or user not found")
	}
	return result{"success": true, "todo": todo, "assignedTo": user.Name}, nil
}

func (s *Server) byProject(ctx context.Context, a args) (any, error) {
	id := a.str("project_id")
	todos, err := s.store.TodosByProject(ctx, id)
	if err != nil {
		return failure(err.Error()), nil
	}
	var name any
	if p, err := s.store.Project(ctx, id); err == nil {
		name = p.Name
	}
	return list(todos, result{"project": name}), nil
}

func (s *Server) byAssignee(ctx context.Context, a args) (any, error) {
	id := a.str("user_id")
	todos, err := s.store.TodosByAssignee(ctx, id)
	if err != nil {
		return failure(err.Error()), nil
	}
	var name any
	if u, err := s.store.User(ctx, id); err == nil {
		name = u.Name
	}
	return list(todos, result{"user": name}), nil
}

func (s *Server) byDate(ctx context.Context, a args) (any, error) {
	date := a.str("date")
	todos, err := s.store.TodosByDate(ctx, date)
	if err != nil {
		return failure(err.Error()), nil
	}
	return list(todos, result{"date": date}), nil
}

func (s *Server) queryTool(q func(context.Context) ([]domain.Todo, error), tag result) toolFunc {
	return func(ctx context.Context, _ args) (any, error) {
		todos, err := q(ctx)
		if err != nil {
			return failure(err.Error()), nil
		}
		return list(todos, tag), nil
	}
}

func (s *Server) summary(ctx context.Context, _ args) (any, error) {
	sum, err := s.store.Summary(ctx)
	if err != nil {
		return result{"error": "Not logged in"}, nil
	}
	return sum, nil
}
