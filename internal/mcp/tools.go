package mcp

import (
	"fmt"
	"sort"
	"strings"

	"todomcp/internal/domain"

	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names, one per store operation.
const (
	ToolLogin         = "todo_login"
	ToolLogout        = "todo_logout"
	ToolCurrentUser   = "todo_current_user"
	ToolListUsers     = "todo_list_users"
	ToolAddUser       = "todo_add_user"
	ToolListProjects  = "todo_list_projects"
	ToolAddProject    = "todo_add_project"
	ToolDeleteProject = "todo_delete_project"
	ToolList          = "todo_list"
	ToolAdd           = "todo_add"
	ToolUpdate        = "todo_update"
	ToolToggle        = "todo_toggle"
	ToolDelete        = "todo_delete"
	ToolAssign        = "todo_assign"
	ToolByProject     = "todo_by_project"
	ToolByAssignee    = "todo_by_assignee"
	ToolByDate        = "todo_by_date"
	ToolOverdue       = "todo_overdue"
	ToolUrgent        = "todo_urgent"
	ToolPending       = "todo_pending"
	ToolCompleted     = "todo_completed"
	ToolSummary       = "todo_summary"
)

const (
	datePattern  = `^\d{4}-\d{2}-\d{2}$`
	timePattern  = `^\d{2}:\d{2}$`
	colorPattern = `^#[0-9A-Fa-f]{6}$`
)

// hints selects the behaviour annotations of a tool. openWorld is always false:
// every tool acts on the local store only.
type hints struct {
	readOnly, destructive, idempotent bool
}

var (
	query    = hints{readOnly: true, idempotent: true}
	mutation = hints{}
	settle   = hints{idempotent: true}
	destroy  = hints{destructive: true}
)

func newTool(name, title, description string, h hints, opts ...mcp.ToolOption) mcp.Tool {
	base := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithTitleAnnotation(title),
		mcp.WithReadOnlyHintAnnotation(h.readOnly),
		mcp.WithDestructiveHintAnnotation(h.destructive),
		mcp.WithIdempotentHintAnnotation(h.idempotent),
		mcp.WithOpenWorldHintAnnotation(false),
	}
	return mcp.NewTool(name, append(base, opts...)...)
}

func enumOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// todoFields are the optional todo attributes shared by todo_add and todo_update.
func todoFields(verb string) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("project_id", mcp.Description(verb+"project ID")),
		mcp.WithString("assignee_id", mcp.Description(verb+"assignee user ID")),
		mcp.WithString("date", mcp.Pattern(datePattern), mcp.Description(verb+"due date (YYYY-MM-DD)")),
		mcp.WithString("time", mcp.Pattern(timePattern), mcp.Description(verb+"due time (HH:MM)")),
		mcp.WithString("priority", mcp.Enum(enumOf(domain.Priorities)...), mcp.Description(verb+"priority level")),
		mcp.WithNumber("importance", mcp.Min(domain.MinImportance), mcp.Max(domain.MaxImportance), mcp.Description(verb+"importance (1-5)")),
		mcp.WithString("note", mcp.Description(verb+"notes")),
	}
}

// Tools returns the tool catalogue in registration order.
func Tools() []mcp.Tool {
	return []mcp.Tool{
		newTool(ToolLogin, "Login to Todo System", `Login as a user to access the todo system.

Returns the user object with id, name, email, avatar and role.

Default users:
  - admin1: Admin (full access)
  - manager1: Project Manager (manage projects and assign tasks)
  - dev1, dev2: Developers (manage own tasks)
  - viewer1: Viewer (read-only)`, settle,
			mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID to login as"))),
		newTool(ToolLogout, "Logout from Todo System", "Logout the current user from the todo system.", settle),
		newTool(ToolCurrentUser, "Get Current User", "Get the currently logged in user information.", query),

		newTool(ToolListUsers, "List All Users", "Get all users in the system with their roles.", query),
		newTool(ToolAddUser, "Add New User", "Add a new user to the system. Requires the 'admin' role.", mutation,
			mcp.WithString("name", mcp.Required(), mcp.Description("User's full name")),
			mcp.WithString("email", mcp.Required(), mcp.Description("User's email address")),
			mcp.WithString("role", mcp.Required(), mcp.Enum(enumOf(domain.Roles)...), mcp.Description("User's role")),
			mcp.WithString("avatar", mcp.Description("Emoji avatar"))),

		newTool(ToolListProjects, "List All Projects", "Get all projects in the system.", query),
		newTool(ToolAddProject, "Add New Project", "Create a new project. Requires the 'admin' or 'manager' role.", mutation,
			mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
			mcp.WithString("color", mcp.Pattern(colorPattern), mcp.Description("Hex color code, e.g. #667eea"))),
		newTool(ToolDeleteProject, "Delete Project", "Delete a project and all its tasks. Requires the 'admin' or 'manager' role.", destroy,
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID to delete"))),

		newTool(ToolList, "List All Todos", "Get all todos in the system.", query),
		newTool(ToolAdd, "Add New Todo", `Create a new todo task.

Defaults: assignee is the current user, project is the first project, date is
today, priority is medium and importance is 3.

Role permissions:
  - admin/manager: can assign to any user
  - member: can only assign to self
  - viewer: cannot create tasks`, mutation,
			append([]mcp.ToolOption{mcp.WithString("title", mcp.Required(), mcp.Description("Task title"))}, todoFields("")...)...),
		newTool(ToolUpdate, "Update Todo", "Update an existing todo task. Only the given fields change.", settle,
			append([]mcp.ToolOption{
				mcp.WithString("todo_id", mcp.Required(), mcp.Description("Todo ID to update")),
				mcp.WithString("title", mcp.Description("New title")),
			}, todoFields("New ")...)...),
		newTool(ToolToggle, "Toggle Todo Complete", "Mark a todo as complete or incomplete.", mutation,
			mcp.WithString("todo_id", mcp.Required(), mcp.Description("Todo ID to toggle"))),
		newTool(ToolDelete, "Delete Todo", "Delete a todo task.", destroy,
			mcp.WithString("todo_id", mcp.Required(), mcp.Description("Todo ID to delete"))),
		newTool(ToolAssign, "Assign Todo to User", "Assign a todo to a different user. Requires the 'admin' or 'manager' role.", settle,
			mcp.WithString("todo_id", mcp.Required(), mcp.Description("Todo ID to assign")),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID to assign to"))),

		newTool(ToolByProject, "Get Todos by Project", "Get all todos for a specific project.", query,
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID to filter by"))),
		newTool(ToolByAssignee, "Get Todos by Assignee", "Get all todos assigned to a specific user.", query,
			mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID to filter by"))),
		newTool(ToolByDate, "Get Todos by Date", "Get all todos for a specific date.", query,
			mcp.WithString("date", mcp.Required(), mcp.Pattern(datePattern), mcp.Description("Date in YYYY-MM-DD format"))),
		newTool(ToolOverdue, "Get Overdue Todos", "Get all overdue (past due date) incomplete todos.", query),
		newTool(ToolUrgent, "Get Urgent Todos", "Get all urgent priority incomplete todos.", query),
		newTool(ToolPending, "Get Pending Todos", "Get all incomplete todos.", query),
		newTool(ToolCompleted, "Get Completed Todos", "Get all completed todos.", query),

		newTool(ToolSummary, "Get Todo Summary", "Get a summary of todos for the current user including stats and permissions.", query),
	}
}

// CatalogueMarkdown renders tools as a Markdown document: one section per
// tool with its behaviour hints and an argument table.
func CatalogueMarkdown(tools []mcp.Tool) string {
	var b strings.Builder
	b.WriteString("# todo-mcp tools\n\n")
	fmt.Fprintf(&b, "%d tools. Arguments marked * are required.\n\n", len(tools))

	for _, t := range tools {
		fmt.Fprintf(&b, "## `%s`\n\n", t.Name)
		if t.Annotations.Title != "" {
			fmt.Fprintf(&b, "**%s**", t.Annotations.Title)
		}
		if tags := hintTags(t.Annotations); tags != "" {
			fmt.Fprintf(&b, " · _%s_", tags)
		}
		b.WriteString("\n\n")
		b.WriteString(t.Description)
		b.WriteString("\n\n")

		if len(t.InputSchema.Properties) == 0 {
			b.WriteString("No arguments.\n\n")
			continue
		}
		required := map[string]bool{}
		for _, r := range t.InputSchema.Required {
			required[r] = true
		}
		names := make([]string, 0, len(t.InputSchema.Properties))
		for name := range t.InputSchema.Properties {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if required[names[i]] != required[names[j]] {
				return required[names[i]]
			}
			return names[i] < names[j]
		})

		b.WriteString("| argument | type | description |\n|---|---|---|\n")
		for _, name := range names {
			prop, _ := t.InputSchema.Properties[name].(map[string]any)
			label := name
			if required[name] {
				label += "*"
			}
			typ, _ := prop["type"].(string)
			desc, _ := prop["description"].(string)
			if enum, ok := prop["enum"].([]string); ok {
				desc += " (" + strings.Join(enum, ", ") + ")"
			}
			fmt.Fprintf(&b, "| `%s` | %s | %s |\n", label, typ, desc)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func hintTags(a mcp.ToolAnnotation) string {
	var tags []string
	if a.ReadOnlyHint != nil && *a.ReadOnlyHint {
		tags = append(tags, "read-only")
	}
	if a.DestructiveHint != nil && *a.DestructiveHint {
		tags = append(tags, "destructive")
	}
	if a.IdempotentHint != nil && *a.IdempotentHint {
		tags = append(tags, "idempotent")
	}
	return strings.Join(tags, ", ")
}
