package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"todomcp/internal/domain"
	"todomcp/internal/store"

	"github.com/charmbracelet/lipgloss"
)

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatUser renders a one-line identity.
func FormatUser(u *domain.User) string {
	if u == nil {
		return Dim("Not logged in")
	}
	return fmt.Sprintf("%s %s %s %s", u.Avatar, Bold(u.Name), Dim("<"+u.Email+">"), roleBadge(u.Role))
}

func roleBadge(r domain.Role) string {
	return StyleHeader.Render("[" + string(r) + "]")
}

func FormatUserList(users []domain.User, currentID string) string {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		marker := " "
		if u.ID == currentID {
			marker = StyleGreen.Render("*")
		}
		rows = append(rows, []string{marker, u.ID, u.Avatar + " " + u.Name, u.Email, string(u.Role)})
	}
	return RenderBox("Users", RenderTable([]string{"", "ID", "NAME", "EMAIL", "ROLE"}, rows))
}

func FormatProjectList(projects []domain.Project, todos []domain.Todo) string {
	counts := map[string]int{}
	for _, t := range todos {
		counts[t.ProjectID]++
	}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{p.ID, ProjectSwatch(p.Name, p.Color), strconv.Itoa(counts[p.ID])})
	}
	return RenderBox("Projects", RenderTable([]string{"ID", "NAME", "TODOS"}, rows))
}

// TodoListData carries lookups so the list can show names instead of ids.
type TodoListData struct {
	Todos    []domain.Todo
	Projects []domain.Project
	Users    []domain.User
	Today    string
}

func FormatTodoList(data TodoListData) string {
	if len(data.Todos) == 0 {
		return Dim("No todos.")
	}
	projects := make(map[string]domain.Project, len(data.Projects))
	for _, p := range data.Projects {
		projects[p.ID] = p
	}
	users := make(map[string]string, len(data.Users))
	for _, u := range data.Users {
		users[u.ID] = u.Name
	}

	rows := make([][]string, 0, len(data.Todos))
	for _, t := range data.Todos {
		title := t.Title
		if t.Completed {
			title = StyleDim.Strikethrough(true).Render(title)
		}
		project := Dim(t.ProjectID)
		if p, ok := projects[t.ProjectID]; ok {
			project = ProjectSwatch(p.Name, p.Color)
		}
		assignee, ok := users[t.AssigneeID]
		if !ok {
			assignee = Dim(t.AssigneeID)
		}
		rows = append(rows, []string{
			Check(t.Completed),
			t.ID,
			title,
			project,
			assignee,
			dueCell(t, data.Today),
			PriorityBadge(t.Priority),
			stars(t.Importance),
		})
	}
	headers := []string{"", "ID", "TITLE", "PROJECT", "ASSIGNEE", "DUE", "PRIORITY", "IMP"}
	return RenderTable(headers, rows)
}

// stars renders importance as stars, clamped to the valid range since stored
// documents are not range-checked on load.
func stars(n int) string {
	n = max(domain.MinImportance, min(n, domain.MaxImportance))
	return strings.Repeat("★", n)
}

func dueCell(t domain.Todo, today string) string {
	due := t.Date
	if t.Time != "" {
		due += " " + t.Time
	}
	switch {
	case t.IsOverdue(today):
		return StyleRed.Render(due)
	case t.Date == today && !t.Completed:
		return StyleYellow.Render(due)
	default:
		return due
	}
}

// FormatSummary renders the workload cards for the session user followed by
// the global counts.
func FormatSummary(sum *store.Summary, global store.GlobalStats) string {
	var sections []string
	if sum != nil {
		mine := []string{
			stat("Tasks", sum.TotalTasks, StyleBold),
			stat("Pending", sum.Pending, StyleYellow),
			stat("Completed", sum.Completed, StyleGreen),
			stat("Today", sum.TodayTasks, StyleBold),
			stat("Overdue", sum.Overdue, StyleRed),
			stat("Urgent", sum.Urgent, StyleRed),
		}
		title := fmt.Sprintf("%s (%s)", sum.User, sum.Role)
		sections = append(sections, RenderBox(title, strings.Join(mine, "\n")))
	} else {
		sections = append(sections, Dim("Not logged in."))
	}

	all := []string{
		stat("Todos", global.TotalTodos, StyleBold),
		stat("Pending", global.Pending, StyleYellow),
		stat("Completed", global.Completed, StyleGreen),
		stat("Overdue", global.Overdue, StyleRed),
		stat("Urgent", global.Urgent, StyleRed),
		stat("Projects", global.TotalProjects, StyleBold),
		stat("Users", global.TotalUsers, StyleBold),
	}
	sections = append(sections, RenderBox("Everyone", strings.Join(all, "\n")))
	return lipgloss.JoinHorizontal(lipgloss.Top, joinWithGap(sections)...)
}

func stat(label string, n int, style lipgloss.Style) string {
	return fmt.Sprintf("%-10s %s", label, style.Render(strconv.Itoa(n)))
}

func joinWithGap(blocks []string) []string {
	out := make([]string, 0, len(blocks)*2)
	for i, b := range blocks {
		if i > 0 {
			out = append(out, "  ")
		}
		out = append(out, b)
	}
	return out
}
