package cli

import (
	"errors"
	"fmt"

	"todomcp/internal/cli/formatter"
	"todomcp/internal/domain"
	"todomcp/internal/store"

	"github.com/spf13/cobra"
)

func newUsersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := app.Store(ctx)
			if err != nil {
				return err
			}
			users, err := st.Users(ctx)
			if err != nil {
				return err
			}
			if app.jsonOutput() {
				return formatter.WriteJSON(cmd.OutOrStdout(), users)
			}
			current := ""
			if u, _ := st.CurrentUser(ctx); u != nil {
				current = u.ID
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatUserList(users, current))
			return nil
		},
	}
}

func newProjectsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := app.Store(ctx)
			if err != nil {
				return err
			}
			projects, err := st.Projects(ctx)
			if err != nil {
				return err
			}
			if app.jsonOutput() {
				return formatter.WriteJSON(cmd.OutOrStdout(), projects)
			}
			todos, err := st.Todos(ctx, store.TodoFilter{})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectList(projects, todos))
			return nil
		},
	}
}

func newTodosCmd(app *App) *cobra.Command {
	var project, assignee, status, priority, date string

	cmd := &cobra.Command{
		Use:   "todos",
		Short: "List todos, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := store.TodoFilter{ProjectID: project, AssigneeID: assignee}
			var errs []error
			if status != "" {
				s, err := domain.ParseStatus(status)
				errs = append(errs, err)
				f.Status = s
			}
			if priority != "" {
				p, err := domain.ParsePriority(priority)
				errs = append(errs, err)
				f.Priority = p
			}
			if date != "" {
				if !domain.IsDate(date) {
					errs = append(errs, fmt.Errorf("invalid date %q: must be YYYY-MM-DD", date))
				}
				f.Date = date
			}
			if err := errors.Join(errs...); err != nil {
				return err
			}

			ctx := cmd.Context()
			st, err := app.Store(ctx)
			if err != nil {
				return err
			}
			todos, err := st.Todos(ctx, f)
			if err != nil {
				return err
			}
			if app.jsonOutput() {
				return formatter.WriteJSON(cmd.OutOrStdout(), todos)
			}

			projects, err := st.Projects(ctx)
			if err != nil {
				return err
			}
			users, err := st.Users(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTodoList(formatter.TodoListData{
				Todos:    todos,
				Projects: projects,
				Users:    users,
				Today:    app.today(),
			}))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project id")
	cmd.Flags().StringVar(&assignee, "assignee", "", "assignee user id")
	cmd.Flags().StringVar(&status, "status", "", "pending or completed")
	cmd.Flags().StringVar(&priority, "priority", "", "urgent, high, medium or low")
	cmd.Flags().StringVar(&date, "date", "", "due date (YYYY-MM-DD)")
	return cmd
}

func newSummaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the session user's workload and global counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := app.Store(ctx)
			if err != nil {
				return err
			}
			global := st.GlobalStats(ctx)
			sum, err := st.Summary(ctx)
			if err != nil && !errors.Is(err, store.ErrNotLoggedIn) {
				return err
			}

			if app.jsonOutput() {
				body := map[string]any{"global": global}
				if sum == nil {
					body["error"] = "Not logged in"
				} else {
					body["summary"] = sum
				}
				return formatter.WriteJSON(cmd.OutOrStdout(), body)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSummary(sum, global))
			return nil
		},
	}
}
