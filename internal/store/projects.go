package store

import (
	"context"

	"todomcp/internal/domain"
	"todomcp/internal/validation"
)

// NewProject holds the fields of AddProject. Color defaults to
// domain.DefaultProjectColor.
type NewProject struct {
	Name  string
	Color string
}

func (n NewProject) validate() error {
	var errs validation.Errors
	errs.Add("name", validation.Name(n.Name))
	if n.Color != "" {
		errs.Add("color", validation.Color(n.Color))
	}
	if err := errs.Err(); err != nil {
		return invalid("%v", err)
	}
	return nil
}

// Projects returns every project in collection order.
func (s *Store) Projects(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	err := s.cycle(ctx, "list_projects", false, func() error {
		projects = append([]domain.Project{}, s.data.Projects...)
		return nil
	})
	return projects, err
}

// Project returns one project by id.
func (s *Store) Project(ctx context.Context, id string) (*domain.Project, error) {
	var project domain.Project
	err := s.cycle(ctx, "get_project", false, func() error {
		p := s.data.FindProject(id)
		if p == nil {
			return notFound("project", id)
		}
		project = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// AddProject creates a project owned by the current user. Requires the
// manage-projects capability.
func (s *Store) AddProject(ctx context.Context, in NewProject) (*domain.Project, error) {
	var project domain.Project
	err := s.cycle(ctx, "add_project", true, func() error {
		if !s.hasPermission(domain.CapManageProjects) {
			return denied("add project")
		}
		if err := in.validate(); err != nil {
			return err
		}
		color := in.Color
		if color == "" {
			color = domain.DefaultProjectColor
		}
		project = domain.Project{
			ID:        s.newID(),
			Name:      in.Name,
			Color:     color,
			CreatedAt: s.now().UTC(),
			CreatedBy: s.data.SessionUserID(),
		}
		s.data.Projects = append(s.data.Projects, project)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject removes a project and every todo in it. Requires the
// manage-projects capability. It returns the number of todos removed.
func (s *Store) DeleteProject(ctx context.Context, id string) (int, error) {
	var removed int
	err := s.cycle(ctx, "delete_project", true, func() error {
		if !s.hasPermission(domain.CapManageProjects) {
			return denied("delete project")
		}
		idx := -1
		for i := range s.data.Projects {
			if s.data.Projects[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return notFound("project", id)
		}
		s.data.Projects = append(s.data.Projects[:idx], s.data.Projects[idx+1:]...)

		kept := s.data.Todos[:0]
		for _, t := range s.data.Todos {
			if t.ProjectID == id {
				removed++
				continue
			}
			kept = append(kept, t)
		}
		s.data.Todos = kept
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("Project deleted", "project", id, "todos_removed", removed)
	return removed, nil
}
