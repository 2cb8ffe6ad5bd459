package domain

import "time"

// Data is the aggregate mirrored to the backing store: every user, project,
// todo and the shared session pointer.
type Data struct {
	Users         []User    `json:"users"`
	Projects      []Project `json:"projects"`
	Todos         []Todo    `json:"todos"`
	CurrentUserID *string   `json:"currentUserId"`
}

// Clone returns a deep copy.
func (d *Data) Clone() *Data {
	if d == nil {
		return nil
	}
	out := &Data{
		Users:    append([]User(nil), d.Users...),
		Projects: append([]Project(nil), d.Projects...),
		Todos:    make([]Todo, 0, len(d.Todos)),
	}
	for _, t := range d.Todos {
		out.Todos = append(out.Todos, t.clone())
	}
	if d.CurrentUserID != nil {
		id := *d.CurrentUserID
		out.CurrentUserID = &id
	}
	return out
}

// Normalize replaces nil collections with empty ones so the document always
// serialises arrays, never null.
func (d *Data) Normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	if d.Todos == nil {
		d.Todos = []Todo{}
	}
}

func (d *Data) FindUser(id string) *User {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i]
		}
	}
	return nil
}

func (d *Data) FindProject(id string) *Project {
	for i := range d.Projects {
		if d.Projects[i].ID == id {
			return &d.Projects[i]
		}
	}
	return nil
}

func (d *Data) FindTodo(id string) *Todo {
	for i := range d.Todos {
		if d.Todos[i].ID == id {
			return &d.Todos[i]
		}
	}
	return nil
}

// SessionUserID returns the session pointer, or "" when logged out.
func (d *Data) SessionUserID() string {
	if d.CurrentUserID == nil {
		return ""
	}
	return *d.CurrentUserID
}

// SeedData is the data set used when no backing document exists yet.
func SeedData(now time.Time) *Data {
	created := now.UTC()
	return &Data{
		Users: []User{
			{ID: "admin1", Name: "Admin", Email: "admin@company.com", Avatar: "👑", Role: RoleAdmin},
			{ID: "manager1", Name: "Project Manager", Email: "pm@company.com", Avatar: "📊", Role: RoleManager},
			{ID: "dev1", Name: "Developer 1", Email: "dev1@company.com", Avatar: "💻", Role: RoleMember},
			{ID: "dev2", Name: "Developer 2", Email: "dev2@company.com", Avatar: "🎨", Role: RoleMember},
			{ID: "viewer1", Name: "Viewer", Email: "viewer@company.com", Avatar: "👀", Role: RoleViewer},
		},
		Projects: []Project{
			{ID: "proj1", Name: "Website Redesign", Color: "#667eea", CreatedAt: created},
			{ID: "proj2", Name: "Mobile App", Color: "#f5576c", CreatedAt: created},
			{ID: "proj3", Name: "API Development", Color: "#2ed573", CreatedAt: created},
			{ID: "proj4", Name: "Marketing", Color: "#ffa502", CreatedAt: created},
		},
		Todos: []Todo{},
	}
}
