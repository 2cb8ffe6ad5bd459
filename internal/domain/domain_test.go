package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionsFor_Table(t *testing.T) {
	tests := []struct {
		role Role
		want map[Capability]bool
	}{
		{RoleAdmin, map[Capability]bool{
			CapCreateTask: true, CapAssignOthers: true, CapDeleteAny: true,
			CapEditAny: true, CapManageProjects: true, CapManageUsers: true,
		}},
		{RoleManager, map[Capability]bool{
			CapCreateTask: true, CapAssignOthers: true, CapDeleteAny: true,
			CapEditAny: true, CapManageProjects: true, CapManageUsers: false,
		}},
		{RoleMember, map[Capability]bool{
			CapCreateTask: true, CapAssignOthers: false, CapDeleteAny: false,
			CapEditAny: false, CapManageProjects: false, CapManageUsers: false,
		}},
		{RoleViewer, map[Capability]bool{}},
		{Role("intern"), map[Capability]bool{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			perms := PermissionsFor(tt.role)
			for _, c := range Capabilities {
				assert.Equal(t, tt.want[c], perms.Has(c), "capability %s", c)
			}
		})
	}
}

func TestPermissions_UnknownCapability(t *testing.T) {
	assert.False(t, PermissionsFor(RoleAdmin).Has(Capability("canLaunchRockets")))
}

func TestPermissions_JSONNames(t *testing.T) {
	raw, err := json.Marshal(PermissionsFor(RoleMember))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"canCreateTask": true,
		"canAssignOthers": false,
		"canDeleteAny": false,
		"canEditAny": false,
		"canManageProjects": false,
		"canManageUsers": false
	}`, string(raw))
}

func TestParseEnums(t *testing.T) {
	r, err := ParseRole("manager")
	require.NoError(t, err)
	assert.Equal(t, RoleManager, r)
	_, err = ParseRole("Manager")
	assert.Error(t, err)

	p, err := ParsePriority("urgent")
	require.NoError(t, err)
	assert.Equal(t, PriorityUrgent, p)
	_, err = ParsePriority("critical")
	assert.Error(t, err)

	s, err := ParseStatus("completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)
	_, err = ParseStatus("done")
	assert.Error(t, err)
}

func TestTodo_IsOverdue(t *testing.T) {
	const today = "2024-06-15"
	tests := []struct {
		name string
		todo Todo
		want bool
	}{
		{"yesterday pending", Todo{Date: "2024-06-14"}, true},
		{"today pending", Todo{Date: today}, false},
		{"tomorrow pending", Todo{Date: "2024-06-16"}, false},
		{"last year pending", Todo{Date: "2023-12-31"}, true},
		{"yesterday completed", Todo{Date: "2024-06-14", Completed: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.todo.IsOverdue(today))
		})
	}
}

func TestTodo_IsUrgent(t *testing.T) {
	assert.True(t, (&Todo{Priority: PriorityUrgent}).IsUrgent())
	assert.False(t, (&Todo{Priority: PriorityUrgent, Completed: true}).IsUrgent())
	assert.False(t, (&Todo{Priority: PriorityHigh}).IsUrgent())
}

func TestTodo_SetCompleted(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	todo := Todo{ID: "t1"}

	todo.SetCompleted(true, now)
	require.NotNil(t, todo.CompletedAt)
	assert.True(t, todo.Completed)
	assert.Equal(t, now, *todo.CompletedAt)
	assert.Equal(t, StatusCompleted, todo.Status())

	todo.SetCompleted(false, now)
	assert.False(t, todo.Completed)
	assert.Nil(t, todo.CompletedAt)
	assert.Equal(t, StatusPending, todo.Status())
}

func TestTodo_OmitsEmptyOptionalFields(t *testing.T) {
	raw, err := json.Marshal(Todo{ID: "t1", Title: "x", Priority: PriorityLow, Importance: 1})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "time")
	assert.NotContains(t, fields, "note")
	assert.NotContains(t, fields, "completedAt")
	assert.Contains(t, fields, "projectId")
	assert.Contains(t, fields, "assigneeId")
	assert.Contains(t, fields, "createdBy")
}

func TestShapeHelpers(t *testing.T) {
	assert.True(t, IsDate("2024-06-15"))
	assert.False(t, IsDate("2024-6-15"))
	assert.False(t, IsDate("15/06/2024"))

	assert.True(t, IsTime("09:30"))
	assert.False(t, IsTime("9:30"))

	assert.True(t, IsColor("#A1b2C3"))
	assert.False(t, IsColor("#abc"))
	assert.False(t, IsColor("667eea"))

	assert.Equal(t, "2024-06-15", Today(time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC)))
	tokyo := time.FixedZone("JST", 9*3600)
	assert.Equal(t, "2024-06-14", Today(time.Date(2024, 6, 15, 8, 0, 0, 0, tokyo)))
}

func TestSeedData(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	data := SeedData(now)

	require.Len(t, data.Users, 5)
	require.Len(t, data.Projects, 4)
	assert.Empty(t, data.Todos)
	assert.NotNil(t, data.Todos)
	assert.Nil(t, data.CurrentUserID)

	roles := map[string]Role{}
	for _, u := range data.Users {
		roles[u.ID] = u.Role
	}
	assert.Equal(t, map[string]Role{
		"admin1":   RoleAdmin,
		"manager1": RoleManager,
		"dev1":     RoleMember,
		"dev2":     RoleMember,
		"viewer1":  RoleViewer,
	}, roles)

	assert.Equal(t, "Website Redesign", data.FindProject("proj1").Name)
	assert.Equal(t, "#ffa502", data.FindProject("proj4").Color)
	assert.Equal(t, now, data.FindProject("proj2").CreatedAt)
}

func TestData_CloneIsDeep(t *testing.T) {
	now := time.Now().UTC()
	data := SeedData(now)
	session := "dev1"
	data.CurrentUserID = &session
	data.Todos = append(data.Todos, Todo{ID: "t1", Title: "original"})
	data.Todos[0].SetCompleted(true, now)

	clone := data.Clone()
	clone.Users[0].Name = "changed"
	clone.Todos[0].Title = "changed"
	*clone.Todos[0].CompletedAt = now.Add(time.Hour)
	*clone.CurrentUserID = "dev2"

	assert.Equal(t, "Admin", data.Users[0].Name)
	assert.Equal(t, "original", data.Todos[0].Title)
	assert.Equal(t, now, *data.Todos[0].CompletedAt)
	assert.Equal(t, "dev1", data.SessionUserID())

	var nilData *Data
	assert.Nil(t, nilData.Clone())
}

func TestData_Normalize(t *testing.T) {
	data := &Data{}
	data.Normalize()

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"users":[],"projects":[],"todos":[],"currentUserId":null}`, string(raw))
	assert.Equal(t, "", data.SessionUserID())
}

func TestData_Find(t *testing.T) {
	data := SeedData(time.Now())
	data.Todos = []Todo{{ID: "t1"}}

	require.NotNil(t, data.FindUser("dev2"))
	assert.Nil(t, data.FindUser("nobody"))
	require.NotNil(t, data.FindTodo("t1"))
	assert.Nil(t, data.FindTodo("t2"))

	// Find returns a pointer into the collection.
	data.FindTodo("t1").Title = "mutated"
	assert.Equal(t, "mutated", data.Todos[0].Title)
}
