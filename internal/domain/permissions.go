package domain

// Capability names one of the six role-derived permissions.
type Capability string

const (
	CapCreateTask     Capability = "canCreateTask"
	CapAssignOthers   Capability = "canAssignOthers"
	CapDeleteAny      Capability = "canDeleteAny"
	CapEditAny        Capability = "canEditAny"
	CapManageProjects Capability = "canManageProjects"
	CapManageUsers    Capability = "canManageUsers"
)

var Capabilities = []Capability{
	CapCreateTask,
	CapAssignOthers,
	CapDeleteAny,
	CapEditAny,
	CapManageProjects,
	CapManageUsers,
}

// Permissions is the capability set granted by a role. It is never persisted.
type Permissions struct {
	CanCreateTask     bool `json:"canCreateTask"`
	CanAssignOthers   bool `json:"canAssignOthers"`
	CanDeleteAny      bool `json:"canDeleteAny"`
	CanEditAny        bool `json:"canEditAny"`
	CanManageProjects bool `json:"canManageProjects"`
	CanManageUsers    bool `json:"canManageUsers"`
}

// Has reports whether the set grants c. Unknown capabilities are never granted.
func (p Permissions) Has(c Capability) bool {
	switch c {
	case CapCreateTask:
		return p.CanCreateTask
	case CapAssignOthers:
		return p.CanAssignOthers
	case CapDeleteAny:
		return p.CanDeleteAny
	case CapEditAny:
		return p.CanEditAny
	case CapManageProjects:
		return p.CanManageProjects
	case CapManageUsers:
		return p.CanManageUsers
	}
	return false
}

var rolePermissions = map[Role]Permissions{
	RoleAdmin: {
		CanCreateTask:     true,
		CanAssignOthers:   true,
		CanDeleteAny:      true,
		CanEditAny:        true,
		CanManageProjects: true,
		CanManageUsers:    true,
	},
	RoleManager: {
		CanCreateTask:     true,
		CanAssignOthers:   true,
		CanDeleteAny:      true,
		CanEditAny:        true,
		CanManageProjects: true,
	},
	RoleMember: {
		CanCreateTask: true,
	},
	RoleViewer: {},
}

// PermissionsFor returns the fixed capability set of r; unknown roles get none.
func PermissionsFor(r Role) Permissions {
	return rolePermissions[r]
}
