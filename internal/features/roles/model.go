package roles

import (
	"strings"
	"time"
)

// AllPaths is the allowed path granting access to every section.
const AllPaths = "*"

const (
	RoleAdmin          = "admin"
	RoleProjectManager = "project_manager"
	RoleDirector       = "director"
	RoleSubcontractor  = "subcontractor"
)

var builtInRoles = []string{RoleAdmin, RoleProjectManager, RoleDirector, RoleSubcontractor}

type Role struct {
	ID           string    `json:"id"                    gorm:"column:id;primaryKey"                 yaml:"id"`
	Name         string    `json:"name"                  gorm:"column:name"                          yaml:"name"`
	AllowedPaths []string  `json:"allowedPaths"          gorm:"column:allowed_paths;serializer:json" yaml:"allowedPaths"`
	Description  *string   `json:"description,omitempty" gorm:"column:description"                   yaml:"description"`
	CreatedAt    time.Time `json:"createdAt"             gorm:"column:created_at"                    yaml:"-"`

	// Used for caching non-existent roles
	IsNotExists bool `json:"isNotExists,omitempty" gorm:"-" yaml:"-"`
}

func (Role) TableName() string {
	return "roles"
}

// CanAccessPath reports whether path is one of the allowed sections or lies
// below one. "/projects" grants "/projects" and "/projects/42" but not
// "/projects-archive".
func (r *Role) CanAccessPath(path string) bool {
	for _, allowed := range r.AllowedPaths {
		if allowed == AllPaths {
			return true
		}

		allowed = strings.TrimSuffix(allowed, "/")
		if path == allowed || strings.HasPrefix(path, allowed+"/") {
			return true
		}
	}

	return false
}

func IsBuiltInRole(id string) bool {
	for _, builtIn := range builtInRoles {
		if builtIn == id {
			return true
		}
	}

	return false
}
