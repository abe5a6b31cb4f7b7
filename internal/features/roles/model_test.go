package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_CanAccessPath_WithWildcard_GrantsEverything(t *testing.T) {
	role := &Role{ID: "admin", AllowedPaths: []string{AllPaths}}

	assert.True(t, role.CanAccessPath("/projects"))
	assert.True(t, role.CanAccessPath("/admin/users"))
}

func Test_CanAccessPath_WithSections_MatchesWholeSegments(t *testing.T) {
	role := &Role{ID: "sub", AllowedPaths: []string{"/projects", "/timelogs/"}}

	assert.True(t, role.CanAccessPath("/projects"))
	assert.True(t, role.CanAccessPath("/projects/42"))
	assert.True(t, role.CanAccessPath("/timelogs"))
	assert.False(t, role.CanAccessPath("/projects-archive"))
	assert.False(t, role.CanAccessPath("/reports"))
}

func Test_CanAccessPath_WithoutPaths_DeniesEverything(t *testing.T) {
	role := &Role{ID: "empty"}

	assert.False(t, role.CanAccessPath("/projects"))
}
