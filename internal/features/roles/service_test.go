package roles

import (
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	users_models "timebridge/internal/features/users/models"
	"timebridge/internal/util/app_errors"
	test_utils "timebridge/internal/util/testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRoleStore struct {
	mu    sync.Mutex
	roles map[string]*Role
	reads int
}

func newMemoryRoleStore() *memoryRoleStore {
	return &memoryRoleStore{roles: make(map[string]*Role)}
}

func (s *memoryRoleStore) Create(role *Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roles[role.ID]; ok {
		return app_errors.NewConflictError("role %s already exists", role.ID)
	}

	copied := *role
	s.roles[role.ID] = &copied
	return nil
}

func (s *memoryRoleStore) CreateIfMissing(role *Role) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roles[role.ID]; ok {
		return false, nil
	}

	copied := *role
	s.roles[role.ID] = &copied
	return true, nil
}

func (s *memoryRoleStore) GetByID(id string) (*Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads++
	role, ok := s.roles[id]
	if !ok {
		return nil, app_errors.NewNotFoundError("role", id)
	}

	copied := *role
	return &copied, nil
}

func (s *memoryRoleStore) GetAll() ([]*Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*Role, 0, len(s.roles))
	for _, role := range s.roles {
		result = append(result, role)
	}

	return result, nil
}

func (s *memoryRoleStore) Update(role *Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *role
	s.roles[role.ID] = &copied
	return nil
}

func (s *memoryRoleStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.roles, id)
	return nil
}

type memoryRoleCache struct {
	mu    sync.Mutex
	items map[string]Role
}

func (c *memoryRoleCache) Get(key string) *Role {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if !ok {
		return nil
	}

	return &item
}

func (c *memoryRoleCache) Set(key string, item *Role) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = *item
}

func (c *memoryRoleCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

type fixedUsage bool

func (f fixedUsage) IsRoleInUse(string) (bool, error) {
	return bool(f), nil
}

func newTestRoleService() (*RoleService, *memoryRoleStore) {
	store := newMemoryRoleStore()
	service := NewRoleService(
		store,
		&memoryRoleCache{items: make(map[string]Role)},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	return service, store
}

func adminUser() *users_models.User {
	return &users_models.User{ID: uuid.New(), Email: "boss@example.com", RoleID: users_models.AdminRoleID}
}

func Test_SeedDefaultRoles_RunTwice_KeepsEditedRoles(t *testing.T) {
	service, store := newTestRoleService()

	require.NoError(t, service.SeedDefaultRoles())

	for _, id := range builtInRoles {
		exists, err := service.RoleExists(id)
		require.NoError(t, err)
		assert.True(t, exists, id)
	}

	name := "Delivery Lead"
	_, err := service.UpdateRole(RoleProjectManager, &UpdateRoleRequestDTO{Name: &name}, adminUser())
	require.NoError(t, err)

	require.NoError(t, service.SeedDefaultRoles())

	role, err := store.GetByID(RoleProjectManager)
	require.NoError(t, err)
	assert.Equal(t, "Delivery Lead", role.Name)
}

func Test_CreateRole_AsNonAdmin_ReturnsAuthorizationError(t *testing.T) {
	service, _ := newTestRoleService()
	user := &users_models.User{ID: uuid.New(), Email: "pm@example.com", RoleID: RoleProjectManager}

	_, err := service.CreateRole(&CreateRoleRequestDTO{ID: "auditor", Name: "Auditor"}, user)

	assert.Equal(t, 403, app_errors.HTTPStatus(err))
}

func Test_CreateRole_NormalizesPaths(t *testing.T) {
	service, _ := newTestRoleService()

	role, err := service.CreateRole(&CreateRoleRequestDTO{
		ID:           "auditor",
		Name:         "Auditor",
		AllowedPaths: []string{"reports", " ", "/invoices"},
	}, adminUser())
	require.NoError(t, err)

	assert.Equal(t, []string{"/reports", "/invoices"}, role.AllowedPaths)
}

func Test_DeleteRole_WhenBuiltInOrInUse_ReturnsConflict(t *testing.T) {
	service, _ := newTestRoleService()
	require.NoError(t, service.SeedDefaultRoles())
	_, err := service.CreateRole(&CreateRoleRequestDTO{ID: "auditor", Name: "Auditor"}, adminUser())
	require.NoError(t, err)

	assert.Equal(t, 409, app_errors.HTTPStatus(service.DeleteRole(RoleDirector, adminUser())))

	service.SetRoleUsageChecker(fixedUsage(true))
	assert.Equal(t, 409, app_errors.HTTPStatus(service.DeleteRole("auditor", adminUser())))

	service.SetRoleUsageChecker(fixedUsage(false))
	assert.NoError(t, service.DeleteRole("auditor", adminUser()))

	exists, err := service.RoleExists("auditor")
	require.NoError(t, err)
	assert.False(t, exists)
}

func Test_GetRoleWithCache_SecondLookup_ServedFromCache(t *testing.T) {
	service, store := newTestRoleService()
	require.NoError(t, service.SeedDefaultRoles())

	_, err := service.GetRoleWithCache(RoleDirector)
	require.NoError(t, err)
	_, err = service.GetRoleWithCache(RoleDirector)
	require.NoError(t, err)

	_, err = service.GetRoleWithCache("ghost")
	assert.True(t, app_errors.IsNotFound(err))
	_, err = service.GetRoleWithCache("ghost")
	assert.True(t, app_errors.IsNotFound(err))

	assert.Equal(t, 2, store.reads)
}

func Test_RequirePath_WithRoleLackingSection_Returns403(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service, _ := newTestRoleService()
	require.NoError(t, service.SeedDefaultRoles())

	subcontractor := &users_models.User{ID: uuid.New(), Email: "s1@example.com", RoleID: RoleSubcontractor}

	router := gin.New()
	router.Use(func(ctx *gin.Context) {
		ctx.Set("user", subcontractor)
		ctx.Next()
	})
	router.GET("/reports", RequirePath(service, "/reports"), func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})
	router.GET("/timelogs", RequirePath(service, "/timelogs"), func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})

	test_utils.MakeGetRequest(t, router, "/reports", "", http.StatusForbidden)
	test_utils.MakeGetRequest(t, router, "/timelogs", "", http.StatusOK)
}

func Test_RequireUnscopedPath_RefusesSubcontractorsButLetsManagersThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service, _ := newTestRoleService()
	require.NoError(t, service.SeedDefaultRoles())

	subcontractor := &users_models.User{ID: uuid.New(), Email: "s1@example.com", RoleID: RoleSubcontractor}
	manager := &users_models.User{ID: uuid.New(), Email: "pm@example.com", RoleID: RoleProjectManager}

	newRouter := func(user *users_models.User) *gin.Engine {
		router := gin.New()
		router.Use(func(ctx *gin.Context) {
			ctx.Set("user", user)
			ctx.Next()
		})
		router.GET("/realtime/timeLogs", RequireUnscopedPath(service, "/timelogs"), func(ctx *gin.Context) {
			ctx.Status(http.StatusOK)
		})
		router.GET("/realtime/roles", RequireUnscopedPath(service, "/admin"), func(ctx *gin.Context) {
			ctx.Status(http.StatusOK)
		})
		return router
	}

	test_utils.MakeGetRequest(t, newRouter(subcontractor), "/realtime/timeLogs", "", http.StatusForbidden)
	test_utils.MakeGetRequest(t, newRouter(manager), "/realtime/timeLogs", "", http.StatusOK)
	test_utils.MakeGetRequest(t, newRouter(manager), "/realtime/roles", "", http.StatusForbidden)
}
