package roles

import (
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	users_interfaces "timebridge/internal/features/users/interfaces"
	users_models "timebridge/internal/features/users/models"
	"timebridge/internal/util/app_errors"

	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"
)

//go:embed default_roles.yaml
var defaultRolesYAML []byte

type roleStore interface {
	Create(role *Role) error
	CreateIfMissing(role *Role) (bool, error)
	GetByID(id string) (*Role, error)
	GetAll() ([]*Role, error)
	Update(role *Role) error
	Delete(id string) error
}

type roleCache interface {
	Get(key string) *Role
	Set(key string, item *Role)
	Invalidate(key string)
}

// RoleUsageChecker reports whether any user still holds a role.
type RoleUsageChecker interface {
	IsRoleInUse(roleID string) (bool, error)
}

type RoleService struct {
	roleRepository roleStore
	roleCacheUtil  roleCache
	usageChecker   RoleUsageChecker
	auditLogWriter users_interfaces.AuditLogWriter
	logger         *slog.Logger

	singleflight singleflight.Group
}

func NewRoleService(store roleStore, cache roleCache, logger *slog.Logger) *RoleService {
	return &RoleService{
		roleRepository: store,
		roleCacheUtil:  cache,
		logger:         logger,
	}
}

func (s *RoleService) SetRoleUsageChecker(checker RoleUsageChecker) {
	s.usageChecker = checker
}

func (s *RoleService) SetAuditLogWriter(writer users_interfaces.AuditLogWriter) {
	s.auditLogWriter = writer
}

// SeedDefaultRoles inserts the built-in roles that do not exist yet.
func (s *RoleService) SeedDefaultRoles() error {
	var defaults []*Role
	if err := yaml.Unmarshal(defaultRolesYAML, &defaults); err != nil {
		return fmt.Errorf("failed to parse default roles: %w", err)
	}

	for _, role := range defaults {
		created, err := s.roleRepository.CreateIfMissing(role)
		if err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role.ID, err)
		}

		if created {
			s.logger.Info("Seeded default role", "id", role.ID)
		}
	}

	return nil
}

func (s *RoleService) CreateRole(request *CreateRoleRequestDTO, creator *users_models.User) (*Role, error) {
	if !creator.IsAdmin() {
		return nil, app_errors.NewAuthorizationError("only administrators can manage roles")
	}

	id := strings.TrimSpace(request.ID)
	if id == "" {
		return nil, app_errors.NewRequiredFieldError("id")
	}
	if strings.TrimSpace(request.Name) == "" {
		return nil, app_errors.NewRequiredFieldError("name")
	}

	role := &Role{
		ID:           id,
		Name:         request.Name,
		AllowedPaths: normalizePaths(request.AllowedPaths),
		Description:  request.Description,
	}

	if err := s.roleRepository.Create(role); err != nil {
		return nil, err
	}

	s.roleCacheUtil.Invalidate(role.ID)
	s.writeAuditLog(fmt.Sprintf("Role created: %s", role.ID), creator)

	return role, nil
}

func (s *RoleService) GetRoles() ([]*Role, error) {
	return s.roleRepository.GetAll()
}

func (s *RoleService) GetRole(id string) (*Role, error) {
	return s.GetRoleWithCache(id)
}

func (s *RoleService) UpdateRole(id string, request *UpdateRoleRequestDTO, updater *users_models.User) (*Role, error) {
	if !updater.IsAdmin() {
		return nil, app_errors.NewAuthorizationError("only administrators can manage roles")
	}

	role, err := s.roleRepository.GetByID(id)
	if err != nil {
		return nil, err
	}

	if request.Name != nil {
		if strings.TrimSpace(*request.Name) == "" {
			return nil, app_errors.NewRequiredFieldError("name")
		}
		role.Name = *request.Name
	}
	if request.AllowedPaths != nil {
		role.AllowedPaths = normalizePaths(request.AllowedPaths)
	}
	if request.Description != nil {
		role.Description = request.Description
	}

	if err := s.roleRepository.Update(role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.roleCacheUtil.Invalidate(role.ID)
	s.writeAuditLog(fmt.Sprintf("Role updated: %s", role.ID), updater)

	return role, nil
}

// DeleteRole refuses built-in roles and roles still held by a user.
func (s *RoleService) DeleteRole(id string, deleter *users_models.User) error {
	if !deleter.IsAdmin() {
		return app_errors.NewAuthorizationError("only administrators can manage roles")
	}

	if IsBuiltInRole(id) {
		return app_errors.NewConflictError("built-in role %s cannot be deleted", id)
	}

	if _, err := s.roleRepository.GetByID(id); err != nil {
		return err
	}

	if s.usageChecker != nil {
		inUse, err := s.usageChecker.IsRoleInUse(id)
		if err != nil {
			return err
		}
		if inUse {
			return app_errors.NewConflictError("role %s is still assigned to users", id)
		}
	}

	if err := s.roleRepository.Delete(id); err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}

	s.roleCacheUtil.Invalidate(id)
	s.writeAuditLog(fmt.Sprintf("Role deleted: %s", id), deleter)

	return nil
}

// GetRoleWithCache looks the role up in valkey first, then in the database
// behind singleflight. Missing roles are cached too.
func (s *RoleService) GetRoleWithCache(id string) (*Role, error) {
	if cached := s.roleCacheUtil.Get(id); cached != nil {
		if cached.IsNotExists {
			return nil, app_errors.NewNotFoundError("role", id)
		}

		return cached, nil
	}

	result, err, _ := s.singleflight.Do(id, func() (any, error) {
		return s.roleRepository.GetByID(id)
	})
	if err != nil {
		if app_errors.IsNotFound(err) {
			s.roleCacheUtil.Set(id, &Role{ID: id, IsNotExists: true})
		}

		return nil, err
	}

	role, ok := result.(*Role)
	if !ok {
		return nil, fmt.Errorf("failed to cast result to Role")
	}

	s.roleCacheUtil.Set(id, role)
	return role, nil
}

func (s *RoleService) RoleExists(id string) (bool, error) {
	_, err := s.GetRoleWithCache(id)
	if err != nil {
		if app_errors.IsNotFound(err) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// CanAccessPath reports whether the user's role grants path. The root
// admin always passes so a broken role table cannot lock everyone out.
func (s *RoleService) CanAccessPath(user *users_models.User, path string) (bool, error) {
	if user.IsRootAdmin() {
		return true, nil
	}

	role, err := s.GetRoleWithCache(user.RoleID)
	if err != nil {
		if app_errors.IsNotFound(err) {
			return false, nil
		}

		return false, err
	}

	return role.CanAccessPath(path), nil
}

func (s *RoleService) writeAuditLog(message string, actor *users_models.User) {
	if s.auditLogWriter != nil {
		s.auditLogWriter.WriteAuditLog(message, &actor.ID, nil)
	}
}

func normalizePaths(paths []string) []string {
	normalized := make([]string, 0, len(paths))
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}

		if path != AllPaths && !strings.HasPrefix(path, "/") {
			path = "/" + path
		}

		normalized = append(normalized, path)
	}

	return normalized
}
