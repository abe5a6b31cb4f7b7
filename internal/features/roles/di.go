package roles

import (
	users_services "timebridge/internal/features/users/services"
	cache_utils "timebridge/internal/util/cache"
	"timebridge/internal/util/logger"
)

var roleRepository = &RoleRepository{}

var roleService = NewRoleService(
	roleRepository,
	cache_utils.NewCacheUtil[Role]("tb_role:"),
	logger.GetLogger(),
)

var roleController = &RoleController{
	roleService: roleService,
}

func GetRoleService() *RoleService {
	return roleService
}

func GetRoleController() *RoleController {
	return roleController
}

func SetupDependencies() {
	roleService.SetRoleUsageChecker(users_services.GetManagementService())
	users_services.GetUserService().SetRoleExistenceChecker(roleService)
	users_services.GetManagementService().SetRoleExistenceChecker(roleService)
}
