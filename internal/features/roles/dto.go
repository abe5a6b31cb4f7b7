package roles

type CreateRoleRequestDTO struct {
	ID           string   `json:"id"           binding:"required"`
	Name         string   `json:"name"         binding:"required"`
	AllowedPaths []string `json:"allowedPaths"`
	Description  *string  `json:"description"`
}

type UpdateRoleRequestDTO struct {
	Name         *string  `json:"name"`
	AllowedPaths []string `json:"allowedPaths"`
	Description  *string  `json:"description"`
}

type ListRolesResponseDTO struct {
	Roles []*Role `json:"roles"`
}
