package system_healthcheck

type HealthStatus string

const (
	HealthStatusOK        HealthStatus = "ok"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

type ComponentStatusDTO struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

type ResourceUsageDTO struct {
	UsedPercent float64 `json:"usedPercent"`
	FreeBytes   uint64  `json:"freeBytes"`
	TotalBytes  uint64  `json:"totalBytes"`
}

type HealthcheckResponseDTO struct {
	Status   HealthStatus       `json:"status"`
	Database ComponentStatusDTO `json:"database"`
	Cache    ComponentStatusDTO `json:"cache"`
	Disk     *ResourceUsageDTO  `json:"disk,omitempty"`
	Memory   *ResourceUsageDTO  `json:"memory,omitempty"`
}
