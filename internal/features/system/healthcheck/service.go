package system_healthcheck

import (
	"context"
	"log/slog"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

const (
	probeTimeout = 3 * time.Second

	// above this the instance still serves but reports degraded
	resourceWarningPercent = 90.0
)

type pingFunc func(ctx context.Context) error

type usageFunc func(ctx context.Context) (*ResourceUsageDTO, error)

type HealthcheckService struct {
	pingDatabase pingFunc
	pingCache    pingFunc
	diskUsage    usageFunc
	memoryUsage  usageFunc
	logger       *slog.Logger
}

// CheckHealth probes the database and the cache; either failing makes the
// instance unhealthy. Disk and memory pressure only degrade it.
func (s *HealthcheckService) CheckHealth(ctx context.Context) *HealthcheckResponseDTO {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	response := &HealthcheckResponseDTO{
		Status:   HealthStatusOK,
		Database: s.probe(ctx, "database", s.pingDatabase),
		Cache:    s.probe(ctx, "cache", s.pingCache),
	}

	if !response.Database.Healthy || !response.Cache.Healthy {
		response.Status = HealthStatusUnhealthy
	}

	response.Disk = s.usage(ctx, "disk", s.diskUsage)
	response.Memory = s.usage(ctx, "memory", s.memoryUsage)

	if response.Status == HealthStatusOK && (isUnderPressure(response.Disk) || isUnderPressure(response.Memory)) {
		response.Status = HealthStatusDegraded
	}

	return response
}

func (s *HealthcheckService) probe(ctx context.Context, component string, ping pingFunc) ComponentStatusDTO {
	if err := ping(ctx); err != nil {
		s.logger.Warn("Health probe failed", "component", component, "error", err)
		return ComponentStatusDTO{Healthy: false, Error: err.Error()}
	}

	return ComponentStatusDTO{Healthy: true}
}

func (s *HealthcheckService) usage(ctx context.Context, resource string, read usageFunc) *ResourceUsageDTO {
	if read == nil {
		return nil
	}

	usage, err := read(ctx)
	if err != nil {
		s.logger.Warn("Failed to read resource usage", "resource", resource, "error", err)
		return nil
	}

	return usage
}

func isUnderPressure(usage *ResourceUsageDTO) bool {
	return usage != nil && usage.UsedPercent >= resourceWarningPercent
}

func diskUsageOf(path string) usageFunc {
	return func(ctx context.Context) (*ResourceUsageDTO, error) {
		stat, err := disk.UsageWithContext(ctx, path)
		if err != nil {
			return nil, err
		}

		return &ResourceUsageDTO{
			UsedPercent: stat.UsedPercent,
			FreeBytes:   stat.Free,
			TotalBytes:  stat.Total,
		}, nil
	}
}

func memoryUsage(ctx context.Context) (*ResourceUsageDTO, error) {
	stat, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}

	return &ResourceUsageDTO{
		UsedPercent: stat.UsedPercent,
		FreeBytes:   stat.Available,
		TotalBytes:  stat.Total,
	}, nil
}
