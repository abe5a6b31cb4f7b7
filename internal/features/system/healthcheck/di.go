package system_healthcheck

import (
	"context"

	"timebridge/internal/cache"
	"timebridge/internal/storage"
	"timebridge/internal/util/logger"
)

var healthcheckService = &HealthcheckService{
	pingDatabase: pingDatabase,
	pingCache:    cache.Ping,
	diskUsage:    diskUsageOf("/"),
	memoryUsage:  memoryUsage,
	logger:       logger.GetLogger(),
}

var healthcheckController = &HealthcheckController{
	healthcheckService,
}

func GetHealthcheckController() *HealthcheckController {
	return healthcheckController
}

func pingDatabase(ctx context.Context) error {
	sqlDb, err := storage.GetDb().DB()
	if err != nil {
		return err
	}

	return sqlDb.PingContext(ctx)
}
