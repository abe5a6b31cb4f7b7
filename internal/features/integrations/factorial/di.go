package factorial

import (
	"sync"
	"time"

	"timebridge/internal/config"
	projects_services "timebridge/internal/features/projects/services"
	"timebridge/internal/features/subcontractors"
	"timebridge/internal/features/timelogs"
	cache_utils "timebridge/internal/util/cache"
	"timebridge/internal/util/logger"
	"timebridge/internal/util/rate_limit"
)

// syncLockTTL bounds how long a crashed instance blocks syncs; a live run
// keeps renewing it.
const syncLockTTL = 15 * time.Minute

var (
	initOnce sync.Once

	settingsService       *SettingsService
	syncEngine            *SyncEngine
	backgroundSyncService *BackgroundSyncService
	factorialController   *FactorialController
)

// Wiring reads the environment, so it happens on first use rather than at
// package load.
func initialize() {
	initOnce.Do(func() {
		env := config.GetEnv()
		log := logger.GetLogger()

		settingsService = NewSettingsService(&SettingsRepository{}, env.FactorialApiKey)

		syncEngine = &SyncEngine{
			client:         NewClient(env.FactorialApiURL, log),
			keys:           settingsService,
			subcontractors: subcontractors.GetSubcontractorRepository(),
			projects:       projects_services.GetProjectRepository(),
			projectCache:   projects_services.GetProjectService(),
			timeLogs:       timelogs.GetTimeLogRepository(),
			lock:           cache_utils.NewDistributedLock("factorial_sync", syncLockTTL),
			preserveLocal:  env.FactorialPreserveLocalFields,
			logger:         log,
		}
		syncEngine.onFinished = func(report *SyncReport) {
			if err := settingsService.RecordSyncResult(report); err != nil {
				log.Warn("Failed to record sync result", "error", err)
			}
		}

		backgroundSyncService = &BackgroundSyncService{
			syncEngine:      syncEngine,
			settingsService: settingsService,
			interval:        env.FactorialSyncInterval,
			logger:          log,
		}

		factorialController = &FactorialController{
			syncEngine:      syncEngine,
			settingsService: settingsService,
			rateLimiter:     rate_limit.NewRateLimiter("factorial_sync"),
		}
	})
}

func GetSettingsService() *SettingsService {
	initialize()
	return settingsService
}

func GetSyncEngine() *SyncEngine {
	initialize()
	return syncEngine
}

func GetBackgroundSyncService() *BackgroundSyncService {
	initialize()
	return backgroundSyncService
}

func GetFactorialController() *FactorialController {
	initialize()
	return factorialController
}
