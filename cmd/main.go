package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"timebridge/internal/config"
	"timebridge/internal/features/audit_logs"
	"timebridge/internal/features/integrations/factorial"
	"timebridge/internal/features/invoices"
	projects_controllers "timebridge/internal/features/projects/controllers"
	"timebridge/internal/features/quota"
	"timebridge/internal/features/reports"
	"timebridge/internal/features/roles"
	"timebridge/internal/features/subcontractors"
	system_healthcheck "timebridge/internal/features/system/healthcheck"
	system_reset "timebridge/internal/features/system/reset"
	"timebridge/internal/features/timelogs"
	users_controllers "timebridge/internal/features/users/controllers"
	users_middleware "timebridge/internal/features/users/middleware"
	users_services "timebridge/internal/features/users/services"
	"timebridge/internal/realtime"
	cache_utils "timebridge/internal/util/cache"
	env_utils "timebridge/internal/util/env"
	"timebridge/internal/util/logger"
	"timebridge/internal/util/metrics"
	_ "timebridge/swagger" // swagger docs

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	flag "github.com/spf13/pflag"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type cliFlags struct {
	newPassword string
	email       string
	syncNow     bool
}

// @title Timebridge Backend API
// @version 1.0
// @description Time tracking, approvals and subcontractor billing
// @termsOfService http://swagger.io/terms/

// @host localhost:4005
// @BasePath /api/v1
// @schemes http

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log := logger.GetLogger()
	flags := parseFlags()

	config.StartListeningForShutdownSignal()
	setUpDependencies()
	metrics.Init()

	testCacheConnection(log)

	runMigrations(log)

	if err := roles.GetRoleService().SeedDefaultRoles(); err != nil {
		log.Error("Failed to seed default roles", "error", err)
		os.Exit(1)
	}

	err := users_services.GetUserService().CreateInitialAdmin()
	if err != nil {
		log.Error("Failed to create initial admin", "error", err)
		os.Exit(1)
	}

	handlePasswordReset(flags, log)
	handleSyncNow(flags, log)

	go generateSwaggerDocs(log)

	gin.SetMode(gin.ReleaseMode)
	ginApp := gin.Default()

	// Add GZIP compression middleware
	ginApp.Use(gzip.Gzip(
		gzip.DefaultCompression,
		// SSE streams must reach the client unbuffered
		gzip.WithExcludedPathsRegexs([]string{`^/api/v1/realtime/`}),
	))
	ginApp.Use(metrics.Middleware())

	enableCors(ginApp)
	setUpRoutes(ginApp)
	stopBackgroundTasks := runBackgroundTasks(log)

	startServerWithGracefulShutdown(log, ginApp)
	stopBackgroundTasks()
}

func parseFlags() cliFlags {
	var flags cliFlags

	flag.StringVar(&flags.newPassword, "new-password", "", "Set a new password for the user")
	flag.StringVar(&flags.email, "email", "", "Email of the user to reset password")
	flag.BoolVar(&flags.syncNow, "sync-now", false, "Run one Factorial sync and exit")
	flag.Parse()

	return flags
}

func startServerWithGracefulShutdown(log *slog.Logger, app *gin.Engine) {
	host := ""
	if config.GetEnv().EnvMode == env_utils.EnvModeDevelopment {
		// for dev we use localhost to avoid firewall
		// requests on each run for Windows
		host = "127.0.0.1"
	}

	srv := &http.Server{
		Addr:    host + ":" + config.GetEnv().HttpPort,
		Handler: app,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen:", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received")

	// The context is used to inform the server it has 10 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown:", "error", err)
	}

	log.Info("Server gracefully stopped")
}

func setUpRoutes(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")

	// Mount Swagger UI
	v1.GET("/docs/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes (only user auth routes should be public)
	userController := users_controllers.GetUserController()
	userController.RegisterRoutes(v1)
	system_healthcheck.GetHealthcheckController().RegisterRoutes(v1)

	// Setup auth middleware
	userService := users_services.GetUserService()
	authMiddleware := users_middleware.AuthMiddleware(userService)

	// Protected routes
	protected := v1.Group("")
	protected.Use(authMiddleware)

	userController.RegisterProtectedRoutes(protected)
	users_controllers.GetManagementController().RegisterSelfRoutes(protected)

	// Role guarded routes, one group per navigable path
	roleService := roles.GetRoleService()
	requirePath := func(path string) gin.HandlerFunc {
		return roles.RequirePath(roleService, path)
	}
	guarded := func(path string) *gin.RouterGroup {
		return protected.Group("", requirePath(path))
	}

	realtime.GetRealtimeController().RegisterRoutes(protected, func(path string) gin.HandlerFunc {
		return roles.RequireUnscopedPath(roleService, path)
	})

	projectRoutes := guarded("/projects")
	projects_controllers.GetProjectController().RegisterRoutes(projectRoutes)
	quota.GetQuotaController().RegisterRoutes(projectRoutes)

	subcontractors.GetSubcontractorController().RegisterRoutes(guarded("/subcontractors"))
	timelogs.GetTimeLogController().RegisterRoutes(guarded("/timelogs"))
	invoices.GetInvoiceController().RegisterRoutes(guarded("/invoices"))
	reports.GetReportController().RegisterRoutes(guarded("/reports"))
	factorial.GetFactorialController().RegisterRoutes(guarded("/integrations"))

	users_controllers.GetManagementController().RegisterRoutes(guarded("/admin/users"))

	adminRoutes := guarded("/admin")
	roles.GetRoleController().RegisterRoutes(adminRoutes)
	audit_logs.GetAuditLogController().RegisterRoutes(adminRoutes)
	system_reset.GetResetController().RegisterRoutes(adminRoutes)
}

func setUpDependencies() {
	roles.SetupDependencies()
	subcontractors.SetupDependencies()
	timelogs.SetupDependencies()
	invoices.SetupDependencies()
	audit_logs.SetupDependencies()
}

// runBackgroundTasks starts the workers and returns a func stopping them.
func runBackgroundTasks(log *slog.Logger) func() {
	log.Info("Preparing to run background tasks...")

	listener := realtime.GetListener()
	listener.StartWorkers()

	mirror := reports.GetMirror()
	mirror.Start(realtime.GetHub())

	syncService := factorial.GetBackgroundSyncService()
	syncService.StartWorkers()

	log.Info("Background tasks started successfully")

	return func() {
		syncService.Stop()
		mirror.Close()
		listener.Stop()
	}
}

// Keep in mind: docs appear after second launch, because Swagger
// is generated into Go files. So if we changed files, we generate
// new docs, but still need to restart the server to see them.
func generateSwaggerDocs(log *slog.Logger) {
	if config.GetEnv().EnvMode == env_utils.EnvModeProduction {
		return
	}

	currentDir, err := os.Getwd()
	if err != nil {
		log.Error("Failed to get current directory", "error", err)
		return
	}

	cmd := exec.Command("swag", "init", "-d", currentDir, "-g", "cmd/main.go", "-o", "swagger")

	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Error("Failed to generate Swagger docs", "error", err, "output", string(output))
		return
	}

	log.Info("Swagger documentation generated successfully")
}

func testCacheConnection(log *slog.Logger) {
	log.Info("Testing cache connection...")

	if err := cache_utils.CheckCacheConnection(); err != nil {
		log.Error("Failed to connect to cache", "error", err)
		os.Exit(1)
	}

	log.Info("Cache connection test successful")
}

func runMigrations(log *slog.Logger) {
	log.Info("Running database migrations...")

	cmd := exec.Command("goose", "-dir", "migrations", "up")
	cmd.Env = append(
		os.Environ(),
		"GOOSE_DRIVER=postgres",
		"GOOSE_DBSTRING="+config.GetEnv().DatabaseDsn,
	)

	cmd.Dir = config.GetEnv().BackendRootPath

	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Error("Failed to run migrations", "error", err, "output", string(output))
		os.Exit(1)
	}

	log.Info("Database migrations completed successfully", "output", string(output))
}

func enableCors(ginApp *gin.Engine) {
	if config.GetEnv().EnvMode == env_utils.EnvModeDevelopment {
		// Setup CORS
		ginApp.Use(cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders: []string{
				"Origin",
				"Content-Length",
				"Content-Type",
				"Authorization",
				"Accept",
				"Accept-Language",
				"Accept-Encoding",
				"Access-Control-Request-Method",
				"Access-Control-Request-Headers",
			},
			AllowCredentials: true,
		}))
	}
}

func handlePasswordReset(flags cliFlags, log *slog.Logger) {
	if flags.newPassword == "" {
		return
	}

	log.Info("Found reset password command - reseting password...")

	if flags.email == "" {
		log.Info("No email provided, please provide an email via --email=\"some@email.com\" flag")
		os.Exit(1)
	}

	userService := users_services.GetUserService()
	if err := userService.ChangeUserPasswordByEmail(flags.email, flags.newPassword); err != nil {
		log.Error("Failed to reset password", "error", err)
		os.Exit(1)
	}

	log.Info("Password reset successfully")
	os.Exit(0)
}

func handleSyncNow(flags cliFlags, log *slog.Logger) {
	if !flags.syncNow {
		return
	}

	log.Info("Running one-off Factorial sync...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	report, err := factorial.GetSyncEngine().Run(ctx, nil)
	cancel()

	if err != nil {
		log.Error("Factorial sync failed", "error", err)
		os.Exit(1)
	}

	log.Info("Factorial sync completed",
		"employees", report.Employees.Upserted,
		"projects", report.Projects.Upserted,
		"timeEntries", report.TimeEntries.Upserted,
		"deferred", report.TimeEntries.Deferred)
	os.Exit(0)
}
