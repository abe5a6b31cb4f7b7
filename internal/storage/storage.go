package storage

import (
	"os"
	"sync"
	"time"

	"timebridge/internal/config"
	"timebridge/internal/util/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

var (
	db   *gorm.DB
	once sync.Once
)

func GetDb() *gorm.DB {
	once.Do(loadDbConnection)
	return db
}

// UseDb replaces the connection, used by repository tests running on sqlmock.
func UseDb(override *gorm.DB) {
	once.Do(func() {})
	db = override
}

func loadDbConnection() {
	log := logger.GetLogger()

	conn, err := gorm.Open(postgres.Open(config.GetEnv().DatabaseDsn), &gorm.Config{
		Logger:         gorm_logger.Default.LogMode(gorm_logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	sqlDb, err := conn.DB()
	if err != nil {
		log.Error("Failed to get database handle", "error", err)
		os.Exit(1)
	}

	sqlDb.SetMaxOpenConns(25)
	sqlDb.SetMaxIdleConns(10)
	sqlDb.SetConnMaxLifetime(30 * time.Minute)

	db = conn
	log.Info("Database connection established")
}
