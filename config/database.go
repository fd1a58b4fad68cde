package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var (
	db *gorm.DB
)

func GetDB() *gorm.DB {
	return db
}

func init() {
	// Load env from .env
	godotenv.Load()
	// Do NOT block startup waiting for DB; connect from main() after
	// the HTTP server is listening. The DB is optional here (audit
	// log only), so a missing DB_HOST means we simply run without it.
}

// ConnectDatabaseWithRetry connects and sets the global DB.
// Bounded retries: the ingestion pipeline works without a database,
// so after maxAttempts we log and carry on with db == nil.
func ConnectDatabaseWithRetry() {
	dbHost := strings.TrimSpace(os.Getenv("DB_HOST"))
	if dbHost == "" {
		GetLogger().WithFields(logrus.Fields{
			"field": "database",
		}).Info("DB_HOST not set; running without ingestion audit database")
		return
	}

	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbPort := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")

	databaseConfig := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?multiStatements=true&parseTime=true",
		dbUser,
		dbPassword,
		dbHost,
		dbPort,
		dbName,
	)

	const maxAttempts = 5
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var err error
		db, err = gorm.Open(mysql.Open(databaseConfig), initConfig())
		if err == nil {
			tunePool()
			GetLogger().WithFields(logrus.Fields{
				"field": "database",
			}).Info("database connected")
			return
		}
		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		GetLogger().WithFields(logrus.Fields{
			"field":   "database",
			"attempt": attempt,
		}).Warn("database connect failed; retrying in " + sleep.String() + ": " + err.Error())
		time.Sleep(sleep)
	}

	db = nil
	GetLogger().WithFields(logrus.Fields{
		"field": "database",
	}).Warn("database unavailable; continuing without ingestion audit log")
}

func initConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
	}
}

// Pool tuning, env overrides (optional):
// - DB_MAX_OPEN_CONNS (default 10)
// - DB_MAX_IDLE_CONNS (default 5)
// - DB_CONN_MAX_LIFETIME_SECONDS (default 300)
func tunePool() {
	sqlDB, err := db.DB()
	if err != nil || sqlDB == nil {
		return
	}
	sqlDB.SetMaxOpenConns(envInt("DB_MAX_OPEN_CONNS", 10))
	sqlDB.SetMaxIdleConns(envInt("DB_MAX_IDLE_CONNS", 5))
	sqlDB.SetConnMaxLifetime(time.Duration(envInt("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second)
}

func envInt(name string, def int) int {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
