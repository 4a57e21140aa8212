package config

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"heartcare-backend/logger"
)

// The portal keeps identity records and clinical records in two independent
// databases. They are never updated atomically together; every operation is
// local to one store.
var (
	UsersDB   *sql.DB
	DoctorsDB *sql.DB
)

func dsn(prefix string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv(prefix+"_DB_NAME"),
	)
}

func openDB(name, dataSource string) *sql.DB {
	log := logger.GetLogger()

	db, err := sql.Open("postgres", dataSource)
	if err != nil {
		log.Fatal("DB connection error", zap.String("store", name), zap.Error(err))
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatal("DB ping error", zap.String("store", name), zap.Error(err))
	}

	log.Info("connected to Postgres", zap.String("store", name))
	return db
}

// ConnectDB opens both stores and creates their schemas.
func ConnectDB() {
	log := logger.GetLogger()

	UsersDB = openDB("users", dsn("USERS"))
	DoctorsDB = openDB("doctors", dsn("DOCTORS"))

	if err := InitUsersSchema(UsersDB); err != nil {
		log.Fatal("users schema init error", zap.Error(err))
	}
	if err := InitDoctorsSchema(DoctorsDB); err != nil {
		log.Fatal("doctors schema init error", zap.Error(err))
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := SeedDemoDoctors(DoctorsDB); err != nil {
			log.Warn("demo seed failed", zap.Error(err))
		}
	}
}

// LegacyStatusWrites reports whether consultation status updates bypass the
// transition table and overwrite unconditionally, as the legacy system did.
func LegacyStatusWrites() bool {
	return os.Getenv("LEGACY_STATUS_WRITES") == "true"
}
