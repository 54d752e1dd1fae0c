package config

import (
	"os"
	"strconv"
)

// Storage driver names accepted by SCHEMACANVAS_STORAGE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	StorageDriver string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads configuration from the environment. Postgres connection
// parameters are read separately by the database package (DB_HOST,
// DB_PORT, DB_USERNAME, DB_PASSWORD, DB_DATABASE).
func Load() Config {
	cfg := Config{
		StorageDriver: os.Getenv("SCHEMACANVAS_STORAGE_DRIVER"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}
	if cfg.StorageDriver == "" {
		cfg.StorageDriver = DriverMemory
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			cfg.RedisDB = n
		}
	}
	return cfg
}
