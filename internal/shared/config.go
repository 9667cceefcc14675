package shared

import (
	"os"
	"strconv"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	// Lake backend: fs | redis | mysql
	LakeBackend string
	LakeDir     string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	// Container names, matching the original datalake layout.
	LandingContainer string
	LakeContainer    string

	Workers int
	LakeRPS int // 0 disables storage throttling
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	return Config{
		AppEnv:           env("APP_ENV", "prod"),
		HTTPAddr:         env("HTTP_ADDR", ":8080"),
		MetricsAddr:      env("METRICS_ADDR", ""),
		LakeBackend:      env("LAKE_BACKEND", "fs"),
		LakeDir:          env("LAKE_DIR", "./data"),
		MySQLDSN:         env("MYSQL_DSN", "root:root@tcp(localhost:3306)/globalstay?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:        env("REDIS_ADDR", "localhost:6379"),
		RedisPass:        env("REDIS_PASSWORD", ""),
		RedisDB:          atoi("REDIS_DB", 0),
		LandingContainer: env("LANDING_CONTAINER", "landing-zone"),
		LakeContainer:    env("LAKE_CONTAINER", "datalake"),
		Workers:          atoi("PIPELINE_WORKERS", 4),
		LakeRPS:          atoi("LAKE_RPS", 0),
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
