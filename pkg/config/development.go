package config

import (
	"os"
)

func loadDevelopmentConfig(cfg *Config) {
	cfg.DatabaseDebug = true
	cfg.DatabaseFilePath = "./tmp/data.sqlite"
	cfg.RedisURL = os.Getenv("REDIS_URL")
}
