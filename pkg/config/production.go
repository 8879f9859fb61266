package config

import (
	"os"
	"strconv"
)

func loadProductionConfig(cfg *Config) {
	cfg.DatabaseFilePath = os.Getenv("DATABASE_FILE_PATH")
	if cfg.DatabaseFilePath == "" {
		cfg.DatabaseFilePath = "/data/longbox.sqlite"
	}

	cfg.RedisURL = os.Getenv("REDIS_URL")

	if disabled, err := strconv.ParseBool(os.Getenv("RECREATE_COMICS_DISABLED")); err == nil {
		cfg.RecreateComicsDisabled = disabled
	}

	if procs, err := strconv.Atoi(os.Getenv("WORKER_PROCESSES")); err == nil && procs > 0 {
		cfg.WorkerProcesses = procs
	}
}
