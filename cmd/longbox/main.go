package main

import (
	"context"

	"github.com/longboxhq/longbox/pkg/comics"
	"github.com/longboxhq/longbox/pkg/config"
	"github.com/longboxhq/longbox/pkg/database"
	"github.com/longboxhq/longbox/pkg/jobs"
	"github.com/longboxhq/longbox/pkg/migrations"
	"github.com/longboxhq/longbox/pkg/publish"
	"github.com/longboxhq/longbox/pkg/scraping"
	"github.com/longboxhq/longbox/pkg/scraping/comicvine"
	"github.com/longboxhq/longbox/pkg/version"
	"github.com/longboxhq/longbox/pkg/worker"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting longbox", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		log.Err(err).Fatal("migrations error")
	}
	if group.ID == 0 {
		log.Info("no new migrations to run")
	} else {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}

	registry := scraping.NewRegistry()
	registry.Register(comicvine.New())
	scraper := scraping.NewService(db, scraping.NewCache(), registry, cfg.ScrapeTimeout)

	var publisher comics.Publisher
	var redisPublisher *publish.RedisPublisher
	if cfg.RedisURL != "" {
		redisPublisher, err = publish.NewRedisPublisher(cfg)
		if err != nil {
			log.Err(err).Fatal("redis error")
		}
		publisher = redisPublisher
		log.Info("publishing to redis", logger.Data{
			"update_channel":  cfg.ComicUpdateChannel,
			"removal_channel": cfg.ComicRemovalChannel,
		})
	} else {
		publisher = publish.NewLogPublisher()
		log.Info("no redis url configured, publishing to log")
	}

	comicService := comics.NewService(db, cfg, publisher, scraper)

	wrkr := worker.New(cfg, comicService, jobs.NewService(db))

	graceful := signals.Setup()

	wrkr.Start()
	log.Info("worker started")

	<-graceful
	log.Info("starting graceful shutdown")

	wrkr.Shutdown()
	log.Info("worker shutdown")

	if redisPublisher != nil {
		err = redisPublisher.Close()
		if err != nil {
			log.Err(err).Error("redis close error")
		}
	}

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}
