package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/gesthub/gesthub/internal/composer"
	"github.com/gesthub/gesthub/internal/config"
	"github.com/gesthub/gesthub/internal/handlers"
	"github.com/gesthub/gesthub/internal/lineage"
	"github.com/gesthub/gesthub/internal/queue"
	"github.com/gesthub/gesthub/internal/repository"
	"github.com/gesthub/gesthub/internal/services"
	xhttp "github.com/gesthub/gesthub/pkg/http"
	"github.com/gesthub/gesthub/pkg/logger"
	"github.com/gesthub/gesthub/pkg/pg"
	"github.com/gesthub/gesthub/pkg/prom"
	"github.com/gesthub/gesthub/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	cfg := config.Get()
	logger.Info("starting api", "version", version, "commit", commit, "date", date, "env", cfg.AppEnv)

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.RequestIDMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.TimeoutMiddleware(time.Duration(cfg.HttpRequestTimeout) * time.Millisecond))
	s.Use(xhttp.CompressMiddleware(6))

	db, err := pg.CreateReadWrite(cfg.PostgresRead(), cfg.PostgresWrite(), cfg.AppEnv == "dev")
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	checks := []handlers.HealthCheck{{Name: "postgres", Check: db.Ping}}

	// without redis reminders are still recorded, the links are only logged
	var locker services.LineageLocker = lineage.NopLocker{}
	var opener services.LinkOpener = services.NopOpener{}
	if cfg.RedisEnabled() {
		redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, cfg.RedisOptions("api"))
		if err != nil {
			logger.Error("failed connecting to redis", "error", err)
			return
		}
		outbox, err := queue.NewQueue(redisAdap, cfg.OutboxQueue())
		if err != nil {
			logger.Error("failed creating outbox", "error", err)
			return
		}
		locker = lineage.NewLocker(redisAdap, cfg.LineageLockTTL)
		opener = services.NewQueueOpener(outbox)
		checks = append(checks, handlers.HealthCheck{Name: "redis", Check: redisAdap.Ping, Optional: true})
	} else {
		logger.Warn("redis is not configured, links will not be opened")
	}

	c := composer.New(cfg.Business(), cfg.MessagingBaseURL, cfg.MessagingCountryCode)
	notaRepo := repository.NewNotaRepository(db)

	// services
	notaService := services.NewNotaService(notaRepo, c, opener, locker, cfg.CollectedWindowDays)
	formsService := services.NewFormsService(notaService, c)
	exportService := services.NewExportService(notaService)

	// v1 handlers
	notaHandler := handlers.NewNotaHandler(notaService, exportService)
	formsHandler := handlers.NewFormsHandler(formsService, notaService)
	healthHandler := handlers.NewHealthHandler(checks...)

	g := s.Router.Group("/api/v1")
	handlers.RegisterNotaRoutes(g, notaHandler)
	handlers.RegisterFormsRoutes(g, formsHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	if cfg.AppDebugMetricsAddr != "" {
		host, _ := os.Hostname()
		if err := prom.Create(host, cfg.AppEnv, cfg.PromNamespace); err != nil {
			logger.Error("failed registering metrics", "error", err)
		}
		go prom.ListenAndServer(cfg.AppDebugMetricsAddr, cfg.AppDebugMetricsURI)
	}

	// statuses drift while nobody is looking, refresh once on boot
	if _, err := notaService.RefreshStatus(context.Background()); err != nil {
		logger.Warn("initial status refresh failed", "error", err)
	}

	done := make(chan struct{})
	s.CloseOnSignal(done)

	go func() {
		var err = s.ListenAndServe(cfg.HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-done
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
