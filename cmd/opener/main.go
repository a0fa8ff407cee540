package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gesthub/gesthub/internal/config"
	"github.com/gesthub/gesthub/internal/opener"
	"github.com/gesthub/gesthub/pkg/logger"
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
	logger.Info("starting opener", "version", version, "commit", commit, "date", date, "command", cfg.OpenerCommand)

	if !cfg.RedisEnabled() {
		logger.Error("the opener needs REDIS_ADDR to read the outbox")
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, cfg.RedisOptions("opener"))
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	launcher, err := opener.NewCommandLauncher(cfg.OpenerCommand)
	if err != nil {
		logger.Error("invalid opener command", "error", err)
		return
	}

	idempotencyService := opener.NewIdempotencyService(redisAdap, opener.DefaultIdempotencyConfig())
	agent := opener.NewAgent(redisAdap, opener.Config{
		Queue:     cfg.OutboxQueue(),
		Consumers: cfg.OpenerWorkers,
		Workers:   cfg.OpenerWorkers,
	}, launcher, idempotencyService)

	if cfg.AppDebugMetricsAddr != "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		if err := prom.Create(hostname, cfg.AppEnv, cfg.PromNamespace); err != nil {
			logger.Error("failed to create prometheus metrics", "error", err)
			return
		}
		go prom.ListenAndServer(cfg.AppDebugMetricsAddr, cfg.AppDebugMetricsURI)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	if err := agent.Start(); err != nil {
		logger.Error("failed to start opener", "error", err)
		return
	}

	<-c
	agent.Stop()
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
