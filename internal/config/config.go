package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/gesthub/gesthub/internal/composer"
	"github.com/gesthub/gesthub/internal/queue"
	"github.com/gesthub/gesthub/pkg/logger"
	"github.com/gesthub/gesthub/pkg/pg"
	"github.com/gesthub/gesthub/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const ConfigTagName = "env"
const ConfigDefaultTagName = "default"

var config *Config

// Config holds every configurable value of the service. Nothing else should
// read the environment directly.
type Config struct {
	AppEnv              string `env:"APP_ENV" default:"dev"`
	AppName             string `env:"APP_NAME" default:"gesthub"`
	AppDebug            bool   `env:"APP_DEBUG" default:"1"`
	AppDebugMetricsAddr string `env:"APP_DEBUG_METRIC_ADDR"`
	AppDebugMetricsURI  string `env:"APP_DEBUG_METRIC_URI"`

	HttpListenAddr     string `env:"HTTP_LISTEN_ADDR"`
	HttpRequestTimeout int    `env:"HTTP_REQUEST_TIMEOUT"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	MigrationsDir string `env:"MIGRATIONS_DIR"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX"`

	LineageLockTTL time.Duration `env:"LINEAGE_LOCK_TTL"`

	PromNamespace string `env:"PROM_NAMESPACE"`

	OutboxName              string        `env:"OUTBOX_NAME"`
	OutboxConsumerGroup     string        `env:"OUTBOX_CONSUMER_GROUP"`
	OutboxConsumerName      string        `env:"OUTBOX_CONSUMER_NAME"`
	OutboxMaxRetries        int           `env:"OUTBOX_MAX_RETRIES"`
	OutboxVisibilityTimeout time.Duration `env:"OUTBOX_VISIBILITY_TIMEOUT"`
	OutboxPollInterval      time.Duration `env:"OUTBOX_POLL_INTERVAL"`
	OutboxBatchSize         int64         `env:"OUTBOX_BATCH_SIZE"`
	OutboxMaxLen            int64         `env:"OUTBOX_MAX_LEN"`
	OutboxEnableDLQ         bool          `env:"OUTBOX_ENABLE_DLQ"`

	OpenerCommand string `env:"OPENER_COMMAND"`
	OpenerWorkers int    `env:"OPENER_WORKERS"`

	MessagingBaseURL     string `env:"MESSAGING_BASE_URL"`
	MessagingCountryCode string `env:"MESSAGING_COUNTRY_CODE"`

	BusinessName    string `env:"BUSINESS_NAME"`
	BusinessSender  string `env:"BUSINESS_SENDER"`
	BusinessCNPJ    string `env:"BUSINESS_CNPJ"`
	BusinessHours   string `env:"BUSINESS_HOURS"`
	BusinessAddress string `env:"BUSINESS_ADDRESS"`

	CollectedWindowDays int `env:"COLLECTED_WINDOW_DAYS"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.Wrapf(err, "failed to load configuration file %s", path)
		}
	}

	_, err = env.UnmarshalFromEnviron(c)
	if err != nil {
		return errors.Wrap(err, "failed to map env variables to Configuration object")
	}

	c.applyDefaults()
	config = c
	return nil
}

// Set replaces the process-wide configuration. Used by tests and tools that
// build a Config by hand.
func Set(c *Config) {
	c.applyDefaults()
	config = c
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}

func (c *Config) applyDefaults() {
	if c.AppEnv == "" {
		c.AppEnv = "dev"
	}
	if c.AppName == "" {
		c.AppName = "gesthub"
	}
	if c.HttpListenAddr == "" {
		c.HttpListenAddr = ":8080"
	}
	if c.HttpRequestTimeout == 0 {
		c.HttpRequestTimeout = 5000
	}
	if c.AppDebugMetricsURI == "" {
		c.AppDebugMetricsURI = "/metrics"
	}
	if c.MigrationsDir == "" {
		c.MigrationsDir = "./migrations"
	}
	if c.LineageLockTTL == 0 {
		c.LineageLockTTL = 10 * time.Second
	}
	if c.PromNamespace == "" {
		c.PromNamespace = "gesthub"
	}
	if c.OutboxName == "" {
		c.OutboxName = "notas:outbox"
	}
	if c.OutboxConsumerGroup == "" {
		c.OutboxConsumerGroup = "openers"
	}
	if c.OpenerCommand == "" {
		c.OpenerCommand = "xdg-open"
	}
	if c.OpenerWorkers == 0 {
		c.OpenerWorkers = 2
	}
	if c.MessagingBaseURL == "" {
		c.MessagingBaseURL = "https://wa.me"
	}
	if c.MessagingCountryCode == "" {
		c.MessagingCountryCode = "55"
	}
	if c.BusinessName == "" {
		c.BusinessName = "Gplásticos"
	}
	if c.BusinessSender == "" {
		c.BusinessSender = "Lenoir"
	}
	if c.BusinessCNPJ == "" {
		c.BusinessCNPJ = "16.914.559/0001-67"
	}
	if c.BusinessHours == "" {
		c.BusinessHours = "Segunda a Sexta, das 08h às 18h"
	}
	if c.BusinessAddress == "" {
		c.BusinessAddress = "R. Demétrio Ângelo Tiburi, 1716 - Bela Vista, Caxias do Sul - RS, 95072-150"
	}
	if c.CollectedWindowDays == 0 {
		c.CollectedWindowDays = 7
	}
}

func (c *Config) PostgresRead() pg.Config {
	return pg.Config{
		User:     c.PostgresReadUser,
		Host:     c.PostgresReadHost,
		Port:     c.PostgresReadPort,
		Password: c.PostgresReadPassword,
		Database: c.PostgresReadDatabase,
	}
}

func (c *Config) PostgresWrite() pg.Config {
	return pg.Config{
		User:     c.PostgresWriteUser,
		Host:     c.PostgresWriteHost,
		Port:     c.PostgresWritePort,
		Password: c.PostgresWritePassword,
		Database: c.PostgresWriteDatabase,
	}
}

// RedisEnabled reports whether the lineage lock and the outbox are available.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func (c *Config) RedisOptions(clientName string) *redis.Options {
	return &redis.Options{
		Addrs:      []string{c.RedisAddr},
		ClientName: clientName,
		DB:         c.RedisDatabase,
		Username:   c.RedisUsername,
		Password:   c.RedisPassword,
	}
}

func (c *Config) OutboxQueue() queue.QueueConfig {
	return queue.QueueConfig{
		Name:              c.OutboxName,
		ConsumerGroup:     c.OutboxConsumerGroup,
		ConsumerName:      c.OutboxConsumerName,
		MaxRetries:        c.OutboxMaxRetries,
		VisibilityTimeout: c.OutboxVisibilityTimeout,
		PollInterval:      c.OutboxPollInterval,
		BatchSize:         c.OutboxBatchSize,
		MaxLen:            c.OutboxMaxLen,
		EnableDLQ:         c.OutboxEnableDLQ,
	}
}

func (c *Config) Business() composer.Business {
	return composer.Business{
		Name:    c.BusinessName,
		Sender:  c.BusinessSender,
		CNPJ:    c.BusinessCNPJ,
		Hours:   c.BusinessHours,
		Address: c.BusinessAddress,
	}
}
