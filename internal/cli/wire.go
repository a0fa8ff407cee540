package cli

import (
	"github.com/gesthub/gesthub/internal/composer"
	"github.com/gesthub/gesthub/internal/config"
	"github.com/gesthub/gesthub/internal/lineage"
	"github.com/gesthub/gesthub/internal/queue"
	"github.com/gesthub/gesthub/internal/repository"
	"github.com/gesthub/gesthub/internal/services"
	"github.com/gesthub/gesthub/pkg/pg"
	"github.com/gesthub/gesthub/pkg/redis"
	"github.com/pkg/errors"
)

// notaService builds the same service graph the API runs, minus HTTP.
func notaService() (*services.NotaService, error) {
	cfg := config.Get()

	db, err := pg.CreateReadWrite(cfg.PostgresRead(), cfg.PostgresWrite(), false)
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}

	var locker services.LineageLocker = lineage.NopLocker{}
	var opener services.LinkOpener = services.NopOpener{}
	if cfg.RedisEnabled() {
		adapter, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, cfg.RedisOptions("cli"))
		if err != nil {
			return nil, errors.Wrap(err, "connect redis")
		}
		outbox, err := queue.NewQueue(adapter, cfg.OutboxQueue())
		if err != nil {
			return nil, errors.Wrap(err, "open outbox")
		}
		locker = lineage.NewLocker(adapter, cfg.LineageLockTTL)
		opener = services.NewQueueOpener(outbox)
	}

	c := composer.New(cfg.Business(), cfg.MessagingBaseURL, cfg.MessagingCountryCode)
	return services.NewNotaService(repository.NewNotaRepository(db), c, opener, locker, cfg.CollectedWindowDays), nil
}
