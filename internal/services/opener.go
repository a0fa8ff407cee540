package services

import (
	"context"

	"github.com/gesthub/gesthub/internal/model"
	"github.com/gesthub/gesthub/pkg/logger"
)

// Publisher is the part of the outbox queue the API needs.
type Publisher interface {
	PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error)
}

// QueueOpener forwards links to the outbox; a workstation agent opens them.
type QueueOpener struct {
	outbox Publisher
}

func NewQueueOpener(outbox Publisher) *QueueOpener {
	return &QueueOpener{outbox: outbox}
}

func (o *QueueOpener) Open(ctx context.Context, event model.LinkEvent) error {
	id, err := o.outbox.PublishJSON(ctx, event, map[string]string{
		"kind":    string(event.Kind),
		"nota_id": event.NotaID,
	})
	if err != nil {
		return err
	}
	logger.Debug("link queued", "kind", event.Kind, "nota_id", event.NotaID, "entry", id)
	return nil
}

// NopOpener only logs. The caller still receives the link in the response.
type NopOpener struct{}

func (NopOpener) Open(_ context.Context, event model.LinkEvent) error {
	logger.Debug("link not dispatched, no opener configured", "kind", event.Kind, "nota_id", event.NotaID)
	return nil
}
