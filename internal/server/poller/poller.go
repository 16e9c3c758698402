package poller

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/0xVantrex/hillersons-spaces-sub000/internal/domain"
	"github.com/0xVantrex/hillersons-spaces-sub000/internal/server/service"
)

// Poller consumes order-completed events and empties the buying user's
// cart. The cart side of checkout ends here; order processing itself is
// another service's problem.
type Poller struct {
	svc    *service.CartService
	reader *kafka.Reader
	log    *slog.Logger
}

func New(svc *service.CartService, log *slog.Logger, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "order-completed",
		GroupID:  "cart-server-consumer",
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{svc: svc, reader: reader, log: log}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		p.consumeAndEmptyCart(ctx)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.log.Warn("error closing kafka reader", "err", err)
	}
}

type orderCompletedEvent struct {
	UserID string `json:"user_id"`
}

func (p *Poller) consumeAndEmptyCart(ctx context.Context) {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.log.Warn("error reading kafka message", "err", err)
		}
		return
	}

	var event orderCompletedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		p.log.Warn("error parsing order-completed event", "err", err)
		return
	}
	if event.UserID == "" {
		p.log.Warn("order-completed event missing user_id")
		return
	}

	if err := p.svc.Clear(ctx, domain.UserOwner(event.UserID)); err != nil {
		p.log.Error("failed to empty cart after order", "user_id", event.UserID, "err", err)
		return
	}

	p.log.Info("cart emptied after completed order", "user_id", event.UserID)
}
