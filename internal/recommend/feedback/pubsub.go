// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package feedback

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"

	"github.com/Uri-do/gaiming/internal/recommend"
)

// NATSConfig configures the durable feedback bus. When NATS is disabled,
// the in-process gochannel bus is used instead; single-instance
// deployments lose durability but keep identical semantics.
type NATSConfig struct {
	URL              string        `json:"url" koanf:"url"`
	QueueGroup       string        `json:"queue_group" koanf:"queue_group"`
	DurableName      string        `json:"durable_name" koanf:"durable_name"`
	SubscribersCount int           `json:"subscribers_count" koanf:"subscribers_count"`
	AckWaitTimeout   time.Duration `json:"ack_wait_timeout" koanf:"ack_wait_timeout"`
	CloseTimeout     time.Duration `json:"close_timeout" koanf:"close_timeout"`
	MaxReconnects    int           `json:"max_reconnects" koanf:"max_reconnects"`
	ReconnectWait    time.Duration `json:"reconnect_wait" koanf:"reconnect_wait"`
}

// DefaultNATSConfig returns production defaults.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:              natsgo.DefaultURL,
		QueueGroup:       "feedback",
		DurableName:      "feedback-ingest",
		SubscribersCount: 4,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     30 * time.Second,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
	}
}

// PubSub bundles the publisher and subscriber ends of the feedback bus.
type PubSub struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	serializer *Serializer
}

// NewInProcessPubSub creates the in-process bus for single-instance runs
// and tests.
func NewInProcessPubSub(logger watermill.LoggerAdapter) *PubSub {
	ch := gochannel.NewGoChannel(gochannel.Config{}, logger)
	return &PubSub{
		Publisher:  ch,
		Subscriber: ch,
		serializer: NewSerializer(),
	}
}

// NewNATSPubSub creates the durable JetStream-backed bus.
func NewNATSPubSub(cfg NATSConfig, logger watermill.LoggerAdapter) (*PubSub, error) {
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create feedback publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: cfg.SubscribersCount,
		AckWaitTimeout:   cfg.AckWaitTimeout,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			DurablePrefix: cfg.DurableName,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.AckWait(cfg.AckWaitTimeout),
				natsgo.DeliverNew(),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create feedback subscriber: %w", err)
	}

	return &PubSub{
		Publisher:  pub,
		Subscriber: sub,
		serializer: NewSerializer(),
	}, nil
}

// Submit serializes and publishes one interaction event. Fire and forget
// from the caller's perspective; durability depends on the bus backing.
func (p *PubSub) Submit(event *recommend.InteractionEvent) error {
	payload, err := p.serializer.Marshal(event)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return p.Publisher.Publish(TopicInteraction, msg)
}

// Close closes both ends of the bus.
func (p *PubSub) Close() error {
	if err := p.Publisher.Close(); err != nil {
		return err
	}
	return p.Subscriber.Close()
}
