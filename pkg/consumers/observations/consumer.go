package observations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/assetradar/pkg/logger"
)

const (
	defaultMaxPullMessages = 10
	defaultPullExpiry      = 30 * time.Second
	defaultAckWait         = 30 * time.Second
	defaultMaxDeliver      = 5
	defaultMaxAckPending   = 1000
	fetchErrorBackoff      = time.Second
	nakDelay               = 2 * time.Second
)

// message is the part of jetstream.Msg the consumer uses.
type message interface {
	Data() []byte
	Subject() string
	Metadata() (*jetstream.MsgMetadata, error)
	Ack() error
	NakWithDelay(delay time.Duration) error
	Term() error
}

type ConsumerConfig struct {
	StreamName   string
	ConsumerName string
	Subject      string
	AckWait      time.Duration
	MaxDeliver   int
}

type Consumer struct {
	cfg      ConsumerConfig
	consumer jetstream.Consumer
	logger   logger.Logger
}

// NewConsumer binds to the durable pull consumer, creating it when missing.
func NewConsumer(ctx context.Context, js jetstream.JetStream, cfg ConsumerConfig, log logger.Logger) (*Consumer, error) {
	if cfg.AckWait <= 0 {
		cfg.AckWait = defaultAckWait
	}

	if cfg.MaxDeliver <= 0 {
		cfg.MaxDeliver = defaultMaxDeliver
	}

	consumer, err := js.Consumer(ctx, cfg.StreamName, cfg.ConsumerName)
	if err != nil {
		if !errors.Is(err, jetstream.ErrConsumerNotFound) {
			return nil, fmt.Errorf("failed to get consumer %s: %w", cfg.ConsumerName, err)
		}

		jsCfg := jetstream.ConsumerConfig{
			Durable:       cfg.ConsumerName,
			AckPolicy:     jetstream.AckExplicitPolicy,
			AckWait:       cfg.AckWait,
			MaxDeliver:    cfg.MaxDeliver,
			MaxAckPending: defaultMaxAckPending,
		}
		if cfg.Subject != "" {
			jsCfg.FilterSubject = cfg.Subject
		}

		consumer, err = js.CreateConsumer(ctx, cfg.StreamName, jsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create consumer: %w", err)
		}

		log.Info().
			Str("stream", cfg.StreamName).
			Str("consumer", cfg.ConsumerName).
			Msg("created durable observation consumer")
	}

	return &Consumer{cfg: cfg, consumer: consumer, logger: log}, nil
}

// ProcessMessages pulls batches until ctx is cancelled.
func (c *Consumer) ProcessMessages(ctx context.Context, processor *Processor) {
	c.logger.Info().
		Str("stream", c.cfg.StreamName).
		Str("consumer", c.cfg.ConsumerName).
		Msg("starting observation pull consumer")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("stopping observation consumer")
			return
		default:
		}

		msgs, err := c.consumer.Fetch(defaultMaxPullMessages, jetstream.FetchMaxWait(defaultPullExpiry))
		if err != nil {
			c.logger.Warn().Err(err).Msg("failed to fetch messages")

			select {
			case <-ctx.Done():
				return
			case <-time.After(fetchErrorBackoff):
			}

			continue
		}

		for msg := range msgs.Messages() {
			c.handleMessage(ctx, msg, processor)
		}

		if fetchErr := msgs.Error(); fetchErr != nil && !errors.Is(fetchErr, jetstream.ErrNoMessages) {
			c.logger.Warn().Err(fetchErr).Msg("fetch error")
		}
	}
}

// handleMessage acks on success, terminates messages that can never be
// ingested and naks the rest for redelivery until MaxDeliver.
func (c *Consumer) handleMessage(ctx context.Context, msg message, processor *Processor) {
	var delivered uint64
	if md, err := msg.Metadata(); err == nil {
		delivered = md.NumDelivered
	}

	res, err := processor.Process(ctx, msg.Data())
	if err == nil {
		c.logger.Debug().
			Str("subject", msg.Subject()).
			Int64("asset_id", res.AssetID).
			Bool("created", res.Created).
			Msg("observation ingested")

		if ackErr := msg.Ack(); ackErr != nil {
			c.logger.Warn().Err(ackErr).Msg("failed to ack message")
		}

		return
	}

	if IsPermanent(err) {
		c.logger.Warn().
			Err(err).
			Str("subject", msg.Subject()).
			Msg("dropping observation that cannot be ingested")

		if termErr := msg.Term(); termErr != nil {
			c.logger.Warn().Err(termErr).Msg("failed to terminate message")
		}

		return
	}

	c.logger.Error().
		Err(err).
		Str("subject", msg.Subject()).
		Uint64("delivered", delivered).
		Int("max_deliver", c.cfg.MaxDeliver).
		Msg("observation ingestion failed, requesting redelivery")

	if nakErr := msg.NakWithDelay(nakDelay); nakErr != nil {
		c.logger.Warn().Err(nakErr).Msg("failed to nak message")
	}
}
