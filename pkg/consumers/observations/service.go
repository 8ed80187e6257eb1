package observations

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/assetradar/pkg/lifecycle"
	"github.com/carverauto/assetradar/pkg/logger"
	"github.com/carverauto/assetradar/pkg/models"
	"github.com/carverauto/assetradar/pkg/natsutil"
	"github.com/carverauto/assetradar/pkg/registry"
)

const defaultSubject = "assetradar.observations.>"

var errConfigRequired = errors.New("nats consumer config is required")

// Service runs the JetStream observation consumer.
type Service struct {
	cfg       *models.NATSConfig
	processor *Processor
	logger    logger.Logger
	nc        *nats.Conn
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

var _ lifecycle.Service = (*Service)(nil)

func NewService(cfg *models.NATSConfig, mgr registry.Manager, log logger.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errConfigRequired
	}

	log = log.WithComponent("observation-consumer")

	return &Service{cfg: cfg, processor: NewProcessor(mgr, log), logger: log}, nil
}

func (s *Service) Start(ctx context.Context) error {
	nc, err := natsutil.ConnectWithSecurity(s.cfg.URL, s.cfg.TLS, s.logger, nats.Name("assetradar-core"))
	if err != nil {
		return err
	}

	s.nc = nc

	js, err := natsutil.JetStream(nc, s.cfg.Domain)
	if err != nil {
		nc.Close()
		return err
	}

	subject := s.cfg.Subject
	if subject == "" {
		subject = defaultSubject
	}

	if _, err = natsutil.EnsureStream(ctx, js, s.cfg.StreamName, []string{subject}); err != nil {
		nc.Close()
		return err
	}

	consumer, err := NewConsumer(ctx, js, ConsumerConfig{
		StreamName:   s.cfg.StreamName,
		ConsumerName: s.cfg.ConsumerName,
		Subject:      s.cfg.Subject,
		AckWait:      time.Duration(s.cfg.AckWait),
		MaxDeliver:   s.cfg.MaxDeliver,
	}, s.logger)
	if err != nil {
		nc.Close()
		return err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		consumer.ProcessMessages(runCtx, s.processor)
	}()

	s.logger.Info().
		Str("stream", s.cfg.StreamName).
		Str("consumer", s.cfg.ConsumerName).
		Msg("observation consumer started")

	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})

	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn().Msg("observation consumer did not stop before the deadline")
	}

	if s.nc != nil {
		if err := s.nc.Drain(); err != nil {
			s.nc.Close()
		}
	}

	s.logger.Info().Msg("observation consumer stopped")

	return nil
}
