package app

import (
	"context"

	"github.com/carverauto/assetradar/pkg/lifecycle"
	"github.com/carverauto/assetradar/pkg/logger"
)

type apiServer interface {
	Start(addr string) error
	Shutdown(ctx context.Context) error
}

// httpService adapts the API server to lifecycle.Service.
type httpService struct {
	server apiServer
	addr   string
	logger logger.Logger
	done   chan struct{}
}

func newHTTPService(server apiServer, addr string, log logger.Logger) *httpService {
	return &httpService{server: server, addr: addr, logger: log}
}

func (h *httpService) Start(ctx context.Context) error {
	h.done = make(chan struct{})

	go func() {
		defer close(h.done)

		if err := h.server.Start(h.addr); err != nil {
			h.logger.Error().Err(err).Str("listen_addr", h.addr).Msg("HTTP API server error")
			lifecycle.Fail(ctx, err)
		}
	}()

	return nil
}

func (h *httpService) Stop(ctx context.Context) error {
	if err := h.server.Shutdown(ctx); err != nil {
		return err
	}

	select {
	case <-h.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}
