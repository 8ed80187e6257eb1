/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/assetradar/pkg/logger"
)

const defaultShutdownTimeout = 10 * time.Second

// Service is a long-running component started and stopped by RunServer.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type ServerOptions struct {
	// Services are started in order and stopped in reverse order.
	Services        []Service
	Logger          logger.Logger
	ShutdownTimeout time.Duration
	// Signals defaults to SIGINT and SIGTERM.
	Signals []os.Signal
}

// RunServer starts every service and blocks until ctx is cancelled, a
// signal arrives or a service reports a fatal error through Fail. Services
// are then stopped within ShutdownTimeout.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	signals := opts.Signals
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	ctx, stop := signal.NotifyContext(ctx, signals...)
	defer stop()

	errCh := make(chan error, len(opts.Services))
	ctx = withFailure(ctx, errCh)

	started := make([]Service, 0, len(opts.Services))

	var runErr error

	for _, svc := range opts.Services {
		if err := svc.Start(ctx); err != nil {
			runErr = fmt.Errorf("failed to start service: %w", err)
			break
		}

		started = append(started, svc)
	}

	if runErr == nil {
		opts.Logger.Info().Int("services", len(started)).Msg("all services started")

		select {
		case <-ctx.Done():
			opts.Logger.Info().Msg("shutdown requested")
		case err := <-errCh:
			runErr = err
			opts.Logger.Error().Err(err).Msg("service failed, shutting down")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	var stopErrs []error

	for i := len(started) - 1; i >= 0; i-- {
		if err := started[i].Stop(shutdownCtx); err != nil {
			stopErrs = append(stopErrs, err)
		}
	}

	if err := errors.Join(stopErrs...); err != nil {
		opts.Logger.Error().Err(err).Msg("error stopping services")

		if runErr == nil {
			runErr = err
		}
	}

	return runErr
}

type failureKey struct{}

func withFailure(ctx context.Context, ch chan<- error) context.Context {
	return context.WithValue(ctx, failureKey{}, ch)
}

// Fail reports a fatal error from a service goroutine started under
// RunServer. It is a no-op outside RunServer.
func Fail(ctx context.Context, err error) {
	ch, ok := ctx.Value(failureKey{}).(chan<- error)
	if !ok || err == nil {
		return
	}

	select {
	case ch <- err:
	default:
	}
}
