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

// Package app wires the asset-core binary together.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/carverauto/assetradar/pkg/api"
	"github.com/carverauto/assetradar/pkg/compare"
	"github.com/carverauto/assetradar/pkg/config"
	"github.com/carverauto/assetradar/pkg/consumers/observations"
	"github.com/carverauto/assetradar/pkg/db"
	"github.com/carverauto/assetradar/pkg/db/memory"
	"github.com/carverauto/assetradar/pkg/db/sqlite"
	"github.com/carverauto/assetradar/pkg/lifecycle"
	"github.com/carverauto/assetradar/pkg/logger"
	"github.com/carverauto/assetradar/pkg/models"
	"github.com/carverauto/assetradar/pkg/registry"
)

const serviceName = "assetradar-core"

var errUnknownBackend = errors.New("unknown store backend")

// Options contains runtime configuration derived from CLI flags.
type Options struct {
	ConfigPath string
}

// Run boots asset-core and blocks until it is told to stop.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.NewConfig(nil).LoadCore(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	if cfg.Logging == nil {
		cfg.Logging = logger.DefaultConfig()
	}

	mainLogger, err := lifecycle.CreateComponentLogger(ctx, "core-main", cfg.Logging)
	if err != nil {
		return err
	}

	defer func() {
		if shutdownErr := lifecycle.ShutdownLogger(); shutdownErr != nil {
			mainLogger.Error().Err(shutdownErr).Msg("Error shutting down logger")
		}
	}()

	if _, err := logger.InitializeTracing(ctx, logger.TracingConfig{
		ServiceName: serviceName,
		OTel:        &cfg.Logging.OTel,
	}); err != nil {
		return err
	}

	if _, err := logger.InitializeMetrics(ctx, logger.MetricsConfig{
		ServiceName: serviceName,
		OTel:        &cfg.Logging.OTel,
	}); err != nil && !errors.Is(err, logger.ErrOTelMetricsDisabled) {
		return err
	}

	store, err := openStore(ctx, &cfg.Store, mainLogger)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			mainLogger.Error().Err(closeErr).Msg("Error closing store")
		}
	}()

	services, err := buildServices(ctx, cfg, store, mainLogger)
	if err != nil {
		return err
	}

	return lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
		Services: services,
		Logger:   mainLogger,
	})
}

// buildServices provisions the source registry and returns the HTTP API and,
// when enabled, the JetStream consumer.
func buildServices(
	ctx context.Context, cfg *models.CoreConfig, store db.Store, log logger.Logger,
) ([]lifecycle.Service, error) {
	reg := registry.New(store, log, registry.WithConfig(cfg.Registry))
	if err := reg.Provision(ctx); err != nil {
		return nil, fmt.Errorf("provision source registry: %w", err)
	}

	apiServer := api.NewServer(
		reg,
		compare.NewBuilder(store, cfg.Comparison.PageSize),
		log,
		api.WithCORS(cfg.CORS),
		api.WithAPIKey(cfg.APIKey),
	)

	services := []lifecycle.Service{newHTTPService(apiServer, cfg.ListenAddr, log)}

	if cfg.NATS != nil && cfg.NATS.Enabled {
		consumer, err := observations.NewService(cfg.NATS, reg, log)
		if err != nil {
			return nil, err
		}

		services = append(services, consumer)
	}

	return services, nil
}

func openStore(ctx context.Context, cfg *models.StoreConfig, log logger.Logger) (db.Store, error) {
	switch cfg.Backend {
	case models.StoreBackendMemory, "":
		log.Warn().Msg("Using in-memory store; data is lost on restart")
		return memory.New(), nil
	case models.StoreBackendSQLite:
		return sqlite.NewStore(ctx, cfg.SQLitePath)
	case models.StoreBackendPostgres:
		return db.NewCNPGStore(ctx, cfg.CNPG, log.WithComponent("cnpg"))
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownBackend, cfg.Backend)
	}
}
