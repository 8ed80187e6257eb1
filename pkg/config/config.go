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

// Package config loads service configuration from a JSON file or from
// environment variables, applies defaults, and validates the result.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/carverauto/assetradar/pkg/logger"
	"github.com/carverauto/assetradar/pkg/models"
	"github.com/rs/zerolog"
)

var (
	errInvalidConfigSource = errors.New("invalid CONFIG_SOURCE value")
	errInvalidConfigPtr    = errors.New("config must be a non-nil pointer")
)

const (
	configSourceFile = "file"
	configSourceEnv  = "env"

	// DefaultConfigPath is where asset-core looks for its config file.
	DefaultConfigPath = "/etc/assetradar/core.json"
	// DefaultEnvPrefix prefixes every variable read by the env loader.
	DefaultEnvPrefix = "ASSETRADAR_"

	defaultListenAddr     = ":8090"
	defaultMaxRaceRetries = 3
	defaultRaceBackoff    = 50 * time.Millisecond
	defaultPageSize       = 500
	defaultCNPGPort       = 5432
	defaultNATSSubject    = "assetradar.observations.>"
	defaultMaxDeliver     = 5
	defaultAckWait        = 30 * time.Second
)

// ConfigLoader fills dst from some source. path is ignored by loaders that
// do not read files.
type ConfigLoader interface {
	Load(ctx context.Context, path string, dst interface{}) error
}

// Validator is implemented by configs that can check themselves.
type Validator interface {
	Validate() error
}

// Config holds the configuration loading dependencies.
type Config struct {
	defaultLoader ConfigLoader
	logger        logger.Logger
}

// NewConfig returns a Config reading files by default. A nil logger is
// replaced by a warn-level stderr logger.
func NewConfig(log logger.Logger) *Config {
	if log == nil {
		log = createBasicLogger()
	}

	return &Config{
		defaultLoader: &FileConfigLoader{},
		logger:        log,
	}
}

func createBasicLogger() logger.Logger {
	return logger.Wrap(zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger())
}

// ValidateConfig validates a configuration if it implements Validator.
func ValidateConfig(cfg interface{}) error {
	v, ok := cfg.(Validator)
	if !ok {
		return nil
	}

	return v.Validate()
}

// LoadAndValidate loads cfg from the source named by CONFIG_SOURCE and
// validates it.
func (c *Config) LoadAndValidate(ctx context.Context, path string, cfg interface{}) error {
	if cfg == nil {
		return errInvalidConfigPtr
	}

	if err := c.load(ctx, path, cfg); err != nil {
		return err
	}

	return ValidateConfig(cfg)
}

// LoadCore loads, defaults and validates the asset-core configuration.
func (c *Config) LoadCore(ctx context.Context, path string) (*models.CoreConfig, error) {
	cfg := &models.CoreConfig{}

	if err := c.load(ctx, path, cfg); err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c.logger.Debug().Interface("config", Redacted(cfg)).Msg("Loaded configuration")

	return cfg, nil
}

func (c *Config) load(ctx context.Context, path string, cfg interface{}) error {
	source := strings.ToLower(os.Getenv("CONFIG_SOURCE"))

	var loader ConfigLoader

	switch source {
	case configSourceEnv:
		prefix := os.Getenv("CONFIG_ENV_PREFIX")
		if prefix == "" {
			prefix = DefaultEnvPrefix
		}

		loader = NewEnvConfigLoader(c.logger, prefix)
	case configSourceFile, "":
		if path == "" {
			path = DefaultConfigPath
		}

		loader = c.defaultLoader
	default:
		return fmt.Errorf("%w: %s (expected '%s' or '%s')",
			errInvalidConfigSource, source, configSourceFile, configSourceEnv)
	}

	return loader.Load(ctx, path, cfg)
}

// ApplyDefaults fills unset tunables. It leaves anything already set alone.
func ApplyDefaults(cfg *models.CoreConfig) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = models.StoreBackendMemory
	}

	if cfg.Registry.MaxRaceRetries <= 0 {
		cfg.Registry.MaxRaceRetries = defaultMaxRaceRetries
	}

	if cfg.Registry.RaceBackoff <= 0 {
		cfg.Registry.RaceBackoff = models.Duration(defaultRaceBackoff)
	}

	if cfg.Comparison.PageSize <= 0 {
		cfg.Comparison.PageSize = defaultPageSize
	}

	if cnpg := cfg.Store.CNPG; cnpg != nil {
		if cnpg.Port == 0 {
			cnpg.Port = defaultCNPGPort
		}

		if cnpg.TLS != nil && cnpg.CertDir != "" {
			NormalizeTLSPaths(cnpg.TLS, cnpg.CertDir)
		}
	}

	if n := cfg.NATS; n != nil {
		if n.Subject == "" {
			n.Subject = defaultNATSSubject
		}

		if n.MaxDeliver <= 0 {
			n.MaxDeliver = defaultMaxDeliver
		}

		if n.AckWait <= 0 {
			n.AckWait = models.Duration(defaultAckWait)
		}
	}
}

// NormalizeTLSPaths resolves relative certificate paths against certDir.
func NormalizeTLSPaths(tls *models.TLSConfig, certDir string) {
	tls.CertFile = joinCertPath(certDir, tls.CertFile)
	tls.KeyFile = joinCertPath(certDir, tls.KeyFile)
	tls.CAFile = joinCertPath(certDir, tls.CAFile)
}

func joinCertPath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(dir, p)
}
