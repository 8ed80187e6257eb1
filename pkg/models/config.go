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

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/assetradar/pkg/logger"
)

// Duration is a time.Duration that unmarshals from either a Go duration
// string ("30s") or a number of nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %w", errInvalidDuration, err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Store backends.
const (
	StoreBackendMemory   = "memory"
	StoreBackendSQLite   = "sqlite"
	StoreBackendPostgres = "postgres"
)

var (
	ErrMissingListenAddr   = errors.New("listen_addr is required")
	ErrUnknownStoreBackend = errors.New("store.backend must be memory, sqlite or postgres")
	ErrMissingSQLitePath   = errors.New("store.sqlite_path is required for the sqlite backend")
	ErrMissingCNPGConfig   = errors.New("store.cnpg host and database are required for the postgres backend")
	ErrMissingNATSURL      = errors.New("nats.url is required when nats is enabled")
	ErrMissingStreamName   = errors.New("nats.stream_name is required when nats is enabled")
	ErrMissingConsumerName = errors.New("nats.consumer_name is required when nats is enabled")
)

// TLSConfig points at PEM files used for mutual TLS.
type TLSConfig struct {
	CertFile string `json:"cert_file"`
	KeyFile  string `json:"key_file"`
	CAFile   string `json:"ca_file"`
}

// CNPGDatabase describes the Postgres cluster backing the canonical store.
type CNPGDatabase struct {
	Host               string            `json:"host"`
	Port               int               `json:"port"`
	Database           string            `json:"database"`
	Username           string            `json:"username"`
	Password           string            `json:"password" sensitive:"true"`
	ApplicationName    string            `json:"application_name,omitempty"`
	SSLMode            string            `json:"ssl_mode,omitempty"`
	CertDir            string            `json:"cert_dir,omitempty"`
	TLS                *TLSConfig        `json:"tls,omitempty"`
	MaxConnections     int32             `json:"max_connections,omitempty"`
	MinConnections     int32             `json:"min_connections,omitempty"`
	MaxConnLifetime    Duration          `json:"max_conn_lifetime,omitempty"`
	HealthCheckPeriod  Duration          `json:"health_check_period,omitempty"`
	StatementTimeout   Duration          `json:"statement_timeout,omitempty"`
	ExtraRuntimeParams map[string]string `json:"runtime_params,omitempty"`
}

// StoreConfig selects and configures the canonical store backend.
type StoreConfig struct {
	Backend    string        `json:"backend"`
	SQLitePath string        `json:"sqlite_path,omitempty"`
	CNPG       *CNPGDatabase `json:"cnpg,omitempty"`
}

// RegistryConfig tunes the ingestion entry point.
type RegistryConfig struct {
	MaxRaceRetries int      `json:"max_race_retries,omitempty"`
	RaceBackoff    Duration `json:"race_backoff,omitempty"`
}

// ComparisonConfig tunes the comparison view builder.
type ComparisonConfig struct {
	PageSize int `json:"page_size,omitempty"`
}

// NATSConfig configures the optional JetStream observation consumer.
type NATSConfig struct {
	Enabled      bool       `json:"enabled"`
	URL          string     `json:"url"`
	Domain       string     `json:"domain,omitempty"`
	StreamName   string     `json:"stream_name"`
	ConsumerName string     `json:"consumer_name"`
	Subject      string     `json:"subject,omitempty"`
	MaxDeliver   int        `json:"max_deliver,omitempty"`
	AckWait      Duration   `json:"ack_wait,omitempty"`
	TLS          *TLSConfig `json:"tls,omitempty"`
}

// CORSConfig lists the browser origins allowed to call the HTTP API.
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins,omitempty"`
	AllowCredentials bool     `json:"allow_credentials,omitempty"`
}

// CoreConfig is the configuration of the asset-core service.
type CoreConfig struct {
	ListenAddr string           `json:"listen_addr"`
	APIKey     string           `json:"api_key,omitempty" sensitive:"true"`
	CORS       CORSConfig       `json:"cors"`
	Store      StoreConfig      `json:"store"`
	Registry   RegistryConfig   `json:"registry"`
	Comparison ComparisonConfig `json:"comparison"`
	NATS       *NATSConfig      `json:"nats,omitempty"`
	Logging    *logger.Config   `json:"logging,omitempty"`
}

// Validate checks the configuration and reports every problem at once.
func (c *CoreConfig) Validate() error {
	var errs []error

	if c.ListenAddr == "" {
		errs = append(errs, ErrMissingListenAddr)
	}

	switch c.Store.Backend {
	case StoreBackendMemory, "":
	case StoreBackendSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, ErrMissingSQLitePath)
		}
	case StoreBackendPostgres:
		if c.Store.CNPG == nil || c.Store.CNPG.Host == "" || c.Store.CNPG.Database == "" {
			errs = append(errs, ErrMissingCNPGConfig)
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownStoreBackend, c.Store.Backend))
	}

	if c.NATS != nil && c.NATS.Enabled {
		if c.NATS.URL == "" {
			errs = append(errs, ErrMissingNATSURL)
		}

		if c.NATS.StreamName == "" {
			errs = append(errs, ErrMissingStreamName)
		}

		if c.NATS.ConsumerName == "" {
			errs = append(errs, ErrMissingConsumerName)
		}
	}

	return errors.Join(errs...)
}
