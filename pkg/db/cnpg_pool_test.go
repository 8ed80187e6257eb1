package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/assetradar/pkg/models"
)

func TestBuildCNPGConnURL_DefaultsSSLModeDisableWithoutTLS(t *testing.T) {
	t.Parallel()

	u, err := buildCNPGConnURL(&models.CNPGDatabase{Host: "cnpg-rw", Database: "assetradar"})
	require.NoError(t, err)

	assert.Equal(t, "cnpg-rw:5432", u.Host)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
	assert.Equal(t, defaultCNPGApplicationName, u.Query().Get("application_name"))
}

func TestBuildCNPGConnURL_DefaultsSSLModeVerifyFullWithTLS(t *testing.T) {
	t.Parallel()

	u, err := buildCNPGConnURL(&models.CNPGDatabase{
		Host:     "cnpg-rw",
		Port:     6432,
		Database: "assetradar",
		Username: "core",
		Password: "secret",
		TLS:      &models.TLSConfig{CertFile: "/tls/client.crt", KeyFile: "/tls/client.key", CAFile: "/tls/ca.crt"},
	})
	require.NoError(t, err)

	assert.Equal(t, "verify-full", u.Query().Get("sslmode"))
	assert.Equal(t, "core", u.User.Username())
	assert.Equal(t, "cnpg-rw:6432", u.Host)
}

func TestBuildCNPGConnURL_RejectsTLSWithSSLModeDisable(t *testing.T) {
	t.Parallel()

	_, err := buildCNPGConnURL(&models.CNPGDatabase{
		Host:    "cnpg-rw",
		SSLMode: "disable",
		TLS:     &models.TLSConfig{CertFile: "a", KeyFile: "b", CAFile: "c"},
	})
	require.ErrorIs(t, err, ErrCNPGTLSDisabled)
}

func TestBuildCNPGConnURL_RequiresAllTLSFiles(t *testing.T) {
	t.Parallel()

	_, err := buildCNPGConnURL(&models.CNPGDatabase{
		Host: "cnpg-rw",
		TLS:  &models.TLSConfig{CertFile: "client.crt"},
	})
	require.ErrorIs(t, err, ErrCNPGLackingTLSFiles)
}

func TestBuildCNPGConnURL_TLSPathsResolveViaCertDir(t *testing.T) {
	t.Parallel()

	u, err := buildCNPGConnURL(&models.CNPGDatabase{
		Host:     "cnpg-rw",
		Database: "assetradar",
		CertDir:  "/etc/assetradar/cnpg",
		TLS:      &models.TLSConfig{CertFile: "client.crt", KeyFile: "client.key", CAFile: "/abs/ca.crt"},
	})
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "/etc/assetradar/cnpg/client.crt", q.Get("sslcert"))
	assert.Equal(t, "/etc/assetradar/cnpg/client.key", q.Get("sslkey"))
	assert.Equal(t, "/abs/ca.crt", q.Get("sslrootcert"))
}

func TestResolveCNPGSSLMode_UsesRuntimeParamsFallback(t *testing.T) {
	t.Parallel()

	got, err := resolveCNPGSSLMode(&models.CNPGDatabase{
		ExtraRuntimeParams: map[string]string{"sslmode": "Verify-CA"},
	})
	require.NoError(t, err)
	assert.Equal(t, "verify-ca", got)
}

func TestCNPGPoolConfig_AppliesLimits(t *testing.T) {
	t.Parallel()

	cfg, err := cnpgPoolConfig(&models.CNPGDatabase{
		Host:               "cnpg-rw",
		Database:           "assetradar",
		MaxConnections:     20,
		MinConnections:     2,
		MaxConnLifetime:    models.Duration(time.Hour),
		StatementTimeout:   models.Duration(30 * time.Second),
		ExtraRuntimeParams: map[string]string{"search_path": "assets", "sslmode": "disable"},
	})
	require.NoError(t, err)

	assert.Equal(t, int32(20), cfg.MaxConns)
	assert.Equal(t, int32(2), cfg.MinConns)
	assert.Equal(t, time.Hour, cfg.MaxConnLifetime)
	assert.Equal(t, "30000", cfg.ConnConfig.RuntimeParams["statement_timeout"])
	assert.Equal(t, "assets", cfg.ConnConfig.RuntimeParams["search_path"])
	assert.NotContains(t, cfg.ConnConfig.RuntimeParams, "sslmode")
}

func TestCNPGPoolConfig_NilConfig(t *testing.T) {
	t.Parallel()

	_, err := cnpgPoolConfig(nil)
	require.ErrorIs(t, err, models.ErrMissingCNPGConfig)
}
