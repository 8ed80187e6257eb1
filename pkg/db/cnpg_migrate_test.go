package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingMigrations_SkipsAppliedAndDown(t *testing.T) {
	all, err := pendingMigrations(map[string]struct{}{})
	require.NoError(t, err)
	require.NotEmpty(t, all)

	for _, name := range all {
		assert.True(t, strings.HasSuffix(name, ".up.sql"), name)
	}

	assert.Equal(t, "00000000000001_assets.up.sql", all[0])

	rest, err := pendingMigrations(map[string]struct{}{"00000000000001": {}})
	require.NoError(t, err)
	assert.Len(t, rest, len(all)-1)
}

func TestEmbeddedMigration_Splits(t *testing.T) {
	content, err := cnpgMigrationsFS.ReadFile("cnpg/migrations/00000000000001_assets.up.sql")
	require.NoError(t, err)

	statements := splitSQLStatements(string(content))
	require.NotEmpty(t, statements)

	var sawSerialIndex, sawSeed bool

	for _, stmt := range statements {
		assert.NotContains(t, stmt, "--")

		if strings.Contains(stmt, "UNIQUE INDEX") && strings.Contains(stmt, "serial_number IS NOT NULL") {
			sawSerialIndex = true
		}

		if strings.Contains(stmt, "INSERT INTO source_registry") && strings.Contains(stmt, "'hbss'") {
			sawSeed = true
		}
	}

	assert.True(t, sawSerialIndex, "serial number uniqueness index")
	assert.True(t, sawSeed, "source registry seed")
}
