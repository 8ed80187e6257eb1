package sources

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/assetradar/pkg/models"
)

func TestLookup(t *testing.T) {
	d, err := Lookup(" Forescout ")
	require.NoError(t, err)
	assert.Equal(t, models.SourceForescout, d.Name)

	d, err = Lookup("ACTIVE_DIRECTORY")
	require.NoError(t, err)
	assert.Equal(t, models.SourceActiveDirectory, d.Name)

	_, err = Lookup("nessus")
	require.ErrorIs(t, err, models.ErrUnknownSource)
}

func TestAll_FixedOrder(t *testing.T) {
	names := make([]models.SourceName, 0, 4)
	for _, d := range All() {
		names = append(names, d.Name)
	}

	assert.Equal(t, []models.SourceName{
		models.SourceForescout,
		models.SourceActiveDirectory,
		models.SourceSecurityCenter,
		models.SourceHBSS,
	}, names)

	entries := RegistryEntries()
	require.Len(t, entries, 4)
	assert.Nil(t, entries[0].LastUpdate)
}

func TestMatchKeys(t *testing.T) {
	tests := map[models.SourceName][]models.AssetField{
		models.SourceForescout:       {models.FieldMAC, models.FieldHostName},
		models.SourceActiveDirectory: {models.FieldHostName, models.FieldIPAddress},
		models.SourceSecurityCenter:  {models.FieldMAC, models.FieldIPAddress},
		models.SourceHBSS:            {models.FieldMAC, models.FieldHostName},
	}

	for name, keys := range tests {
		d, err := Lookup(string(name))
		require.NoError(t, err)
		assert.Equal(t, keys, d.MatchKeys, name)

		for _, k := range d.MatchKeys {
			assert.True(t, d.Accepts(k), "%s must accept its own match key %s", name, k)
		}
	}
}

func TestMergeFields_ExcludeLedgerOnly(t *testing.T) {
	d, err := Lookup("security_center")
	require.NoError(t, err)

	assert.NotContains(t, d.MergeFields(), models.FieldVulnerabilityCount)
	assert.Contains(t, d.MergeFields(), models.FieldMAC)
}

func TestDecode(t *testing.T) {
	observedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))

	d, err := Lookup("hbss")
	require.NoError(t, err)

	obs, err := d.Decode(map[string]any{
		"mac":           "aa-bb-cc-dd-ee-ff",
		"host_name":     "  H1 ",
		"ip_address":    "::ffff:10.0.0.5",
		"status":        "active",
		"serial_number": "",
		"make":          nil,
	}, observedAt)
	require.NoError(t, err)

	assert.Equal(t, models.SourceHBSS, obs.Source)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", *obs.MAC)
	assert.Equal(t, "H1", *obs.HostName)
	assert.Equal(t, "10.0.0.5", *obs.IPAddress)
	assert.Equal(t, "active", *obs.Status)
	assert.Nil(t, obs.SerialNumber)
	assert.Nil(t, obs.Make)
	assert.Equal(t, time.UTC, obs.ObservedAt.Location())
	assert.True(t, obs.ObservedAt.Equal(observedAt))
}

func TestDecode_Errors(t *testing.T) {
	now := time.Now()

	forescout, err := Lookup("forescout")
	require.NoError(t, err)

	_, err = forescout.Decode(map[string]any{"department": "IT"}, now)
	require.ErrorIs(t, err, models.ErrUnknownField)

	_, err = forescout.Decode(map[string]any{"mac": 42}, now)
	require.ErrorIs(t, err, models.ErrInvalidFieldValue)

	_, err = forescout.Decode(map[string]any{"mac": "AA:BB"}, time.Time{})
	require.ErrorIs(t, err, models.ErrObservedAtRequired)

	for _, fields := range []map[string]any{
		{"MAC": "AA:BB", "mac": "CC:DD"},
		{" host_name": "H1", "Host_Name": nil},
	} {
		_, err = forescout.Decode(fields, now)
		require.ErrorIs(t, err, models.ErrInvalidFieldValue, "%v", fields)
	}

	sc, err := Lookup("security_center")
	require.NoError(t, err)

	_, err = sc.Decode(map[string]any{"vulnerability_count": -1}, now)
	require.ErrorIs(t, err, models.ErrInvalidFieldValue)

	_, err = sc.Decode(map[string]any{"vulnerability_count": 1.5}, now)
	require.ErrorIs(t, err, models.ErrInvalidFieldValue)
}

func TestDecode_VulnerabilityCount(t *testing.T) {
	sc, err := Lookup("security_center")
	require.NoError(t, err)

	for _, raw := range []any{float64(12), int64(12), 12, json.Number("12"), " 12 "} {
		obs, err := sc.Decode(map[string]any{"vulnerability_count": raw}, time.Now())
		require.NoError(t, err, "%T", raw)
		require.NotNil(t, obs.VulnerabilityCount)
		assert.Equal(t, int64(12), *obs.VulnerabilityCount)
	}

	obs, err := sc.Decode(map[string]any{"vulnerability_count": "  "}, time.Now())
	require.NoError(t, err)
	assert.Nil(t, obs.VulnerabilityCount)
}

func TestIdentityKeys_SortedAndComplete(t *testing.T) {
	d, err := Lookup("active_directory")
	require.NoError(t, err)

	obs := &models.SourceObservation{
		HostName:  models.StringPtr("H1"),
		IPAddress: models.StringPtr("10.0.0.5"),
		MAC:       models.StringPtr("AA:BB"),
	}

	assert.Equal(t, []string{"host_name:H1", "ip_address:10.0.0.5", "mac:AA:BB"}, d.IdentityKeys(obs))
	assert.Empty(t, d.IdentityKeys(&models.SourceObservation{}))
}
