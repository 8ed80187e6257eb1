package natsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carverauto/assetradar/pkg/models"
)

func TestTLSConfig_RequiresAllFiles(t *testing.T) {
	_, err := TLSConfig(nil)
	require.ErrorIs(t, err, ErrMTLSRequired)

	_, err = TLSConfig(&models.TLSConfig{CertFile: "c.pem", KeyFile: "k.pem"})
	require.ErrorIs(t, err, ErrMTLSRequired)
}

func TestTLSConfig_MissingCertificate(t *testing.T) {
	dir := t.TempDir()

	_, err := TLSConfig(&models.TLSConfig{
		CertFile: filepath.Join(dir, "missing.pem"),
		KeyFile:  filepath.Join(dir, "missing.key"),
		CAFile:   filepath.Join(dir, "ca.pem"),
	})
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}
