package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/assetradar/pkg/db/memory"
	"github.com/carverauto/assetradar/pkg/db/sqlite"
	"github.com/carverauto/assetradar/pkg/logger"
	"github.com/carverauto/assetradar/pkg/models"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	log := logger.NewTestLogger()

	store, err := openStore(ctx, &models.StoreConfig{}, log)
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, store)

	path := filepath.Join(t.TempDir(), "core.db")
	store, err = openStore(ctx, &models.StoreConfig{Backend: models.StoreBackendSQLite, SQLitePath: path}, log)
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Store{}, store)
	require.NoError(t, store.Close())

	_, err = openStore(ctx, &models.StoreConfig{Backend: "etcd"}, log)
	require.ErrorIs(t, err, errUnknownBackend)
}

func TestBuildServices_ProvisionsSources(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	cfg := &models.CoreConfig{ListenAddr: "127.0.0.1:0"}

	services, err := buildServices(ctx, cfg, store, logger.NewTestLogger())
	require.NoError(t, err)
	require.Len(t, services, 1, "no consumer without nats")

	sources, err := store.ListSources(ctx)
	require.NoError(t, err)
	assert.Len(t, sources, 4)
}

func TestBuildServices_AddsConsumerWhenNATSEnabled(t *testing.T) {
	cfg := &models.CoreConfig{
		ListenAddr: "127.0.0.1:0",
		NATS:       &models.NATSConfig{Enabled: true, URL: "nats://127.0.0.1:4222", StreamName: "OBS", ConsumerName: "core"},
	}

	services, err := buildServices(context.Background(), cfg, memory.New(), logger.NewTestLogger())
	require.NoError(t, err)
	assert.Len(t, services, 2)
}

type blockingServer struct {
	stop     chan struct{}
	startErr error
}

func (b *blockingServer) Start(string) error {
	if b.startErr != nil {
		return b.startErr
	}

	<-b.stop

	return nil
}

func (b *blockingServer) Shutdown(context.Context) error {
	close(b.stop)
	return nil
}

func TestHTTPService_StopWaitsForServer(t *testing.T) {
	srv := &blockingServer{stop: make(chan struct{})}
	svc := newHTTPService(srv, ":0", logger.NewTestLogger())

	require.NoError(t, svc.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, svc.Stop(ctx))

	select {
	case <-svc.done:
	default:
		t.Fatal("server goroutine still running after Stop")
	}
}

func TestHTTPService_StartFailureStopsCleanly(t *testing.T) {
	srv := &blockingServer{stop: make(chan struct{}), startErr: errors.New("address in use")}
	svc := newHTTPService(srv, ":0", logger.NewTestLogger())

	require.NoError(t, svc.Start(context.Background()))

	require.Eventually(t, func() bool {
		select {
		case <-svc.done:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}
