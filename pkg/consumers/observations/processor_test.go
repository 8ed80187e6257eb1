package observations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/assetradar/pkg/logger"
	"github.com/carverauto/assetradar/pkg/models"
	"github.com/carverauto/assetradar/pkg/registry"
)

type fakeMsg struct {
	data      []byte
	delivered uint64
	acked     bool
	naked     bool
	termed    bool
}

func (m *fakeMsg) Data() []byte    { return m.data }
func (m *fakeMsg) Subject() string { return "assetradar.observations.hbss" }

func (m *fakeMsg) Metadata() (*jetstream.MsgMetadata, error) {
	return &jetstream.MsgMetadata{NumDelivered: m.delivered}, nil
}

func (m *fakeMsg) Ack() error                         { m.acked = true; return nil }
func (m *fakeMsg) NakWithDelay(_ time.Duration) error { m.naked = true; return nil }
func (m *fakeMsg) Term() error                        { m.termed = true; return nil }

func TestProcess_DecodesEnvelope(t *testing.T) {
	ctrl := gomock.NewController(t)
	mgr := registry.NewMockManager(ctrl)

	observed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mgr.EXPECT().Ingest(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *registry.Request) (*registry.Result, error) {
			assert.Equal(t, "hbss", req.Source)
			assert.Equal(t, observed, req.ObservedAt)
			assert.Equal(t, "AA:BB", req.Fields["mac"])
			require.NotNil(t, req.AssetID)
			assert.Equal(t, int64(4), *req.AssetID)

			return &registry.Result{AssetID: 4}, nil
		},
	)

	p := NewProcessor(mgr, logger.NewTestLogger())

	res, err := p.Process(context.Background(),
		[]byte(`{"source":"hbss","observed_at":"2025-03-01T12:00:00Z","asset_id":4,"fields":{"mac":"AA:BB"}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.AssetID)
}

func TestProcess_RejectsMalformedMessages(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := NewProcessor(registry.NewMockManager(ctrl), logger.NewTestLogger())

	_, err := p.Process(context.Background(), nil)
	require.ErrorIs(t, err, ErrEmptyMessage)

	_, err = p.Process(context.Background(), []byte(`{"source":`))
	require.ErrorIs(t, err, ErrUnmarshal)

	_, err = p.Process(context.Background(), []byte(`{"source":"hbss","fields":{"mac":{"x":`))
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrEmptyMessage, true},
		{fmt.Errorf("%w: x", ErrUnmarshal), true},
		{models.ErrUnknownSource, true},
		{models.ErrUnknownField, true},
		{models.ErrInvalidFieldValue, true},
		{models.ErrObservedAtRequired, true},
		{models.ErrDuplicateSerialNumber, true},
		{models.ErrStaleAssetReference, false},
		{fmt.Errorf("%w: %w", ErrPinnedAssetGone, models.ErrStaleAssetReference), true},
		{models.ErrResolutionRace, false},
		{errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPermanent(tt.err), tt.err.Error())
	}
}

func TestHandleMessage_AckTermNak(t *testing.T) {
	body, err := json.Marshal(Envelope{
		Source:     "forescout",
		ObservedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Fields:     map[string]json.RawMessage{"mac": json.RawMessage(`"AA:BB"`)},
	})
	require.NoError(t, err)

	tests := []struct {
		name      string
		ingestErr error
		wantAck   bool
		wantTerm  bool
		wantNak   bool
	}{
		{name: "success", wantAck: true},
		{name: "validation", ingestErr: models.ErrUnknownField, wantTerm: true},
		{name: "stale asset", ingestErr: models.ErrStaleAssetReference, wantNak: true},
		{name: "storage", ingestErr: errors.New("db down"), wantNak: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mgr := registry.NewMockManager(ctrl)

			if tt.ingestErr != nil {
				mgr.EXPECT().Ingest(gomock.Any(), gomock.Any()).Return(nil, tt.ingestErr)
			} else {
				mgr.EXPECT().Ingest(gomock.Any(), gomock.Any()).Return(&registry.Result{AssetID: 1, Created: true}, nil)
			}

			c := &Consumer{cfg: ConsumerConfig{MaxDeliver: 5}, logger: logger.NewTestLogger()}
			msg := &fakeMsg{data: body, delivered: 1}

			c.handleMessage(context.Background(), msg, NewProcessor(mgr, logger.NewTestLogger()))

			assert.Equal(t, tt.wantAck, msg.acked)
			assert.Equal(t, tt.wantTerm, msg.termed)
			assert.Equal(t, tt.wantNak, msg.naked)
		})
	}
}

func TestHandleMessage_StaleEnvelopeAssetIsTerminated(t *testing.T) {
	ctrl := gomock.NewController(t)
	mgr := registry.NewMockManager(ctrl)

	stale := fmt.Errorf("%w: 9", models.ErrStaleAssetReference)
	mgr.EXPECT().Ingest(gomock.Any(), gomock.Any()).Return(nil, stale)

	c := &Consumer{cfg: ConsumerConfig{MaxDeliver: 5}, logger: logger.NewTestLogger()}
	msg := &fakeMsg{
		data:      []byte(`{"source":"hbss","observed_at":"2025-03-01T12:00:00Z","asset_id":9,"fields":{"mac":"AA:BB"}}`),
		delivered: 1,
	}

	c.handleMessage(context.Background(), msg, NewProcessor(mgr, logger.NewTestLogger()))

	assert.True(t, msg.termed)
	assert.False(t, msg.naked)
	assert.False(t, msg.acked)
}

func TestProcess_StaleEnvelopeAssetIsPermanent(t *testing.T) {
	ctrl := gomock.NewController(t)
	mgr := registry.NewMockManager(ctrl)

	mgr.EXPECT().Ingest(gomock.Any(), gomock.Any()).Return(nil, models.ErrStaleAssetReference)

	_, err := NewProcessor(mgr, logger.NewTestLogger()).Process(context.Background(),
		[]byte(`{"source":"hbss","observed_at":"2025-03-01T12:00:00Z","asset_id":9,"fields":{"mac":"AA:BB"}}`))
	require.ErrorIs(t, err, ErrPinnedAssetGone)
	require.ErrorIs(t, err, models.ErrStaleAssetReference)
	assert.True(t, IsPermanent(err))
}

func TestHandleMessage_EmptyMessageIsTerminated(t *testing.T) {
	ctrl := gomock.NewController(t)

	c := &Consumer{logger: logger.NewTestLogger()}
	msg := &fakeMsg{}

	c.handleMessage(context.Background(), msg, NewProcessor(registry.NewMockManager(ctrl), logger.NewTestLogger()))

	assert.True(t, msg.termed)
	assert.False(t, msg.acked)
}

func TestNewService_RequiresConfig(t *testing.T) {
	_, err := NewService(nil, nil, logger.NewTestLogger())
	require.ErrorIs(t, err, errConfigRequired)
}
