// Package observations consumes observation envelopes from NATS JetStream
// and feeds them to the asset registry.
package observations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/assetradar/pkg/logger"
	"github.com/carverauto/assetradar/pkg/models"
	"github.com/carverauto/assetradar/pkg/registry"
	"github.com/carverauto/assetradar/pkg/sources"
)

var (
	ErrEmptyMessage = errors.New("empty message received")
	ErrUnmarshal    = errors.New("failed to unmarshal observation envelope")
	// ErrPinnedAssetGone marks a stale reference to the asset named in the
	// envelope itself. Redelivery carries the same asset id.
	ErrPinnedAssetGone = errors.New("envelope asset_id no longer exists")
)

// Envelope is the JSON message published by source collectors.
type Envelope struct {
	Source     string                     `json:"source"`
	ObservedAt time.Time                  `json:"observed_at"`
	AssetID    *int64                     `json:"asset_id,omitempty"`
	Fields     map[string]json.RawMessage `json:"fields"`
}

type Processor struct {
	registry registry.Manager
	logger   logger.Logger
}

func NewProcessor(mgr registry.Manager, log logger.Logger) *Processor {
	return &Processor{registry: mgr, logger: log}
}

// Process ingests one envelope.
func (p *Processor) Process(ctx context.Context, data []byte) (*registry.Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyMessage
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshal, err)
	}

	fields, err := sources.DecodeJSONFields(env.Fields)
	if err != nil {
		return nil, err
	}

	res, err := p.registry.Ingest(ctx, &registry.Request{
		Source:     env.Source,
		Fields:     fields,
		ObservedAt: env.ObservedAt,
		AssetID:    env.AssetID,
	})
	if err != nil && env.AssetID != nil && errors.Is(err, models.ErrStaleAssetReference) {
		return nil, fmt.Errorf("%w: %w", ErrPinnedAssetGone, err)
	}

	return res, err
}

// IsPermanent reports whether redelivering the message cannot succeed.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrEmptyMessage) ||
		errors.Is(err, ErrUnmarshal) ||
		errors.Is(err, ErrPinnedAssetGone) ||
		errors.Is(err, models.ErrDuplicateSerialNumber) ||
		models.IsValidation(err)
}
