package api

import (
	"encoding/json"
	"time"

	"github.com/carverauto/assetradar/pkg/models"
)

// ObservationRequest is the body of POST /api/v1/sources/{source}/observations.
type ObservationRequest struct {
	ObservedAt time.Time                  `json:"observed_at"`
	AssetID    *int64                     `json:"asset_id,omitempty"`
	Fields     map[string]json.RawMessage `json:"fields"`
}

type FreshnessResponse struct {
	Source     models.SourceName `json:"source"`
	LastUpdate *time.Time        `json:"last_update"`
}

type ErrorResponse struct {
	Message   string `json:"message"`
	Status    int    `json:"status"`
	Retryable bool   `json:"retryable,omitempty"`
}
