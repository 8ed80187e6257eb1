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

import "time"

// ComparisonRow places a canonical asset next to the latest observation a
// single source reported for it. Source columns are nil when the source has
// never reported the asset.
type ComparisonRow struct {
	Source  SourceName `json:"source"`
	AssetID int64      `json:"asset_id"`

	HostName  *string    `json:"host_name,omitempty"`
	MAC       *string    `json:"mac,omitempty"`
	IPAddress *string    `json:"ip_address,omitempty"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`

	ObservationID    *string    `json:"observation_id,omitempty"`
	SourceHostName   *string    `json:"source_host_name,omitempty"`
	SourceMAC        *string    `json:"source_mac,omitempty"`
	SourceIPAddress  *string    `json:"source_ip_address,omitempty"`
	SourceObservedAt *time.Time `json:"source_observed_at,omitempty"`
	SourceRecordedAt *time.Time `json:"source_recorded_at,omitempty"`

	// Source-unique columns.
	Department         *string `json:"department,omitempty"`
	VulnerabilityCount *int64  `json:"vulnerability_count,omitempty"`
	Status             *string `json:"status,omitempty"`
}

// HasObservation reports whether the source has reported this asset.
func (r *ComparisonRow) HasObservation() bool {
	return r.ObservationID != nil
}

// NewComparisonRow joins an asset with an optional observation, projecting
// only the source-unique column that belongs to source.
func NewComparisonRow(source SourceName, asset *CanonicalAsset, obs *SourceObservation) *ComparisonRow {
	row := &ComparisonRow{
		Source:    source,
		AssetID:   asset.ID,
		HostName:  cloneString(asset.HostName),
		MAC:       cloneString(asset.MAC),
		IPAddress: cloneString(asset.IPAddress),
		LastSeen:  cloneTime(asset.LastSeen),
	}

	if obs == nil {
		return row
	}

	id := obs.ID
	row.ObservationID = &id
	row.SourceHostName = cloneString(obs.HostName)
	row.SourceMAC = cloneString(obs.MAC)
	row.SourceIPAddress = cloneString(obs.IPAddress)
	row.SourceObservedAt = TimePtr(obs.ObservedAt)
	row.SourceRecordedAt = TimePtr(obs.RecordedAt)

	switch source {
	case SourceActiveDirectory:
		row.Department = cloneString(obs.Department)
	case SourceSecurityCenter:
		if obs.VulnerabilityCount != nil {
			n := *obs.VulnerabilityCount
			row.VulnerabilityCount = &n
		}
	case SourceHBSS:
		row.Status = cloneString(obs.Status)
	case SourceForescout:
	}

	return row
}
