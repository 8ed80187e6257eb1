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

// SourceObservation is one source's reported snapshot of a device. The four
// source ledgers share this shape; which fields a source may populate is
// decided by its descriptor in pkg/sources.
type SourceObservation struct {
	ID               string     `json:"id"`
	Source           SourceName `json:"source"`
	CanonicalAssetID *int64     `json:"canonical_asset_id,omitempty"`

	HostName           *string `json:"host_name,omitempty"`
	MAC                *string `json:"mac,omitempty"`
	IPAddress          *string `json:"ip_address,omitempty"`
	Department         *string `json:"department,omitempty"`
	Status             *string `json:"status,omitempty"`
	SerialNumber       *string `json:"serial_number,omitempty"`
	Make               *string `json:"make,omitempty"`
	Model              *string `json:"model,omitempty"`
	VulnerabilityCount *int64  `json:"vulnerability_count,omitempty"`

	ObservedAt time.Time `json:"observed_at"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Field returns a pointer to the string field named by f, or nil for fields
// an observation never carries as a string.
func (o *SourceObservation) Field(f AssetField) **string {
	switch f {
	case FieldHostName:
		return &o.HostName
	case FieldMAC:
		return &o.MAC
	case FieldIPAddress:
		return &o.IPAddress
	case FieldDepartment:
		return &o.Department
	case FieldStatus:
		return &o.Status
	case FieldSerialNumber:
		return &o.SerialNumber
	case FieldMake:
		return &o.Make
	case FieldModel:
		return &o.Model
	default:
		return nil
	}
}

// Value returns the observed string value for f, or nil when absent.
func (o *SourceObservation) Value(f AssetField) *string {
	if p := o.Field(f); p != nil {
		return *p
	}

	return nil
}

// Clone returns a deep copy of the observation.
func (o *SourceObservation) Clone() *SourceObservation {
	if o == nil {
		return nil
	}

	out := *o
	if o.CanonicalAssetID != nil {
		id := *o.CanonicalAssetID
		out.CanonicalAssetID = &id
	}

	out.HostName = cloneString(o.HostName)
	out.MAC = cloneString(o.MAC)
	out.IPAddress = cloneString(o.IPAddress)
	out.Department = cloneString(o.Department)
	out.Status = cloneString(o.Status)
	out.SerialNumber = cloneString(o.SerialNumber)
	out.Make = cloneString(o.Make)
	out.Model = cloneString(o.Model)

	if o.VulnerabilityCount != nil {
		n := *o.VulnerabilityCount
		out.VulnerabilityCount = &n
	}

	return &out
}

// NewerThan reports whether o sorts after other when picking the latest
// observation of a source for an asset.
func (o *SourceObservation) NewerThan(other *SourceObservation) bool {
	if other == nil {
		return true
	}

	if !o.ObservedAt.Equal(other.ObservedAt) {
		return o.ObservedAt.After(other.ObservedAt)
	}

	if !o.RecordedAt.Equal(other.RecordedAt) {
		return o.RecordedAt.After(other.RecordedAt)
	}

	return o.ID > other.ID
}
