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

// AssetField names a nullable column of CanonicalAsset. The same names are
// used as observation field keys and as database column names.
type AssetField string

const (
	FieldSerialNumber       AssetField = "serial_number"
	FieldHostName           AssetField = "host_name"
	FieldMAC                AssetField = "mac"
	FieldIPAddress          AssetField = "ip_address"
	FieldMake               AssetField = "make"
	FieldModel              AssetField = "model"
	FieldDepartment         AssetField = "department"
	FieldStatus             AssetField = "status"
	FieldNotes              AssetField = "notes"
	FieldLocation           AssetField = "location"
	FieldVulnerabilityCount AssetField = "vulnerability_count"
)

// CanonicalAsset is the single authoritative record for one physical device.
type CanonicalAsset struct {
	ID           int64      `json:"id"`
	SerialNumber *string    `json:"serial_number,omitempty"`
	HostName     *string    `json:"host_name,omitempty"`
	MAC          *string    `json:"mac,omitempty"`
	IPAddress    *string    `json:"ip_address,omitempty"`
	Make         *string    `json:"make,omitempty"`
	Model        *string    `json:"model,omitempty"`
	Department   *string    `json:"department,omitempty"`
	Status       *string    `json:"status,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	Location     *string    `json:"location,omitempty"`
	LastSeen     *time.Time `json:"last_seen,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Field returns a pointer to the string column named by f, or nil when f is
// not a string column of the asset.
func (a *CanonicalAsset) Field(f AssetField) **string {
	switch f {
	case FieldSerialNumber:
		return &a.SerialNumber
	case FieldHostName:
		return &a.HostName
	case FieldMAC:
		return &a.MAC
	case FieldIPAddress:
		return &a.IPAddress
	case FieldMake:
		return &a.Make
	case FieldModel:
		return &a.Model
	case FieldDepartment:
		return &a.Department
	case FieldStatus:
		return &a.Status
	case FieldNotes:
		return &a.Notes
	case FieldLocation:
		return &a.Location
	default:
		return nil
	}
}

// Clone returns a deep copy of the asset so callers can mutate it without
// touching stored state.
func (a *CanonicalAsset) Clone() *CanonicalAsset {
	if a == nil {
		return nil
	}

	out := *a
	out.SerialNumber = cloneString(a.SerialNumber)
	out.HostName = cloneString(a.HostName)
	out.MAC = cloneString(a.MAC)
	out.IPAddress = cloneString(a.IPAddress)
	out.Make = cloneString(a.Make)
	out.Model = cloneString(a.Model)
	out.Department = cloneString(a.Department)
	out.Status = cloneString(a.Status)
	out.Notes = cloneString(a.Notes)
	out.Location = cloneString(a.Location)
	out.LastSeen = cloneTime(a.LastSeen)

	return &out
}

// AssetPatch carries an administrative correction. Nil fields are left alone.
type AssetPatch struct {
	SerialNumber *string `json:"serial_number,omitempty"`
	Make         *string `json:"make,omitempty"`
	Model        *string `json:"model,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	Location     *string `json:"location,omitempty"`
}

// Fields lists the non-nil patch values keyed by asset column.
func (p *AssetPatch) Fields() map[AssetField]string {
	out := make(map[AssetField]string, 5)
	if p == nil {
		return out
	}

	for field, value := range map[AssetField]*string{
		FieldSerialNumber: p.SerialNumber,
		FieldMake:         p.Make,
		FieldModel:        p.Model,
		FieldNotes:        p.Notes,
		FieldLocation:     p.Location,
	} {
		if value != nil {
			out[field] = *value
		}
	}

	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}

	v := *s

	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	v := *t

	return &v
}

// StringPtr is a small helper for building optional fields.
func StringPtr(s string) *string {
	return &s
}

// TimePtr is a small helper for building optional timestamps.
func TimePtr(t time.Time) *time.Time {
	return &t
}
