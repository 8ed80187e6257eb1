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

// Package sources describes the closed set of asset data sources: which
// fields each one reports, the order in which those fields identify an
// asset, and how raw field maps become typed observations.
package sources

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/carverauto/assetradar/pkg/models"
)

// Descriptor is the per-source strategy consulted by resolution and merge.
type Descriptor struct {
	Name        models.SourceName
	Description string
	// Fields lists every field key the source may report.
	Fields []models.AssetField
	// MatchKeys lists the identity fields tried, in order, when resolving.
	MatchKeys []models.AssetField
}

// identityFields are the fields any source may match on. Locks are taken on
// all of them so that sources with different key orders still serialise.
var identityFields = []models.AssetField{
	models.FieldMAC,
	models.FieldHostName,
	models.FieldIPAddress,
}

//nolint:gochecknoglobals // closed set, read-only after init
var descriptors = []*Descriptor{
	{
		Name:        models.SourceForescout,
		Description: "Forescout endpoint visibility platform",
		Fields:      []models.AssetField{models.FieldHostName, models.FieldMAC, models.FieldIPAddress},
		MatchKeys:   []models.AssetField{models.FieldMAC, models.FieldHostName},
	},
	{
		Name:        models.SourceActiveDirectory,
		Description: "Active Directory computer objects",
		Fields:      []models.AssetField{models.FieldHostName, models.FieldIPAddress, models.FieldDepartment},
		MatchKeys:   []models.AssetField{models.FieldHostName, models.FieldIPAddress},
	},
	{
		Name:        models.SourceSecurityCenter,
		Description: "SecurityCenter vulnerability scanner",
		Fields: []models.AssetField{
			models.FieldHostName, models.FieldMAC, models.FieldIPAddress, models.FieldVulnerabilityCount,
		},
		MatchKeys: []models.AssetField{models.FieldMAC, models.FieldIPAddress},
	},
	{
		Name:        models.SourceHBSS,
		Description: "HBSS host security agent",
		Fields: []models.AssetField{
			models.FieldHostName, models.FieldMAC, models.FieldIPAddress, models.FieldStatus,
			models.FieldSerialNumber, models.FieldMake, models.FieldModel,
		},
		MatchKeys: []models.AssetField{models.FieldMAC, models.FieldHostName},
	},
}

// All returns the descriptors in their fixed order.
func All() []*Descriptor {
	return slices.Clone(descriptors)
}

// Lookup finds the descriptor for a source name. Names are compared
// case-insensitively after trimming.
func Lookup(name string) (*Descriptor, error) {
	want := models.SourceName(strings.ToLower(strings.TrimSpace(name)))

	for _, d := range descriptors {
		if d.Name == want {
			return d, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", models.ErrUnknownSource, name)
}

// RegistryEntries returns a fresh registry row per source for provisioning.
func RegistryEntries() []*models.SourceRegistryEntry {
	out := make([]*models.SourceRegistryEntry, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, &models.SourceRegistryEntry{Name: d.Name, Description: d.Description})
	}

	return out
}

// Accepts reports whether the source may report field f.
func (d *Descriptor) Accepts(f models.AssetField) bool {
	return slices.Contains(d.Fields, f)
}

// MergeFields lists the accepted fields that have a canonical column.
func (d *Descriptor) MergeFields() []models.AssetField {
	out := make([]models.AssetField, 0, len(d.Fields))
	for _, f := range d.Fields {
		if f != models.FieldVulnerabilityCount {
			out = append(out, f)
		}
	}

	return out
}

// IdentityKeys returns the sorted lock keys ("mac:AA:BB") for every identity
// value present in obs.
func (d *Descriptor) IdentityKeys(obs *models.SourceObservation) []string {
	keys := make([]string, 0, len(identityFields))

	for _, f := range identityFields {
		if v := obs.Value(f); v != nil {
			keys = append(keys, string(f)+":"+*v)
		}
	}

	slices.Sort(keys)

	return keys
}

// Decode builds a typed observation from a raw field map. Nil values and
// blank strings are treated as absent.
func (d *Descriptor) Decode(fields map[string]any, observedAt time.Time) (*models.SourceObservation, error) {
	if observedAt.IsZero() {
		return nil, models.ErrObservedAtRequired
	}

	obs := &models.SourceObservation{
		Source:     d.Name,
		ObservedAt: observedAt.UTC(),
	}

	seen := make(map[models.AssetField]string, len(fields))

	for key, raw := range fields {
		field := models.AssetField(strings.ToLower(strings.TrimSpace(key)))
		if !d.Accepts(field) {
			return nil, fmt.Errorf("%w: %s does not report %q", models.ErrUnknownField, d.Name, key)
		}

		if other, dup := seen[field]; dup {
			return nil, fmt.Errorf("%w: %q and %q both name %s", models.ErrInvalidFieldValue, other, key, field)
		}

		seen[field] = key

		if s, isString := raw.(string); raw == nil || (isString && strings.TrimSpace(s) == "") {
			continue
		}

		if field == models.FieldVulnerabilityCount {
			n, err := coerceCount(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", models.ErrInvalidFieldValue, key, err)
			}

			obs.VulnerabilityCount = &n

			continue
		}

		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a string, got %T", models.ErrInvalidFieldValue, key, raw)
		}

		if v := Normalize(field, s); v != "" {
			*obs.Field(field) = &v
		}
	}

	return obs, nil
}
