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

// SourceName identifies one of the administratively provisioned data sources
// that report observations about assets.
type SourceName string

const (
	SourceForescout       SourceName = "forescout"
	SourceActiveDirectory SourceName = "active_directory"
	SourceSecurityCenter  SourceName = "security_center"
	SourceHBSS            SourceName = "hbss"
)

// SourceRegistryEntry tracks a source and the last time an observation from
// it was successfully ingested.
type SourceRegistryEntry struct {
	Name        SourceName `json:"name"`
	Description string     `json:"description"`
	LastUpdate  *time.Time `json:"last_update,omitempty"`
}

// Clone returns a deep copy of the entry.
func (e *SourceRegistryEntry) Clone() *SourceRegistryEntry {
	if e == nil {
		return nil
	}

	out := *e
	out.LastUpdate = cloneTime(e.LastUpdate)

	return &out
}
