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

import "errors"

var (

	// Ingestion and identity errors.

	ErrUnknownSource         = errors.New("unknown source")
	ErrDuplicateSerialNumber = errors.New("serial number already assigned to another asset")
	ErrResolutionRace        = errors.New("concurrent resolution of the same identity")
	ErrStaleAssetReference   = errors.New("asset no longer exists")
	ErrAssetNotFound         = errors.New("asset not found")

	// Observation validation errors.

	ErrUnknownField       = errors.New("field not accepted for source")
	ErrInvalidFieldValue  = errors.New("invalid field value")
	ErrObservedAtRequired = errors.New("observed_at is required")

	// Config errors.

	errInvalidDuration = errors.New("invalid duration")
)

// IsRetryable reports whether the caller may retry the failed ingestion
// after re-resolving.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStaleAssetReference) || errors.Is(err, ErrResolutionRace)
}

// IsValidation reports whether err was caused by a malformed request rather
// than by store state.
func IsValidation(err error) bool {
	return errors.Is(err, ErrUnknownSource) ||
		errors.Is(err, ErrUnknownField) ||
		errors.Is(err, ErrInvalidFieldValue) ||
		errors.Is(err, ErrObservedAtRequired)
}
