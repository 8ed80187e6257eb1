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
package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carverauto/assetradar/pkg/models"
)

// PostgreSQL SQLSTATE codes the store translates into domain errors.
const (
	sqlstateDeadlockDetected    = "40P01"
	sqlstateSerializationFailed = "40001"
	sqlstateUniqueViolation     = "23505"
	sqlstateForeignKeyViolation = "23503"
)

const cnpgSerialConstraint = "canonical_assets_serial_number_key"

// classifyCNPGError returns the SQLSTATE of err and whether it is a
// transient conflict that re-running the transaction can resolve.
func classifyCNPGError(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlstateDeadlockDetected, sqlstateSerializationFailed:
			return pgErr.Code, true
		}

		return pgErr.Code, false
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "40p01"), strings.Contains(msg, "deadlock detected"):
		return sqlstateDeadlockDetected, true
	case strings.Contains(msg, "40001"), strings.Contains(msg, "could not serialize access"):
		return sqlstateSerializationFailed, true
	default:
		return "", false
	}
}

// mapCNPGError wraps driver errors with the matching domain sentinel so
// callers can branch with errors.Is. Errors that already carry a sentinel
// pass through unchanged.
func mapCNPGError(err error) error {
	if err == nil {
		return nil
	}

	for _, sentinel := range []error{
		models.ErrResolutionRace,
		models.ErrDuplicateSerialNumber,
		models.ErrStaleAssetReference,
		models.ErrAssetNotFound,
		models.ErrUnknownSource,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	code, transient := classifyCNPGError(err)
	if transient {
		return fmt.Errorf("%w: %w", models.ErrResolutionRace, err)
	}

	var pgErr *pgconn.PgError

	switch code {
	case sqlstateUniqueViolation:
		if errors.As(err, &pgErr) && pgErr.ConstraintName == cnpgSerialConstraint {
			return fmt.Errorf("%w: %w", models.ErrDuplicateSerialNumber, err)
		}
	case sqlstateForeignKeyViolation:
		if errors.As(err, &pgErr) && pgErr.TableName == "source_observations" {
			return fmt.Errorf("%w: %w", models.ErrStaleAssetReference, err)
		}
	}

	return fmt.Errorf("%w: %w", ErrDatabaseError, err)
}
