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
// Package compare builds the per-source comparison view: every canonical
// asset next to the latest observation one source reported for it.
package compare

import (
	"context"
	"fmt"
	"iter"

	"github.com/carverauto/assetradar/pkg/db"
	"github.com/carverauto/assetradar/pkg/models"
	"github.com/carverauto/assetradar/pkg/sources"
)

const defaultPageSize = 500

// Builder reads the comparison view lazily in keyset pages.
type Builder struct {
	store    db.Store
	pageSize int
}

// NewBuilder returns a Builder over store. A non-positive pageSize selects
// the default of 500 rows per page.
func NewBuilder(store db.Store, pageSize int) *Builder {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &Builder{store: store, pageSize: pageSize}
}

// ListComparison yields one row per canonical asset in id order. Pages are
// fetched on demand, so stopping early stops reading. Rows reflect the
// store at the time each page is read; there is no snapshot across pages.
// An error is yielded at most once and ends the sequence.
func (b *Builder) ListComparison(ctx context.Context, source string) iter.Seq2[*models.ComparisonRow, error] {
	return func(yield func(*models.ComparisonRow, error) bool) {
		desc, err := sources.Lookup(source)
		if err != nil {
			yield(nil, err)
			return
		}

		var after int64

		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			page, err := b.store.ListComparisonPage(ctx, desc.Name, after, b.pageSize)
			if err != nil {
				yield(nil, fmt.Errorf("comparison page after %d: %w", after, err))
				return
			}

			for _, row := range page {
				if !yield(row, nil) {
					return
				}

				after = row.AssetID
			}

			if len(page) < b.pageSize {
				return
			}
		}
	}
}

// Collect drains ListComparison into a slice.
func (b *Builder) Collect(ctx context.Context, source string) ([]*models.ComparisonRow, error) {
	var rows []*models.ComparisonRow

	for row, err := range b.ListComparison(ctx, source) {
		if err != nil {
			return nil, err
		}

		rows = append(rows, row)
	}

	return rows, nil
}
