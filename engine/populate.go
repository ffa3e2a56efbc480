// Copyright 2023 voodoo Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package engine

import (
	"context"

	"github.com/juju/errors"
	"github.com/voodoo-io/voodoo/dataset"
	"github.com/voodoo-io/voodoo/storage/cache"
)

// write batch size for cache population
const populateBatchSize = 100

// PopulateCache writes one cache entry per item: the item's raw correlation
// matrix row, labeled with neighbor item ids. The row is persisted as-is,
// self pair included and unsorted; readers strip the self pair. Entries are
// overwritten unconditionally since the cache is a derived artifact.
//
// The first failed write aborts the run: a batch either populates the whole
// cache or reports an error, matching the all-or-nothing artifact policy of
// the earlier stages.
func PopulateCache(ctx context.Context, correlation *dataset.Table, cacheClient cache.Database, progress func(int)) error {
	nItems, _ := correlation.Dims()
	itemIds := correlation.RowLabels()
	neighborIds := correlation.ColumnLabels()
	values := make([]cache.Value, 0, populateBatchSize)
	flush := func() error {
		if len(values) == 0 {
			return nil
		}
		if err := cacheClient.Set(ctx, values...); err != nil {
			return errors.Trace(err)
		}
		if progress != nil {
			progress(len(values))
		}
		values = values[:0]
		return nil
	}
	for i := 0; i < nItems; i++ {
		row := correlation.Row(i)
		neighbors := make([]cache.Neighbor, len(row))
		for j, correlationScore := range row {
			neighbors[j] = cache.Neighbor{ItemId: neighborIds[j], Correlation: correlationScore}
		}
		blob, err := cache.EncodeNeighbors(neighbors)
		if err != nil {
			return errors.Annotatef(err, "encode neighbors of %s", itemIds[i])
		}
		values = append(values, cache.Bytes(itemIds[i], blob))
		if len(values) == populateBatchSize {
			if err = flush(); err != nil {
				return errors.Annotatef(err, "write neighbors of %s", itemIds[i])
			}
		}
	}
	return errors.Trace(flush())
}
