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
	"math"

	"github.com/juju/errors"
	"github.com/voodoo-io/voodoo/base/log"
	"github.com/voodoo-io/voodoo/base/parallel"
	"github.com/voodoo-io/voodoo/dataset"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const varianceEpsilon = 1e-12

// Correlate computes the pairwise Pearson correlation matrix over the rows
// of the latent embedding. The output is symmetric, carries the same item
// ordering as the embedding rows, and every value lies in [-1, 1].
//
// An item whose embedding has zero variance has no defined correlation to
// anything; its row and column are zeroed (diagonal excepted) instead of
// letting NaN leak into the cache. Rows are computed in parallel; every
// worker writes its own pre-indexed row, so the result does not depend on
// scheduling.
func Correlate(embedding *dataset.Table, nJobs int) (*dataset.Table, error) {
	nItems, nFactors := embedding.Dims()
	if nItems == 0 {
		return nil, errors.New("embedding is empty")
	}

	// center and scale each row once, so a correlation is a dot product
	normalized := make([][]float64, nItems)
	degenerate := 0
	for i := 0; i < nItems; i++ {
		row := embedding.Row(i)
		mean, std := stat.MeanStdDev(row, nil)
		normalized[i] = make([]float64, nFactors)
		if math.IsNaN(std) || std*std < varianceEpsilon {
			// zero-variance embedding: leave the normalized row zeroed
			degenerate++
			continue
		}
		for j, v := range row {
			normalized[i][j] = (v - mean) / std
		}
		norm := floats.Norm(normalized[i], 2)
		if norm > 0 {
			floats.Scale(1/norm, normalized[i])
		}
	}
	if degenerate > 0 {
		log.Logger().Warn("items with zero-variance embeddings",
			zap.Int("count", degenerate))
	}

	itemIds := embedding.RowLabels()
	correlation := dataset.NewTable(itemIds, itemIds)
	err := parallel.Parallel(nItems, nJobs, func(_, i int) error {
		row := make([]float64, nItems)
		for j := 0; j < nItems; j++ {
			if i == j {
				row[j] = 1.0
				continue
			}
			v := floats.Dot(normalized[i], normalized[j])
			// guard against rounding drift outside [-1, 1]
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			row[j] = v
		}
		correlation.SetRow(i, row)
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return correlation, nil
}
