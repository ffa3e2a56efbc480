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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/voodoo-io/voodoo/dataset"
	"gonum.org/v1/gonum/mat"
)

func newEmbedding(items []string, rows [][]float64) *dataset.Table {
	factors := make([]string, len(rows[0]))
	for j := range factors {
		factors[j] = string(rune('a' + j))
	}
	table := dataset.NewTable(items, factors)
	for i, row := range rows {
		table.SetRow(i, row)
	}
	return table
}

func TestCorrelate(t *testing.T) {
	embedding := newEmbedding([]string{"x", "y", "z"}, [][]float64{
		{1, 2, 3, 4},
		{2, 4, 6, 8}, // perfectly correlated with x
		{4, 3, 2, 1}, // perfectly anti-correlated with x
	})
	correlation, err := Correlate(embedding, 1)
	assert.NoError(t, err)
	nRows, nCols := correlation.Dims()
	assert.Equal(t, 3, nRows)
	assert.Equal(t, 3, nCols)
	assert.Equal(t, []string{"x", "y", "z"}, correlation.RowLabels())
	assert.Equal(t, []string{"x", "y", "z"}, correlation.ColumnLabels())
	assert.InDelta(t, 1.0, correlation.At(0, 1), 1e-12)
	assert.InDelta(t, -1.0, correlation.At(0, 2), 1e-12)
}

func TestCorrelateProperties(t *testing.T) {
	occurrence := randomOccurrence(20, 10, 42)
	embedding, err := ReduceDimensions(occurrence, 4, 5)
	assert.NoError(t, err)
	correlation, err := Correlate(embedding, 1)
	assert.NoError(t, err)
	nItems, _ := correlation.Dims()
	for i := 0; i < nItems; i++ {
		assert.Equal(t, 1.0, correlation.At(i, i))
		for j := 0; j < nItems; j++ {
			assert.Equal(t, correlation.At(i, j), correlation.At(j, i))
			assert.GreaterOrEqual(t, correlation.At(i, j), -1.0)
			assert.LessOrEqual(t, correlation.At(i, j), 1.0)
		}
	}
}

func TestCorrelateDeterministic(t *testing.T) {
	occurrence := randomOccurrence(20, 10, 42)
	embedding, err := ReduceDimensions(occurrence, 4, 5)
	assert.NoError(t, err)
	sequential, err := Correlate(embedding, 1)
	assert.NoError(t, err)
	// worker scheduling must not leak into the result
	parallelized, err := Correlate(embedding, 4)
	assert.NoError(t, err)
	assert.True(t, mat.Equal(sequential.Values(), parallelized.Values()))
}

func TestCorrelateZeroVariance(t *testing.T) {
	embedding := newEmbedding([]string{"x", "y", "z"}, [][]float64{
		{1, 2, 3, 4},
		{7, 7, 7, 7}, // constant embedding has no defined correlation
		{4, 3, 2, 1},
	})
	correlation, err := Correlate(embedding, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, correlation.At(1, 1))
	assert.Equal(t, 0.0, correlation.At(1, 0))
	assert.Equal(t, 0.0, correlation.At(1, 2))
	assert.Equal(t, 0.0, correlation.At(0, 1))
	assert.Equal(t, 0.0, correlation.At(2, 1))
}

func TestCorrelateEmpty(t *testing.T) {
	_, err := Correlate(dataset.NewTable(nil, nil), 1)
	assert.Error(t, err)
}
