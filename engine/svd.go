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
	"fmt"
	"math/rand"

	"github.com/juju/errors"
	"github.com/voodoo-io/voodoo/base/log"
	"github.com/voodoo-io/voodoo/dataset"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// oversampling for the randomized range finder
const svdOversamples = 10

// ReduceDimensions computes a rank-nFactors latent embedding of every item
// from the deck-by-item occurrence table. The table is transposed so items
// are the samples and decks the features, then reduced with a randomized
// truncated SVD (Halko et al.). The embedding of each item is U*Sigma, one
// row per item, in the same order as the occurrence table's columns.
//
// All randomness comes from randomState, so reruns on identical input are
// reproducible bit for bit.
func ReduceDimensions(occurrence *dataset.Table, nFactors int, randomState int64) (*dataset.Table, error) {
	items := occurrence.Transpose()
	nItems, nDecks := items.Dims()
	// clamp the number of factors to the achievable rank
	k := nFactors
	if k > nItems-1 {
		log.Logger().Warn("clamp number of factors",
			zap.Int("n_factors", nFactors), zap.Int("n_items", nItems))
		k = nItems - 1
	}
	if k > nDecks {
		log.Logger().Warn("clamp number of factors",
			zap.Int("n_factors", nFactors), zap.Int("n_decks", nDecks))
		k = nDecks
	}
	if k <= 0 {
		return nil, errors.Errorf("not enough items (%d) or decks (%d) for dimensionality reduction", nItems, nDecks)
	}

	a := items.Values()
	l := k + svdOversamples
	if l > nItems {
		l = nItems
	}
	if l > nDecks {
		l = nDecks
	}

	// range finder: project onto l gaussian directions and orthonormalize
	rng := rand.New(rand.NewSource(randomState))
	omega := mat.NewDense(nDecks, l, nil)
	for i := 0; i < nDecks; i++ {
		for j := 0; j < l; j++ {
			omega.Set(i, j, rng.NormFloat64())
		}
	}
	var y mat.Dense
	y.Mul(a, omega)
	var rangeSVD mat.SVD
	if !rangeSVD.Factorize(&y, mat.SVDThinU) {
		return nil, errors.New("SVD of projected matrix failed")
	}
	var q mat.Dense
	rangeSVD.UTo(&q)

	// project the input into the subspace and decompose exactly
	var b mat.Dense
	b.Mul(q.T(), a)
	var svd mat.SVD
	if !svd.Factorize(&b, mat.SVDThinU) {
		return nil, errors.New("SVD of reduced matrix failed")
	}
	var ub mat.Dense
	svd.UTo(&ub)
	sigma := svd.Values(nil)

	var u mat.Dense
	u.Mul(&q, &ub)

	// embedding = U * Sigma, truncated to k factors
	factorLabels := make([]string, k)
	for j := range factorLabels {
		factorLabels[j] = fmt.Sprintf("f%d", j)
	}
	embedding := dataset.NewTable(items.RowLabels(), factorLabels)
	for i := 0; i < nItems; i++ {
		for j := 0; j < k; j++ {
			embedding.Set(i, j, u.At(i, j)*sigma[j])
		}
	}
	return embedding, nil
}
