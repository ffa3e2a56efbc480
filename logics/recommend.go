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

package logics

import (
	"context"
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/voodoo-io/voodoo/storage/cache"
)

// DefaultN is the number of recommendations returned when the caller does
// not ask for a specific count.
const DefaultN = 20

// Recommendation is a candidate item with its aggregated correlation score.
type Recommendation struct {
	ItemId string
	Score  float64
}

// UnknownItemsError reports every seed item without a neighbor list in the
// cache. A single missing seed fails the whole request; partial results are
// never returned.
type UnknownItemsError struct {
	ItemIds []string
}

func (e *UnknownItemsError) Error() string {
	return fmt.Sprintf("unknown items: %s", strings.Join(e.ItemIds, ","))
}

// Recommend merges the cached neighbor lists of the seed items into a single
// ranking. A candidate's score is the mean of its correlations over the
// neighbor lists that contain it, so an item missing from some lists is not
// dragged down by them. Each seed's own entry is dropped from its list
// before merging. Candidates are ranked by descending score, ties broken by
// ascending item id, and truncated to n.
//
// Any seed id absent from the cache fails the request with
// *UnknownItemsError naming every missing id, sorted ascending.
func Recommend(ctx context.Context, cacheClient cache.Database, seedIds []string, n int) ([]Recommendation, error) {
	if len(seedIds) == 0 {
		return nil, errors.New("no seed items")
	}
	if n <= 0 {
		n = DefaultN
	}
	seeds := mapset.NewSet(seedIds...)

	sums := make(map[string]float64)
	counts := make(map[string]int)
	unknown := make([]string, 0)
	for seedId := range seeds.Iter() {
		neighbors, err := cacheClient.Get(ctx, seedId).Neighbors()
		if errors.Is(err, cache.ErrObjectNotExist) {
			unknown = append(unknown, seedId)
			continue
		} else if err != nil {
			return nil, errors.Trace(err)
		}
		for _, neighbor := range neighbors {
			if neighbor.ItemId == seedId {
				continue
			}
			sums[neighbor.ItemId] += neighbor.Correlation
			counts[neighbor.ItemId]++
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &UnknownItemsError{ItemIds: unknown}
	}

	recommendations := make([]Recommendation, 0, len(sums))
	for itemId, sum := range sums {
		recommendations = append(recommendations, Recommendation{
			ItemId: itemId,
			Score:  sum / float64(counts[itemId]),
		})
	}
	sort.Slice(recommendations, func(i, j int) bool {
		if recommendations[i].Score != recommendations[j].Score {
			return recommendations[i].Score > recommendations[j].Score
		}
		return recommendations[i].ItemId < recommendations[j].ItemId
	})
	if len(recommendations) > n {
		recommendations = recommendations[:n]
	}
	return recommendations, nil
}
