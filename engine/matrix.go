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
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/voodoo-io/voodoo/dataset"
	"github.com/voodoo-io/voodoo/storage/data"
)

// BuildOccurrenceTable turns decks into a dense deck-by-item count table.
// The column order is exactly the order of the supplied universe, so repeated
// runs against the same universe produce identical column layouts. A deck
// referencing an item outside the universe fails the whole batch: silently
// zero-filling an unknown item would corrupt every downstream artifact.
func BuildOccurrenceTable(universe []string, decks []data.Deck) (*dataset.Table, error) {
	if len(universe) == 0 {
		return nil, errors.New("item universe is empty")
	}
	if len(decks) == 0 {
		return nil, errors.New("no decks to process")
	}
	deckIds := lo.Map(decks, func(deck data.Deck, _ int) string {
		return deck.DeckId
	})
	if len(lo.Uniq(deckIds)) != len(deckIds) {
		return nil, errors.New("duplicate deck ids")
	}
	table := dataset.NewTable(deckIds, universe)
	if len(table.ColumnLabels()) != len(universe) {
		return nil, errors.New("duplicate item ids in universe")
	}
	for i, deck := range decks {
		for itemId, count := range deck.ItemCounts {
			j := table.ColumnId(itemId)
			if j < 0 {
				return nil, errors.Errorf("deck %s references unknown item %s", deck.DeckId, itemId)
			}
			// entries for the same item are summed, never duplicated
			table.Set(i, j, table.At(i, j)+count)
		}
	}
	return table, nil
}
