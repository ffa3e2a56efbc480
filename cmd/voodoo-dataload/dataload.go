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

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/voodoo-io/voodoo/storage/data"
)

// upsert batch size for both collections
const batchSize = 1000

// cardPrinting is one printing of a card in the cards JSON file. The file
// maps card names to arrays of printings; only the first printing is used.
type cardPrinting struct {
	Name  string   `json:"name"`
	Types []string `json:"types"`
}

// deckEntry is one line item of a deck board.
type deckEntry struct {
	Name  string  `json:"name"`
	Count float64 `json:"count"`
}

// deckDocument is one line of the decks JSON-lines file.
type deckDocument struct {
	Id        string      `json:"id"`
	Mainboard []deckEntry `json:"mainboard"`
	Sideboard []deckEntry `json:"sideboard"`
}

// itemResolver resolves case-folded card names to item ids, minting a UUID
// for names never seen before. Identifier assignment happens only here;
// every later stage treats item ids as opaque.
type itemResolver struct {
	dataClient data.Database
	known      map[string]string
	pending    []data.Item
	created    int
}

func newItemResolver(dataClient data.Database) *itemResolver {
	return &itemResolver{
		dataClient: dataClient,
		known:      make(map[string]string),
	}
}

// resolve returns the item id of a card name, reusing the stored id when the
// name is already known. New items are buffered until flush.
func (r *itemResolver) resolve(ctx context.Context, name string, labels []string) (string, error) {
	name = foldName(name)
	if itemId, exist := r.known[name]; exist {
		return itemId, nil
	}
	item, err := r.dataClient.GetItemByName(ctx, name)
	if err == nil {
		r.known[name] = item.ItemId
		return item.ItemId, nil
	} else if !errors.Is(err, data.ErrItemNotExist) {
		return "", errors.Trace(err)
	}
	item = data.Item{
		ItemId:    uuid.NewString(),
		Name:      name,
		Timestamp: time.Now(),
		Labels:    labels,
	}
	r.known[name] = item.ItemId
	r.pending = append(r.pending, item)
	r.created++
	if len(r.pending) >= batchSize {
		return item.ItemId, errors.Trace(r.flush(ctx))
	}
	return item.ItemId, nil
}

func (r *itemResolver) flush(ctx context.Context) error {
	if len(r.pending) == 0 {
		return nil
	}
	if err := r.dataClient.BatchInsertItem(ctx, r.pending); err != nil {
		return errors.Trace(err)
	}
	r.pending = r.pending[:0]
	return nil
}

func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// loadCards ingests the cards JSON file: a map from card name to an array of
// printings, first printing wins. Returns the number of new items.
func loadCards(ctx context.Context, dataClient data.Database, reader io.Reader) (int, error) {
	var cards map[string][]cardPrinting
	if err := json.NewDecoder(reader).Decode(&cards); err != nil {
		return 0, errors.Trace(err)
	}
	// sort names so reruns ingest in the same order
	names := make([]string, 0, len(cards))
	for name := range cards {
		names = append(names, name)
	}
	sort.Strings(names)

	resolver := newItemResolver(dataClient)
	for _, name := range names {
		printings := cards[name]
		var labels []string
		if len(printings) > 0 {
			labels = printings[0].Types
		}
		if _, err := resolver.resolve(ctx, name, labels); err != nil {
			return resolver.created, errors.Annotatef(err, "card %s", name)
		}
	}
	return resolver.created, errors.Trace(resolver.flush(ctx))
}

// loadDecks ingests the decks JSON-lines file. Card names are case-folded
// and duplicate entries summed across the mainboard and the sideboard.
// Cards referenced by a deck but missing from the store are created with a
// fresh id and an empty label set. Returns the number of decks.
func loadDecks(ctx context.Context, dataClient data.Database, reader io.Reader) (int, error) {
	resolver := newItemResolver(dataClient)
	decks := make([]data.Deck, 0, batchSize)
	flush := func() error {
		if len(decks) == 0 {
			return nil
		}
		if err := dataClient.BatchInsertDecks(ctx, decks); err != nil {
			return errors.Trace(err)
		}
		decks = decks[:0]
		return nil
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	total := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var document deckDocument
		if err := json.Unmarshal([]byte(line), &document); err != nil {
			return total, errors.Annotatef(err, "deck at line %d", total+1)
		}
		deck := data.Deck{
			DeckId:     document.Id,
			Timestamp:  time.Now(),
			ItemCounts: make(map[string]float64),
		}
		if deck.DeckId == "" {
			deck.DeckId = uuid.NewString()
		}
		for _, entry := range append(document.Mainboard, document.Sideboard...) {
			itemId, err := resolver.resolve(ctx, entry.Name, nil)
			if err != nil {
				return total, errors.Annotatef(err, "deck %s", deck.DeckId)
			}
			deck.ItemCounts[itemId] += entry.Count
		}
		decks = append(decks, deck)
		total++
		if len(decks) >= batchSize {
			if err := flush(); err != nil {
				return total, errors.Trace(err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return total, errors.Trace(err)
	}
	if err := resolver.flush(ctx); err != nil {
		return total, errors.Trace(err)
	}
	return total, errors.Trace(flush())
}
