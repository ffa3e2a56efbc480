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

package data

import (
	"context"
	"sort"
	"sync"

	"github.com/juju/errors"
	"github.com/samber/lo"
)

// MemoryDatabase is an in-memory document store for tests and local runs.
type MemoryDatabase struct {
	mu    sync.RWMutex
	items map[string]Item
	decks map[string]Deck
}

// NewMemoryDatabase creates an empty in-memory document store.
func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{
		items: make(map[string]Item),
		decks: make(map[string]Deck),
	}
}

func (db *MemoryDatabase) Init() error {
	return nil
}

func (db *MemoryDatabase) Close() error {
	return nil
}

func (db *MemoryDatabase) Ping(_ context.Context) error {
	return nil
}

func (db *MemoryDatabase) InsertItem(_ context.Context, item Item) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.items[item.ItemId] = item
	return nil
}

func (db *MemoryDatabase) BatchInsertItem(ctx context.Context, items []Item) error {
	for _, item := range items {
		if err := db.InsertItem(ctx, item); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (db *MemoryDatabase) GetItem(_ context.Context, itemId string) (Item, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if item, exist := db.items[itemId]; exist {
		return item, nil
	}
	return Item{}, errors.Annotate(ErrItemNotExist, itemId)
}

func (db *MemoryDatabase) GetItemByName(_ context.Context, name string) (Item, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	for _, item := range db.items {
		if item.Name == name {
			return item, nil
		}
	}
	return Item{}, errors.Annotate(ErrItemNotExist, name)
}

func (db *MemoryDatabase) GetItems(_ context.Context, cursor string, n int) (string, []Item, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	ids := lo.Keys(db.items)
	sort.Strings(ids)
	items := make([]Item, 0)
	for _, id := range ids {
		if id > cursor && len(items) < n {
			items = append(items, db.items[id])
		}
	}
	if len(items) == n {
		return items[n-1].ItemId, items, nil
	}
	return "", items, nil
}

func (db *MemoryDatabase) CountItems(_ context.Context) (int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.items), nil
}

func (db *MemoryDatabase) BatchInsertDecks(_ context.Context, decks []Deck) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, deck := range decks {
		db.decks[deck.DeckId] = deck
	}
	return nil
}

func (db *MemoryDatabase) GetDecks(_ context.Context, cursor string, n int) (string, []Deck, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	ids := lo.Keys(db.decks)
	sort.Strings(ids)
	decks := make([]Deck, 0)
	for _, id := range ids {
		if id > cursor && len(decks) < n {
			decks = append(decks, db.decks[id])
		}
	}
	if len(decks) == n {
		return decks[n-1].DeckId, decks, nil
	}
	return "", decks, nil
}

func (db *MemoryDatabase) CountDecks(_ context.Context) (int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.decks), nil
}
