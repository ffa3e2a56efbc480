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
	"net/url"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/voodoo-io/voodoo/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrItemNotExist = errors.NotFoundf("item")

// Item stores metadata about a recommendable item (a card). Items are
// created during ingestion and read-only afterwards.
type Item struct {
	ItemId    string    `bson:"itemid" json:"itemId"`
	Name      string    `bson:"name" json:"name"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Labels    []string  `bson:"labels,omitempty" json:"labels,omitempty"`
}

// Deck is one historical observation: a multiset of item usage counts.
// Decks are immutable once ingested.
type Deck struct {
	DeckId     string             `bson:"deckid" json:"deckId"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
	ItemCounts map[string]float64 `bson:"itemcounts" json:"itemCounts"`
}

// Database is the interface for the document store.
type Database interface {
	Init() error
	Close() error
	Ping(ctx context.Context) error
	// items
	InsertItem(ctx context.Context, item Item) error
	BatchInsertItem(ctx context.Context, items []Item) error
	GetItem(ctx context.Context, itemId string) (Item, error)
	GetItemByName(ctx context.Context, name string) (Item, error)
	GetItems(ctx context.Context, cursor string, n int) (string, []Item, error)
	CountItems(ctx context.Context) (int, error)
	// decks
	BatchInsertDecks(ctx context.Context, decks []Deck) error
	GetDecks(ctx context.Context, cursor string, n int) (string, []Deck, error)
	CountDecks(ctx context.Context) (int, error)
}

// Open a connection to a document database.
func Open(path string) (Database, error) {
	if strings.HasPrefix(path, storage.MongoPrefix) || strings.HasPrefix(path, storage.MongoSrvPrefix) {
		// parse database name from URL
		parsed, err := url.Parse(path)
		if err != nil {
			return nil, errors.Trace(err)
		}
		dbName := strings.TrimPrefix(parsed.Path, "/")
		if dbName == "" {
			return nil, errors.Errorf("database name missing in URL: %s", path)
		}
		client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(path))
		if err != nil {
			return nil, errors.Trace(err)
		}
		return &MongoDB{client: client, dbName: dbName}, nil
	} else if strings.HasPrefix(path, storage.MemoryPrefix) {
		return NewMemoryDatabase(), nil
	}
	return nil, errors.Errorf("unknown database: %s", path)
}
