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

	"github.com/juju/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoDB is the data storage based on MongoDB.
type MongoDB struct {
	client *mongo.Client
	dbName string
}

// Init collections and indices in MongoDB.
func (db *MongoDB) Init() error {
	ctx := context.Background()
	d := db.client.Database(db.dbName)
	// list collections
	var hasItems, hasDecks bool
	collections, err := d.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return errors.Trace(err)
	}
	for _, collectionName := range collections {
		switch collectionName {
		case "items":
			hasItems = true
		case "decks":
			hasDecks = true
		}
	}
	// create collections
	if !hasItems {
		if err = d.CreateCollection(ctx, "items"); err != nil {
			return errors.Trace(err)
		}
	}
	if !hasDecks {
		if err = d.CreateCollection(ctx, "decks"); err != nil {
			return errors.Trace(err)
		}
	}
	// create indices
	_, err = d.Collection("items").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"itemid": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Trace(err)
	}
	_, err = d.Collection("items").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.M{"name": 1},
	})
	if err != nil {
		return errors.Trace(err)
	}
	_, err = d.Collection("decks").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"deckid": 1},
		Options: options.Index().SetUnique(true),
	})
	return errors.Trace(err)
}

// Close connection to MongoDB.
func (db *MongoDB) Close() error {
	return db.client.Disconnect(context.Background())
}

// Ping MongoDB.
func (db *MongoDB) Ping(ctx context.Context) error {
	return db.client.Ping(ctx, readpref.Primary())
}

// InsertItem inserts an item into MongoDB.
func (db *MongoDB) InsertItem(ctx context.Context, item Item) error {
	c := db.client.Database(db.dbName).Collection("items")
	opt := options.Update()
	opt.SetUpsert(true)
	_, err := c.UpdateOne(ctx, bson.M{"itemid": bson.M{"$eq": item.ItemId}}, bson.M{"$set": item}, opt)
	return errors.Trace(err)
}

// BatchInsertItem inserts items into MongoDB.
func (db *MongoDB) BatchInsertItem(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	c := db.client.Database(db.dbName).Collection("items")
	var models []mongo.WriteModel
	for _, item := range items {
		models = append(models, mongo.NewUpdateOneModel().
			SetUpsert(true).
			SetFilter(bson.M{"itemid": bson.M{"$eq": item.ItemId}}).
			SetUpdate(bson.M{"$set": item}))
	}
	_, err := c.BulkWrite(ctx, models)
	return errors.Trace(err)
}

// GetItem returns an item from MongoDB.
func (db *MongoDB) GetItem(ctx context.Context, itemId string) (item Item, err error) {
	c := db.client.Database(db.dbName).Collection("items")
	r := c.FindOne(ctx, bson.M{"itemid": itemId})
	if r.Err() == mongo.ErrNoDocuments {
		err = errors.Annotate(ErrItemNotExist, itemId)
		return
	}
	err = r.Decode(&item)
	return
}

// GetItemByName returns the item with a display name from MongoDB.
func (db *MongoDB) GetItemByName(ctx context.Context, name string) (item Item, err error) {
	c := db.client.Database(db.dbName).Collection("items")
	r := c.FindOne(ctx, bson.M{"name": name})
	if r.Err() == mongo.ErrNoDocuments {
		err = errors.Annotate(ErrItemNotExist, name)
		return
	}
	err = r.Decode(&item)
	return
}

// GetItems returns items from MongoDB ordered by item id.
func (db *MongoDB) GetItems(ctx context.Context, cursor string, n int) (string, []Item, error) {
	c := db.client.Database(db.dbName).Collection("items")
	opt := options.Find()
	opt.SetLimit(int64(n))
	opt.SetSort(bson.D{{Key: "itemid", Value: 1}})
	r, err := c.Find(ctx, bson.M{"itemid": bson.M{"$gt": cursor}}, opt)
	if err != nil {
		return "", nil, errors.Trace(err)
	}
	items := make([]Item, 0)
	for r.Next(ctx) {
		var item Item
		if err = r.Decode(&item); err != nil {
			return "", nil, errors.Trace(err)
		}
		items = append(items, item)
	}
	if len(items) == n {
		cursor = items[n-1].ItemId
	} else {
		cursor = ""
	}
	return cursor, items, nil
}

// CountItems returns the number of items in MongoDB.
func (db *MongoDB) CountItems(ctx context.Context) (int, error) {
	c := db.client.Database(db.dbName).Collection("items")
	count, err := c.CountDocuments(ctx, bson.M{})
	return int(count), errors.Trace(err)
}

// BatchInsertDecks inserts decks into MongoDB.
func (db *MongoDB) BatchInsertDecks(ctx context.Context, decks []Deck) error {
	if len(decks) == 0 {
		return nil
	}
	c := db.client.Database(db.dbName).Collection("decks")
	var models []mongo.WriteModel
	for _, deck := range decks {
		models = append(models, mongo.NewUpdateOneModel().
			SetUpsert(true).
			SetFilter(bson.M{"deckid": bson.M{"$eq": deck.DeckId}}).
			SetUpdate(bson.M{"$set": deck}))
	}
	_, err := c.BulkWrite(ctx, models)
	return errors.Trace(err)
}

// GetDecks returns decks from MongoDB ordered by deck id.
func (db *MongoDB) GetDecks(ctx context.Context, cursor string, n int) (string, []Deck, error) {
	c := db.client.Database(db.dbName).Collection("decks")
	opt := options.Find()
	opt.SetLimit(int64(n))
	opt.SetSort(bson.D{{Key: "deckid", Value: 1}})
	r, err := c.Find(ctx, bson.M{"deckid": bson.M{"$gt": cursor}}, opt)
	if err != nil {
		return "", nil, errors.Trace(err)
	}
	decks := make([]Deck, 0)
	for r.Next(ctx) {
		var deck Deck
		if err = r.Decode(&deck); err != nil {
			return "", nil, errors.Trace(err)
		}
		decks = append(decks, deck)
	}
	if len(decks) == n {
		cursor = decks[n-1].DeckId
	} else {
		cursor = ""
	}
	return cursor, decks, nil
}

// CountDecks returns the number of decks in MongoDB.
func (db *MongoDB) CountDecks(ctx context.Context) (int, error) {
	c := db.client.Database(db.dbName).Collection("decks")
	count, err := c.CountDocuments(ctx, bson.M{})
	return int(count), errors.Trace(err)
}
