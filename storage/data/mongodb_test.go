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
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

var mongoUri string

func init() {
	mongoUri = os.Getenv("MONGO_URI")
}

func newTestMongoDatabase(t *testing.T) Database {
	if mongoUri == "" {
		t.Skip("MONGO_URI is not set")
	}
	db, err := Open(mongoUri)
	assert.NoError(t, err)
	mongoDB, ok := db.(*MongoDB)
	assert.True(t, ok)
	// start from empty collections
	err = mongoDB.client.Database(mongoDB.dbName).Drop(context.Background())
	assert.NoError(t, err)
	err = db.Init()
	assert.NoError(t, err)
	return db
}

func TestMongo_Items(t *testing.T) {
	db := newTestMongoDatabase(t)
	defer db.Close()
	testItems(t, db)
}

func TestMongo_Decks(t *testing.T) {
	db := newTestMongoDatabase(t)
	defer db.Close()
	testDecks(t, db)
}

func TestMongo_Ping(t *testing.T) {
	db := newTestMongoDatabase(t)
	defer db.Close()
	assert.NoError(t, db.Ping(context.Background()))
}
