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

package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/voodoo-io/voodoo/storage"
)

type mockRedis struct {
	Database
	server *miniredis.Miniredis
}

func newMockRedis(t *testing.T) *mockRedis {
	var err error
	db := new(mockRedis)
	db.server, err = miniredis.Run()
	assert.NoError(t, err)
	db.Database, err = Open(storage.RedisPrefix + db.server.Addr())
	assert.NoError(t, err)
	return db
}

func (db *mockRedis) Close(t *testing.T) {
	err := db.Database.Close()
	assert.NoError(t, err)
	db.server.Close()
}

func TestRedis_SetGet(t *testing.T) {
	db := newMockRedis(t)
	defer db.Close(t)
	ctx := context.Background()

	err := db.Set(ctx, Bytes("a", []byte("abc")), Bytes("b", []byte("def")))
	assert.NoError(t, err)
	value, err := db.Get(ctx, "a").Bytes()
	assert.NoError(t, err)
	assert.Equal(t, []byte("abc"), value)
	value, err = db.Get(ctx, "b").Bytes()
	assert.NoError(t, err)
	assert.Equal(t, []byte("def"), value)

	// overwrite is unconditional
	err = db.Set(ctx, Bytes("a", []byte("xyz")))
	assert.NoError(t, err)
	value, err = db.Get(ctx, "a").Bytes()
	assert.NoError(t, err)
	assert.Equal(t, []byte("xyz"), value)

	// missing key
	_, err = db.Get(ctx, "missing").Bytes()
	assert.True(t, errors.Is(err, ErrObjectNotExist))
}

func TestRedis_Exists(t *testing.T) {
	db := newMockRedis(t)
	defer db.Close(t)
	ctx := context.Background()

	err := db.Set(ctx, Bytes("a", []byte("abc")))
	assert.NoError(t, err)
	existences, err := db.Exists(ctx, "a", "b")
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 0}, existences)
}

func TestRedis_Delete(t *testing.T) {
	db := newMockRedis(t)
	defer db.Close(t)
	ctx := context.Background()

	err := db.Set(ctx, Bytes("a", []byte("abc")))
	assert.NoError(t, err)
	err = db.Delete(ctx, "a")
	assert.NoError(t, err)
	_, err = db.Get(ctx, "a").Bytes()
	assert.True(t, errors.Is(err, ErrObjectNotExist))
}

func TestRedis_Neighbors(t *testing.T) {
	db := newMockRedis(t)
	defer db.Close(t)
	ctx := context.Background()

	neighbors := []Neighbor{
		{ItemId: "x", Correlation: 1.0},
		{ItemId: "y", Correlation: 0.5},
		{ItemId: "z", Correlation: -0.25},
	}
	blob, err := EncodeNeighbors(neighbors)
	assert.NoError(t, err)
	err = db.Set(ctx, Bytes("x", blob))
	assert.NoError(t, err)
	decoded, err := db.Get(ctx, "x").Neighbors()
	assert.NoError(t, err)
	assert.Equal(t, neighbors, decoded)
}

func TestOpenUnknownScheme(t *testing.T) {
	_, err := Open("unknown://localhost:1234")
	assert.Error(t, err)
}
