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
	"strings"

	"github.com/juju/errors"
	"github.com/redis/go-redis/v9"
	"github.com/voodoo-io/voodoo/storage"
)

var ErrObjectNotExist = errors.NotFoundf("object")

// Value is a pair of key and opaque bytes to insert.
type Value struct {
	name  string
	value []byte
}

// Bytes creates a key-value pair.
func Bytes(name string, value []byte) Value {
	return Value{name: name, value: value}
}

// ReturnValue is the returned value from the cache.
type ReturnValue struct {
	value []byte
	err   error
}

// Bytes returns the opaque bytes of the returned value.
func (r *ReturnValue) Bytes() ([]byte, error) {
	return r.value, r.err
}

// Neighbors decodes the returned value as a neighbor list.
func (r *ReturnValue) Neighbors() ([]Neighbor, error) {
	if r.err != nil {
		return nil, r.err
	}
	return DecodeNeighbors(r.value)
}

// Database is the interface for the key-value cache. Values are opaque byte
// blobs; neighbor list encoding lives in this package as well.
type Database interface {
	Close() error
	Ping(ctx context.Context) error
	Set(ctx context.Context, values ...Value) error
	Get(ctx context.Context, key string) *ReturnValue
	Exists(ctx context.Context, keys ...string) ([]int, error)
	Delete(ctx context.Context, key string) error
}

// Open a connection to a cache database.
func Open(path string) (Database, error) {
	if strings.HasPrefix(path, storage.RedisPrefix) {
		opt, err := redis.ParseURL(path)
		if err != nil {
			return nil, errors.Trace(err)
		}
		database := new(Redis)
		database.client = redis.NewClient(opt)
		return database, nil
	}
	return nil, errors.Errorf("unknown database: %s", path)
}
