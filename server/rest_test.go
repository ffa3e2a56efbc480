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

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/steinfletcher/apitest"
	"github.com/stretchr/testify/suite"
	"github.com/voodoo-io/voodoo/config"
	"github.com/voodoo-io/voodoo/storage"
	"github.com/voodoo-io/voodoo/storage/cache"
	"github.com/voodoo-io/voodoo/storage/data"
)

type ServerTestSuite struct {
	suite.Suite
	*RestServer
	handler *restful.Container
}

func (s *ServerTestSuite) SetupTest() {
	redis := miniredis.RunT(s.T())
	cacheClient, err := cache.Open(storage.RedisPrefix + redis.Addr())
	s.NoError(err)
	s.RestServer = NewRestServer(config.GetDefaultConfig(), data.NewMemoryDatabase(), cacheClient)
	s.CreateWebService()
	s.handler = restful.NewContainer()
	s.handler.Add(s.WebService)
}

func (s *ServerTestSuite) TearDownTest() {
	s.NoError(s.CacheClient.Close())
	s.NoError(s.DataClient.Close())
}

func (s *ServerTestSuite) marshal(v interface{}) string {
	blob, err := json.Marshal(v)
	s.NoError(err)
	return string(blob)
}

func (s *ServerTestSuite) setNeighbors(itemId string, neighbors []cache.Neighbor) {
	blob, err := cache.EncodeNeighbors(neighbors)
	s.NoError(err)
	s.NoError(s.CacheClient.Set(context.Background(), cache.Bytes(itemId, blob)))
}

func (s *ServerTestSuite) insertItems(items ...data.Item) {
	s.NoError(s.DataClient.BatchInsertItem(context.Background(), items))
}

func (s *ServerTestSuite) TestRecommendations() {
	s.insertItems(
		data.Item{ItemId: "x", Name: "lightning bolt"},
		data.Item{ItemId: "a", Name: "counterspell"},
		data.Item{ItemId: "b", Name: "dark ritual"},
	)
	s.setNeighbors("x", []cache.Neighbor{
		{ItemId: "x", Correlation: 1.0},
		{ItemId: "a", Correlation: 0.9},
		{ItemId: "b", Correlation: 0.5},
	})
	apitest.New().
		Handler(s.handler).
		Get("/recommendations").
		Query("item_ids", "x").
		Expect(s.T()).
		Status(http.StatusOK).
		Body(s.marshal(RecommendationList{Items: []RecommendedItem{
			{ItemId: "a", Name: "counterspell"},
			{ItemId: "b", Name: "dark ritual"},
		}})).
		End()
}

func (s *ServerTestSuite) TestRecommendationsMergeLists() {
	s.insertItems(
		data.Item{ItemId: "a", Name: "counterspell"},
		data.Item{ItemId: "b", Name: "dark ritual"},
		data.Item{ItemId: "c", Name: "giant growth"},
	)
	s.setNeighbors("x", []cache.Neighbor{
		{ItemId: "x", Correlation: 1.0},
		{ItemId: "a", Correlation: 0.8},
		{ItemId: "b", Correlation: 0.2},
	})
	s.setNeighbors("y", []cache.Neighbor{
		{ItemId: "y", Correlation: 1.0},
		{ItemId: "a", Correlation: 0.4},
		{ItemId: "c", Correlation: 0.3},
	})
	apitest.New().
		Handler(s.handler).
		Get("/recommendations").
		Query("item_ids", "x,y").
		Expect(s.T()).
		Status(http.StatusOK).
		Body(s.marshal(RecommendationList{Items: []RecommendedItem{
			{ItemId: "a", Name: "counterspell"},
			{ItemId: "c", Name: "giant growth"},
			{ItemId: "b", Name: "dark ritual"},
		}})).
		End()
}

func (s *ServerTestSuite) TestRecommendationsTopN() {
	s.insertItems(
		data.Item{ItemId: "a", Name: "counterspell"},
		data.Item{ItemId: "b", Name: "dark ritual"},
	)
	s.setNeighbors("x", []cache.Neighbor{
		{ItemId: "x", Correlation: 1.0},
		{ItemId: "a", Correlation: 0.9},
		{ItemId: "b", Correlation: 0.5},
	})
	apitest.New().
		Handler(s.handler).
		Get("/recommendations").
		Query("item_ids", "x").
		Query("n", "1").
		Expect(s.T()).
		Status(http.StatusOK).
		Body(s.marshal(RecommendationList{Items: []RecommendedItem{
			{ItemId: "a", Name: "counterspell"},
		}})).
		End()
}

func (s *ServerTestSuite) TestRecommendationsUnknownSeeds() {
	s.insertItems(data.Item{ItemId: "a", Name: "counterspell"})
	s.setNeighbors("x", []cache.Neighbor{
		{ItemId: "x", Correlation: 1.0},
		{ItemId: "a", Correlation: 0.9},
	})
	// one seed without a neighbor list fails the whole request
	apitest.New().
		Handler(s.handler).
		Get("/recommendations").
		Query("item_ids", "x,missing-id").
		Expect(s.T()).
		Status(http.StatusBadRequest).
		Body(s.marshal(ErrorResponse{
			Error:          "unknown items: missing-id",
			InvalidItemIds: []string{"missing-id"},
		})).
		End()
	// every missing seed is named
	apitest.New().
		Handler(s.handler).
		Get("/recommendations").
		Query("item_ids", "missing-id,other-id").
		Expect(s.T()).
		Status(http.StatusBadRequest).
		Body(s.marshal(ErrorResponse{
			Error:          "unknown items: missing-id,other-id",
			InvalidItemIds: []string{"missing-id", "other-id"},
		})).
		End()
}

func (s *ServerTestSuite) TestRecommendationsUnknownName() {
	s.insertItems(data.Item{ItemId: "b", Name: "dark ritual"})
	s.setNeighbors("x", []cache.Neighbor{
		{ItemId: "x", Correlation: 1.0},
		{ItemId: "a", Correlation: 0.9},
		{ItemId: "b", Correlation: 0.5},
	})
	// ids without documents keep their place with the sentinel name and are
	// listed in unknown_items
	apitest.New().
		Handler(s.handler).
		Get("/recommendations").
		Query("item_ids", "x").
		Expect(s.T()).
		Status(http.StatusOK).
		Body(s.marshal(RecommendationList{
			Items: []RecommendedItem{
				{ItemId: "a", Name: UnknownItemName},
				{ItemId: "b", Name: "dark ritual"},
			},
			UnknownItems: []string{"a"},
		})).
		End()
}

func (s *ServerTestSuite) TestRecommendationsBadRequest() {
	apitest.New().
		Handler(s.handler).
		Get("/recommendations").
		Expect(s.T()).
		Status(http.StatusBadRequest).
		End()
	apitest.New().
		Handler(s.handler).
		Get("/recommendations").
		Query("item_ids", "x").
		Query("n", "zero").
		Expect(s.T()).
		Status(http.StatusBadRequest).
		End()
}

func (s *ServerTestSuite) TestGetItem() {
	s.insertItems(data.Item{ItemId: "x", Name: "lightning bolt"})
	apitest.New().
		Handler(s.handler).
		Get("/items/x").
		Expect(s.T()).
		Status(http.StatusOK).
		Body(s.marshal(data.Item{ItemId: "x", Name: "lightning bolt"})).
		End()
	apitest.New().
		Handler(s.handler).
		Get("/items/ghost").
		Expect(s.T()).
		Status(http.StatusNotFound).
		End()
}

func (s *ServerTestSuite) TestHealth() {
	apitest.New().
		Handler(s.handler).
		Get("/health").
		Expect(s.T()).
		Status(http.StatusOK).
		Body(s.marshal(HealthStatus{
			Ready:               true,
			DataStoreConnected:  true,
			CacheStoreConnected: true,
		})).
		End()
}

func TestServer(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}
