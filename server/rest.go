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
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/jellydator/ttlcache/v3"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/voodoo-io/voodoo/base/log"
	"github.com/voodoo-io/voodoo/config"
	"github.com/voodoo-io/voodoo/logics"
	"github.com/voodoo-io/voodoo/storage/cache"
	"github.com/voodoo-io/voodoo/storage/data"
	"go.uber.org/zap"
)

// UnknownItemName is the display name for items that exist in the cached
// neighbor lists but have no document in the data store.
const UnknownItemName = "UNKNOWN_ITEM_NAME"

// RestServer implements the REST-ful recommendation API.
type RestServer struct {
	CacheClient cache.Database
	DataClient  data.Database
	Config      *config.Config
	HttpHost    string
	HttpPort    int
	WebService  *restful.WebService

	itemNames *ttlcache.Cache[string, string]
}

// NewRestServer creates a REST server over the given stores.
func NewRestServer(cfg *config.Config, dataClient data.Database, cacheClient cache.Database) *RestServer {
	s := &RestServer{
		CacheClient: cacheClient,
		DataClient:  dataClient,
		Config:      cfg,
		HttpHost:    cfg.Server.HttpHost,
		HttpPort:    cfg.Server.HttpPort,
		WebService:  new(restful.WebService),
		itemNames:   ttlcache.New(ttlcache.WithTTL[string, string](cfg.Server.ItemCacheExpire)),
	}
	go s.itemNames.Start()
	return s
}

// StartHttpServer starts the REST-ful API server.
func (s *RestServer) StartHttpServer() {
	// register restful APIs
	s.CreateWebService()
	restful.DefaultContainer.Add(s.WebService)
	// register swagger
	specConfig := restfulspec.Config{
		WebServices: restful.RegisteredWebServices(),
		APIPath:     "/apidocs.json",
	}
	restful.DefaultContainer.Add(restfulspec.NewOpenAPIService(specConfig))
	// register prometheus
	http.Handle("/metrics", promhttp.Handler())

	log.Logger().Info("start http server",
		zap.String("url", fmt.Sprintf("http://%s:%d", s.HttpHost, s.HttpPort)))
	log.Logger().Fatal("failed to start http server",
		zap.Error(http.ListenAndServe(fmt.Sprintf("%s:%d", s.HttpHost, s.HttpPort), nil)))
}

func LogFilter(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	chain.ProcessFilter(req, resp)
	log.ResponseLogger(resp).Info(fmt.Sprintf("%s %s", req.Request.Method, req.Request.URL),
		zap.Int("status_code", resp.StatusCode()))
}

// CreateWebService creates web service.
func (s *RestServer) CreateWebService() {
	ws := s.WebService
	ws.Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	ws.Path("/")
	ws.Filter(LogFilter)

	// Get recommendations
	ws.Route(ws.GET("/recommendations").To(s.getRecommendations).
		Doc("Get recommendations for a set of seed items.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommendation"}).
		Param(ws.QueryParameter("item_ids", "comma-separated seed item ids").DataType("string")).
		Param(ws.QueryParameter("n", "number of returned recommendations").DataType("integer")).
		Writes(RecommendationList{}))
	// Get an item
	ws.Route(ws.GET("/items/{item-id}").To(s.getItem).
		Doc("Get an item.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"item"}).
		Param(ws.PathParameter("item-id", "identifier of the item").DataType("string")).
		Writes(data.Item{}))
	// Health check
	ws.Route(ws.GET("/health").To(s.getHealth).
		Doc("Probe the connections to the data store and the cache store.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
		Writes(HealthStatus{}))
}

// RecommendedItem is a ranked item with its resolved display name.
type RecommendedItem struct {
	ItemId string `json:"itemId"`
	Name   string `json:"name"`
}

// RecommendationList is the response of the recommendations endpoint.
// UnknownItems lists recommended ids whose display name could not be
// resolved from the document store.
type RecommendationList struct {
	Items        []RecommendedItem `json:"items"`
	UnknownItems []string          `json:"unknown_items,omitempty"`
}

// HealthStatus is the response of the health endpoint.
type HealthStatus struct {
	Ready               bool   `json:"ready"`
	DataStoreError      string `json:"data_store_error,omitempty"`
	CacheStoreError     string `json:"cache_store_error,omitempty"`
	DataStoreConnected  bool   `json:"data_store_connected"`
	CacheStoreConnected bool   `json:"cache_store_connected"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error          string   `json:"error"`
	InvalidItemIds []string `json:"invalid_item_ids,omitempty"`
}

func (s *RestServer) lookupContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.Config.Server.LookupTimeout)
}

// parseSeedItemIds collects the item_ids query parameter, which may be
// repeated and may hold comma-separated lists.
func parseSeedItemIds(request *restful.Request) []string {
	seeds := make([]string, 0)
	for _, raw := range request.Request.URL.Query()["item_ids"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				seeds = append(seeds, id)
			}
		}
	}
	return seeds
}

func (s *RestServer) getRecommendations(request *restful.Request, response *restful.Response) {
	start := time.Now()
	seeds := parseSeedItemIds(request)
	if len(seeds) == 0 {
		BadRequest(response, errors.New("item_ids is required"))
		return
	}
	n := s.Config.Server.DefaultN
	if raw := request.QueryParameter("n"); raw != "" {
		var err error
		if n, err = strconv.Atoi(raw); err != nil || n <= 0 {
			BadRequest(response, errors.Errorf("invalid n: %s", raw))
			return
		}
	}

	ctx, cancel := s.lookupContext()
	defer cancel()
	recommendations, err := logics.Recommend(ctx, s.CacheClient, seeds, n)
	if err != nil {
		var unknownErr *logics.UnknownItemsError
		if errors.As(err, &unknownErr) {
			InvalidItems(response, unknownErr)
			return
		}
		InternalServerError(response, err)
		return
	}

	items := make([]RecommendedItem, len(recommendations))
	var unknownItems []string
	for i, recommendation := range recommendations {
		name, err := s.itemName(ctx, recommendation.ItemId)
		if err != nil {
			InternalServerError(response, err)
			return
		}
		if name == UnknownItemName {
			unknownItems = append(unknownItems, recommendation.ItemId)
		}
		items[i] = RecommendedItem{ItemId: recommendation.ItemId, Name: name}
	}
	GetRecommendationsSeconds.Observe(time.Since(start).Seconds())
	Ok(response, RecommendationList{Items: items, UnknownItems: unknownItems})
}

// itemName resolves an item's display name through the local TTL cache.
// Items absent from the data store resolve to UnknownItemName; the sentinel
// is cached too, so a hot list of stale ids does not hammer the store.
func (s *RestServer) itemName(ctx context.Context, itemId string) (string, error) {
	if entry := s.itemNames.Get(itemId); entry != nil {
		ItemNameCacheHitsTotal.Inc()
		return entry.Value(), nil
	}
	ItemNameCacheMissesTotal.Inc()
	item, err := s.DataClient.GetItem(ctx, itemId)
	if errors.Is(err, data.ErrItemNotExist) {
		UnknownItemNamesTotal.Inc()
		s.itemNames.Set(itemId, UnknownItemName, ttlcache.DefaultTTL)
		return UnknownItemName, nil
	} else if err != nil {
		return "", errors.Trace(err)
	}
	s.itemNames.Set(itemId, item.Name, ttlcache.DefaultTTL)
	return item.Name, nil
}

func (s *RestServer) getItem(request *restful.Request, response *restful.Response) {
	itemId := request.PathParameter("item-id")
	ctx, cancel := s.lookupContext()
	defer cancel()
	item, err := s.DataClient.GetItem(ctx, itemId)
	if errors.Is(err, data.ErrItemNotExist) {
		PageNotFound(response, errors.NotFoundf("item %s", itemId))
		return
	} else if err != nil {
		InternalServerError(response, err)
		return
	}
	Ok(response, item)
}

func (s *RestServer) getHealth(_ *restful.Request, response *restful.Response) {
	ctx, cancel := s.lookupContext()
	defer cancel()
	status := HealthStatus{DataStoreConnected: true, CacheStoreConnected: true}
	if err := s.DataClient.Ping(ctx); err != nil {
		status.DataStoreConnected = false
		status.DataStoreError = err.Error()
	}
	if err := s.CacheClient.Ping(ctx); err != nil {
		status.CacheStoreConnected = false
		status.CacheStoreError = err.Error()
	}
	status.Ready = status.DataStoreConnected && status.CacheStoreConnected
	Ok(response, status)
}

// BadRequest returns a bad request error.
func BadRequest(response *restful.Response, err error) {
	log.ResponseLogger(response).Error("bad request", zap.Error(err))
	writeError(response, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}

// InvalidItems returns a bad request error listing every unknown seed id.
func InvalidItems(response *restful.Response, err *logics.UnknownItemsError) {
	log.ResponseLogger(response).Error("bad request", zap.Error(err))
	writeError(response, http.StatusBadRequest, ErrorResponse{
		Error:          err.Error(),
		InvalidItemIds: err.ItemIds,
	})
}

// InternalServerError returns an internal server error.
func InternalServerError(response *restful.Response, err error) {
	log.ResponseLogger(response).Error("internal server error", zap.Error(err))
	writeError(response, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}

// PageNotFound returns a not found error.
func PageNotFound(response *restful.Response, err error) {
	writeError(response, http.StatusNotFound, ErrorResponse{Error: err.Error()})
}

func writeError(response *restful.Response, status int, body ErrorResponse) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	if err := response.WriteHeaderAndJson(status, body, restful.MIME_JSON); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
}

// Ok sends the content as JSON to the client.
func Ok(response *restful.Response, content interface{}) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	if err := response.WriteAsJson(content); err != nil {
		log.ResponseLogger(response).Error("failed to write json", zap.Error(err))
	}
}
