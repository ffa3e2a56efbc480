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
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/juju/errors"
	"github.com/voodoo-io/voodoo/base/log"
	"github.com/voodoo-io/voodoo/config"
	"github.com/voodoo-io/voodoo/dataset"
	"github.com/voodoo-io/voodoo/storage/cache"
	"github.com/voodoo-io/voodoo/storage/data"
	"go.uber.org/zap"
)

const (
	CrossTabFile          = "decks_cross_tab.bin"
	CorrelationMatrixFile = "decks_correlation_matrix.bin"

	loadPageSize = 1000
)

// Batch runs the offline pipeline: occurrence matrix, latent embedding,
// correlation matrix, cache population. Stages communicate through fully
// materialized artifacts only; the batch assumes exclusive write access to
// the artifact directory and the cache for the duration of a run.
type Batch struct {
	config      *config.Config
	dataClient  data.Database
	cacheClient cache.Database
}

// NewBatch creates a batch pipeline over the given stores.
func NewBatch(cfg *config.Config, dataClient data.Database, cacheClient cache.Database) *Batch {
	return &Batch{
		config:      cfg,
		dataClient:  dataClient,
		cacheClient: cacheClient,
	}
}

func (b *Batch) crossTabPath() string {
	return filepath.Join(b.config.Batch.DataPath, CrossTabFile)
}

func (b *Batch) correlationMatrixPath() string {
	return filepath.Join(b.config.Batch.DataPath, CorrelationMatrixFile)
}

// checkArtifact refuses to overwrite an existing artifact unless force is
// enabled, matching the guard rails of the original batch scripts.
func checkArtifact(path string, force bool) error {
	if _, err := os.Stat(path); err == nil {
		if !force {
			return errors.AlreadyExistsf("artifact %s (use --force to overwrite)", path)
		}
		log.Logger().Warn("force enabled, removing artifact", zap.String("path", path))
		return errors.Trace(os.Remove(path))
	} else if !os.IsNotExist(err) {
		return errors.Trace(err)
	}
	return nil
}

// loadUniverse reads the canonical item universe from the document store:
// all item ids, sorted ascending. The sort makes the column order of every
// artifact reproducible across runs.
func (b *Batch) loadUniverse(ctx context.Context) ([]string, error) {
	universe := make([]string, 0)
	cursor := ""
	for {
		var items []data.Item
		var err error
		cursor, items, err = b.dataClient.GetItems(ctx, cursor, loadPageSize)
		if err != nil {
			return nil, errors.Trace(err)
		}
		for _, item := range items {
			universe = append(universe, item.ItemId)
		}
		if cursor == "" {
			break
		}
	}
	sort.Strings(universe)
	return universe, nil
}

func (b *Batch) loadDecks(ctx context.Context) ([]data.Deck, error) {
	decks := make([]data.Deck, 0)
	cursor := ""
	for {
		var page []data.Deck
		var err error
		cursor, page, err = b.dataClient.GetDecks(ctx, cursor, loadPageSize)
		if err != nil {
			return nil, errors.Trace(err)
		}
		decks = append(decks, page...)
		if cursor == "" {
			break
		}
	}
	sort.Slice(decks, func(i, j int) bool {
		return decks[i].DeckId < decks[j].DeckId
	})
	return decks, nil
}

// Correlate builds the occurrence cross tab and the correlation matrix and
// publishes both as labeled artifacts.
func (b *Batch) Correlate(ctx context.Context, force bool) error {
	start := time.Now()
	log.Logger().Info("calculating correlations")
	if err := checkArtifact(b.crossTabPath(), force); err != nil {
		return errors.Trace(err)
	}
	if err := checkArtifact(b.correlationMatrixPath(), force); err != nil {
		return errors.Trace(err)
	}
	if err := os.MkdirAll(b.config.Batch.DataPath, 0755); err != nil {
		return errors.Trace(err)
	}

	log.Logger().Info("loading item universe")
	universe, err := b.loadUniverse(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("loading decks")
	decks, err := b.loadDecks(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	BatchItemsTotal.Set(float64(len(universe)))
	BatchDecksTotal.Set(float64(len(decks)))

	log.Logger().Info("building occurrence matrix",
		zap.Int("n_items", len(universe)), zap.Int("n_decks", len(decks)))
	occurrence, err := BuildOccurrenceTable(universe, decks)
	if err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("saving cross tab", zap.String("path", b.crossTabPath()))
	if err = occurrence.Save(b.crossTabPath()); err != nil {
		return errors.Trace(err)
	}

	log.Logger().Info("reducing dimensions",
		zap.Int("n_factors", b.config.Batch.NFactors),
		zap.Int64("random_state", b.config.Batch.RandomState))
	embedding, err := ReduceDimensions(occurrence, b.config.Batch.NFactors, b.config.Batch.RandomState)
	if err != nil {
		return errors.Trace(err)
	}

	log.Logger().Info("calculating correlation matrix", zap.Int("n_jobs", b.config.Batch.NJobs))
	correlation, err := Correlate(embedding, b.config.Batch.NJobs)
	if err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("saving correlation matrix", zap.String("path", b.correlationMatrixPath()))
	if err = correlation.Save(b.correlationMatrixPath()); err != nil {
		return errors.Trace(err)
	}

	CorrelateSeconds.Set(time.Since(start).Seconds())
	log.Logger().Info("calculating correlations completed",
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Populate loads the correlation matrix artifact and writes every item's
// neighbor list to the cache. It never re-derives the matrix, so it can run
// long after Correlate, or repeatedly against a rebuilt cache.
func (b *Batch) Populate(ctx context.Context, progress func(total, delta int)) error {
	start := time.Now()
	log.Logger().Info("loading correlation matrix", zap.String("path", b.correlationMatrixPath()))
	correlation, err := dataset.LoadTable(b.correlationMatrixPath())
	if err != nil {
		return errors.Trace(err)
	}
	nItems, _ := correlation.Dims()
	log.Logger().Info("populating cache", zap.Int("n_items", nItems))
	var onWrite func(int)
	if progress != nil {
		onWrite = func(delta int) {
			progress(nItems, delta)
		}
	}
	if err = PopulateCache(ctx, correlation, b.cacheClient, onWrite); err != nil {
		return errors.Trace(err)
	}
	CachePopulatedTotal.Set(float64(nItems))
	PopulateSeconds.Set(time.Since(start).Seconds())
	log.Logger().Info("populating cache completed",
		zap.Int("n_items", nItems), zap.Duration("elapsed", time.Since(start)))
	return nil
}
