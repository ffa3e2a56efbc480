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
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/voodoo-io/voodoo/base/log"
	"github.com/voodoo-io/voodoo/cmd/version"
	"github.com/voodoo-io/voodoo/config"
	"github.com/voodoo-io/voodoo/engine"
	"github.com/voodoo-io/voodoo/storage/cache"
	"github.com/voodoo-io/voodoo/storage/data"
	"go.uber.org/zap"
)

var batchCommand = &cobra.Command{
	Use:   "voodoo-batch",
	Short: "The offline pipeline of the voodoo recommender system.",
	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.PersistentFlags().GetBool("version")
		if showVersion {
			fmt.Println(version.BuildInfo())
			return
		}
		_ = cmd.Help()
	},
}

var correlateCommand = &cobra.Command{
	Use:   "correlate",
	Short: "Build the occurrence cross tab and the correlation matrix.",
	Run: func(cmd *cobra.Command, args []string) {
		batch := newBatch(cmd)
		force, _ := cmd.Flags().GetBool("force")
		if err := batch.Correlate(context.Background(), force); err != nil {
			log.Logger().Fatal("failed to calculate correlations", zap.Error(err))
		}
	},
}

var populateCommand = &cobra.Command{
	Use:   "populate",
	Short: "Write the cached neighbor list of every item.",
	Run: func(cmd *cobra.Command, args []string) {
		batch := newBatch(cmd)
		if err := batch.Populate(context.Background(), newProgressBar()); err != nil {
			log.Logger().Fatal("failed to populate cache", zap.Error(err))
		}
	},
}

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: correlate, then populate.",
	Run: func(cmd *cobra.Command, args []string) {
		batch := newBatch(cmd)
		force, _ := cmd.Flags().GetBool("force")
		if err := batch.Correlate(context.Background(), force); err != nil {
			log.Logger().Fatal("failed to calculate correlations", zap.Error(err))
		}
		if err := batch.Populate(context.Background(), newProgressBar()); err != nil {
			log.Logger().Fatal("failed to populate cache", zap.Error(err))
		}
	},
}

// newProgressBar adapts a terminal progress bar to the populate callback.
func newProgressBar() func(total, delta int) {
	var bar *progressbar.ProgressBar
	return func(total, delta int) {
		if bar == nil {
			bar = progressbar.Default(int64(total), "populate cache")
		}
		_ = bar.Add(delta)
	}
}

// newBatch loads the configuration, connects both stores and builds the
// batch pipeline. Connection failures are fatal.
func newBatch(cmd *cobra.Command) *engine.Batch {
	debug, _ := cmd.Flags().GetBool("debug")
	log.SetLogger(cmd.Flags(), debug)

	configPath, _ := cmd.Flags().GetString("config")
	log.Logger().Info("load config", zap.String("config", configPath))
	conf, err := config.LoadConfig(configPath)
	if err != nil {
		log.Logger().Fatal("failed to load config", zap.Error(err))
	}
	if cmd.Flags().Changed("data-path") {
		conf.Batch.DataPath, _ = cmd.Flags().GetString("data-path")
	}
	if cmd.Flags().Changed("n-jobs") {
		conf.Batch.NJobs, _ = cmd.Flags().GetInt("n-jobs")
	}

	log.Logger().Info("connect data store",
		zap.String("data_store", log.RedactDBURL(conf.Database.DataStore)))
	dataClient, err := data.Open(conf.Database.DataStore)
	if err != nil {
		log.Logger().Fatal("failed to connect data store", zap.Error(err))
	}
	log.Logger().Info("connect cache store",
		zap.String("cache_store", log.RedactDBURL(conf.Database.CacheStore)))
	cacheClient, err := cache.Open(conf.Database.CacheStore)
	if err != nil {
		log.Logger().Fatal("failed to connect cache store", zap.Error(err))
	}
	return engine.NewBatch(conf, dataClient, cacheClient)
}

func init() {
	batchCommand.PersistentFlags().BoolP("version", "v", false, "voodoo version")
	batchCommand.PersistentFlags().StringP("config", "c", "config.toml", "configuration file path")
	batchCommand.PersistentFlags().String("data-path", "", "directory for batch artifacts")
	batchCommand.PersistentFlags().Int("n-jobs", 0, "number of parallel jobs")
	batchCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	log.AddFlags(batchCommand.PersistentFlags())
	correlateCommand.Flags().BoolP("force", "f", false, "overwrite existing artifacts")
	runCommand.Flags().BoolP("force", "f", false, "overwrite existing artifacts")
	batchCommand.AddCommand(correlateCommand, populateCommand, runCommand)
}

func main() {
	if err := batchCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
