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
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/voodoo-io/voodoo/base/log"
	"github.com/voodoo-io/voodoo/cmd/version"
	"github.com/voodoo-io/voodoo/config"
	"github.com/voodoo-io/voodoo/storage/data"
	"go.uber.org/zap"
)

var dataloadCommand = &cobra.Command{
	Use:   "voodoo-dataload",
	Short: "Bulk-load cards and decks into the document store of the voodoo recommender system.",
	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.PersistentFlags().GetBool("version")
		if showVersion {
			fmt.Println(version.BuildInfo())
			return
		}
		debug, _ := cmd.PersistentFlags().GetBool("debug")
		log.SetLogger(cmd.PersistentFlags(), debug)

		cardsPath, _ := cmd.PersistentFlags().GetString("cards")
		decksPath, _ := cmd.PersistentFlags().GetString("decks")
		if cardsPath == "" && decksPath == "" {
			log.Logger().Fatal("nothing to load, pass --cards and/or --decks")
		}

		configPath, _ := cmd.PersistentFlags().GetString("config")
		log.Logger().Info("load config", zap.String("config", configPath))
		conf, err := config.LoadConfig(configPath)
		if err != nil {
			log.Logger().Fatal("failed to load config", zap.Error(err))
		}
		log.Logger().Info("connect data store",
			zap.String("data_store", log.RedactDBURL(conf.Database.DataStore)))
		dataClient, err := data.Open(conf.Database.DataStore)
		if err != nil {
			log.Logger().Fatal("failed to connect data store", zap.Error(err))
		}
		defer dataClient.Close()
		if err = dataClient.Init(); err != nil {
			log.Logger().Fatal("failed to init data store", zap.Error(err))
		}

		ctx := context.Background()
		if cardsPath != "" {
			start := time.Now()
			f, err := os.Open(cardsPath)
			if err != nil {
				log.Logger().Fatal("failed to open cards file", zap.Error(err))
			}
			inserted, err := loadCards(ctx, dataClient, f)
			f.Close()
			if err != nil {
				log.Logger().Fatal("failed to load cards", zap.Error(err))
			}
			log.Logger().Info("cards loaded",
				zap.Int("n_inserted", inserted), zap.Duration("elapsed", time.Since(start)))
		}
		if decksPath != "" {
			start := time.Now()
			f, err := os.Open(decksPath)
			if err != nil {
				log.Logger().Fatal("failed to open decks file", zap.Error(err))
			}
			total, err := loadDecks(ctx, dataClient, f)
			f.Close()
			if err != nil {
				log.Logger().Fatal("failed to load decks", zap.Error(err))
			}
			log.Logger().Info("decks loaded",
				zap.Int("n_decks", total), zap.Duration("elapsed", time.Since(start)))
		}
	},
}

func init() {
	dataloadCommand.PersistentFlags().BoolP("version", "v", false, "voodoo version")
	dataloadCommand.PersistentFlags().StringP("config", "c", "config.toml", "configuration file path")
	dataloadCommand.PersistentFlags().String("cards", "", "path of the cards JSON file")
	dataloadCommand.PersistentFlags().String("decks", "", "path of the decks JSON-lines file")
	dataloadCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	log.AddFlags(dataloadCommand.PersistentFlags())
}

func main() {
	if err := dataloadCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
