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
	"fmt"
	_ "net/http/pprof"

	"github.com/spf13/cobra"
	"github.com/voodoo-io/voodoo/base/log"
	"github.com/voodoo-io/voodoo/cmd/version"
	"github.com/voodoo-io/voodoo/config"
	"github.com/voodoo-io/voodoo/server"
	"github.com/voodoo-io/voodoo/storage/cache"
	"github.com/voodoo-io/voodoo/storage/data"
	"go.uber.org/zap"
)

var serverCommand = &cobra.Command{
	Use:   "voodoo-server",
	Short: "The recommendation server of the voodoo recommender system.",
	Run: func(cmd *cobra.Command, args []string) {
		// show version
		showVersion, _ := cmd.PersistentFlags().GetBool("version")
		if showVersion {
			fmt.Println(version.BuildInfo())
			return
		}
		// setup logger
		debug, _ := cmd.PersistentFlags().GetBool("debug")
		log.SetLogger(cmd.PersistentFlags(), debug)

		// load config
		configPath, _ := cmd.PersistentFlags().GetString("config")
		log.Logger().Info("load config", zap.String("config", configPath))
		conf, err := config.LoadConfig(configPath)
		if err != nil {
			log.Logger().Fatal("failed to load config", zap.Error(err))
		}
		if cmd.PersistentFlags().Changed("http-host") {
			conf.Server.HttpHost, _ = cmd.PersistentFlags().GetString("http-host")
		}
		if cmd.PersistentFlags().Changed("http-port") {
			conf.Server.HttpPort, _ = cmd.PersistentFlags().GetInt("http-port")
		}

		// connect stores
		log.Logger().Info("connect data store",
			zap.String("data_store", log.RedactDBURL(conf.Database.DataStore)))
		dataClient, err := data.Open(conf.Database.DataStore)
		if err != nil {
			log.Logger().Fatal("failed to connect data store", zap.Error(err))
		}
		defer dataClient.Close()
		log.Logger().Info("connect cache store",
			zap.String("cache_store", log.RedactDBURL(conf.Database.CacheStore)))
		cacheClient, err := cache.Open(conf.Database.CacheStore)
		if err != nil {
			log.Logger().Fatal("failed to connect cache store", zap.Error(err))
		}
		defer cacheClient.Close()

		// start server
		s := server.NewRestServer(conf, dataClient, cacheClient)
		s.StartHttpServer()
	},
}

func init() {
	serverCommand.PersistentFlags().BoolP("version", "v", false, "voodoo version")
	serverCommand.PersistentFlags().StringP("config", "c", "config.toml", "configuration file path")
	serverCommand.PersistentFlags().String("http-host", "", "host of RESTful API")
	serverCommand.PersistentFlags().Int("http-port", 0, "port of RESTful API")
	serverCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	log.AddFlags(serverCommand.PersistentFlags())
}

func main() {
	if err := serverCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
