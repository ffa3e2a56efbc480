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

package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration for the voodoo batch pipeline and server.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Batch    BatchConfig    `mapstructure:"batch"`
	Server   ServerConfig   `mapstructure:"server"`
}

// DatabaseConfig is the configuration for the database connections.
type DatabaseConfig struct {
	// database for documents (items and decks)
	DataStore string `mapstructure:"data_store" validate:"required,data_store"`
	// database for neighbor lists
	CacheStore string `mapstructure:"cache_store" validate:"required,cache_store"`
}

// BatchConfig is the configuration for the offline pipeline.
type BatchConfig struct {
	// directory for batch artifacts
	DataPath string `mapstructure:"data_path"`
	// number of latent factors for truncated SVD
	NFactors int `mapstructure:"n_factors" validate:"gt=0"`
	// random seed for truncated SVD
	RandomState int64 `mapstructure:"random_state"`
	// number of parallel jobs for correlation
	NJobs int `mapstructure:"n_jobs" validate:"gt=0"`
}

// ServerConfig is the configuration for the recommendation server.
type ServerConfig struct {
	HttpHost string `mapstructure:"http_host"`
	HttpPort int    `mapstructure:"http_port" validate:"gt=0"`
	// default number of returned recommendations
	DefaultN int `mapstructure:"default_n" validate:"gt=0"`
	// time-to-live of the local item name cache
	ItemCacheExpire time.Duration `mapstructure:"item_cache_expire"`
	// timeout of cache and data store lookups
	LookupTimeout time.Duration `mapstructure:"lookup_timeout" validate:"gt=0"`
}

// GetDefaultConfig returns a default configuration.
func GetDefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{},
		Batch: BatchConfig{
			DataPath:    "data",
			NFactors:    250,
			RandomState: 5,
			NJobs:       1,
		},
		Server: ServerConfig{
			HttpHost:        "0.0.0.0",
			HttpPort:        8000,
			DefaultN:        20,
			ItemCacheExpire: 10 * time.Minute,
			LookupTimeout:   10 * time.Second,
		},
	}
}

func setDefault() {
	defaultConfig := GetDefaultConfig()
	// [batch]
	viper.SetDefault("batch.data_path", defaultConfig.Batch.DataPath)
	viper.SetDefault("batch.n_factors", defaultConfig.Batch.NFactors)
	viper.SetDefault("batch.random_state", defaultConfig.Batch.RandomState)
	viper.SetDefault("batch.n_jobs", defaultConfig.Batch.NJobs)
	// [server]
	viper.SetDefault("server.http_host", defaultConfig.Server.HttpHost)
	viper.SetDefault("server.http_port", defaultConfig.Server.HttpPort)
	viper.SetDefault("server.default_n", defaultConfig.Server.DefaultN)
	viper.SetDefault("server.item_cache_expire", defaultConfig.Server.ItemCacheExpire)
	viper.SetDefault("server.lookup_timeout", defaultConfig.Server.LookupTimeout)
}

// LoadConfig loads configuration from a TOML file.
func LoadConfig(path string) (*Config, error) {
	setDefault()

	// bind environment variables
	viper.SetEnvPrefix("voodoo")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigType("toml")
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return nil, errors.Trace(err)
	}

	var conf Config
	if err := viper.Unmarshal(&conf); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

// Validate checks the configuration against the schemes supported by the
// storage layer.
func (config *Config) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("data_store", func(fl validator.FieldLevel) bool {
		prefixes := []string{"mongodb://", "mongodb+srv://", "memory://"}
		for _, prefix := range prefixes {
			if strings.HasPrefix(fl.Field().String(), prefix) {
				return true
			}
		}
		return false
	}); err != nil {
		return errors.Trace(err)
	}
	if err := validate.RegisterValidation("cache_store", func(fl validator.FieldLevel) bool {
		return strings.HasPrefix(fl.Field().String(), "redis://")
	}); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(validate.Struct(config))
}
