// Package config loads the engine's flat runtime configuration — store
// paths, cache sizing, the default century code, and log level — via
// Viper, merging defaults, a config file, and environment variables
// (env > config file > defaults). Command-line flags are not bound.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the flat key/value surface the engine needs at construction
// time. There is no nested document structure to justify a richer
// format than Viper's own merged view.
type Config struct {
	ColdStorePath  string // SQLite cold vocabulary store
	PBMStorePath   string // SQLite PBM/document store
	KVCachePath    string // bbolt on-disk KV cache
	LRUSize        int    // entries per bbolt-fronting LRU bucket
	DefaultCentury string // century code applied to ingests that omit one
	LogLevel       string // zerolog level name: debug|info|warn|error
}

const envPrefix = "TEXTPBM"

// Load builds a Config from defaults, an optional config file, and
// environment variables prefixed TEXTPBM_. configFile may be empty, in
// which case only the default search paths are consulted and a missing
// file is not an error.
func Load(configFile string) (Config, error) {
	v := viper.New()

	v.SetDefault("cold_store_path", "textpbm_vocab.db")
	v.SetDefault("pbm_store_path", "textpbm_pbm.db")
	v.SetDefault("kv_cache_path", "textpbm_cache.bolt")
	v.SetDefault("lru_size", 4096)
	v.SetDefault("default_century", "AA")
	v.SetDefault("log_level", "info")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("textpbm")
		v.SetConfigType("json")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.textpbm")
		v.AddConfigPath("/etc/textpbm")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			if configFile != "" || !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		ColdStorePath:  v.GetString("cold_store_path"),
		PBMStorePath:   v.GetString("pbm_store_path"),
		KVCachePath:    v.GetString("kv_cache_path"),
		LRUSize:        v.GetInt("lru_size"),
		DefaultCentury: v.GetString("default_century"),
		LogLevel:       v.GetString("log_level"),
	}

	if cfg.LRUSize <= 0 {
		return Config{}, fmt.Errorf("lru_size must be positive, got %d", cfg.LRUSize)
	}

	return cfg, nil
}
