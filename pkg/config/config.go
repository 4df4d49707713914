package config

// Package config provides a reusable loader for node configuration files and
// environment variables, shared by the gateway, coordinator and mint
// binaries (the CLI does not use it). It is versioned so that applications can depend on a stable API
// contract.
//
// Version: v0.1.0

import (
	"fmt"

	"github.com/spf13/viper"

	"synnergy-storage-network/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config is the unified configuration for a node process. Any subset of
// sections may be populated depending on which binary loads it: the gateway
// reads Gateway.ListenAddr, Storage.DataDir and Mint.InvoiceTTLSeconds; the
// coordinator reads Coordinator.ListenAddr, GenesisTimeRFC3339,
// TickIntervalSeconds and Storage.DataDir; the mint reads Mint.ListenAddr
// and Mint.SeedHexPath. The remaining fields, including the whole Logging
// section, are loaded but not read by any binary.
type Config struct {
	Gateway struct {
		ListenAddr        string `mapstructure:"listen_addr" json:"listen_addr"`
		MaxManifestBlocks int    `mapstructure:"max_manifest_blocks" json:"max_manifest_blocks"`
		DefaultChunkSize  int    `mapstructure:"default_chunk_size" json:"default_chunk_size"`
		PowRequiredSats   uint64 `mapstructure:"pow_required_below_sats" json:"pow_required_below_sats"`
	} `mapstructure:"gateway" json:"gateway"`

	Coordinator struct {
		ListenAddr        string   `mapstructure:"listen_addr" json:"listen_addr"`
		GenesisTimeRFC3339 string  `mapstructure:"genesis_time" json:"genesis_time"`
		EpochLengthSeconds int     `mapstructure:"epoch_length_seconds" json:"epoch_length_seconds"`
		TickIntervalSeconds int    `mapstructure:"tick_interval_seconds" json:"tick_interval_seconds"`
		TrustedMintPubkeys []string `mapstructure:"trusted_mint_pubkeys" json:"trusted_mint_pubkeys"`
	} `mapstructure:"coordinator" json:"coordinator"`

	Mint struct {
		ListenAddr  string `mapstructure:"listen_addr" json:"listen_addr"`
		SeedHexPath string `mapstructure:"seed_hex_path" json:"seed_hex_path"`
		InvoiceTTLSeconds int `mapstructure:"invoice_ttl_seconds" json:"invoice_ttl_seconds"`
	} `mapstructure:"mint" json:"mint"`

	Storage struct {
		DataDir string `mapstructure:"data_dir" json:"data_dir"`
	} `mapstructure:"storage" json:"storage"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and returned.
//
// The function uses the provided environment name to merge additional config
// files. If env is empty, only the default configuration is loaded.
func Load(env string) (*Config, error) {
	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv() // picks up from .env

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the SYNN_ENV environment variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("SYNN_ENV", ""))
}
