// Package config loads engine settings from an optional config file and the
// environment. Flags layered on top by the CLI win over both.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is everything tunable about one fill run.
type Config struct {
	Headless       bool          `mapstructure:"headless"`
	NavTimeout     time.Duration `mapstructure:"nav_timeout"`
	SettleWait     time.Duration `mapstructure:"settle_wait"`
	SubmitWait     time.Duration `mapstructure:"submit_wait"`
	TypeDelay      time.Duration `mapstructure:"type_delay"`
	RequiredPolicy string        `mapstructure:"required_policy"`
	StorageState   string        `mapstructure:"storage_state"`
	// TeardownGrace is how long a completed job keeps its browser context
	// alive before close. Failed jobs keep the context open regardless, for
	// operator inspection.
	TeardownGrace time.Duration `mapstructure:"teardown_grace"`
}

// Load reads the named config file when given, otherwise probes
// formfill.yaml in the working directory. Environment variables use the
// FORMFILL_ prefix.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("headless", true)
	v.SetDefault("nav_timeout", "30s")
	v.SetDefault("settle_wait", "500ms")
	v.SetDefault("submit_wait", "2s")
	v.SetDefault("type_delay", "60ms")
	v.SetDefault("required_policy", "strict")
	v.SetDefault("storage_state", "")
	v.SetDefault("teardown_grace", "3s")

	v.SetEnvPrefix("FORMFILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("formfill")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.RequiredPolicy != "strict" && cfg.RequiredPolicy != "lenient" {
		return nil, fmt.Errorf("required_policy must be strict or lenient, got %q", cfg.RequiredPolicy)
	}
	return &cfg, nil
}
