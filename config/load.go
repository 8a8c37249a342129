package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment variables that override file settings,
// e.g. AUTOTOX_LOG_LEVEL.
const EnvPrefix = "AUTOTOX"

// Load reads configuration from the YAML file at path on top of Default.
// An empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("savedata_file", cfg.SavedataFile)
	v.SetDefault("download_dir", cfg.DownloadDir)
	v.SetDefault("start_port", cfg.StartPort)
	v.SetDefault("end_port", cfg.EndPort)
	v.SetDefault("bootstrap", cfg.Bootstrap)
	v.SetDefault("bootstrap_nodes", cfg.BootstrapNodes)
	v.SetDefault("name", cfg.Name)
	v.SetDefault("status_message", cfg.StatusMessage)
	v.SetDefault("auto_accept_message", cfg.AutoAcceptMessage)
	v.SetDefault("auto_reply_addresses", cfg.AutoReplyAddresses)
	v.SetDefault("history_count", cfg.HistoryCount)
	v.SetDefault("save_after_command", cfg.SaveAfterCommand)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("tick_max_ms", cfg.TickMaxMS)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Write stores cfg as YAML at path. An existing file is only replaced when
// overwrite is set.
func Write(path string, cfg Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o600)
}
