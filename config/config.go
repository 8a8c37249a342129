package config

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/autotox/limits"
	"github.com/opd-ai/autotox/peer"
)

// Config holds the client settings.
type Config struct {
	SavedataFile       string               `mapstructure:"savedata_file" yaml:"savedata_file"`
	DownloadDir        string               `mapstructure:"download_dir" yaml:"download_dir"`
	StartPort          uint16               `mapstructure:"start_port" yaml:"start_port"`
	EndPort            uint16               `mapstructure:"end_port" yaml:"end_port"`
	Bootstrap          bool                 `mapstructure:"bootstrap" yaml:"bootstrap"`
	BootstrapNodes     []peer.BootstrapNode `mapstructure:"bootstrap_nodes" yaml:"bootstrap_nodes"`
	Name               string               `mapstructure:"name" yaml:"name"`
	StatusMessage      string               `mapstructure:"status_message" yaml:"status_message"`
	AutoAcceptMessage  string               `mapstructure:"auto_accept_message" yaml:"auto_accept_message"`
	AutoReplyAddresses bool                 `mapstructure:"auto_reply_addresses" yaml:"auto_reply_addresses"`
	HistoryCount       int                  `mapstructure:"history_count" yaml:"history_count"`
	SaveAfterCommand   bool                 `mapstructure:"save_after_command" yaml:"save_after_command"`
	LogFile            string               `mapstructure:"log_file" yaml:"log_file"`
	LogLevel           string               `mapstructure:"log_level" yaml:"log_level"`
	TickMaxMS          int                  `mapstructure:"tick_max_ms" yaml:"tick_max_ms"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SavedataFile: "./savedata.tox",
		DownloadDir:  ".",
		StartPort:    33445,
		EndPort:      34445,
		BootstrapNodes: []peer.BootstrapNode{
			{Address: "node.tox.biribiri.org", Port: 33445, PublicKey: "F404ABAA1C99A9D37D61AB54898F56793E1DEF8BD46B1038B9D822E8460FAB67"},
			{Address: "128.199.199.197", Port: 33445, PublicKey: "B05C8869DBB4EDDD308F43C1A974A20A725A36EACCA123862FDE9945BF9D3E09"},
			{Address: "2400:6180:0:d0::17a:a001", Port: 33445, PublicKey: "B05C8869DBB4EDDD308F43C1A974A20A725A36EACCA123862FDE9945BF9D3E09"},
		},
		Name:              "autotox",
		StatusMessage:     "autobot",
		AutoAcceptMessage: "autotox",
		HistoryCount:      20,
		SaveAfterCommand:  true,
		LogFile:           "autotox.log",
		LogLevel:          "info",
		TickMaxMS:         30,
	}
}

// TickMax returns the longest pause between two session ticks.
func (c Config) TickMax() time.Duration {
	return time.Duration(c.TickMaxMS) * time.Millisecond
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.SavedataFile == "" {
		return fmt.Errorf("savedata_file must not be empty")
	}
	if c.StartPort == 0 || c.EndPort == 0 || c.StartPort > c.EndPort {
		return fmt.Errorf("invalid port range %d-%d", c.StartPort, c.EndPort)
	}
	for i, node := range c.BootstrapNodes {
		if node.Address == "" || node.Port == 0 {
			return fmt.Errorf("bootstrap_nodes[%d]: address and port are required", i)
		}
		if err := validatePublicKey(node.PublicKey); err != nil {
			return fmt.Errorf("bootstrap_nodes[%d]: %w", i, err)
		}
	}
	if err := limits.ValidateName([]byte(c.Name)); err != nil {
		return fmt.Errorf("name: %w", err)
	}
	if err := limits.ValidateStatusMessage([]byte(c.StatusMessage)); err != nil {
		return fmt.Errorf("status_message: %w", err)
	}
	if c.HistoryCount <= 0 {
		return fmt.Errorf("history_count must be positive, got %d", c.HistoryCount)
	}
	if c.TickMaxMS <= 0 {
		return fmt.Errorf("tick_max_ms must be positive, got %d", c.TickMaxMS)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

func validatePublicKey(key string) error {
	if len(key) != limits.PublicKeyHexLength {
		return fmt.Errorf("public key must be %d hex characters, got %d", limits.PublicKeyHexLength, len(key))
	}
	if _, err := hex.DecodeString(key); err != nil {
		return fmt.Errorf("public key is not hex: %w", err)
	}
	return nil
}
