// Command autotox is an interactive Tox terminal client.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opd-ai/autotox/config"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "autotox: %v\n", err)
		os.Exit(1)
	}
}

// rootFlags holds the command-line overrides of the configuration file.
type rootFlags struct {
	configPath  string
	savedata    string
	downloadDir string
	logFile     string
	logLevel    string
	bootstrap   bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "autotox",
		Short:         "Interactive Tox client for the terminal",
		Long:          "autotox is a minimal Tox client. Type `/guide` once it runs for an introduction and `/help` for the command list.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			return runClient(cmd.Context(), cfg)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "autotox.yaml", "path to the YAML configuration file")
	pf.StringVar(&flags.savedata, "savedata", "", "override savedata_file")
	pf.StringVar(&flags.downloadDir, "download-dir", "", "override download_dir")
	pf.StringVar(&flags.logFile, "log-file", "", "override log_file")
	pf.StringVar(&flags.logLevel, "log-level", "", "override log_level")
	pf.BoolVar(&flags.bootstrap, "bootstrap", false, "override bootstrap")

	root.AddCommand(newConfigCmd(flags))
	return root
}

// loadConfig reads the configuration file, applies the flags that were set
// explicitly and validates the result.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return config.Config{}, err
	}

	set := cmd.Flags()
	if set.Changed("savedata") {
		cfg.SavedataFile = flags.savedata
	}
	if set.Changed("download-dir") {
		cfg.DownloadDir = flags.downloadDir
	}
	if set.Changed("log-file") {
		cfg.LogFile = flags.logFile
	}
	if set.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if set.Changed("bootstrap") {
		cfg.Bootstrap = flags.bootstrap
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
