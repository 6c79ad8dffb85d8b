package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/grantscraper/pkg/types"
)

const (
	defaultTimezone     = "Asia/Manila"
	defaultUserAgent    = "grantscraper/0.1"
	defaultRequestDelay = 2 * time.Second
	defaultCorpusPath   = "data/grantscraper.db"
	// Daily in the configured timezone. The expiry sweep runs just after
	// midnight, when deadlines roll over, and never shares a tick with ingest.
	defaultIngestCron = "40 10 * * *"
	defaultExpireCron = "5 0 * * *"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("timezone", defaultTimezone)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.user_agent", defaultUserAgent)
	v.SetDefault("http.max_body_bytes", 8<<20)
	v.SetDefault("http.max_retries", 5)
	v.SetDefault("http.requests_per_second", 0)
	v.SetDefault("http.burst", 1)
	v.SetDefault("http.respect_robots", true)
	v.SetDefault("http.cache_ttl", 10*time.Minute)

	v.SetDefault("extraction.request_delay", defaultRequestDelay)
	v.SetDefault("extraction.source_timeout", 15*time.Minute)
	// HAU serves an incomplete certificate chain.
	v.SetDefault("extraction.sources.hau.insecure_tls", true)

	v.SetDefault("corpus.path", defaultCorpusPath)
	v.SetDefault("schedule.ingest", defaultIngestCron)
	v.SetDefault("schedule.expire", defaultExpireCron)
}

// loadConfig decodes the effective viper settings into a types.Config.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return cfg, fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}
	return cfg, nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
