// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the grantscraper CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the grantscraper CLI.
var rootCmd = &cobra.Command{
	Use:   "grantscraper",
	Short: "Scrape, normalize, and reconcile Philippine scholarship listings",
	Long: `grantscraper collects scholarship listings from several public sites,
normalizes them into one record shape, and reconciles each run against a
SQLite corpus so that the corpus always reflects the currently open listings.

Run "ingest" for a full scrape and reconcile, "expire" to retire listings whose
deadline has passed, or "schedule" to run both on cron specs.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./grantscraper.yaml or ~/.config/grantscraper/grantscraper.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("db", "", "corpus SQLite file (overrides corpus.path)")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("corpus.path", rootCmd.PersistentFlags().Lookup("db"))
}

func initConfig() {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "Ignoring .env:", err)
	}

	setDefaults(viper.GetViper())

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("grantscraper")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "grantscraper"))
		}
	}

	viper.SetEnvPrefix("GRANTSCRAPER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
