package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/grantscraper/internal/sources"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List registered sources and their settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		for _, name := range sources.Names() {
			sc := cfg.Extraction.Source(name)
			state := "enabled"
			if !sc.IsEnabled() {
				state = "disabled"
			}
			line := fmt.Sprintf("%-16s %-9s delay=%s", name, state, sc.Delay)
			if sc.MaxPages > 0 {
				line += fmt.Sprintf(" max_pages=%d", sc.MaxPages)
			}
			if sc.InsecureTLS {
				line += " insecure_tls"
			}
			if sc.BaseURL != "" {
				line += " base_url=" + sc.BaseURL
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
