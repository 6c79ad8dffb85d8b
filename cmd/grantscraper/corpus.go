package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/grantscraper/internal/corpus"
	"github.com/pdiddy/grantscraper/pkg/types"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Query and export the scholarship corpus",
}

var corpusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List live records, optionally filtered by level, type, or site",
	RunE:  runCorpusList,
}

var corpusExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export records as YAML or JSON",
	RunE:  runCorpusExport,
}

var corpusStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print live and retired record counts",
	RunE:  runCorpusStats,
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("level", "", "filter by level (e.g. College, Graduate)")
	cmd.Flags().String("type", "", "filter by award type (e.g. Merit, Grant)")
	cmd.Flags().String("site", "", "filter by source site")
	cmd.Flags().Bool("retired", false, "include retired records")
	cmd.Flags().Int("limit", 0, "maximum number of records (0 for all)")
}

func filterFlags(cmd *cobra.Command) (corpus.Filter, error) {
	level, _ := cmd.Flags().GetString("level")
	typ, _ := cmd.Flags().GetString("type")
	site, _ := cmd.Flags().GetString("site")
	retired, _ := cmd.Flags().GetBool("retired")
	limit, _ := cmd.Flags().GetInt("limit")

	f := corpus.Filter{Site: site, IncludeRetired: retired, Limit: limit}
	var err error
	if level != "" {
		if f.Level, err = types.ParseLevel(level); err != nil {
			return f, err
		}
	}
	if typ != "" {
		if f.Type, err = types.ParseAwardType(typ); err != nil {
			return f, err
		}
	}
	return f, nil
}

func init() {
	addFilterFlags(corpusListCmd)
	corpusListCmd.Flags().Bool("json", false, "output records as JSON")

	addFilterFlags(corpusExportCmd)
	corpusExportCmd.Flags().String("format", corpus.FormatYAML, "output format: yaml or json")
	corpusExportCmd.Flags().String("out", "", "output file (default stdout)")

	corpusCmd.AddCommand(corpusListCmd, corpusExportCmd, corpusStatsCmd)
	rootCmd.AddCommand(corpusCmd)
}

func runCorpusList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	store, err := a.openStore()
	if err != nil {
		return err
	}

	f, err := filterFlags(cmd)
	if err != nil {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return corpus.ExportJSON(cmd.Context(), store, os.Stdout, f)
	}

	recs, err := store.List(cmd.Context(), f)
	if err != nil {
		return err
	}
	for _, r := range recs {
		state := ""
		if !r.Live() {
			state = " (retired)"
		}
		fmt.Printf("%-40s %-12s %-10s %-9s %s%s\n", r.Name, r.Deadline, r.Level, r.Type, r.Source.Site, state)
	}
	fmt.Fprintf(os.Stderr, "%d record(s)\n", len(recs))
	return nil
}

func runCorpusExport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	store, err := a.openStore()
	if err != nil {
		return err
	}

	filter, err := filterFlags(cmd)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}
	format, _ := cmd.Flags().GetString("format")
	return corpus.Export(cmd.Context(), store, w, format, filter)
}

func runCorpusStats(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	store, err := a.openStore()
	if err != nil {
		return err
	}

	c, err := store.Count(cmd.Context())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
