package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/grantscraper/internal/corpus"
	"github.com/pdiddy/grantscraper/internal/ingest"
	"github.com/pdiddy/grantscraper/internal/reconcile"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Scrape every source and reconcile the corpus",
	Long: `Ingest runs every enabled extractor concurrently, reconciles the combined
batch against the live corpus, and applies the result: superseded, removed,
expired, and duplicate records are retired, new and changed records are
inserted. A source that fails keeps its existing records.`,
	RunE: runIngest,
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run extractors and print the normalized batch without touching the corpus",
	RunE:  runScrape,
}

var expireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Retire live records whose deadline has passed",
	RunE:  runExpire,
}

func init() {
	addSourcesFlag(ingestCmd)
	ingestCmd.Flags().Bool("dry-run", false, "compute and print the plan without writing")
	ingestCmd.Flags().Bool("json", false, "output the summary as JSON")

	addSourcesFlag(scrapeCmd)
	scrapeCmd.Flags().String("format", "yaml", "output format: yaml or json")

	expireCmd.Flags().Bool("dry-run", false, "list expired records without retiring them")

	rootCmd.AddCommand(ingestCmd, scrapeCmd, expireCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	store, err := a.openStore()
	if err != nil {
		return err
	}
	p, err := a.pipeline(sourcesFlag(cmd), store)
	if err != nil {
		return err
	}
	p.DryRun, _ = cmd.Flags().GetBool("dry-run")

	sum, err := p.RunIngestion(cmd.Context())
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}
	printSummary(os.Stdout, sum)
	if sum.DryRun && sum.Plan != nil {
		printPlan(os.Stdout, *sum.Plan)
	}
	return nil
}

func printSummary(w io.Writer, sum ingest.Summary) {
	for _, s := range sum.Sources {
		status := fmt.Sprintf("%d records", s.Count)
		if s.Failed() {
			status = "FAILED: " + s.Error
		}
		fmt.Fprintf(w, "  %-16s %-8s %s\n", s.Name, s.Duration.Round(time.Millisecond), status)
	}
	verb := "Inserted"
	if sum.DryRun {
		verb = "Would insert"
	}
	fmt.Fprintf(w, "%s %d, retired %d, unchanged %d, rejected %d, skipped expired %d, collapsed %d\n",
		verb, sum.Inserted, sum.Retired, sum.Unchanged, sum.Rejected, sum.SkippedExpired, sum.Collapsed)
	for _, reason := range []reconcile.Reason{reconcile.ReasonSuperseded, reconcile.ReasonRemoved, reconcile.ReasonExpired, reconcile.ReasonDuplicate} {
		if n := sum.RetiredBy[reason]; n > 0 {
			fmt.Fprintf(w, "  retired %-10s %d\n", reason, n)
		}
	}
}

func printPlan(w io.Writer, plan reconcile.Plan) {
	for _, s := range plan.ToInsert {
		fmt.Fprintf(w, "+ %s (%s) [%s]\n", s.Name, s.Deadline, s.Source.Site)
	}
	for _, r := range plan.ToRetire {
		fmt.Fprintf(w, "- %s (%s) [%s] %s\n", r.Key.Name, r.Key.Deadline, r.Site, r.Reason)
	}
	for _, r := range plan.Rejected {
		fmt.Fprintf(w, "! #%d %q [%s] %s\n", r.Index, r.Name, r.Site, r.Reason)
	}
}

func runScrape(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != corpus.FormatYAML && format != corpus.FormatJSON {
		return fmt.Errorf("unknown format %q (want yaml or json)", format)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.pipeline(sourcesFlag(cmd), nil)
	if err != nil {
		return err
	}
	batch := p.Scrape(cmd.Context())
	for _, s := range batch.Sources {
		if s.Failed() {
			fmt.Fprintf(os.Stderr, "%s failed: %s\n", s.Name, s.Error)
		}
	}

	if format == corpus.FormatJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(batch.Records)
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(batch.Records)
}

func runExpire(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	store, err := a.openStore()
	if err != nil {
		return err
	}
	p, err := a.corpusPipeline(store)
	if err != nil {
		return err
	}
	p.DryRun, _ = cmd.Flags().GetBool("dry-run")

	expired, n, err := p.RetireExpired(cmd.Context())
	if err != nil {
		return err
	}
	for _, r := range expired {
		fmt.Printf("- %s (%s) [%s]\n", r.Key.Name, r.Key.Deadline, r.Site)
	}
	fmt.Printf("Retired %d of %d expired records\n", n, len(expired))
	return nil
}
