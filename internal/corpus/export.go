// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/grantscraper/pkg/types"
)

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Export writes the records matching f to w in the given format.
func Export(ctx context.Context, l Lister, w io.Writer, format string, f Filter) error {
	switch format {
	case FormatYAML, "yml", "":
		return ExportYAML(ctx, l, w, f)
	case FormatJSON:
		return ExportJSON(ctx, l, w, f)
	default:
		return fmt.Errorf("unknown export format %q (want yaml or json)", format)
	}
}

// ExportYAML writes the records matching f to w as a YAML sequence.
func ExportYAML(ctx context.Context, l Lister, w io.Writer, f Filter) error {
	recs, err := exportRecords(ctx, l, f)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(recs); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes the records matching f to w as an indented JSON array.
func ExportJSON(ctx context.Context, l Lister, w io.Writer, f Filter) error {
	recs, err := exportRecords(ctx, l, f)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(recs); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func exportRecords(ctx context.Context, l Lister, f Filter) ([]types.Record, error) {
	recs, err := l.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if recs == nil {
		recs = []types.Record{}
	}
	return recs, nil
}
