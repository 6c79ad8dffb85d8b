// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"fmt"
	"strings"

	"github.com/pdiddy/grantscraper/internal/httputil"
	"github.com/pdiddy/grantscraper/internal/logger"
	"github.com/pdiddy/grantscraper/pkg/types"
)

type constructor func(Deps) Extractor

// registry lists every extractor in run order.
var registry = []struct {
	name string
	new  constructor
}{
	{"philscholar", func(d Deps) Extractor { return NewPhilscholar(d) }},
	{"unifast", func(d Deps) Extractor { return NewUniFAST(d) }},
	{"tesda", func(d Deps) Extractor { return NewTESDA(d) }},
	{"upd-oica", func(d Deps) Extractor { return NewUPDOICA(d) }},
	{"hau", func(d Deps) Extractor { return NewHAU(d) }},
	{"careersfilipino", func(d Deps) Extractor { return NewCareersFilipino(d) }},
}

// Names returns every known source name in run order.
func Names() []string {
	out := make([]string, len(registry))
	for i, r := range registry {
		out[i] = r.name
	}
	return out
}

// Build constructs the enabled extractors in run order. When only is
// non-empty it selects sources by name regardless of their enabled flag;
// an unknown name is an error.
func Build(cfg types.ExtractionConfig, fetcher *httputil.Fetcher, log logger.Logger, only []string) ([]Extractor, error) {
	if log == nil {
		log = logger.NewNop()
	}
	want := make(map[string]bool, len(only))
	for _, n := range only {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if !known(n) {
			return nil, fmt.Errorf("unknown source %q (known: %s)", n, strings.Join(Names(), ", "))
		}
		want[n] = true
	}

	var out []Extractor
	for _, r := range registry {
		sc := cfg.Source(r.name)
		if len(want) > 0 {
			if !want[r.name] {
				continue
			}
		} else if !sc.IsEnabled() {
			continue
		}

		f := fetcher
		if sc.InsecureTLS {
			f = fetcher.Insecure()
		}
		out = append(out, r.new(Deps{
			Fetcher: f,
			Log:     log.With(logger.String("source", r.name)),
			Config:  sc,
		}))
	}
	return out, nil
}

func known(name string) bool {
	for _, r := range registry {
		if r.name == name {
			return true
		}
	}
	return false
}
