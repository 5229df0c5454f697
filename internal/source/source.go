// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source queries publication and funding data providers and
// returns their tabular result sets.
// See docs/ARCHITECTURE.md § Sources.
package source

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/pubscope/pkg/types"
)

// Adapter fetches tabular rows from a single data provider. Each provider
// (ClinicalTrials.gov, Lens scholarly, Lens patents, NIH RePORTER)
// implements this interface per the Strategy pattern.
type Adapter interface {
	Label() string
	Descriptor() types.SourceDescriptor
	Fetch(ctx context.Context, query Query, cfg types.SearchConfig) (types.ResultSet, error)
}

// Query holds the search filters. All fields are optional; adapters apply
// the filters they support and ignore the rest.
type Query struct {
	Author      string
	Institution string
	Sponsor     string
	City        string
	State       string
	Keyword     string
}

// IsEmpty reports whether the query contains no filters at all.
func (q Query) IsEmpty() bool {
	return q.Author == "" && q.Institution == "" && q.Sponsor == "" &&
		q.City == "" && q.State == "" && q.Keyword == ""
}

// FetchOutput holds the per-source result sets plus descriptors and
// failure notes from a fan-out run.
type FetchOutput struct {
	Sets        map[string]types.ResultSet
	Descriptors map[string]types.SourceDescriptor
	Failures    []string
}

// FetchAll fans the query out to all adapters concurrently and waits for
// every one to finish. An adapter that fails contributes an empty result
// set rather than aborting the run: the downstream stages operate on
// whatever data the remaining sources returned.
func FetchAll(ctx context.Context, query Query, adapters []Adapter, cfg types.SearchConfig, w io.Writer) (FetchOutput, error) {
	if len(adapters) == 0 {
		return FetchOutput{}, fmt.Errorf("no source adapters configured")
	}

	type sourceResult struct {
		label string
		set   types.ResultSet
		err   error
	}

	ch := make(chan sourceResult, len(adapters))
	var wg sync.WaitGroup

	for i, a := range adapters {
		if i > 0 && cfg.InterSourceDelay > 0 {
			time.Sleep(cfg.InterSourceDelay)
		}
		wg.Add(1)
		go func(a Adapter) {
			defer wg.Done()
			set, err := a.Fetch(ctx, query, cfg)
			ch <- sourceResult{label: a.Label(), set: set, err: err}
		}(a)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	out := FetchOutput{
		Sets:        make(map[string]types.ResultSet, len(adapters)),
		Descriptors: make(map[string]types.SourceDescriptor, len(adapters)),
	}
	for _, a := range adapters {
		out.Descriptors[a.Label()] = a.Descriptor()
	}

	for sr := range ch {
		if sr.err != nil {
			out.Failures = append(out.Failures, fmt.Sprintf("%s: %v", sr.label, sr.err))
			fmt.Fprintf(w, "warning: source %s failed: %v\n", sr.label, sr.err)
			out.Sets[sr.label] = types.ResultSet{}
			continue
		}
		out.Sets[sr.label] = sr.set
	}

	return out, nil
}

// splitFullName breaks a "Given Family" display name into its parts.
// The last token is the family name; everything before it is the given
// name. Credential suffixes after a comma ("Jane Doe, MD") are dropped
// first. A single-token name yields an empty given name.
func splitFullName(name string) (given, family string) {
	if idx := strings.Index(name, ","); idx >= 0 {
		name = name[:idx]
	}
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return "", fields[0]
	default:
		return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
	}
}
