package fs

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/aretw0/strata/pkg/core"
	"github.com/aretw0/strata/pkg/fulltext"
)

const (
	exactWeight      = 2
	prefixWeight     = 1
	recencyCeiling   = 0.1
	confidenceFactor = 0.033
)

// Search runs a ranked full-text query.
//
// Each query term scores 2 for every document that contains it and, for
// terms of at least three runes, 1 more per other indexed term it prefixes.
// Candidates are filtered by collection, associated entity, tags (all
// required), minimum confidence and expiry, in that order. The final score
// adds a recency and a confidence bonus to the normalized word score and is
// capped at 1.
func (e *Engine) Search(ctx context.Context, opts core.SearchOptions) (results []core.SearchResult, err error) {
	start := time.Now()
	defer func() { e.observe("search", start, err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkReady(); err != nil {
		return nil, err
	}
	if _, err := resolveCollections(opts.Collections, nil); err != nil {
		return nil, err
	}
	if opts.MinConfidence != "" && !opts.MinConfidence.Valid() {
		return nil, fmt.Errorf("unknown confidence %q", opts.MinConfidence)
	}

	terms := fulltext.Unique(opts.Query)
	if len(terms) == 0 {
		return []core.SearchResult{}, nil
	}

	raw := make(map[string]int)
	for _, term := range terms {
		for _, id := range e.index.Exact(term) {
			raw[id] += exactWeight
		}
		for _, ids := range e.index.Prefix(term) {
			for _, id := range ids {
				raw[id] += prefixWeight
			}
		}
	}

	candidates := make([]string, 0, len(raw))
	for id, score := range raw {
		if score > 0 {
			candidates = append(candidates, id)
		}
	}
	sort.Strings(candidates)

	var collections map[core.Collection]bool
	if len(opts.Collections) > 0 {
		collections = make(map[core.Collection]bool, len(opts.Collections))
		for _, c := range opts.Collections {
			collections[c] = true
		}
	}
	minRank := -1
	if opts.MinConfidence != "" {
		minRank = opts.MinConfidence.Rank()
	}

	now := e.now()
	results = make([]core.SearchResult, 0, len(candidates))
	for _, id := range candidates {
		en, ok := e.load(id)
		if !ok {
			continue
		}
		if collections != nil && !collections[en.Collection] {
			continue
		}
		if opts.AssociatedEntity != "" && en.AssociatedEntity != opts.AssociatedEntity {
			continue
		}
		if !en.HasTags(opts.Tags) {
			continue
		}
		if en.Confidence.Rank() < minRank {
			continue
		}
		if en.Expired(now) {
			continue
		}

		results = append(results, core.SearchResult{
			Entry:        en,
			Score:        e.score(en, raw[id], len(terms), now),
			MatchedTerms: e.matchedTerms(id, terms),
		})
	}

	sortResults(results, opts.SortBy)

	limit := opts.Limit
	if limit <= 0 {
		limit = core.DefaultSearchLimit
	}
	return page(results, opts.Offset, limit), nil
}

func (e *Engine) score(en core.Entry, raw, termCount int, now time.Time) float64 {
	word := float64(raw) / float64(termCount*exactWeight)

	age := now.Sub(en.CreatedAt)
	if age < 0 {
		age = 0
	}
	recency := recencyCeiling * math.Max(0, 1-float64(age)/float64(e.config.RecencyWindow))

	confidence := float64(max(en.Confidence.Rank(), 0)) * confidenceFactor

	return math.Min(1, word+recency+confidence)
}

// matchedTerms returns the query terms that hit id exactly or by prefix.
func (e *Engine) matchedTerms(id string, terms []string) []string {
	matched := []string{}
	for _, term := range terms {
		if e.index.Has(term, id) {
			matched = append(matched, term)
			continue
		}
		for _, ids := range e.index.Prefix(term) {
			if containsSorted(ids, id) {
				matched = append(matched, term)
				break
			}
		}
	}
	return matched
}

func containsSorted(ids []string, id string) bool {
	i := sort.SearchStrings(ids, id)
	return i < len(ids) && ids[i] == id
}

func sortResults(results []core.SearchResult, by core.SortBy) {
	var less func(a, b core.SearchResult) bool
	switch by {
	case core.SortRecency:
		less = func(a, b core.SearchResult) bool { return a.Entry.UpdatedAt.After(b.Entry.UpdatedAt) }
	case core.SortConfidence:
		less = func(a, b core.SearchResult) bool { return a.Entry.Confidence.Rank() > b.Entry.Confidence.Rank() }
	default:
		less = func(a, b core.SearchResult) bool { return a.Score > b.Score }
	}
	sort.SliceStable(results, func(i, j int) bool { return less(results[i], results[j]) })
}
