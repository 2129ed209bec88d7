// Package core holds the domain model of the vault store: entries, the closed
// set of collections, confidence levels and the contracts storage adapters
// implement.
package core

import (
	"fmt"
	"time"
)

// Collection is a named bucket of entries. The set is closed; use
// ParseCollection to convert untrusted input.
type Collection string

const (
	Strategic   Collection = "strategic"
	Technical   Collection = "technical"
	Creative    Collection = "creative"
	Operational Collection = "operational"
	Wisdom      Collection = "wisdom"
	// Horizon is the append-only collection. Entries stored here can be
	// created and read but never updated or removed.
	Horizon Collection = "horizon"
)

// Collections lists every collection in scan order.
var Collections = []Collection{Strategic, Technical, Creative, Operational, Wisdom, Horizon}

// Valid reports whether c is a member of the closed set.
func (c Collection) Valid() bool {
	switch c {
	case Strategic, Technical, Creative, Operational, Wisdom, Horizon:
		return true
	}
	return false
}

// AppendOnly reports whether entries of c are immutable once written.
func (c Collection) AppendOnly() bool {
	switch c {
	case Horizon:
		return true
	default:
		return false
	}
}

func (c Collection) String() string { return string(c) }

// ParseCollection converts a string to a Collection.
func ParseCollection(s string) (Collection, error) {
	c := Collection(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown collection %q", s)
	}
	return c, nil
}

// MutableCollections returns every collection that accepts updates.
func MutableCollections() []Collection {
	out := make([]Collection, 0, len(Collections))
	for _, c := range Collections {
		if !c.AppendOnly() {
			out = append(out, c)
		}
	}
	return out
}

// Confidence classifies how trustworthy an entry is. It is ordered:
// low < medium < high < verified.
type Confidence string

const (
	Low      Confidence = "low"
	Medium   Confidence = "medium"
	High     Confidence = "high"
	Verified Confidence = "verified"
)

// Rank returns the ordinal of c (0 for low, 3 for verified) or -1 when c is
// not a known level.
func (c Confidence) Rank() int {
	switch c {
	case Low:
		return 0
	case Medium:
		return 1
	case High:
		return 2
	case Verified:
		return 3
	}
	return -1
}

// Valid reports whether c is a known level.
func (c Confidence) Valid() bool { return c.Rank() >= 0 }

func (c Confidence) String() string { return string(c) }

// ParseConfidence converts a string to a Confidence.
func ParseConfidence(s string) (Confidence, error) {
	c := Confidence(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown confidence %q", s)
	}
	return c, nil
}

// Entry is the unit of storage.
type Entry struct {
	ID               string     `json:"id"`
	Collection       Collection `json:"collection"`
	Content          string     `json:"content"`
	Tags             []string   `json:"tags"`
	Confidence       Confidence `json:"confidence"`
	Origin           string     `json:"origin,omitempty"`
	AssociatedEntity string     `json:"associatedEntity,omitempty"`
	SecondaryTag     string     `json:"secondaryTag,omitempty"`
	Summary          string     `json:"summary,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
}

// Expired reports whether the entry is invisible at instant now.
func (e Entry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && e.ExpiresAt.Before(now)
}

// HasTags reports whether every tag in want is present on the entry.
func (e Entry) HasTags(want []string) bool {
	for _, w := range want {
		found := false
		for _, t := range e.Tags {
			if t == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

const summaryLength = 120

// DisplaySummary returns Summary, or a prefix of Content with newlines folded
// when no summary was provided.
func (e Entry) DisplaySummary() string {
	if e.Summary != "" {
		return e.Summary
	}
	runes := []rune(e.Content)
	if len(runes) > summaryLength {
		runes = runes[:summaryLength]
	}
	out := make([]rune, len(runes))
	for i, r := range runes {
		if r == '\n' || r == '\r' {
			r = ' '
		}
		out[i] = r
	}
	return string(out)
}

// SortBy selects the ordering of search results.
type SortBy string

const (
	SortRelevance  SortBy = "relevance"
	SortRecency    SortBy = "recency"
	SortConfidence SortBy = "confidence"
)

// DefaultSearchLimit is applied when SearchOptions.Limit is zero.
const DefaultSearchLimit = 20

// SearchOptions configures a full-text search. Zero values disable the
// corresponding filter.
type SearchOptions struct {
	Query            string
	Collections      []Collection
	AssociatedEntity string
	Tags             []string
	MinConfidence    Confidence
	Limit            int
	Offset           int
	SortBy           SortBy
}

// SearchResult is a ranked hit.
type SearchResult struct {
	Entry        Entry    `json:"entry"`
	Score        float64  `json:"score"`
	MatchedTerms []string `json:"matchedTerms"`
}

// ListOptions pages a listing. Limit zero means no limit.
type ListOptions struct {
	Limit  int
	Offset int
}

// TagCount pairs a tag with its number of live entries.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// CollectionStats summarises the live entries of one collection.
type CollectionStats struct {
	Collection Collection     `json:"collection"`
	Count      int            `json:"count"`
	TopTags    []TagCount     `json:"topTags"`
	Entities   map[string]int `json:"entities"`
	Oldest     *time.Time     `json:"oldest,omitempty"`
	Newest     *time.Time     `json:"newest,omitempty"`
}

// EventType represents the type of change observed in the store.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change observed by a watcher.
type Event struct {
	Type       EventType
	ID         string
	Collection Collection
	Timestamp  int64 // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s/%s", e.Type, e.Collection, e.ID)
}
