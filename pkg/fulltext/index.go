package fulltext

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Index maps terms to the ids of the documents containing them.
//
// Besides the term → ids postings it keeps the reverse id → terms mapping, so a
// document can be dropped even when its previous text is no longer known
// (for example after the file was edited outside the process).
//
// Index is not safe for concurrent use; the owner serializes access.
type Index struct {
	postings map[string]map[string]struct{}
	forward  map[string]map[string]struct{}
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		postings: make(map[string]map[string]struct{}),
		forward:  make(map[string]map[string]struct{}),
	}
}

// Add indexes every term of text under id.
func (x *Index) Add(id, text string) {
	for _, term := range Tokenize(text) {
		ids, ok := x.postings[term]
		if !ok {
			ids = make(map[string]struct{})
			x.postings[term] = ids
		}
		ids[id] = struct{}{}

		terms, ok := x.forward[id]
		if !ok {
			terms = make(map[string]struct{})
			x.forward[id] = terms
		}
		terms[term] = struct{}{}
	}
}

// Remove deletes id from the postings of every term of text. A term left
// without documents is deleted.
func (x *Index) Remove(id, text string) {
	for _, term := range Tokenize(text) {
		x.unlink(term, id)
		if terms, ok := x.forward[id]; ok {
			delete(terms, term)
			if len(terms) == 0 {
				delete(x.forward, id)
			}
		}
	}
}

// Drop removes id from every term it was indexed under.
func (x *Index) Drop(id string) {
	for term := range x.forward[id] {
		x.unlink(term, id)
	}
	delete(x.forward, id)
}

func (x *Index) unlink(term, id string) {
	ids, ok := x.postings[term]
	if !ok {
		return
	}
	delete(ids, id)
	if len(ids) == 0 {
		delete(x.postings, term)
	}
}

// Exact returns the ids indexed under term, sorted.
func (x *Index) Exact(term string) []string {
	return sortedKeys(x.postings[term])
}

// Prefix returns, for every indexed term other than term itself that starts
// with term, the ids indexed under it. Terms shorter than MinPrefixLength
// never match by prefix and yield nil.
func (x *Index) Prefix(term string) map[string][]string {
	if utf8.RuneCountInString(term) < MinPrefixLength {
		return nil
	}
	out := make(map[string][]string)
	for t, ids := range x.postings {
		if t != term && strings.HasPrefix(t, term) {
			out[t] = sortedKeys(ids)
		}
	}
	return out
}

// Has reports whether id is indexed under term.
func (x *Index) Has(term, id string) bool {
	_, ok := x.postings[term][id]
	return ok
}

// Contains reports whether id has any indexed term.
func (x *Index) Contains(id string) bool {
	_, ok := x.forward[id]
	return ok
}

// Terms returns every indexed term, sorted.
func (x *Index) Terms() []string {
	return sortedKeys(x.postings)
}

// Len returns the number of distinct terms.
func (x *Index) Len() int { return len(x.postings) }

// Documents returns the number of indexed documents.
func (x *Index) Documents() int { return len(x.forward) }

// Reset empties the index.
func (x *Index) Reset() {
	x.postings = make(map[string]map[string]struct{})
	x.forward = make(map[string]map[string]struct{})
}

func sortedKeys[V any](m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
