package index

import (
	"sort"
)

// TermIndex maps normalised terms to posting lists and enumerates terms in
// ascending order. It is built by a single goroutine and read-only after
// that.
type TermIndex struct {
	postings map[string]PostingList
	sorted   []string
	dirty    bool
	pairs    int
}

func NewTermIndex() *TermIndex {
	return &TermIndex{
		postings: make(map[string]PostingList),
	}
}

// Add records that term occurs in docID. It reports whether the pair was new.
func (t *TermIndex) Add(term, docID string) bool {
	list, exists := t.postings[term]
	if !exists {
		t.postings[term] = PostingList{docID}
		t.dirty = true
		t.pairs++
		return true
	}
	list, added := list.insert(docID)
	if added {
		t.postings[term] = list
		t.pairs++
	}
	return added
}

// AddDocument indexes every term of one document.
func (t *TermIndex) AddDocument(docID string, terms []string) {
	for _, term := range terms {
		t.Add(term, docID)
	}
}

// Postings returns a copy of the posting list for term, or nil.
func (t *TermIndex) Postings(term string) PostingList {
	list, ok := t.postings[term]
	if !ok {
		return nil
	}
	out := make(PostingList, len(list))
	copy(out, list)
	return out
}

func (t *TermIndex) Has(term string) bool {
	_, ok := t.postings[term]
	return ok
}

// Terms returns every term in ascending order.
func (t *TermIndex) Terms() []string {
	keys := t.keys()
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Walk visits terms in ascending order until fn returns false.
func (t *TermIndex) Walk(fn func(term string, postings PostingList) bool) {
	for _, term := range t.keys() {
		if !fn(term, t.postings[term]) {
			return
		}
	}
}

// Entries snapshots the index in ascending term order.
func (t *TermIndex) Entries() []TermEntry {
	entries := make([]TermEntry, 0, len(t.postings))
	t.Walk(func(term string, postings PostingList) bool {
		list := make(PostingList, len(postings))
		copy(list, postings)
		entries = append(entries, TermEntry{Term: term, Postings: list})
		return true
	})
	return entries
}

// Len returns the number of distinct terms.
func (t *TermIndex) Len() int {
	return len(t.postings)
}

// Pairs returns the number of (term, document) pairs.
func (t *TermIndex) Pairs() int {
	return t.pairs
}

// DocCount returns the number of distinct documents with at least one term.
func (t *TermIndex) DocCount() int {
	docs := make(map[string]struct{})
	for _, list := range t.postings {
		for _, id := range list {
			docs[id] = struct{}{}
		}
	}
	return len(docs)
}

func (t *TermIndex) keys() []string {
	if t.dirty || t.sorted == nil {
		t.sorted = make([]string, 0, len(t.postings))
		for term := range t.postings {
			t.sorted = append(t.sorted, term)
		}
		sort.Strings(t.sorted)
		t.dirty = false
	}
	return t.sorted
}
