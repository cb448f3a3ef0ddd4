// Package collection is the in-memory document store shared by every
// pipeline stage. A Collection is built once from the listing file and the
// per-document body files and is never mutated afterwards.
package collection

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/linkrank/pkg/errors"
)

// Document is one page of the collection: its identifier and the raw
// whitespace-separated tokens of its file.
type Document struct {
	ID     string
	Tokens []string
}

// Collection holds documents in listing order.
type Collection struct {
	Docs  []Document
	index map[string]int
}

// Options locate the collection on disk.
type Options struct {
	Dir       string
	Listing   string
	DocSuffix string
}

// New builds a Collection from already parsed documents. Documents whose
// identifier was seen before are dropped.
func New(docs []Document) *Collection {
	c := &Collection{
		Docs:  make([]Document, 0, len(docs)),
		index: make(map[string]int, len(docs)),
	}
	for _, d := range docs {
		if _, dup := c.index[d.ID]; dup {
			continue
		}
		c.index[d.ID] = len(c.Docs)
		c.Docs = append(c.Docs, d)
	}
	return c
}

func (c *Collection) Len() int {
	return len(c.Docs)
}

// Index returns the listing position of id.
func (c *Collection) Index(id string) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

func (c *Collection) IDs() []string {
	ids := make([]string, len(c.Docs))
	for i, d := range c.Docs {
		ids[i] = d.ID
	}
	return ids
}

// ReadListing returns the identifiers of a collection listing in order.
// Repeated identifiers are kept only once.
func ReadListing(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for sc.Scan() {
		id := sc.Text()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// Parse tokenises a document body on whitespace.
func Parse(id string, r io.Reader) (Document, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)
	doc := Document{ID: id, Tokens: make([]string, 0, 64)}
	for sc.Scan() {
		doc.Tokens = append(doc.Tokens, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// IDFromFilename strips the document suffix from a file name.
func IDFromFilename(name, suffix string) string {
	return strings.TrimSuffix(filepath.Base(name), suffix)
}

// Load reads the listing and every document it names. Any unreadable file
// aborts the load; no partial collection is returned.
func Load(ctx context.Context, opts Options) (*Collection, error) {
	logger := slog.Default().With("component", "collection")
	listingPath := filepath.Join(opts.Dir, opts.Listing)
	f, err := os.Open(listingPath)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrCollectionRead, 0, "opening %s: %v", listingPath, err)
	}
	ids, err := ReadListing(f)
	f.Close()
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrCollectionRead, 0, "reading %s: %v", listingPath, err)
	}

	docs := make([]Document, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, entry := range ids {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("loading collection: %w", err)
		}
		// listings may name files ("url1.txt") rather than identifiers
		id := IDFromFilename(entry, opts.DocSuffix)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		doc, err := loadDocument(filepath.Join(opts.Dir, id+opts.DocSuffix), id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	logger.Info("collection loaded",
		"listing", listingPath,
		"documents", len(docs),
	)
	return New(docs), nil
}

func loadDocument(path, id string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, apperrors.Newf(apperrors.ErrDocumentRead, 0, "opening %s: %v", path, err)
	}
	defer f.Close()
	doc, err := Parse(id, f)
	if err != nil {
		return Document{}, apperrors.Newf(apperrors.ErrDocumentRead, 0, "reading %s: %v", path, err)
	}
	return doc, nil
}
