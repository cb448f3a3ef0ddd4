// Package listing reads and writes the plain-text inverted index exchanged
// between the index and search stages: one "term id1 id2 ..." line per
// term, in ascending term order.
package listing

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/indexer/index"
)

// Write emits every entry of idx.
func Write(w io.Writer, idx *index.TermIndex) error {
	bw := bufio.NewWriter(w)
	var werr error
	idx.Walk(func(term string, postings index.PostingList) bool {
		if _, err := bw.WriteString(term); err != nil {
			werr = err
			return false
		}
		for _, id := range postings {
			if _, err := bw.WriteString(" " + id); err != nil {
				werr = err
				return false
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			werr = err
			return false
		}
		return true
	})
	if werr != nil {
		return fmt.Errorf("writing inverted index: %w", werr)
	}
	return bw.Flush()
}

// Read rebuilds a TermIndex. Lines with a term but no postings are skipped.
func Read(r io.Reader) (*index.TermIndex, error) {
	logger := slog.Default().With("component", "index-listing")
	idx := index.NewTermIndex()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNo, skipped := 0, 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			skipped++
			logger.Debug("skipping malformed index line", "line", lineNo)
			continue
		}
		for _, id := range fields[1:] {
			idx.Add(fields[0], id)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading inverted index: %w", err)
	}
	if skipped > 0 {
		logger.Warn("inverted index had malformed lines", "skipped", skipped)
	}
	return idx, nil
}
