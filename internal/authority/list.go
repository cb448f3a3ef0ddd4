package authority

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// WriteList writes one "id, outdegree, score" line per document, highest
// score first, with the score at 7 decimal places.
func WriteList(w io.Writer, scores []Score) error {
	bw := bufio.NewWriter(w)
	for _, s := range Sorted(scores) {
		if _, err := fmt.Fprintf(bw, "%s, %d, %.7f\n", s.ID, s.OutDegree, s.Value); err != nil {
			return fmt.Errorf("writing score for %s: %w", s.ID, err)
		}
	}
	return bw.Flush()
}

// List is a parsed score list.
type List struct {
	Scores []Score
	byID   map[string]Score
}

// Lookup returns the score of id, or 0 when id is not listed.
func (l *List) Lookup(id string) float64 {
	return l.byID[id].Value
}

func (l *List) Get(id string) (Score, bool) {
	s, ok := l.byID[id]
	return s, ok
}

func (l *List) Len() int {
	return len(l.Scores)
}

// NewList indexes scores by identifier. A later duplicate replaces an
// earlier one.
func NewList(scores []Score) *List {
	l := &List{
		Scores: scores,
		byID:   make(map[string]Score, len(scores)),
	}
	for _, s := range scores {
		l.byID[s.ID] = s
	}
	return l
}

// ReadList parses a score list. Lines that do not have the three expected
// fields are skipped.
func ReadList(r io.Reader) (*List, error) {
	logger := slog.Default().With("component", "authority-list")
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	scores := make([]Score, 0)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		s, err := parseLine(line)
		if err != nil {
			logger.Debug("skipping malformed score line", "line", lineNo, "error", err)
			continue
		}
		scores = append(scores, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading score list: %w", err)
	}
	return NewList(scores), nil
}

func parseLine(line string) (Score, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return Score{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	id := strings.TrimSpace(fields[0])
	if id == "" {
		return Score{}, fmt.Errorf("empty identifier")
	}
	out, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return Score{}, fmt.Errorf("outdegree: %w", err)
	}
	val, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return Score{}, fmt.Errorf("score: %w", err)
	}
	return Score{ID: id, OutDegree: out, Value: val}, nil
}
