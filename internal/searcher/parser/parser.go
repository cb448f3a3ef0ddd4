// Package parser turns raw query words into the normalised, distinct terms
// looked up in the inverted index.
package parser

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/indexer/tokenizer"
)

type QueryPlan struct {
	Terms    []string
	RawQuery string
}

// Parse normalises each word like an index term. Words that normalise to
// nothing are dropped and repeated terms are kept once, in first-seen order.
func Parse(words []string) *QueryPlan {
	plan := &QueryPlan{
		Terms:    make([]string, 0, len(words)),
		RawQuery: strings.Join(words, " "),
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		term := tokenizer.Normalize(w)
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		plan.Terms = append(plan.Terms, term)
	}
	return plan
}

// ParseString splits query on whitespace and parses the words.
func ParseString(query string) *QueryPlan {
	plan := Parse(strings.Fields(query))
	plan.RawQuery = query
	return plan
}
