// Package report renders ranked matches as an aligned text table.
package report

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/searcher/ranker"
	"github.com/mattn/go-runewidth"
)

var header = []string{"RANK", "DOCUMENT", "MATCHES", "SCORE"}

// Table writes one row per match. Columns are padded by display width so
// identifiers with wide characters stay aligned.
func Table(w io.Writer, matches []ranker.Match) error {
	rows := make([][]string, 0, len(matches)+1)
	rows = append(rows, header)
	for i, m := range matches {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			m.DocID,
			strconv.Itoa(m.Count),
			strconv.FormatFloat(m.Score, 'f', 7, 64),
		})
	}

	widths := make([]int, len(header))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	bw := bufio.NewWriter(w)
	for _, row := range rows {
		var sb strings.Builder
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(cell)
			if i < len(row)-1 {
				sb.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell)))
			}
		}
		sb.WriteByte('\n')
		if _, err := bw.WriteString(sb.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}
