package render

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/uber/lsp-graph/src/lspgraph/entity"
	"gopkg.in/yaml.v3"
)

// Report formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// UsageRow is one function in a usage report. Line is 1-based.
type UsageRow struct {
	Name  string  `yaml:"name"`
	URI   string  `yaml:"uri"`
	Line  uint32  `yaml:"line"`
	Score float64 `yaml:"score"`
}

// UsageRows orders scores by descending score, then name, then location.
func UsageRows(scores []entity.UsageScore) []UsageRow {
	rows := make([]UsageRow, 0, len(scores))
	for _, s := range scores {
		rows = append(rows, UsageRow{
			Name:  s.Item.Name,
			URI:   string(s.Item.URI),
			Line:  s.Item.SelectionRange.Start.Line + 1,
			Score: s.Score,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.URI != b.URI {
			return a.URI < b.URI
		}
		return a.Line < b.Line
	})
	return rows
}

// UsageReport writes scores in the given format.
func UsageReport(w io.Writer, scores []entity.UsageScore, format string) error {
	rows := UsageRows(scores)
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("encoding usage report: %w", err)
		}
		return enc.Close()
	case FormatText, "":
		_, err := fmt.Fprintln(w, usageTable(rows))
		return err
	default:
		return fmt.Errorf("unknown report format %q, want %q or %q", format, FormatText, FormatYAML)
	}
}

func usageTable(rows []UsageRow) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SCORE", "FUNCTION", "LOCATION")
	for _, row := range rows {
		t.Row(
			strconv.FormatFloat(row.Score, 'f', 2, 64),
			row.Name,
			row.URI+":"+strconv.FormatUint(uint64(row.Line), 10),
		)
	}
	return t.String()
}
