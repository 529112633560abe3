package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableView(t *testing.T) {
	tbl := NewTable("Scorecard", "Metric", "Value")
	tbl.AddRow("Health Score", "85/100")
	tbl.AddRow("Credit Rating", "AA")

	out := tbl.View(DefaultStyles())

	assert.Contains(t, out, "Scorecard")
	assert.Contains(t, out, "Metric")
	assert.Contains(t, out, "Value")
	assert.Contains(t, out, "Health Score")
	assert.Contains(t, out, "85/100")
	assert.Contains(t, out, "AA")
	// Separator rule sits between the header and the data rows.
	assert.Contains(t, out, "---")
}

func TestTableViewEmpty(t *testing.T) {
	tbl := NewTable("Nothing", "A", "B")
	assert.Equal(t, "", tbl.View(DefaultStyles()))
}

func TestTableViewShortRow(t *testing.T) {
	tbl := NewTable("Sparse", "A", "B", "C")
	tbl.AddRow("only")

	out := tbl.View(DefaultStyles())
	assert.Contains(t, out, "only")
}

func TestTableWidthsFollowWidestCell(t *testing.T) {
	tbl := NewTable("", "X")
	tbl.AddRow("a much longer value than the header")

	out := tbl.View(DefaultStyles())
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.GreaterOrEqual(t, len(line), len("a much longer value than the header"))
	}
}

func TestRatingStyles(t *testing.T) {
	s := DefaultStyles()
	assert.Equal(t, s.Good, s.Rating("Excellent"))
	assert.Equal(t, s.Good, s.Rating("Top Quartile"))
	assert.Equal(t, s.Warn, s.Rating("Fair"))
	assert.Equal(t, s.Warn, s.Rating("Below Median"))
	assert.Equal(t, s.Bad, s.Rating("Poor"))
}
