package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_UnionOfColumnsInFirstSeenOrder(t *testing.T) {
	table := NewTable("phase1_trials", "participant_id")

	table.Append(Row{{"participant_id", "p1"}, {"trial", "1"}, {"choice", "left"}})
	table.Append(Row{{"participant_id", "p2"}, {"rt_ms", "812"}, {"trial", "1"}})

	assert.Equal(t, []string{"participant_id", "trial", "choice", "rt_ms"}, table.Columns())
	assert.Equal(t, [][]string{
		{"p1", "1", "left", ""},
		{"p2", "1", "", "812"},
	}, table.Records())
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"", "812"}, table.Column("rt_ms"))
}

func TestTable_FixedColumnsAlwaysPresent(t *testing.T) {
	table := NewTable("surveys", "participant_id", "images_loaded", "suggestions")
	table.Append(Row{{"participant_id", "p1"}})

	assert.Equal(t, []string{"participant_id", "images_loaded", "suggestions"}, table.Columns())
	assert.Equal(t, [][]string{{"p1", "", ""}}, table.Records())
}

func TestTable_Empty(t *testing.T) {
	table := NewTable("demographics")
	assert.Empty(t, table.Columns())
	assert.Empty(t, table.Records())
}
