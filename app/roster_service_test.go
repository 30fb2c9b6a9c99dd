package app

import (
	"context"
	"testing"

	"designspace/domain/stimuli"
	"designspace/domain/tabular"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRosterService_Generate(t *testing.T) {
	sink := &MockTableSink{}
	sink.On("WriteTable", mock.Anything, mock.MatchedBy(func(tb *tabular.Table) bool {
		return tb.Name == RosterTable && tb.Len() == 100
	})).Return(nil)
	sink.On("Close").Return(nil)

	roster, summary, err := NewRosterService(sink).Generate(context.Background(), stimuli.DefaultRosterSpec(), 42)
	require.NoError(t, err)
	assert.Len(t, roster, 100)
	assert.Equal(t, 100, summary.Total)
	sink.AssertExpectations(t)
}

func TestRosterService_NoSink(t *testing.T) {
	_, summary, err := NewRosterService(nil).Generate(context.Background(), stimuli.DefaultRosterSpec(), 1)
	require.NoError(t, err)
	assert.Equal(t, 100, summary.Total)
}

func TestRosterToTable(t *testing.T) {
	roster := []stimuli.Stimulus{{ID: "face_001", Group: "african", Gender: stimuli.Female, Age: 24}}
	table := RosterToTable(roster)
	assert.Equal(t, []string{"face_id", "race", "gender", "age"}, table.Columns())
	assert.Equal(t, [][]string{{"face_001", "african", "female", "24"}}, table.Records())
}
