package firebase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"designspace/domain/core"
	"designspace/domain/tabular"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `{
  "participants": {
    "P001": {
      "metadata": {"prolific_pid": "abc", "condition": "majority_good", "debug_mode": false, "p2_exposure": 12},
      "summary": {"phase1_score": 0.75, "phase1_trials_count": 2},
      "demographics": {"age": 24, "gender": "female"},
      "trials": {
        "phase1": [{"trial": 1, "choice": "left"}, {"trial": 2, "choice": "right", "rt_ms": 640}],
        "phase2": {"0": {"trial": 1, "shared": true}, "2": {"trial": 3, "shared": false}}
      },
      "surveys": {
        "technical_check": {"images_loaded": "yes"},
        "user_feedback": {"clarity_rating": 5, "suggestions": null}
      }
    },
    "P002": {
      "metadata": {"prolific_pid": "def"},
      "trials": {"phase1": [null, {"trial": 1, "choice": "left", "extra": {"x": 1}}]}
    }
  }
}`

func tableByName(t *testing.T, tables []*tabular.Table, name string) *tabular.Table {
	t.Helper()
	for _, tb := range tables {
		if tb.Name == name {
			return tb
		}
	}
	t.Fatalf("table %s not produced", name)
	return nil
}

func TestParseExport_Tables(t *testing.T) {
	tables, err := ParseExport([]byte(sampleExport))
	require.NoError(t, err)
	require.Len(t, tables, len(TableNames))
	for i, tb := range tables {
		assert.Equal(t, TableNames[i], tb.Name)
	}

	participants := tableByName(t, tables, TableParticipants)
	assert.Equal(t, 2, participants.Len())
	assert.Len(t, participants.Columns(), 18)
	assert.Equal(t, []string{"P001", "P002"}, participants.Column("participant_id"))
	assert.Equal(t, []string{"abc", "def"}, participants.Column("prolific_pid"))
	assert.Equal(t, []string{"false", ""}, participants.Column("debug_mode"))
	assert.Equal(t, []string{"12", ""}, participants.Column("p2_exposure"))
	assert.Equal(t, []string{"0.75", ""}, participants.Column("phase1_score"))

	demographics := tableByName(t, tables, TableDemographics)
	assert.Equal(t, 1, demographics.Len())
	assert.Equal(t, []string{"participant_id", "age", "gender"}, demographics.Columns())

	phase1 := tableByName(t, tables, TablePhase1Trials)
	assert.Equal(t, 3, phase1.Len())
	assert.Equal(t, []string{"participant_id", "trial", "choice", "rt_ms", "extra"}, phase1.Columns())
	assert.Equal(t, []string{"", "640", ""}, phase1.Column("rt_ms"))
	assert.Equal(t, []string{"", "", `{"x": 1}`}, phase1.Column("extra"))

	phase2 := tableByName(t, tables, TablePhase2Trials)
	assert.Equal(t, []string{"true", "false"}, phase2.Column("shared"))

	assert.Zero(t, tableByName(t, tables, TablePhase3Trials).Len())

	surveys := tableByName(t, tables, TableSurveys)
	assert.Equal(t, 2, surveys.Len())
	assert.Equal(t, []string{"yes", ""}, surveys.Column("images_loaded"))
	assert.Equal(t, []string{"5", ""}, surveys.Column("clarity_rating"))
	assert.Equal(t, []string{"", ""}, surveys.Column("suggestions"))
}

func TestParseExport_UnwrappedRoot(t *testing.T) {
	tables, err := ParseExport([]byte(`{"P9": {"metadata": {"condition": "x"}}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"P9"}, tables[0].Column("participant_id"))
}

func TestParseExport_Errors(t *testing.T) {
	cases := map[string]struct {
		input string
		want  error
	}{
		"empty object":      {`{}`, core.ErrEmptyExport},
		"null participants": {`{"participants": null}`, core.ErrEmptyExport},
		"null":              {`null`, core.ErrEmptyExport},
		"array root":        {`[1, 2]`, core.ErrMalformedExport},
		"invalid json":      {`{"participants": `, core.ErrMalformedExport},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseExport([]byte(tc.input))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleExport), 0o644))

	tables, err := NewFileSource(path).ReadTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, tables[0].Len())

	_, err = NewFileSource(filepath.Join(dir, "missing.json")).ReadTables(context.Background())
	assert.ErrorIs(t, err, core.ErrInputNotFound)
}
