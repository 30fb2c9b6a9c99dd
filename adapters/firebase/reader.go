// Package firebase flattens a realtime-database export of experiment participants
// into the six analysis tables: participants, demographics, per-phase trials and surveys.
package firebase

import (
	"context"
	"fmt"
	"os"

	"designspace/domain/core"
	"designspace/domain/tabular"
	"designspace/internal"

	"github.com/tidwall/gjson"
)

// Table names, also used as output file stems
const (
	TableParticipants = "participants"
	TableDemographics = "demographics"
	TablePhase1Trials = "phase1_trials"
	TablePhase2Trials = "phase2_trials"
	TablePhase3Trials = "phase3_trials"
	TableSurveys      = "surveys"
)

// TableNames lists the tables in the order they are produced
var TableNames = []string{
	TableParticipants, TableDemographics,
	TablePhase1Trials, TablePhase2Trials, TablePhase3Trials,
	TableSurveys,
}

const participantIDColumn = "participant_id"

// fixedColumn maps an output column to a path inside one participant node
type fixedColumn struct {
	column string
	path   string
}

var participantColumns = []fixedColumn{
	{"internal_id", "metadata.internal_id"},
	{"prolific_pid", "metadata.prolific_pid"},
	{"study_id", "metadata.study_id"},
	{"session_id", "metadata.session_id"},
	{"condition_code", "metadata.condition_code"},
	{"condition", "metadata.condition"},
	{"majority_group", "metadata.majority_group"},
	{"p1_type", "metadata.p1_type"},
	{"p2_exposure", "metadata.p2_exposure"},
	{"timestamp", "metadata.timestamp"},
	{"debug_mode", "metadata.debug_mode"},
	{"phase1_score", "summary.phase1_score"},
	{"phase2_score", "summary.phase2_score"},
	{"total_score", "summary.total_score"},
	{"phase1_trials_count", "summary.phase1_trials_count"},
	{"phase2_trials_count", "summary.phase2_trials_count"},
	{"phase3_trials_count", "summary.phase3_trials_count"},
}

var surveyColumns = []fixedColumn{
	{"images_loaded", "surveys.technical_check.images_loaded"},
	{"technical_difficulties", "surveys.technical_check.technical_difficulties"},
	{"technical_difficulties_details", "surveys.technical_check.technical_difficulties_details"},
	{"clarity_rating", "surveys.user_feedback.clarity_rating"},
	{"length_rating", "surveys.user_feedback.length_rating"},
	{"suggestions", "surveys.user_feedback.suggestions"},
}

// FileSource reads an export from a JSON file on disk
type FileSource struct {
	path   string
	logger *internal.Logger
}

// NewFileSource creates a source for the export at path
func NewFileSource(path string) *FileSource {
	return &FileSource{
		path:   path,
		logger: internal.DefaultLogger.WithComponent("FirebaseExport"),
	}
}

// ReadTables loads the file and flattens it
func (s *FileSource) ReadTables(ctx context.Context) ([]*tabular.Table, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (export the participants node as JSON first)", core.ErrInputNotFound, s.path)
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("loading export from %s", s.path)
	tables, err := ParseExport(data)
	if err != nil {
		return nil, err
	}
	s.logger.Info("loaded %d participants", tables[0].Len())
	return tables, nil
}

// ParseExport flattens raw export JSON into tables ordered as TableNames. A top
// level "participants" wrapper is unwrapped.
func ParseExport(data []byte) ([]*tabular.Table, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", core.ErrMalformedExport)
	}

	root := gjson.ParseBytes(data)
	if wrapped := root.Get(TableParticipants); root.IsObject() && wrapped.Exists() {
		root = wrapped
	}

	switch {
	case !root.Exists() || root.Type == gjson.Null:
		return nil, core.ErrEmptyExport
	case !root.IsObject():
		return nil, fmt.Errorf("%w: participants must be an object keyed by participant id", core.ErrMalformedExport)
	}

	participants := tabular.NewTable(TableParticipants, columnsOf(participantIDColumn, participantColumns)...)
	demographics := tabular.NewTable(TableDemographics, participantIDColumn)
	phases := []*tabular.Table{
		tabular.NewTable(TablePhase1Trials, participantIDColumn),
		tabular.NewTable(TablePhase2Trials, participantIDColumn),
		tabular.NewTable(TablePhase3Trials, participantIDColumn),
	}
	surveys := tabular.NewTable(TableSurveys, columnsOf(participantIDColumn, surveyColumns)...)

	root.ForEach(func(key, node gjson.Result) bool {
		if !node.IsObject() {
			return true
		}
		id := key.String()

		participants.Append(fixedRow(id, node, participantColumns))
		surveys.Append(fixedRow(id, node, surveyColumns))

		if demo := node.Get("demographics"); demo.IsObject() {
			if row := objectRow(id, demo); len(row) > 1 {
				demographics.Append(row)
			}
		}

		for i, table := range phases {
			for _, trial := range trialList(node.Get(fmt.Sprintf("trials.phase%d", i+1))) {
				table.Append(objectRow(id, trial))
			}
		}
		return true
	})

	if participants.Len() == 0 {
		return nil, core.ErrEmptyExport
	}

	out := []*tabular.Table{participants, demographics}
	out = append(out, phases...)
	return append(out, surveys), nil
}

func columnsOf(first string, cols []fixedColumn) []string {
	out := []string{first}
	for _, c := range cols {
		out = append(out, c.column)
	}
	return out
}

func fixedRow(id string, node gjson.Result, cols []fixedColumn) tabular.Row {
	row := tabular.Row{{Key: participantIDColumn, Value: id}}
	for _, c := range cols {
		row = append(row, tabular.Field{Key: c.column, Value: cellValue(node.Get(c.path))})
	}
	return row
}

// objectRow copies every field of obj, in document order, after the participant id
func objectRow(id string, obj gjson.Result) tabular.Row {
	row := tabular.Row{{Key: participantIDColumn, Value: id}}
	obj.ForEach(func(k, v gjson.Result) bool {
		row = append(row, tabular.Field{Key: k.String(), Value: cellValue(v)})
		return true
	})
	return row
}

// trialList accepts both a JSON array and an index-keyed object, which is how
// sparse arrays come back from the database. Non-object entries are skipped.
func trialList(node gjson.Result) []gjson.Result {
	var out []gjson.Result
	if !node.IsArray() && !node.IsObject() {
		return out
	}
	node.ForEach(func(_, v gjson.Result) bool {
		if v.IsObject() {
			out = append(out, v)
		}
		return true
	})
	return out
}

// cellValue renders a JSON value as a CSV cell: strings unquoted, null and
// missing as empty, everything else as its JSON text
func cellValue(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return v.Str
	default:
		return v.Raw
	}
}
