package config

import (
	"os"
	"path/filepath"
	"testing"

	"designspace/domain/design"
	"designspace/domain/report"
	"designspace/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "GIN_MODE", "OUTPUT_DIR", "COMPOSITE_WORKERS", "ROSTER_SEED", "DESIGN_FILE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "docs", cfg.Paths.OutputDir)
	assert.Equal(t, "data/firebase_export.json", cfg.Paths.ExportInput)
	assert.Equal(t, "data/csv_exports", cfg.Paths.ExportOutputDir)
	assert.Equal(t, "stimuli/fg_faces", cfg.Paths.FacesInputDir)
	assert.Equal(t, "stimuli/faces", cfg.Paths.FacesOutputDir)
	assert.Equal(t, 4, cfg.Composite.Workers)
	assert.Equal(t, uint64(42), cfg.Roster.Seed)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("COMPOSITE_WORKERS", "8")
	t.Setenv("ROSTER_SEED", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 8, cfg.Composite.Workers)
	assert.Equal(t, uint64(7), cfg.Roster.Seed)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("bad seed", func(t *testing.T) {
		t.Setenv("ROSTER_SEED", "-1")
		_, err := Load()
		assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	})
	t.Run("bad workers", func(t *testing.T) {
		t.Setenv("COMPOSITE_WORKERS", "0")
		_, err := Load()
		assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	})
	t.Run("bad gin mode", func(t *testing.T) {
		t.Setenv("GIN_MODE", "verbose")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoadDesignFile_MissingUsesDefaults(t *testing.T) {
	df, err := LoadDesignFile("")
	require.NoError(t, err)
	assert.Equal(t, design.DefaultConstants(), df.Constants)

	df, err = LoadDesignFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, design.DefaultPopulationSizes(), df.NValues)
	assert.Equal(t, report.DefaultHighlights(), df.Highlights)
}

func TestLoadDesignFile_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "design.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
constants:
  items_per_trial: 5
n_values: [25, 50]
highlights:
  - name: Pilot
    n: 25
    e: 10
    marker: "◆"
    edge_color: "#ff0000"
`), 0o644))

	df, err := LoadDesignFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, df.Constants.ItemsPerTrial)
	assert.Equal(t, 5.0, df.Constants.SecondsPerTrial)
	assert.Equal(t, 0.20, df.Constants.MinorityShare)
	assert.Equal(t, []int{25, 50}, df.NValues)
	assert.Equal(t, design.DefaultExposureCounts(), df.EValues)
	require.Len(t, df.Highlights, 1)
	assert.Equal(t, "Pilot", df.Highlights[0].Name)
	assert.Equal(t, 25, df.Roster.PerGroup)
}

func TestParseDesignFile_Invalid(t *testing.T) {
	cases := map[string]string{
		"share out of range": "constants:\n  minority_share: 1.5\n",
		"non-positive N":     "n_values: [20, 0]\n",
		"empty E":            "e_values: []\n",
		"bad colour":         "highlights:\n  - {name: x, n: 1, e: 1, edge_color: red}\n",
		"roster split":       "roster:\n  males_per_group: 40\n",
		"not yaml":           "constants: [",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDesignFile([]byte(input))
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
