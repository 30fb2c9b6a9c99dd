package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"designspace/app"
	"designspace/domain/stimuli"
	"designspace/internal"
	"designspace/internal/config"
	"designspace/internal/container"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	var designPath string

	rootCmd := &cobra.Command{
		Use:           "designspace",
		Short:         "Explore participant, exposure and session-length trade-offs for a perception experiment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&designPath, "design", "", "YAML design file (default: $DESIGN_FILE, then built-in values)")

	load := func() (*container.Container, error) {
		return loadContainer(designPath)
	}

	rootCmd.AddCommand(
		newMatrixCmd(load),
		newReportCmd(load),
		newExportCmd(load),
		newCompositeCmd(load),
		newRosterCmd(load),
		newServeCmd(load),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type loader func() (*container.Container, error)

// loadContainer reads .env, the environment and the design file, in that order
func loadContainer(designPath string) (*container.Container, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(cfg.LogLevel))

	if designPath == "" {
		designPath = cfg.Paths.DesignFile
	}
	df, err := config.LoadDesignFile(designPath)
	if err != nil {
		return nil, err
	}
	return container.New(cfg, df)
}

func newMatrixCmd(load loader) *cobra.Command {
	var nValues, eValues []int
	var format, out string

	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Evaluate the N x E grid and print it",
		Long: `Evaluate every (N, E) combination and render the design matrix.

Formats: terminal (default), md, html, xlsx, json.

Example: designspace matrix --n 20,40,60 --e 8,12 --format md --out matrix.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load()
			if err != nil {
				return err
			}
			req := c.MatrixRequest()
			if len(nValues) > 0 {
				req.NValues = nValues
			}
			if len(eValues) > 0 {
				req.EValues = eValues
			}

			result, err := c.Matrix.Compute(cmd.Context(), req)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			if format == "json" {
				return writeJSON(w, result)
			}
			return c.Matrix.Render(cmd.Context(), result, format, w)
		},
	}

	cmd.Flags().IntSliceVar(&nValues, "n", nil, "Participant counts (default: design file)")
	cmd.Flags().IntSliceVar(&eValues, "e", nil, "Exposures per item (default: design file)")
	cmd.Flags().StringVar(&format, "format", "terminal", "Output format: terminal|md|html|xlsx|json")
	cmd.Flags().StringVar(&out, "out", "", "Write to this file instead of stdout")
	return cmd
}

func newReportCmd(load loader) *cobra.Command {
	var formats []string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the design matrix in every file format",
		Long: `Render the configured design space to OUTPUT_DIR (default docs/)
as design_parameter_matrix.{xlsx,md,html,txt}.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load()
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = c.Config.Paths.OutputDir
			}
			if len(formats) == 0 {
				formats = c.Matrix.Formats()
			}

			result, err := c.Matrix.Compute(cmd.Context(), c.MatrixRequest())
			if err != nil {
				return err
			}
			paths, err := c.Matrix.RenderFiles(cmd.Context(), result, outputDir, formats...)
			if err != nil {
				return err
			}

			s := result.Summary
			fmt.Fprintf(cmd.OutOrStdout(), "Run %s (%s)\n", result.Manifest.RunID, result.Manifest.Fingerprint.Short())
			fmt.Fprintf(cmd.OutOrStdout(), "  %d cells, %d-%d trials, %.1f-%.1f min (median %.1f)\n",
				s.Cells, s.MinTrials, s.MaxTrials, s.MinDuration, s.MaxDuration, s.MedianDuration)
			fmt.Fprintf(cmd.OutOrStdout(), "  %d/%d N values feasible, %d/%d E values with P(>=1) >= 95%%\n",
				s.FeasibleRows, len(result.Grid.NValues), s.HighColumns, len(result.Grid.EValues))
			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "  saved %s\n", p)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&formats, "formats", nil, "Formats to render (default: all)")
	cmd.Flags().StringVar(&outputDir, "out-dir", "", "Output directory (default: $OUTPUT_DIR)")
	return cmd
}

func newExportCmd(load loader) *cobra.Command {
	var input, outputDir, workbook string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Flatten a participant JSON export into CSV tables",
		Long: `Flatten a realtime-database export into participants, trials,
demographics, per-phase trial and survey tables, one CSV each. An .xlsx
or .csv input is read back as tables and re-exported.

Example: designspace export --input data/firebase_export.json --workbook data/export.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load()
			if err != nil {
				return err
			}
			svc, err := c.ExportService(input, outputDir, workbook)
			if err != nil {
				return err
			}
			summary, err := svc.Export(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range summary.Tables {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %6d rows\n", name, summary.Rows[name])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Export JSON, or a previously exported .xlsx/.csv (default: $EXPORT_INPUT)")
	cmd.Flags().StringVar(&outputDir, "out-dir", "", "CSV directory (default: $EXPORT_OUTPUT_DIR)")
	cmd.Flags().StringVar(&workbook, "workbook", "", "Also write every table as a sheet of this xlsx file")
	return cmd
}

func newCompositeCmd(load loader) *cobra.Command {
	var inputDir, outputDir string
	var workers int

	cmd := &cobra.Command{
		Use:   "composite",
		Short: "Flatten transparent face images onto red and blue backgrounds",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load()
			if err != nil {
				return err
			}
			req := c.CompositeRequest()
			if inputDir != "" {
				req.InputDir = inputDir
			}
			if outputDir != "" {
				req.OutputDir = outputDir
			}
			if workers > 0 {
				req.Workers = workers
			}

			report, err := c.Composite.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d sources, %d written, %d failed\n",
				report.Sources, len(report.Written), len(report.Failed))
			for _, f := range report.Failed {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s (%s): %s\n", filepath.Base(f.Source), f.Color, f.Error)
			}
			if len(report.Failed) > 0 {
				return fmt.Errorf("%d composites failed", len(report.Failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputDir, "input", "", "Source PNG directory (default: $FACES_INPUT_DIR)")
	cmd.Flags().StringVar(&outputDir, "out-dir", "", "Output directory (default: $FACES_OUTPUT_DIR)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent images (default: $COMPOSITE_WORKERS)")
	return cmd
}

func newRosterCmd(load loader) *cobra.Command {
	var seed uint64
	var outputDir string

	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Draw the balanced stimulus roster and write face_design.csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				seed = c.Config.Roster.Seed
			}
			svc, err := c.RosterService(outputDir)
			if err != nil {
				return err
			}
			_, summary, err := svc.Generate(cmd.Context(), c.Design.Roster, seed)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%d stimuli (seed %d)\n", summary.Total, seed)
			groups := make([]string, 0, len(summary.PerGroup))
			for _, g := range c.Design.Roster.Groups {
				groups = append(groups, fmt.Sprintf("%s=%d", g, summary.PerGroup[g]))
			}
			fmt.Fprintf(w, "  groups:  %s\n", strings.Join(groups, " "))
			fmt.Fprintf(w, "  genders: male=%d female=%d\n", summary.PerGender[stimuli.Male], summary.PerGender[stimuli.Female])
			fmt.Fprintf(w, "  ages:    %d-%d, mean %.1f, sd %.1f\n", summary.MinAge, summary.MaxAge, summary.MeanAge, summary.StdAge)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (default: $ROSTER_SEED)")
	cmd.Flags().StringVar(&outputDir, "out-dir", "", "Output directory (default: $ROSTER_OUTPUT)")
	return cmd
}

func newServeCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the design report and its JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load()
			if err != nil {
				return err
			}
			gin.SetMode(c.Config.Server.GinMode)
			return c.Server().Run(cmd.Context(), c.Addr())
		},
	}
	return cmd
}

func writeJSON(w io.Writer, result *app.MatrixResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
