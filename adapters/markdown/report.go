// Package markdown renders the design matrix as a Markdown report and as a
// standalone HTML page converted from it.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"designspace/domain/design"
	"designspace/domain/report"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Renderer writes the report as Markdown
type Renderer struct{}

// NewRenderer creates a Markdown renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Name() string      { return "md" }
func (r *Renderer) Extension() string { return ".md" }

// Render writes the Markdown document to w
func (r *Renderer) Render(ctx context.Context, view report.MatrixView, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := w.Write(Document(view))
	return err
}

// HTMLRenderer writes the same report as a complete HTML page
type HTMLRenderer struct{}

// NewHTMLRenderer creates an HTML renderer
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{}
}

func (r *HTMLRenderer) Name() string      { return "html" }
func (r *HTMLRenderer) Extension() string { return ".html" }

// Render converts the Markdown document and writes the page to w
func (r *HTMLRenderer) Render(ctx context.Context, view report.MatrixView, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := w.Write(ToHTML(view.Title, Document(view)))
	return err
}

// ToHTML converts Markdown to a full HTML page with tables enabled
func ToHTML(title string, md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML(md, p, renderer)
}

// Document builds the Markdown report for a view
func Document(view report.MatrixView) []byte {
	var b bytes.Buffer
	c := view.Constants

	fmt.Fprintf(&b, "# %s\n\n", view.Title)
	fmt.Fprintf(&b, "- Items per trial (k): %d\n", c.ItemsPerTrial)
	fmt.Fprintf(&b, "- Seconds per trial: %g\n", c.SecondsPerTrial)
	fmt.Fprintf(&b, "- Majority/minority split: %s\n", report.SplitLabel(c.MinorityShare))
	fmt.Fprintf(&b, "- Target good fraction: %.0f%%\n\n", c.TargetGoodFraction*100)

	b.WriteString("## Trials and session length\n\n")
	header := []string{"N \\ E"}
	for _, col := range view.Columns {
		header = append(header, col.Label)
	}
	writeTableHeader(&b, header)
	for _, row := range view.Rows {
		cells := []string{"**" + row.Label + "**"}
		for _, cell := range row.Cells {
			text := strings.ReplaceAll(cell.Text, "\n", ", ")
			if cell.Highlight != nil {
				text = fmt.Sprintf("**%s %s**", cell.Highlight.Marker, text)
			}
			cells = append(cells, text)
		}
		writeTableRow(&b, cells)
	}
	b.WriteString("\n")

	b.WriteString("## Minority feasibility\n\n")
	writeTableHeader(&b, []string{"N", "Minority count", "Good (exact)", "Good (rounded)", "Deviation", "Tier", "Label"})
	for _, row := range view.Rows {
		f := row.Feasibility
		cells := []string{fmt.Sprint(row.N), fmt.Sprintf("%g", f.MinorityCount)}
		if f.Ratio != nil {
			cells = append(cells,
				fmt.Sprintf("%.2f", f.Ratio.GoodCountExact),
				fmt.Sprint(f.Ratio.GoodCountRounded),
				fmt.Sprintf("%+.2f pp", f.Ratio.DeviationPP))
		} else {
			cells = append(cells, "n/a", "n/a", "n/a")
		}
		cells = append(cells, string(row.Tier), row.SubLabel)
		writeTableRow(&b, cells)
	}
	b.WriteString("\n")

	b.WriteString("## Exposure coverage\n\n")
	writeTableHeader(&b, []string{"E", "Expected interactions", "P(≥1)", "Tier"})
	for _, col := range view.Columns {
		writeTableRow(&b, []string{fmt.Sprint(col.E), col.InteractionLabel, col.ProbLabel, string(col.Tier)})
	}
	fmt.Fprintf(&b, "\nReference thresholds: HIGH ≥ %.0f%%, MEDIUM ≥ %.0f%%.\n",
		design.HighProbabilityThreshold*100, design.MediumProbabilityThreshold*100)

	if hl := view.HighlightedCells(); len(hl) > 0 {
		b.WriteString("\n## Highlighted configurations\n\n")
		for _, cell := range hl {
			m := cell.Metrics
			fmt.Fprintf(&b, "- %s **%s**: %d trials, %.1f min, P(≥1) = %.1f%%\n",
				cell.Highlight.Marker, cell.Highlight.Name, m.TotalTrials, m.DurationMinutes, m.ProbAtLeastOne*100)
		}
	}
	return b.Bytes()
}

func writeTableHeader(b *bytes.Buffer, cols []string) {
	writeTableRow(b, cols)
	sep := make([]string, len(cols))
	for i := range sep {
		sep[i] = "---"
	}
	writeTableRow(b, sep)
}

func writeTableRow(b *bytes.Buffer, cells []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}
