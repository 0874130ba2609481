// Package report renders screening runs as markdown and HTML.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"taxoscreen/domain/screen"
)

// Markdown renders a screening run as a markdown document with the run
// configuration and the significant-feature table.
func Markdown(run *screen.Run) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Association Screen: %s\n\n", run.DatasetLabel)
	fmt.Fprintf(&b, "Run `%s`, created %s.\n\n", run.ID, run.CreatedAt.Time().Format("2006-01-02 15:04:05 MST"))

	b.WriteString("## Configuration\n\n")
	fmt.Fprintf(&b, "- Test variant: %s\n", run.Config.Variant)
	if run.Config.Variant == screen.TestCorrelation {
		fmt.Fprintf(&b, "- Covariate: %s\n", run.Config.CovariateColumn)
	}
	fmt.Fprintf(&b, "- Abundance cutoff: %g\n", run.Config.AbundanceCutoff)
	fmt.Fprintf(&b, "- Significance level: %g\n\n", run.Config.Alpha)

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Features in matrix: %d\n", run.FeaturesTotal)
	fmt.Fprintf(&b, "- Features tested after abundance filter: %d\n", run.FeaturesKept)
	fmt.Fprintf(&b, "- Significant features (adjusted p < %g): %d\n\n", run.Config.Alpha, len(run.Results))

	if len(run.Results) == 0 {
		b.WriteString("No features passed the significance threshold.\n")
		return b.String()
	}

	b.WriteString("## Significant features\n\n")
	b.WriteString("| Rank | Feature | Raw p | Adjusted p | Effect size |\n")
	b.WriteString("|------|---------|-------|------------|-------------|\n")
	for _, res := range run.Results {
		fmt.Fprintf(&b, "| %d | %s | %.4g | %.4g | %.3f |\n",
			res.Rank, res.FeatureID, res.RawP, res.AdjustedP, res.EffectSize)
	}
	return b.String()
}

// HTML renders the markdown report as an HTML fragment
func HTML(run *screen.Run) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(Markdown(run)))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}
