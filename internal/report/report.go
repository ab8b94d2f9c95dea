// Package report renders a column-by-column summary of a table as Markdown
// or HTML.
package report

import (
	"fmt"
	"strings"

	"dataviz/domain/table"
	"dataviz/internal/profiling"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Column is the summary of one column.
type Column struct {
	Name         string
	Stats        profiling.ColumnStats
	Missing      int
	Distribution *profiling.Distribution
}

// Report summarises a whole table.
type Report struct {
	Source  string
	Rows    int
	Columns []Column
}

// Build profiles every column of t. Numeric columns with at least two
// values also get a distribution.
func Build(source string, t *table.Table) *Report {
	r := &Report{Source: source, Rows: t.Len()}
	for _, name := range t.Columns() {
		cells, _ := t.Column(name)
		col := Column{Name: name, Stats: profiling.Describe(cells)}
		var values []float64
		for _, c := range cells {
			if c.IsMissing() {
				col.Missing++
				continue
			}
			if v, ok := c.Float(); ok {
				values = append(values, v)
			}
		}
		if col.Stats.Type == profiling.Numeric && len(values) > 1 {
			if d, err := profiling.AnalyzeDistribution(values, profiling.HistogramBins); err == nil {
				col.Distribution = &d
			}
		}
		r.Columns = append(r.Columns, col)
	}
	return r
}

// Markdown renders the report.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# Data summary\n\n")
	if r.Source != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n\n", safeVal(r.Source)))
	}
	b.WriteString(fmt.Sprintf("Rows: %d, columns: %d\n\n", r.Rows, len(r.Columns)))

	if len(r.Columns) == 0 {
		return b.String()
	}

	b.WriteString("| Column | Type | Values | Missing | Summary |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, c := range r.Columns {
		b.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %s |\n",
			safeName(c.Name), c.Stats.Type, c.Stats.Count, c.Missing, summaryCell(c.Stats)))
	}

	for _, c := range r.Columns {
		d := c.Distribution
		if d == nil {
			continue
		}
		b.WriteString(fmt.Sprintf("\n## %s\n\n", safeName(c.Name)))
		b.WriteString(fmt.Sprintf("- quartiles: %.4g / %.4g\n", d.Q25, d.Q75))
		b.WriteString(fmt.Sprintf("- skewness %.3f, kurtosis %.3f\n", d.Skewness, d.Kurtosis))
		b.WriteString(fmt.Sprintf("- outliers (1.5 IQR): %d\n", d.Outliers))
		if d.NormalityP > 0 {
			b.WriteString(fmt.Sprintf("- normality p=%.3f (normal: %t)\n", d.NormalityP, d.IsNormal))
		}
		if len(d.Histogram) > 0 {
			b.WriteString("\n| Range | Count |\n|---|---|\n")
			for _, bin := range d.Histogram {
				b.WriteString(fmt.Sprintf("| %.4g to %.4g | %d |\n", bin.Lower, bin.Upper, bin.Count))
			}
		}
	}
	return b.String()
}

// HTML renders the Markdown form as an HTML fragment.
func (r *Report) HTML() []byte {
	return ToHTML(r.Markdown())
}

// ToHTML converts Markdown with tables enabled.
func ToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}

func summaryCell(s profiling.ColumnStats) string {
	switch {
	case s.Error != "":
		return safeVal(s.Error)
	case s.Numeric != nil:
		n := s.Numeric
		out := fmt.Sprintf("min %.4g, max %.4g, mean %.4g, median %.4g", n.Min, n.Max, n.Mean, n.Median)
		if n.Std != nil {
			out += fmt.Sprintf(", std %.4g", *n.Std)
		}
		return out
	case s.Datetime != nil:
		return fmt.Sprintf("%s to %s",
			profiling.FormatISO(s.Datetime.Min), profiling.FormatISO(s.Datetime.Max))
	case len(s.Top) > 0:
		parts := make([]string, len(s.Top))
		for i, vc := range s.Top {
			parts[i] = fmt.Sprintf("%s (%d)", safeVal(vc.Value), vc.Count)
		}
		return "top: " + strings.Join(parts, ", ")
	}
	return ""
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return safeVal(s)
}

func safeVal(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
