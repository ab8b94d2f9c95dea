package main

import (
	"fmt"
	"os"

	"dataviz/domain/table"
	ingest "dataviz/internal/dataset"
	"dataviz/internal/profiling"
	"dataviz/internal/report"

	"github.com/spf13/cobra"
)

type columnSummary struct {
	Name    string                `json:"name"`
	Type    string                `json:"type"`
	Missing int                   `json:"missing"`
	Stats   profiling.ColumnStats `json:"stats"`
	Skew    *float64              `json:"skewness,omitempty"`
	Outlier *int                  `json:"outliers,omitempty"`
}

type inspectResult struct {
	File    string          `json:"file"`
	Rows    int             `json:"rows"`
	Columns []columnSummary `json:"columns"`
}

func newInspectCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.csv|file.xlsx>",
		Short: "Load a file and summarise every column",
		Example: `  dataviz inspect sales.csv
  dataviz inspect sales.xlsx -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.readTable(args[0])
			if err != nil {
				return err
			}
			rep := report.Build(args[0], t)
			return render(cmd.OutOrStdout(), c.cfg.Output, summarize(rep), rep.Markdown)
		},
	}
}

func summarize(rep *report.Report) inspectResult {
	out := inspectResult{File: rep.Source, Rows: rep.Rows, Columns: make([]columnSummary, 0, len(rep.Columns))}
	for _, col := range rep.Columns {
		s := columnSummary{
			Name:    col.Name,
			Type:    string(col.Stats.Type),
			Missing: col.Missing,
			Stats:   col.Stats,
		}
		if d := col.Distribution; d != nil {
			skew, outliers := d.Skewness, d.Outliers
			s.Skew, s.Outlier = &skew, &outliers
		}
		out.Columns = append(out.Columns, s)
	}
	return out
}

// readTable decodes a CSV or XLSX file with the configured blank policy.
func (c *cli) readTable(path string) (*table.Table, error) {
	format, err := ingest.DetectFormat(path)
	if err != nil {
		return nil, err
	}
	policy, err := ingest.PolicyByName(c.cfg.BlankPolicy)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ingest.Decode(format, data, policy)
}
