package main

import (
	"context"
	"fmt"
	"os"

	"dataviz/internal/chart"

	"github.com/spf13/cobra"
)

func newChartCmd(c *cli) *cobra.Command {
	var (
		kind          string
		xColumn       string
		yColumn       string
		pngPath       string
		width, height int
	)

	cmd := &cobra.Command{
		Use:   "chart <file.csv|file.xlsx>",
		Short: "Build a chart from two columns",
		Long: `Build a chart from two columns of a file and print its Plotly figure
as JSON, or draw a static PNG with --png.`,
		Example: `  dataviz chart sales.csv --type bar --x month --y amount
  dataviz chart sales.csv --type line --x day --y visits --png visits.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.readTable(args[0])
			if err != nil {
				return err
			}
			spec, err := chart.Build(context.Background(), t, chart.ParseKind(kind), xColumn, yColumn)
			if err != nil {
				return err
			}

			if pngPath == "" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), chart.Serialize(spec))
				return err
			}

			f, err := os.Create(pngPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", pngPath, err)
			}
			if err := chart.RenderPNG(spec, f, width, height); err != nil {
				f.Close()
				os.Remove(pngPath)
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("write %s: %w", pngPath, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s)\n", pngPath, spec.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "type", "t", string(chart.Scatter), "chart type: scatter|line|bar|area|heatmap|contour|pie")
	cmd.Flags().StringVarP(&xColumn, "x", "x", "", "x column")
	cmd.Flags().StringVarP(&yColumn, "y", "y", "", "y column")
	cmd.Flags().StringVar(&pngPath, "png", "", "write a PNG preview to this path instead of printing the figure")
	cmd.Flags().IntVar(&width, "width", chart.PreviewWidth, "PNG width in pixels")
	cmd.Flags().IntVar(&height, "height", chart.PreviewHeight, "PNG height in pixels")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	return cmd
}
