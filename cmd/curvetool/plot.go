package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"curve-plotter/internal/render"
)

var plotCmd = &cobra.Command{
	Use:   "plot <file.csv>...",
	Short: "Render CSV captures as PNG charts",
	Long: `Plot draws every data column of each CSV against its Time column. By
default one <name>.png is written per file; with --combined all series are
overlaid on combined_plot.png.`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: bindOut,
	RunE: func(cmd *cobra.Command, args []string) error {
		combined, _ := cmd.Flags().GetBool("combined")
		return runPlot(cmd.OutOrStdout(), args, viper.GetString("out"), combined)
	},
}

func init() {
	plotCmd.Flags().StringP("out", "o", ".", "image directory")
	plotCmd.Flags().Bool("combined", false, "overlay all files on one chart")

	rootCmd.AddCommand(plotCmd)
}

func runPlot(w io.Writer, paths []string, outDir string, combined bool) error {
	r := render.New()
	if combined {
		img, err := r.RenderCombinedFiles(paths, outDir)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, img)
		return nil
	}

	_, err := r.RenderSeparate(paths, outDir, func(p render.Progress) {
		fmt.Fprintf(w, "[%d/%d] %s\n", p.Done, p.Total, p.Path)
	})
	return err
}
