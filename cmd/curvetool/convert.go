package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"curve-plotter/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file.mat>",
	Short: "Convert a .mat file to per-variable CSVs",
	Long: `Convert writes <out>/<variable>.csv for every numeric variable of the
file. Variables whose name starts with "__" are skipped. The Time column is
row / rate seconds.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: bindOut,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd.OutOrStdout(), args[0], viper.GetString("out"), viper.GetFloat64("rate"))
	},
}

func init() {
	convertCmd.Flags().StringP("out", "o", "", "output directory (default: csv_output next to the .mat file)")
	convertCmd.Flags().Float64("rate", convert.DefaultSampleRate, "sample rate in Hz")
	_ = viper.BindPFlag("rate", convertCmd.Flags().Lookup("rate"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(w io.Writer, matPath, outDir string, rate float64) error {
	if outDir == "" {
		outDir = filepath.Join(filepath.Dir(matPath), convert.DefaultOutputDir)
	}
	c := convert.New(rate)
	outputs, err := c.ConvertFile(matPath, outDir, func(done, total int, o convert.Output) {
		fmt.Fprintf(w, "[%d/%d] %s (%d rows, %d columns)\n", done, total, o.Path, o.Rows, o.Columns)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Converted %d variables at %g Hz into %s\n", len(outputs), c.SampleRate, outDir)
	return nil
}
