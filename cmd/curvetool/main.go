// Command curvetool converts .mat captures and plots CSVs without the GUI.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"curve-plotter/internal/convert"
)

// rootCmd is the base command for the curvetool CLI.
var rootCmd = &cobra.Command{
	Use:   "curvetool",
	Short: "Convert MATLAB captures to CSV and plot them",
	Long: `curvetool runs the Curve Plotter pipeline from the command line.

convert writes one CSV per numeric variable of a .mat file with a synthesized
Time column, plot renders CSVs as PNG charts, and synth writes a synthetic
capture for trying the other two.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./curvetool.yaml or ~/.config/curve-plotter/curvetool.yaml)")

	viper.SetDefault("rate", convert.DefaultSampleRate)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("curvetool")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		if configDir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(configDir, "curve-plotter"))
		}
	}

	viper.SetEnvPrefix("CURVETOOL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindOut binds the running command's --out flag to the "out" key, so the
// key follows whichever subcommand is executing.
func bindOut(cmd *cobra.Command, args []string) error {
	return viper.BindPFlag("out", cmd.Flags().Lookup("out"))
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
