// Package main provides the cv_builder CLI: version management, previews, exports and
// the HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cv_builder",
	Short: "CV builder with versions, templates and exports",
	Long: "cv_builder keeps named CV versions, renders them through twelve visual templates " +
		"and exports them as ATS-friendly PDF, DOCX, raster PDF or print PDF.",
	SilenceUsage: true,
}

var (
	configPath string
	storePath  string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Path to the versions JSON file (overrides config and CV_STORE_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
