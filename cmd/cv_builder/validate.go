package main

import (
	"fmt"
	"os"

	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a JSON file against the CV schemas",
	Long: `Validate a version file (as written by 'versions show --out'), a whole store file
with --collection, or any JSON file against a schema file with --schema.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var (
	validateCollection bool
	validateSchema     string
)

func init() {
	validateCmd.Flags().BoolVar(&validateCollection, "collection", false, "Validate a versions store file instead of a single version")
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "Path to a JSON Schema file to validate against")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]

	var err error
	switch {
	case validateSchema != "":
		err = schemas.ValidateJSON(validateSchema, path)
	default:
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("failed to read %s: %w", path, readErr)
		}
		if validateCollection {
			err = schemas.ValidateVersions(content)
		} else {
			err = schemas.ValidateVersion(content)
		}
	}

	if err != nil {
		if _, ok := err.(*schemas.ValidationError); !ok {
			return err
		}
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Validation failed:")
		for _, issue := range schemas.Issues(err) {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", issue)
		}
		return fmt.Errorf("%s does not match the schema", path)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Validation passed")
	return nil
}
