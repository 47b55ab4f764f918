package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/jonathan/cv-builder/internal/observability"
	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/spf13/cobra"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Manage named CV versions",
	Long:  "List, create, duplicate, rename, delete and switch CV versions. Exactly one version is active; editing commands act on it unless --version is given.",
}

var versionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List versions; the active one is marked with *",
	Args:  cobra.NoArgs,
	RunE:  runVersionsList,
}

var versionsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an empty version and make it active",
	Args:  cobra.NoArgs,
	RunE:  runVersionsCreate,
}

var versionsDuplicateCmd = &cobra.Command{
	Use:   "duplicate <id>",
	Short: "Copy a version and make the copy active",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsDuplicate,
}

var versionsRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a version",
	Args:  cobra.ExactArgs(2),
	RunE:  runVersionsRename,
}

var versionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a version; the last one cannot be deleted",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsDelete,
}

var versionsSwitchCmd = &cobra.Command{
	Use:   "switch <id>",
	Short: "Make a version active",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsSwitch,
}

var versionsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a version as JSON, or write it with --out",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runVersionsShow,
}

var versionsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Add a version from a JSON file written by 'versions show --out'",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsImport,
}

var (
	createName     string
	createTemplate string
	duplicateName  string
	showOut        string
	showSummary    bool
	importStrict   bool
)

func init() {
	versionsCreateCmd.Flags().StringVarP(&createName, "name", "n", "", "Version name")
	versionsCreateCmd.Flags().StringVarP(&createTemplate, "template", "t", "", "Template id (default modern)")
	versionsDuplicateCmd.Flags().StringVarP(&duplicateName, "name", "n", "", "Name of the copy (default \"<name> (copy)\")")
	versionsShowCmd.Flags().StringVarP(&showOut, "out", "o", "", "Write the version to this file instead of stdout")
	versionsShowCmd.Flags().BoolVar(&showSummary, "summary", false, "Print a readable summary instead of JSON")
	versionsImportCmd.Flags().BoolVar(&importStrict, "strict", false, "Reject files that do not match the version schema")

	versionsCmd.AddCommand(versionsListCmd, versionsCreateCmd, versionsDuplicateCmd, versionsRenameCmd,
		versionsDeleteCmd, versionsSwitchCmd, versionsShowCmd, versionsImportCmd)
	rootCmd.AddCommand(versionsCmd)
}

func runVersionsList(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "\tID\tNAME\tTEMPLATE\tTARGET ROLE\tUPDATED")
	active := ws.store.ActiveID()
	for _, v := range ws.store.List() {
		marker := ""
		if v.ID == active {
			marker = "*"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", marker, v.ID, v.Name, v.Template, v.TargetRole, v.UpdatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func runVersionsCreate(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	template := types.TemplateID(createTemplate)
	if template == "" {
		template = types.TemplateID(ws.cfg.DefaultTemplate)
	}
	if !template.Known() {
		return fmt.Errorf("unknown template %q", createTemplate)
	}
	v, err := ws.store.Create(cmd.Context(), createName, template)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created version %s (%s)\n", v.ID, v.Name)
	return nil
}

func runVersionsDuplicate(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	v, err := ws.store.Duplicate(cmd.Context(), args[0], duplicateName)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created version %s (%s)\n", v.ID, v.Name)
	return nil
}

func runVersionsRename(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	v, err := ws.store.Rename(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Renamed version %s to %s\n", v.ID, v.Name)
	return nil
}

func runVersionsDelete(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	if err := ws.store.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted version %s; active version is %s\n", args[0], ws.store.ActiveID())
	return nil
}

func runVersionsSwitch(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	if err := ws.store.Switch(cmd.Context(), args[0]); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Active version is %s\n", args[0])
	return nil
}

func runVersionsShow(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	id := ""
	if len(args) == 1 {
		id = args[0]
	}
	v, err := ws.version(id)
	if err != nil {
		return err
	}
	if showSummary {
		observability.NewPrinter(cmd.OutOrStdout()).PrintVersion(v, v.ID == ws.store.ActiveID())
		return nil
	}
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal version: %w", err)
	}

	if showOut == "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(content))
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(showOut), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(showOut, content, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", showOut)
	return nil
}

func runVersionsImport(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	issues := schemas.Issues(schemas.ValidateVersion(content))
	if importStrict && len(issues) > 0 {
		for _, issue := range issues {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", issue)
		}
		return fmt.Errorf("import does not match the version schema (%d issue(s))", len(issues))
	}

	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	v, repairs, err := ws.store.Import(cmd.Context(), content)
	if err != nil {
		return err
	}
	warnings := append(issues, repairs...)
	for _, w := range warnings {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
	}
	if ws.cfg.Verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintWarnings("IMPORT WARNINGS", warnings)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported version %s (%s)\n", v.ID, v.Name)
	return nil
}
