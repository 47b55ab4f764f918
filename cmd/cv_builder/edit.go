package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/spf13/cobra"
)

var setTemplateCmd = &cobra.Command{
	Use:   "set-template <template>",
	Short: "Select the visual template of a version",
	Long:  "Select one of: " + templateList() + ".",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetTemplate,
}

var setRoleCmd = &cobra.Command{
	Use:   "set-role <target role>",
	Short: "Set the free-text target role of a version",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetRole,
}

var setDataCmd = &cobra.Command{
	Use:   "set-data <file>",
	Short: "Replace the CV data of a version with a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetData,
}

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Show or change the section order of a version",
}

var orderShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved section order",
	Args:  cobra.NoArgs,
	RunE:  runOrderShow,
}

var orderSetCmd = &cobra.Command{
	Use:   "set <section>...",
	Short: "Store a new order; unknown and repeated sections are dropped, missing ones appended",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runOrderSet,
}

var orderMoveCmd = &cobra.Command{
	Use:   "move <section> <over>",
	Short: "Move a section onto the position of another",
	Args:  cobra.ExactArgs(2),
	RunE:  runOrderMove,
}

var orderResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default section order",
	Args:  cobra.NoArgs,
	RunE:  runOrderReset,
}

var moveItemCmd = &cobra.Command{
	Use:   "move-item <section> <item id> <over id>",
	Short: "Reorder an experience, education, skill or language entry",
	Args:  cobra.ExactArgs(3),
	RunE:  runMoveItem,
}

// editVersion is the --version flag shared by the editing commands
var editVersion string

func init() {
	for _, c := range []*cobra.Command{setTemplateCmd, setRoleCmd, setDataCmd, moveItemCmd} {
		c.Flags().StringVar(&editVersion, "version", "", "Version id (default: active version)")
	}
	orderCmd.PersistentFlags().StringVar(&editVersion, "version", "", "Version id (default: active version)")

	orderCmd.AddCommand(orderShowCmd, orderSetCmd, orderMoveCmd, orderResetCmd)
	rootCmd.AddCommand(setTemplateCmd, setRoleCmd, setDataCmd, orderCmd, moveItemCmd)
}

func templateList() string {
	ids := make([]string, 0, len(types.AllTemplates()))
	for _, id := range types.AllTemplates() {
		ids = append(ids, string(id))
	}
	return strings.Join(ids, ", ")
}

func printOrder(cmd *cobra.Command, v types.Version) {
	data := v.Data
	for i, s := range layout.ResolveOrder(v.SectionOrder) {
		note := ""
		if !layout.HasContent(data, s) {
			note = " (empty, hidden)"
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d. %s%s\n", i+1, s, note)
	}
}

func runSetTemplate(cmd *cobra.Command, args []string) error {
	template := types.TemplateID(args[0])
	if !template.Known() {
		return fmt.Errorf("unknown template %q (choose one of: %s)", args[0], templateList())
	}

	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	v, err := ws.store.UpdateTemplate(cmd.Context(), ws.versionID(editVersion), template)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Version %s now uses template %s\n", v.ID, v.Template)
	return nil
}

func runSetRole(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	v, err := ws.store.UpdateTargetRole(cmd.Context(), ws.versionID(editVersion), args[0])
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Version %s targets %q\n", v.ID, v.TargetRole)
	return nil
}

func runSetData(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	data := types.NewCVData()
	if err := json.Unmarshal(content, &data); err != nil {
		return fmt.Errorf("failed to parse CV data: %w", err)
	}

	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	v, err := ws.store.UpdateData(cmd.Context(), ws.versionID(editVersion), data)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated data of version %s: %d experience(s), %d education, %d skill(s), %d language(s)\n",
		v.ID, len(v.Data.Experiences), len(v.Data.Education), len(v.Data.Skills), len(v.Data.Languages))
	return nil
}

func runOrderShow(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	v, err := ws.version(editVersion)
	if err != nil {
		return err
	}
	printOrder(cmd, v)
	return nil
}

func runOrderSet(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	order := make([]types.SectionID, 0, len(args))
	for _, a := range args {
		order = append(order, types.SectionID(strings.ToLower(strings.TrimSpace(a))))
	}
	v, err := ws.store.UpdateSectionOrder(cmd.Context(), ws.versionID(editVersion), order)
	if err != nil {
		return err
	}
	printOrder(cmd, v)
	return nil
}

func runOrderMove(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	v, err := ws.store.MoveSection(cmd.Context(), ws.versionID(editVersion), types.SectionID(args[0]), types.SectionID(args[1]))
	if err != nil {
		return err
	}
	printOrder(cmd, v)
	return nil
}

func runOrderReset(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	v, err := ws.store.ResetSectionOrder(cmd.Context(), ws.versionID(editVersion))
	if err != nil {
		return err
	}
	printOrder(cmd, v)
	return nil
}

func runMoveItem(cmd *cobra.Command, args []string) error {
	section := types.SectionID(args[0])
	switch section {
	case types.SectionExperience, types.SectionEducation, types.SectionSkills, types.SectionLanguages:
	default:
		return fmt.Errorf("section %q has no items (use experience, education, skills or languages)", args[0])
	}

	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	v, err := ws.store.MoveItem(cmd.Context(), ws.versionID(editVersion), section, args[1], args[2])
	if err != nil {
		return err
	}
	for i, e := range layout.Entries(v.Data, section, layout.LocaleFor(ws.cfg.Locale), layout.MonthShort) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, layout.EntryTitle(e))
	}
	return nil
}
