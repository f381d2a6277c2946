package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/specguard/internal/config"
	"github.com/ariel-frischer/specguard/internal/state"
	"github.com/ariel-frischer/specguard/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate [instance-dir]",
	Short: "Validate all documents of a workflow instance",
	Long: `Runs the format, schema, semantic, and consistency validators over one
workflow instance directory and reports every finding with its severity.
In normal mode the instance is valid when no high-severity error is found;
--strict requires zero errors of any severity.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Bool("strict", false, "Fail on any error regardless of severity")
	validateCmd.Flags().Bool("json", false, "Emit the structured JSON report")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	strict, _ := cmd.Flags().GetBool("strict")
	asJSON, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	rulesPath, _ := cmd.Flags().GetString("rules")
	schemasDir, _ := cmd.Flags().GetString("schemas")
	configureColor(noColor || asJSON)

	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("instance directory %s: %w", dir, err)
	}

	rules, err := config.Load(rulesPath)
	if err != nil {
		return err
	}

	result := validation.NewInstanceValidator(rules, schemasDir).Validate(dir)
	staleFiles := collectStaleFiles(dir)

	if asJSON {
		report := validation.BuildReport(result, strict, staleFiles)
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		fmt.Println(string(out))
	} else {
		printErrors(result.Errors)
		high, medium, low := result.Counts()
		printSummary(result.Valid(strict), high, medium, low)
		for _, name := range staleFiles {
			fmt.Printf("  stale: %s\n", name)
		}
	}

	if !result.Valid(strict) {
		return exitError(ExitFailed)
	}
	return nil
}

// collectStaleFiles returns the stale partition of the instance's tracked
// files, including those never checksummed.
func collectStaleFiles(dir string) []string {
	tracker, err := state.Load(dir)
	if err != nil {
		return nil
	}
	report := tracker.CheckStaleness()
	return append(report.Stale, report.MissingChecksum...)
}
