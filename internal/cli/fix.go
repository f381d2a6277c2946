package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/specguard/internal/config"
	"github.com/ariel-frischer/specguard/internal/validation"
)

var fixCmd = &cobra.Command{
	Use:   "fix [instance-dir]",
	Short: "Repair the mechanically fixable validation findings",
	Long: `Validates the instance, then applies idempotent text insertions for the
fixable error categories (missing headings, missing scenarios, missing
WHEN/THEN clauses). The fixer never re-validates; run validate afterwards to
confirm the findings are resolved.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFix,
}

func init() {
	rootCmd.AddCommand(fixCmd)
}

func runFix(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	noColor, _ := cmd.Flags().GetBool("no-color")
	rulesPath, _ := cmd.Flags().GetString("rules")
	schemasDir, _ := cmd.Flags().GetString("schemas")
	configureColor(noColor)

	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("instance directory %s: %w", dir, err)
	}

	rules, err := config.Load(rulesPath)
	if err != nil {
		return err
	}

	result := validation.NewInstanceValidator(rules, schemasDir).Validate(dir)
	fixResult, err := validation.Fix(result.Errors)
	if err != nil {
		return err
	}

	fmt.Printf("fixed %d error(s) across %d file(s)\n", fixResult.ErrorsFixed, fixResult.FilesModified)
	if len(fixResult.Remaining) > 0 {
		fmt.Printf("%d finding(s) cannot be fixed automatically:\n", len(fixResult.Remaining))
		printErrors(fixResult.Remaining)
	}
	return nil
}
