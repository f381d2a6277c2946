// Package cli provides the Cobra-based commands of the specguard tool:
// instance validation (validate), mechanical repair (fix), staleness
// inspection (status), and checksum maintenance (checksum).
package cli

import (
	"github.com/spf13/cobra"
)

// Exit codes returned by commands. Gating on validation outcome is the
// caller's job; the exit code only distinguishes outcome classes.
const (
	ExitOK     = 0
	ExitFailed = 1
	ExitUsage  = 2
)

var rootCmd = &cobra.Command{
	Use:   "specguard",
	Short: "Validation and consistency engine for staged workflow documents",
	Long: `specguard checks workflow documents (proposal, tasks, specs) for
structural completeness, cross-document referential integrity, and staleness
against their last-validated checksums.`,
	Example: `  # Validate one workflow instance directory
  specguard validate ./changes/add-auth

  # Validate strictly and emit the JSON report
  specguard validate --strict --json ./changes/add-auth

  # Repair the mechanically fixable findings, then re-validate
  specguard fix ./changes/add-auth
  specguard validate ./changes/add-auth

  # Staleness partition and checksum refresh
  specguard status ./changes/add-auth
  specguard checksum update ./changes/add-auth`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if code, ok := err.(exitError); ok {
			return int(code)
		}
		printError("%v", err)
		return ExitUsage
	}
	return ExitOK
}

// exitError carries a non-zero exit code through cobra without printing.
type exitError int

func (e exitError) Error() string { return "exit" }

func init() {
	rootCmd.PersistentFlags().String("rules", "", "Path to a JSON rules file overriding the built-in presets")
	rootCmd.PersistentFlags().String("schemas", "", "Directory of <type>.json header schema definitions")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
}
