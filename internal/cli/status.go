package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/specguard/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status [instance-dir]",
	Short: "Show the instance phase and staleness partition",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

var checksumCmd = &cobra.Command{
	Use:   "checksum",
	Short: "Manage tracked content checksums",
}

var checksumUpdateCmd = &cobra.Command{
	Use:   "update [instance-dir]",
	Short: "Refresh the checksum of every tracked file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runChecksumUpdate,
}

func init() {
	checksumCmd.AddCommand(checksumUpdateCmd)
	rootCmd.AddCommand(statusCmd, checksumCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	noColor, _ := cmd.Flags().GetBool("no-color")
	configureColor(noColor)

	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("instance directory %s: %w", dir, err)
	}

	tracker, err := state.Load(dir)
	if err != nil {
		return err
	}

	record := tracker.Record()
	fmt.Printf("instance:  %s\n", record.Instance)
	fmt.Printf("phase:     %s (iteration %d)\n", record.Phase, record.Iteration)
	if record.LastAction != "" {
		fmt.Printf("last:      %s\n", record.LastAction)
	}

	report := tracker.CheckStaleness()
	for _, name := range report.UpToDate {
		fmt.Printf("  %s %s\n", okColor.Sprint("fresh"), name)
	}
	for _, name := range report.MissingChecksum {
		fmt.Printf("  %s %s\n", mediumColor.Sprint("never validated"), name)
	}
	for _, name := range report.Stale {
		fmt.Printf("  %s %s\n", highColor.Sprint("stale"), name)
	}

	if report.HasStale() {
		return exitError(ExitFailed)
	}
	return nil
}

func runChecksumUpdate(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("instance directory %s: %w", dir, err)
	}

	tracker, err := state.Load(dir)
	if err != nil {
		return err
	}
	if err := tracker.UpdateAllChecksums(); err != nil {
		return err
	}
	if err := tracker.Save(); err != nil {
		return err
	}

	fmt.Printf("updated checksums for %d tracked file(s)\n", len(tracker.Record().Checksums))
	return nil
}
