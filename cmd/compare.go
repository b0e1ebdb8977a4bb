package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"score-ledger/core/metrics"
	"score-ledger/core/storage"
	"score-ledger/feature/comparison"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	compareAfter  string
	compareDryRun bool
	yesConfirm    bool
)

// compareCmd runs one reconciliation sweep from the command line.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the chat history with the ledger and repair differences",
	Long: `Sweeps the chat channel over a time window, reports postings that are pending,
missing, mismatched or stale, and repairs the ledger to match the chat.

Examples:
  # Report only
  compare --dry-run

  # Repair the last 30 days without prompting
  compare --after 30 --yes

  # Natural language window start
  compare --after "3 days ago" --dry-run`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareAfter, "after", "", "Window start: days back, a date, RFC3339 or a phrase such as \"2 weeks ago\"")
	compareCmd.Flags().BoolVar(&compareDryRun, "dry-run", false, "Report findings without changing the ledger")
	compareCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm ledger changes (non-interactive)")

	RootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.logger.Sync()
	if a.cfg.Comparison.ChannelID == "" {
		return fmt.Errorf("comparison.channel_id is not set")
	}

	after, err := comparison.ParseAfter(compareAfter, time.Now(), a.cfg.Comparison.Window())
	if err != nil {
		return err
	}

	client, err := storage.NewClient(a.cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}
	sweeps, err := a.comparisonService(ctx, client, metrics.New())
	if err != nil {
		return err
	}

	// Always plan first so the operator sees what would change
	report, _, err := sweeps.Run(ctx, after, true)
	if err != nil {
		return err
	}
	fmt.Println(report.Text(time.Local))

	if compareDryRun {
		a.logger.Info("Dry-run mode: No changes were made.")
		return nil
	}
	// A consistent ledger only needs its markers refreshed
	if !report.Consistent() && !confirmDestructiveAction() {
		a.logger.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	report, _, err = sweeps.Run(ctx, after, false)
	if err != nil {
		return err
	}
	fmt.Println(report.Text(time.Local))
	a.logger.Info("Successfully executed actions", zap.Int("count", report.Executed), zap.Int("errors", len(report.Errors)))
	if len(report.Errors) > 0 {
		return fmt.Errorf("%d ledger changes failed", len(report.Errors))
	}
	return nil
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to apply these changes: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
