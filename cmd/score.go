package cmd

import (
	"fmt"
	"strings"

	"score-ledger/feature/score"

	"github.com/spf13/cobra"
)

var scoreRuleVersion string

// scoreCmd calculates a posting without touching the ledger.
var scoreCmd = &cobra.Command{
	Use:   "score [posting text]",
	Short: "Calculate a score posting",
	Long: `Parses a score posting, calculates it under the active rule and prints the result.
Nothing is written to the ledger.

Example:
  score "御無礼 A300 B250 C200 D250"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := loadConfigAndLogger()
		if err != nil {
			return err
		}
		defer l.Sync()

		if scoreRuleVersion != "" {
			cfg.Score.RuleVersion = scoreRuleVersion
		}
		_, rules, err := loadRules(cfg.Score, l)
		if err != nil {
			return err
		}

		result, ok, err := rules.Score("", strings.Join(args, " "), "cli")
		if !ok {
			return fmt.Errorf("not a score posting (keyword %q)", rules.Keyword)
		}
		if err != nil {
			return err
		}
		if !result.HasValidData() {
			return fmt.Errorf("incomplete score: %s", result.ToText(score.TextSimple))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "rule:    %s (mode %d)\n", result.RuleVersion, len(result.Seats))
		fmt.Fprintf(out, "detail:  %s\n", result.ToText(score.TextDetail))
		fmt.Fprintf(out, "deposit: %d\n", result.Deposit)
		return nil
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreRuleVersion, "rule", "", "Rule version to calculate with (default: the active rule)")
	RootCmd.AddCommand(scoreCmd)
}
