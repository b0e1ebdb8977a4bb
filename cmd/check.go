package cmd

import (
	"fmt"

	"score-ledger/core/database"
	"score-ledger/feature/ledger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// checkCmd migrates the ledger tables and reports columns the store writes but the table lacks.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Migrate and inspect the ledger schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		tables := []struct {
			name    string
			columns []string
		}{
			{name: ledger.ResultRow{}.TableName(), columns: ledger.ResultColumns},
			{name: ledger.RemarkRow{}.TableName(), columns: ledger.RemarkColumns},
		}

		failed := 0
		for _, t := range tables {
			missing, err := database.MissingColumns(a.db, t.name, t.columns)
			if err != nil {
				return fmt.Errorf("failed to inspect %s: %w", t.name, err)
			}
			if len(missing) > 0 {
				failed++
				a.logger.Error("Table is missing columns", zap.String("table", t.name), zap.Strings("columns", missing))
				continue
			}
			a.logger.Info("Table OK", zap.String("table", t.name), zap.Int("columns", len(t.columns)))
		}
		if failed > 0 {
			return fmt.Errorf("%d tables need attention", failed)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(checkCmd)
}
