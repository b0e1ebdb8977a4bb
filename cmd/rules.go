package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// rulesCmd lists the rule versions in the rule file.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the loaded rule versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := loadConfigAndLogger()
		if err != nil {
			return err
		}
		defer l.Sync()

		set, rules, err := loadRules(cfg.Score, l)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tMODE\tORIGIN\tRETURN\tRANK POINT\tDRAW SPLIT\tACTIVE")
		for _, version := range set.Versions() {
			r := set.Rules[version]
			active := ""
			if version == rules.Rule.Version {
				active = "*"
			}
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%v\t%t\t%s\n", version, r.Mode, r.OriginPoint, r.ReturnPoint, r.RankPoint, r.DrawSplit, active)
		}
		fmt.Fprintf(w, "\nmembers: %d aliases\n", len(set.Members))
		return w.Flush()
	},
}

func init() {
	RootCmd.AddCommand(rulesCmd)
}
