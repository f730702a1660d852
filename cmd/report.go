package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/combokit/combotracker/internal/config"
	"github.com/combokit/combotracker/internal/report"
	"github.com/combokit/combotracker/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the latest session report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		st, err := store.Open(dbFile)
		if err != nil {
			return err
		}
		defer st.Close()

		sess, err := st.LatestSession()
		if err != nil {
			return err
		}
		if sess == nil {
			fmt.Println("No sessions recorded yet.")
			return nil
		}

		top, err := st.TopWords(10)
		if err != nil {
			return err
		}

		if err := report.Write(cfg.Overlay.Dir, report.Data{
			Channel:   sess.Channel,
			StartedAt: sess.StartedAt,
			EndedAt:   sess.EndedAt,
			Messages:  sess.Messages,
			TopWords:  top,
		}); err != nil {
			return err
		}

		fmt.Printf("Report written to %s\n", filepath.Join(cfg.Overlay.Dir, report.HTMLFileName))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
