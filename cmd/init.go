package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/combokit/combotracker/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file interactively",
	Long:  `Walks through the connection and overlay settings and writes them to the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgFile); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
		}

		cfg, err := config.RunWizard(cfgFile)
		if err != nil {
			return err
		}

		fmt.Printf("\nConfiguration written to %s\n", cfgFile)
		fmt.Printf("Run `combotracker run` to connect to #%s.\n", cfg.Twitch.Channel)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
