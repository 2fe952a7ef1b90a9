package cli

import (
	"fmt"

	"github.com/liqwen/framegrab/internal/core/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create framegrab config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Interactive wizard, seeded from any existing config.
		cfg, err := config.RunInitWizard()
		if err != nil {
			return err
		}

		if err := config.Save(cfg); err != nil {
			return err
		}

		path, _ := config.ConfigPath()
		fmt.Printf("\nSaved %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
