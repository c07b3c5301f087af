/*
Copyright © 2026 JAKVBS
*/
package cmd

import (
	"fmt"

	"github.com/jakvbs/pgeval/internal/profile"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with example template",
	Long: `Create ~/.config/pgeval/config.yaml with an example template.

The config file stores named database connection profiles so you don't need
to pass connection strings on every invocation. If a config file already exists,
it will not be overwritten.`,
	Example: `  # Create default config
  pgeval init

  # Overwrite existing config
  pgeval init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		path, err := profile.WriteExample(force)
		if err != nil {
			return err
		}

		fmt.Printf("Created config at %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolP("force", "f", false, "Overwrite existing config file")
}
