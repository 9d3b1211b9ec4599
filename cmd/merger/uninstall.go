package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/merger-tool/merger/internal/plugin"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <id|*>",
	Short: "Uninstall a custom parser plugin",
	Long: `Remove an installed parser plugin by its hash id, deleting both its
record and its stored artifact. Use '*' to remove every installed
plugin; each is processed independently, and failures are reported
together at the end.

Examples:
  merger uninstall a1b2c3d4
  merger uninstall '*'`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		installer := plugin.NewInstaller(cfg.StorePath(), cfg.PluginsDir(), plugin.SharedObjectLoader{}, logger)

		if err := installer.Uninstall(args[0]); err != nil {
			fail(err)
		}
		if args[0] == "*" {
			fmt.Println("Uninstalled all plugins")
		} else {
			fmt.Printf("Uninstalled %s\n", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
