package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/merger-tool/merger/internal/plugin"
)

var installCmd = &cobra.Command{
	Use:   "install <artifact>",
	Short: "Install a custom parser plugin",
	Long: `Install a compiled parser plugin (a Go shared object built with
-buildmode=plugin) into the managed plugin store.

The artifact must export EXTENSIONS ([]string) and Parser (a value
implementing the parser contract). Its content hash becomes its id;
reinstalling identical bytes, or claiming an extension another
installed plugin owns, is rejected.

Installed plugin code runs with full process privilege. Only install
artifacts you trust.

Example:
  go build -buildmode=plugin -o pdf.so ./pdfparser
  merger install pdf.so`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		installer := plugin.NewInstaller(cfg.StorePath(), cfg.PluginsDir(), plugin.SharedObjectLoader{}, logger)

		record, err := installer.Install(args[0])
		if err != nil {
			fail(err)
		}
		fmt.Printf("Installed %s (%s) for %s\n",
			record.Hash, record.OriginalName, strings.Join(record.Extensions, ", "))
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
