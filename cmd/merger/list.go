package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/merger-tool/merger/internal/plugin"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed parser plugins",
	Run: func(cmd *cobra.Command, args []string) {
		installer := plugin.NewInstaller(cfg.StorePath(), cfg.PluginsDir(), plugin.SharedObjectLoader{}, logger)

		records, err := installer.List()
		if err != nil {
			fail(err)
		}
		if len(records) == 0 {
			fmt.Println("No custom parsers installed.")
			return
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Println("Installed custom parsers:")
		for _, r := range records {
			fmt.Printf("  %s  %s  %s\n",
				cyan(r.Hash),
				strings.Join(r.Extensions, ", "),
				gray(r.OriginalName))
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
