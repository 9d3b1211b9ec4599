package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/merger-tool/merger/internal/plugin"
	"github.com/merger-tool/merger/internal/walker"
)

var (
	mergeIgnore     []string
	mergeIgnoreFile string
	mergeNoTree     bool
	mergeFormat     string
	mergeJobs       int
)

var mergeCmd = &cobra.Command{
	Use:   "merge <input-dir> [output-path]",
	Short: "Merge a directory into a structured document",
	Long: `Walk input-dir, parse every file an installed or built-in parser
accepts, and write the merged document to output-path
(default: ./merger.json).

Ignore patterns are glob-style and come from --ignore flags, the
ignore file (default: ./merger.ignore, when present), and built-in
defaults for VCS metadata and dependency directories.

Examples:
  merger merge ./src                          # write ./merger.json
  merger merge ./src out.yaml --format=yaml
  merger merge ./src --ignore='*.log' --ignore='testdata'
  merger merge ./src --no-tree                # omit the rendered tree`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		inputDir := args[0]
		outputPath := "./merger.json"
		if len(args) == 2 {
			outputPath = args[1]
		}

		patterns := append([]string(nil), walker.DefaultIgnorePatterns...)
		patterns = append(patterns, mergeIgnore...)

		if info, err := os.Stat(mergeIgnoreFile); err == nil {
			if !info.Mode().IsRegular() {
				fail(fmt.Errorf("%s exists but is not a file", mergeIgnoreFile))
			}
			fromFile, err := walker.ReadIgnoreFile(mergeIgnoreFile)
			if err != nil {
				fail(err)
			}
			logger.Debug("loaded ignore file", "path", mergeIgnoreFile, "patterns", len(fromFile))
			patterns = append(patterns, fromFile...)
		}

		ignore, err := walker.NewIgnoreList(patterns)
		if err != nil {
			fail(err)
		}

		installer := plugin.NewInstaller(cfg.StorePath(), cfg.PluginsDir(), plugin.SharedObjectLoader{}, logger)
		records, err := installer.List()
		if err != nil {
			fail(err)
		}
		registry, err := plugin.NewRegistry(records, plugin.SharedObjectLoader{}, logger)
		if err != nil {
			fail(err)
		}

		jobs := mergeJobs
		if jobs == 0 {
			jobs = cfg.Jobs
		}

		tree, err := walker.Walk(context.Background(), inputDir, registry, walker.Options{
			Ignore: ignore,
			Jobs:   jobs,
			Logger: logger,
		})
		if err != nil {
			fail(err)
		}

		doc := walker.NewDocument(tree, !mergeNoTree)
		if err := doc.Write(outputPath, mergeFormat); err != nil {
			fail(err)
		}
		logger.Info("saved merged document", "path", outputPath, "files", len(doc.Files))
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().StringArrayVar(&mergeIgnore, "ignore", nil, "Glob-style pattern to ignore (repeatable)")
	mergeCmd.Flags().StringVar(&mergeIgnoreFile, "ignore-file", "./merger.ignore", "File of ignore patterns, one per line")
	mergeCmd.Flags().BoolVar(&mergeNoTree, "no-tree", false, "Omit the rendered directory tree from the output")
	mergeCmd.Flags().StringVar(&mergeFormat, "format", walker.FormatJSON, "Output format: json or yaml")
	mergeCmd.Flags().IntVar(&mergeJobs, "jobs", 0, "Concurrent parse workers (default: from settings)")
}
