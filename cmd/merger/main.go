package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/merger-tool/merger/internal/config"
)

// Set via ldflags at build time.
var version = "dev"

var (
	verbose bool

	// cfg and logger are resolved once before any command runs.
	cfg    *config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:     "merger",
	Short:   "Merge a directory's files into a single structured document",
	Version: version,
	Long: `Merger walks a directory, extracts text from every file it can read,
and writes the result as one structured document.

Files are dispatched to parsers by extension. Custom parsers can be
installed as compiled plugins; anything unclaimed falls back to a
heuristic text/binary classifier.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}

		level, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			level = log.InfoLevel
		}
		if verbose {
			level = log.DebugLevel
		}
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Level:           level,
		})
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// fail prints an error the way every command reports one, and exits.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
