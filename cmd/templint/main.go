package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "templint",
	Short: "Semantic linter for analytics template packages",
	Long: `templint validates analytics template packages: the template-info.json
manifest plus the variables, UI, layout, rules and folder files it
references. It reports schema violations, dangling references,
duplicate identifiers, unknown variables and type misuse.`,
}

func main() {
	rootCmd.Version = version
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(codesCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	cobra.OnInitialize(setupLogging)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
