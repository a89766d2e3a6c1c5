package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pyfmt/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "pyfmt",
	Short: "An opinionated source formatter",
	Long:  `pyfmt rewrites source files into one canonical style: same input, same output, every time.`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)

	rootCmd.PersistentFlags().String("ui", "auto", "interactive progress (auto|on|off)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
