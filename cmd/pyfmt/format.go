package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"pyfmt/internal/driver"
	"pyfmt/internal/format"
	"pyfmt/internal/project"
)

var (
	fmtCheck       bool
	fmtDiff        bool
	fmtStdout      bool
	fmtLineWidth   int
	fmtIndentWidth int
	fmtQuotes      string
	fmtJobs        int
	fmtNoCache     bool
)

func init() {
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "report files that would change, without writing")
	fmtCmd.Flags().BoolVar(&fmtDiff, "diff", false, "print unified diffs instead of writing")
	fmtCmd.Flags().BoolVar(&fmtStdout, "stdout", false, "print formatted output to stdout instead of writing")
	fmtCmd.Flags().IntVar(&fmtLineWidth, "line-width", 0, "maximum line width (default 88)")
	fmtCmd.Flags().IntVar(&fmtIndentWidth, "indent-width", 0, "spaces per indentation level (default 4)")
	fmtCmd.Flags().StringVar(&fmtQuotes, "quotes", "", "string quote style (double|single|preserve)")
	fmtCmd.Flags().IntVar(&fmtJobs, "jobs", 0, "number of parallel workers (default: all CPUs)")
	fmtCmd.Flags().BoolVar(&fmtNoCache, "no-cache", false, "bypass the formatting result cache")
}

var fmtCmd = &cobra.Command{
	Use:   "fmt [paths...]",
	Short: "Format files in place",
	Long: `Format the named files, or every *.py file under the named
directories. Without --check, --diff, or --stdout the files are
rewritten in place.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(args)
		if err != nil {
			return err
		}

		if fmtStdout {
			return formatToStdout(cmd.OutOrStdout(), args, cfg)
		}

		opts := driver.Options{
			Config:  cfg,
			Jobs:    fmtJobs,
			NoCache: fmtNoCache,
			Write:   !fmtCheck && !fmtDiff,
		}

		uiValue, _ := cmd.Flags().GetString("ui")
		mode, err := readUIMode(uiValue)
		if err != nil {
			return err
		}

		var results []driver.FileResult
		if opts.Write && shouldUseTUI(mode) {
			results, err = runFormatWithUI(cmd.Context(), args, opts)
		} else {
			results, err = driver.FormatPaths(cmd.Context(), args, opts, nil)
		}
		if err != nil {
			return err
		}
		return report(cmd, results)
	},
}

// resolveConfig layers flags over the discovered pyfmt.toml, if any.
func resolveConfig(paths []string) (format.Config, error) {
	start := "."
	if len(paths) > 0 {
		start = paths[0]
		if info, err := os.Stat(start); err == nil && !info.IsDir() {
			start = "."
			if dir := dirOf(paths[0]); dir != "" {
				start = dir
			}
		}
	}

	cfg := format.Default()
	if m, ok, err := project.Discover(start); err != nil {
		return cfg, err
	} else if ok {
		cfg, err = m.FormatConfig()
		if err != nil {
			return cfg, err
		}
	}

	if fmtLineWidth != 0 {
		cfg.LineWidth = fmtLineWidth
	}
	if fmtIndentWidth != 0 {
		cfg.IndentWidth = fmtIndentWidth
	}
	if fmtQuotes != "" {
		q, err := format.ParseQuoteStyle(fmtQuotes)
		if err != nil {
			return cfg, err
		}
		cfg.Quotes = q
	}
	return cfg, cfg.Validate()
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == os.PathSeparator {
			return path[:i]
		}
	}
	return ""
}

func formatToStdout(out io.Writer, paths []string, cfg format.Config) error {
	files, err := driver.ListFiles(paths)
	if err != nil {
		return err
	}
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		text, err := format.Source(path, content, cfg)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(out, text); err != nil {
			return err
		}
	}
	return nil
}

func report(cmd *cobra.Command, results []driver.FileResult) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	changed, failed := 0, 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			fmt.Fprintf(errOut, "error: %v\n", r.Err)
			var fe *format.FormatError
			if errors.As(r.Err, &fe) {
				if details := fe.Details(); details != "" {
					fmt.Fprintln(errOut, details)
				}
			}
		case r.Changed && fmtDiff:
			changed++
			before, err := os.ReadFile(r.Path)
			if err != nil {
				return err
			}
			fmt.Fprint(out, format.UnifiedDiff(r.Path, string(before), r.Output))
		case r.Changed && fmtCheck:
			changed++
			fmt.Fprintf(out, "would reformat %s\n", r.Path)
		case r.Changed:
			changed++
			fmt.Fprintf(out, "reformatted %s\n", r.Path)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d files failed", failed)
	}
	if (fmtCheck || fmtDiff) && changed > 0 {
		return fmt.Errorf("%d files would be reformatted", changed)
	}
	return nil
}

var cacheCmd = &cobra.Command{
	Use:   "cache-clear",
	Short: "Drop the formatting result cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := driver.OpenDiskCache("pyfmt")
		if err != nil {
			return err
		}
		return cache.DropAll()
	},
}
