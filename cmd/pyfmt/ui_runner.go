package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"pyfmt/internal/driver"
	"pyfmt/internal/ui"
)

type fmtOutcome struct {
	results []driver.FileResult
	err     error
}

func runFormatWithUI(ctx context.Context, paths []string, opts driver.Options) ([]driver.FileResult, error) {
	files, err := driver.ListFiles(paths)
	if err != nil {
		return nil, err
	}

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan fmtOutcome, 1)

	go func() {
		results, err := driver.FormatPaths(ctx, paths, opts, events)
		outcomeCh <- fmtOutcome{results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("formatting", files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
