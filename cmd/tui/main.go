package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yigit/schoolbook/internal/bootstrap"
	"github.com/yigit/schoolbook/internal/tui"
)

func main() {
	configPath := flag.String("config", filepath.Join("configs", "config.yaml"), "path to the configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "schoolbook:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// Logs go to a file so they do not draw over the screen
	cfg, lgr, logOut, err := bootstrap.LoadConfigAndSetupLogger(configPath, true)
	if err != nil {
		return err
	}
	defer logOut.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := bootstrap.BuildDependencies(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer deps.Close()
	bootstrap.LoadInitialData(ctx, deps)

	if _, err := tea.NewProgram(tui.New(ctx, deps.Services, lgr), tea.WithAltScreen()).Run(); err != nil {
		lgr.Error().Err(err).Msg("Terminal UI failed")
		return err
	}

	if err := bootstrap.Autosave(ctx, deps); err != nil {
		lgr.Error().Err(err).Msg("Autosave failed")
		return err
	}
	lgr.Info().Msg("Terminal UI closed")
	return nil
}
