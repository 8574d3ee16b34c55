package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/staatzstreich/vela/pkg/storage"
	"github.com/staatzstreich/vela/pkg/tui"
)

func main() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		slog.Error("Error getting home directory", "error", err)
		os.Exit(1)
	}

	dataDir := filepath.Join(homeDir, ".vela")
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		slog.Error("Error creating data directory", "error", err)
		os.Exit(1)
	}

	// Optional overrides (EDITOR, VISUAL) live in ~/.vela/.env
	godotenv.Load(filepath.Join(dataDir, ".env"))

	logFile, err := os.OpenFile(
		filepath.Join(dataDir, "debug.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0600,
	)
	if err != nil {
		slog.Error("Error opening log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	log.SetOutput(logFile)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	handler := slog.NewTextHandler(logFile, nil)
	slog.SetDefault(slog.New(handler))

	profiles, err := storage.NewProfileStore(dataDir)
	if err != nil {
		slog.Error("Error opening profile store", "error", err)
		fmt.Fprintf(os.Stderr, "Error opening profile store: %v\n", err)
		os.Exit(1)
	}

	settings, err := storage.NewSettingsStore(dataDir)
	if err != nil {
		slog.Error("Error opening settings store", "error", err)
		fmt.Fprintf(os.Stderr, "Error opening settings store: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(
		tui.NewAppModel(profiles, settings),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		slog.Error("Error running program", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
