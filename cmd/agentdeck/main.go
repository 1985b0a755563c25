package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/agentdeck/internal/api"
	"github.com/csheth/agentdeck/internal/config"
	"github.com/csheth/agentdeck/internal/state"
	"github.com/csheth/agentdeck/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "path to a config TOML file (default ~/.config/agentdeck/config.toml)")
	statePath := flag.String("state", "", "path to the client state file (default ~/.config/agentdeck/state.json)")
	urlOverride := flag.String("url", "", "backend base URL, overriding config and environment")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	speechCmd := flag.String("speech-command", "", "command run with agent responses as the argument (eg. say, espeak)")
	logPath := flag.String("log", "", "write debug logs to this file")

	var importPaths []string
	flag.Func("import", "serialized chat file to import on startup (repeatable)", func(value string) error {
		importPaths = append(importPaths, value)
		return nil
	})
	flag.Parse()

	if *logPath != "" {
		f, err := tea.LogToFile(*logPath, "agentdeck")
		if err != nil {
			fmt.Println("failed to open log file:", err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(1)
	}
	if *urlOverride != "" {
		cfg.BaseURL = *urlOverride
	}

	if *statePath == "" {
		*statePath, err = state.DefaultPath()
		if err != nil {
			fmt.Println("failed to resolve state path:", err)
			os.Exit(1)
		}
	}
	prefs, err := state.Load(*statePath)
	if err != nil {
		fmt.Println("state file unreadable, starting fresh:", err)
	}

	var narrator tui.Narrator
	if *speechCmd != "" {
		narrator = commandNarrator{command: *speechCmd}
	}

	client := api.New(api.Config{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey})

	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if cfg.UI.AltScreen && !*noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			App:         cfg,
			Client:      client,
			Prefs:       prefs,
			PrefsPath:   *statePath,
			Narrator:    narrator,
			ImportPaths: importPaths,
		}),
		opts...,
	)

	if _, err := program.Run(); err != nil {
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}

// commandNarrator shells out to a local text-to-speech tool. Playback runs
// detached so a slow utterance never stalls the UI.
type commandNarrator struct {
	command string
}

func (n commandNarrator) Speak(text string) {
	go func() {
		if err := exec.Command(n.command, text).Run(); err != nil {
			log.Printf("[speech] %s failed: %v", n.command, err)
		}
	}()
}
