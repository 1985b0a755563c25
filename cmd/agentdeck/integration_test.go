package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/csheth/agentdeck/internal/api"
	"github.com/csheth/agentdeck/internal/tuitest"
)

func TestAgentdeckRendersPolledTranscript(t *testing.T) {
	t.Parallel()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/poll" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		resp := api.PollResponse{
			Context:    "itest-ctx",
			LogGuid:    "g-itest",
			LogVersion: 1,
			Logs: []api.LogEntry{
				{No: 0, ID: "m0", Type: "user", Content: "ping from integration"},
				{No: 1, ID: "m1", Type: "response", Content: "pong from the agent"},
			},
			Contexts: []api.ContextSummary{
				{ID: "itest-ctx", Name: "integration chat", CreatedAt: time.Now(), Kind: api.KindChat},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer backend.Close()

	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)
	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "-no-alt-screen", "-url", backend.URL, "-state", filepath.Join(t.TempDir(), "state.json")},
		Dir:     cmdDir,
		Width:   110,
		Height:  32,
		Steps: []tuitest.Step{
			{Delay: 2 * time.Second},
			{Input: tuitest.KeyCtrlC},
		},
		Timeout:        8 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}

	frame, ok := rec.FinalFrame()
	if !ok {
		t.Fatalf("no frames captured")
	}
	for _, want := range []string{"agentdeck", "integration chat", "pong from the agent", "online"} {
		if !strings.Contains(frame.Plain, want) {
			t.Fatalf("final frame missing %q:\n%s", want, frame.Plain)
		}
	}
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	tmp := t.TempDir()
	name := "agentdeck-integration"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(tmp, name)
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = cmdDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build CLI: %v\n%s", err, output)
	}
	return binPath
}
