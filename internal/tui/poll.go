package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/agentdeck/internal/api"
)

// pollTickMsg drives the poll cadence. seq invalidates ticks scheduled before
// an out-of-band poll superseded them, so the loop never runs two cadences.
type pollTickMsg struct {
	seq int
}

// pollResultMsg carries one poll round-trip. requested records which context
// the request named, so stale responses can be matched against the active one
// even after a switch happened mid-flight.
type pollResultMsg struct {
	requested string
	resp      *api.PollResponse
	err       error
}

func pollCmd(client *api.Client, contextID string, logFrom int, timeout time.Duration) tea.Cmd {
	var ctxParam *string
	if contextID != "" {
		id := contextID
		ctxParam = &id
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := client.Poll(ctx, api.PollRequest{
			LogFrom:  logFrom,
			Context:  ctxParam,
			Timezone: time.Now().Location().String(),
		})
		return pollResultMsg{requested: contextID, resp: resp, err: err}
	}
}

// healthResultMsg reports the one-shot liveness check fired at startup, so the
// status bar can flip to online before the first poll round-trip lands.
type healthResultMsg struct {
	err error
}

func (m *model) healthCheckCmd() tea.Cmd {
	client, timeout := m.client, m.config.Poll.Timeout.Std()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return healthResultMsg{err: client.Health(ctx)}
	}
}

func pollTickCmd(after time.Duration, seq int) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return pollTickMsg{seq: seq}
	})
}
