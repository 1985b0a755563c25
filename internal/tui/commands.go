package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/agentdeck/internal/api"
)

type sendResultMsg struct {
	context string
	err     error
}

type resetResultMsg struct {
	context string
	err     error
}

type removeResultMsg struct {
	context string
	err     error
}

type exportResultMsg struct {
	path string
	err  error
}

type importResultMsg struct {
	created []string
	err     error
}

type pauseResultMsg struct {
	paused bool
	err    error
}

type nudgeResultMsg struct {
	err error
}

type restartResultMsg struct {
	err error
}

func (m *model) sendMessageCmd(text, contextID, messageID string, attachments []api.Attachment) tea.Cmd {
	client := m.client
	return m.jobs.Start(jobKindSend, func(ctx context.Context) (tea.Msg, error) {
		req := api.SendRequest{Text: text, Context: contextID, MessageID: messageID}
		var (
			resp *api.SendResponse
			err  error
		)
		if len(attachments) > 0 {
			resp, err = client.SendWithAttachments(ctx, req, attachments)
		} else {
			resp, err = client.Send(ctx, req)
		}
		if err != nil {
			return sendResultMsg{err: err}, err
		}
		return sendResultMsg{context: resp.Context}, nil
	})
}

func (m *model) resetContextCmd(contextID string) tea.Cmd {
	client := m.client
	return m.jobs.Start(jobKindReset, func(ctx context.Context) (tea.Msg, error) {
		err := client.ResetContext(ctx, contextID)
		return resetResultMsg{context: contextID, err: err}, err
	})
}

func (m *model) removeContextCmd(contextID string) tea.Cmd {
	client := m.client
	return m.jobs.Start(jobKindRemove, func(ctx context.Context) (tea.Msg, error) {
		err := client.RemoveContext(ctx, contextID)
		return removeResultMsg{context: contextID, err: err}, err
	})
}

// exportContextCmd downloads the serialized context and writes it next to the
// working directory, stamped so repeated exports never clobber each other.
func (m *model) exportContextCmd(contextID string) tea.Cmd {
	client := m.client
	return m.jobs.Start(jobKindExport, func(ctx context.Context) (tea.Msg, error) {
		resp, err := client.ExportContext(ctx, contextID)
		if err != nil {
			return exportResultMsg{err: err}, err
		}
		name := fmt.Sprintf("agentdeck-%s-%s.json", resp.CtxID, time.Now().Format("20060102-150405"))
		path := filepath.Join(".", name)
		if err := os.WriteFile(path, []byte(resp.Content), 0o644); err != nil {
			return exportResultMsg{err: err}, err
		}
		return exportResultMsg{path: path}, nil
	})
}

func (m *model) importContextsCmd(paths []string) tea.Cmd {
	client := m.client
	return m.jobs.Start(jobKindImport, func(ctx context.Context) (tea.Msg, error) {
		payloads := make([]string, 0, len(paths))
		for _, p := range paths {
			data, err := os.ReadFile(p)
			if err != nil {
				return importResultMsg{err: err}, err
			}
			payloads = append(payloads, string(data))
		}
		resp, err := client.ImportContexts(ctx, payloads)
		if err != nil {
			return importResultMsg{err: err}, err
		}
		return importResultMsg{created: resp.CtxIDs}, nil
	})
}

func (m *model) setPausedCmd(contextID string, paused bool) tea.Cmd {
	client := m.client
	return m.jobs.Start(jobKindPause, func(ctx context.Context) (tea.Msg, error) {
		err := client.SetPaused(ctx, contextID, paused)
		return pauseResultMsg{paused: paused, err: err}, err
	})
}

func (m *model) nudgeCmd(contextID string) tea.Cmd {
	client := m.client
	return m.jobs.Start(jobKindNudge, func(ctx context.Context) (tea.Msg, error) {
		err := client.Nudge(ctx, contextID)
		return nudgeResultMsg{err: err}, err
	})
}

func (m *model) restartCmd() tea.Cmd {
	client := m.client
	return m.jobs.Start(jobKindRestart, func(ctx context.Context) (tea.Msg, error) {
		err := client.Restart(ctx)
		return restartResultMsg{err: err}, err
	})
}
