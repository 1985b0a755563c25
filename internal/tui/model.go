package tui

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/csheth/agentdeck/internal/api"
	"github.com/csheth/agentdeck/internal/config"
	"github.com/csheth/agentdeck/internal/logsync"
	"github.com/csheth/agentdeck/internal/render"
	"github.com/csheth/agentdeck/internal/state"
)

// Config wires runtime options into the TUI program.
type Config struct {
	App       config.Config
	Client    *api.Client
	Prefs     state.Prefs
	PrefsPath string
	Narrator  Narrator
	// ImportPaths are serialized contexts to upload once on startup.
	ImportPaths []string
}

// New returns a tea.Model ready to be mounted into a Program.
func New(cfg Config) tea.Model {
	composer := textinput.New()
	composer.Placeholder = "Message the agent…"
	composer.Focus()
	composer.CharLimit = 0
	composer.Width = 70

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	m := &model{
		config:      cfg.App,
		client:      cfg.Client,
		narrator:    cfg.Narrator,
		prefs:       cfg.Prefs,
		prefsPath:   cfg.PrefsPath,
		importPaths: cfg.ImportPaths,
		jobs:        newJobBus(cfg.App.Poll.Timeout.Std()),
		schedule:    logsync.NewSchedule(cfg.App.Poll.ShortInterval.Std(), cfg.App.Poll.LongInterval.Std()),
		renderer:    render.New(80, cfg.Prefs.DarkMode),
		transcript:  newTranscript(),
		scroll:      newScrollState(cfg.App.UI.ScrollTolerance),
		composer:    composer,
		spinner:     spin,
		viewport:    vp,
	}
	if cfg.Prefs.CurrentContext != "" {
		m.switcher.Adopt(cfg.Prefs.CurrentContext)
	}
	return m
}

type model struct {
	config   config.Config
	client   *api.Client
	narrator Narrator

	prefs       state.Prefs
	prefsPath   string
	importPaths []string

	jobs       *jobBus
	schedule   *logsync.Schedule
	switcher   logsync.Switcher
	renderer   *render.Renderer
	transcript *transcript
	scroll     scrollState

	composer textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	contexts []api.ContextSummary
	tasks    []api.TaskSummary

	activeTab      tab
	connected      bool
	everConnected  bool
	paused         bool
	progress       string
	progressActive bool
	notice         notification

	pollInFlight bool
	pollQueued   bool
	tickSeq      int
	busyJobs     int

	width  int
	height int
	ready  bool
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.healthCheckCmd(), m.startPoll()}
	if len(m.importPaths) > 0 {
		cmds = append(cmds, m.spinner.Tick, m.importContextsCmd(m.importPaths))
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.busyJobs > 0 || m.progressActive {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.scroll.observe(m.viewport.YOffset, m.viewport.Height, m.viewport.TotalLineCount())
		return m, cmd
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case pollTickMsg:
		if msg.seq != m.tickSeq {
			return m, nil
		}
		if m.pollInFlight {
			m.pollQueued = true
			return m, nil
		}
		return m, m.startPoll()
	case pollResultMsg:
		return m.handlePollResult(msg)
	case healthResultMsg:
		if msg.err != nil {
			log.Printf("[health] backend check failed: %v", msg.err)
			return m, nil
		}
		m.connected = true
		m.everConnected = true
		return m, nil
	case jobSignalMsg:
		m.busyJobs++
		return m, m.spinner.Tick
	case jobResultEnvelope:
		if m.busyJobs > 0 {
			m.busyJobs--
		}
		if msg.Payload == nil {
			return m, nil
		}
		return m.handleJobPayload(msg.Payload)
	}
	return m, nil
}

func (m *model) handleJobPayload(payload tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := payload.(type) {
	case sendResultMsg:
		if msg.err != nil {
			m.notifyFailure("Send", msg.err)
			return m, nil
		}
		var cmds []tea.Cmd
		if m.switcher.Current() == "" && msg.context != "" {
			m.switcher.Adopt(msg.context)
			m.prefs.CurrentContext = msg.context
		}
		m.notify("Message sent.")
		cmds = append(cmds, m.queuePoll())
		return m, tea.Batch(cmds...)
	case resetResultMsg:
		if msg.err != nil {
			m.notifyFailure("Reset", msg.err)
			return m, nil
		}
		m.notify("Chat reset.")
		return m, m.queuePoll()
	case removeResultMsg:
		if msg.err != nil {
			m.notifyFailure("Delete", msg.err)
			return m, nil
		}
		m.notify("Chat deleted.")
		return m, m.queuePoll()
	case exportResultMsg:
		if msg.err != nil {
			m.notifyFailure("Export", msg.err)
			return m, nil
		}
		m.notify("Exported to " + msg.path)
		return m, nil
	case importResultMsg:
		if msg.err != nil {
			m.notifyFailure("Import", msg.err)
			return m, nil
		}
		var cmds []tea.Cmd
		if len(msg.created) > 0 {
			if cmd := m.switchTo(msg.created[0]); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		m.notify("Imported " + pluralize(len(msg.created), "chat"))
		cmds = append(cmds, m.queuePoll())
		return m, tea.Batch(cmds...)
	case pauseResultMsg:
		if msg.err != nil {
			m.notifyFailure("Pause toggle", msg.err)
			return m, nil
		}
		m.paused = msg.paused
		if msg.paused {
			m.notify("Agent paused.")
		} else {
			m.notify("Agent resumed.")
		}
		return m, nil
	case nudgeResultMsg:
		if msg.err != nil {
			m.notifyFailure("Nudge", msg.err)
			return m, nil
		}
		m.notify("Nudged the agent.")
		return m, m.queuePoll()
	case restartResultMsg:
		if msg.err != nil {
			m.notifyFailure("Restart", msg.err)
			return m, nil
		}
		m.notify("Backend restarting…")
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyCtrlC:
		return m.quit()
	case tea.KeyEsc:
		if m.composer.Value() != "" {
			m.composer.SetValue("")
			return m, nil
		}
		return m.quit()
	case tea.KeyEnter:
		return m, m.submitComposer()
	case tea.KeyTab:
		if m.activeTab == tabChats {
			m.activeTab = tabTasks
		} else {
			m.activeTab = tabChats
		}
		return m, nil
	case tea.KeyCtrlN:
		return m, m.switchTo(uuid.NewString())
	case tea.KeyCtrlJ:
		return m, m.cycleContext(1)
	case tea.KeyCtrlK:
		return m, m.cycleContext(-1)
	case tea.KeyCtrlX:
		if id := m.switcher.Current(); id != "" {
			return m, m.resetContextCmd(id)
		}
		m.notify("No chat selected.")
		return m, nil
	case tea.KeyCtrlD:
		return m.deleteCurrent()
	case tea.KeyCtrlE:
		if id := m.switcher.Current(); id != "" {
			return m, m.exportContextCmd(id)
		}
		m.notify("No chat selected.")
		return m, nil
	case tea.KeyCtrlP:
		if id := m.switcher.Current(); id != "" {
			return m, m.setPausedCmd(id, !m.paused)
		}
		return m, nil
	case tea.KeyCtrlG:
		if id := m.switcher.Current(); id != "" {
			return m, m.nudgeCmd(id)
		}
		return m, nil
	case tea.KeyCtrlR:
		return m, m.restartCmd()
	case tea.KeyCtrlB:
		m.scroll.toggle()
		if m.scroll.isPinned() {
			m.viewport.GotoBottom()
			m.notify("Following new messages.")
		} else {
			m.notify("Scroll position held.")
		}
		return m, nil
	case tea.KeyCtrlO:
		m.prefs.DarkMode = !m.prefs.DarkMode
		m.renderer = render.New(m.renderer.Width(), m.prefs.DarkMode)
		m.transcript.rerender(m.renderer)
		m.viewport.SetContent(m.transcript.content())
		if m.scroll.isPinned() {
			m.viewport.GotoBottom()
		}
		if m.prefs.DarkMode {
			m.notify("Dark theme.")
		} else {
			m.notify("Light theme.")
		}
		return m, nil
	case tea.KeyCtrlT:
		m.prefs.SpeechEnabled = !m.prefs.SpeechEnabled
		if m.prefs.SpeechEnabled {
			m.notify("Speech on.")
		} else {
			m.notify("Speech off.")
		}
		return m, nil
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown, tea.KeyHome, tea.KeyEnd:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(key)
		m.scroll.observe(m.viewport.YOffset, m.viewport.Height, m.viewport.TotalLineCount())
		return m, cmd
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(key)
	return m, cmd
}

func (m *model) quit() (tea.Model, tea.Cmd) {
	if m.prefsPath != "" {
		if err := state.Save(m.prefsPath, m.prefs); err != nil {
			log.Printf("[state] save failed: %v", err)
		}
	}
	return m, tea.Quit
}

func (m *model) submitComposer() tea.Cmd {
	text := strings.TrimSpace(m.composer.Value())
	if text == "" {
		return nil
	}
	m.composer.SetValue("")
	return m.sendMessageCmd(text, m.switcher.Current(), uuid.NewString(), nil)
}

func (m *model) deleteCurrent() (tea.Model, tea.Cmd) {
	id := m.switcher.Current()
	if id == "" {
		m.notify("No chat selected.")
		return m, nil
	}
	// Switch away first so in-flight responses for the dying context are
	// already stale by the time the delete lands.
	next := logsync.NextAfterDelete(m.contexts, id)
	var cmds []tea.Cmd
	if cmd := m.switchTo(next); cmd != nil {
		cmds = append(cmds, cmd)
	}
	cmds = append(cmds, m.removeContextCmd(id))
	return m, tea.Batch(cmds...)
}

func (m *model) cycleContext(delta int) tea.Cmd {
	if m.activeTab == tabTasks {
		if len(m.tasks) == 0 {
			m.notify("No tasks yet.")
			return nil
		}
		idx := 0
		for i, t := range m.tasks {
			if t.ID == m.switcher.Current() {
				idx = (i + delta + len(m.tasks)) % len(m.tasks)
				break
			}
		}
		m.prefs.SelectedTask = m.tasks[idx].ID
		return m.switchTo(m.tasks[idx].ID)
	}
	ordered := logsync.DisplayOrder(m.contexts)
	if len(ordered) == 0 {
		m.notify("No chats yet.")
		return nil
	}
	idx := 0
	for i, c := range ordered {
		if c.ID == m.switcher.Current() {
			idx = (i + delta + len(ordered)) % len(ordered)
			break
		}
	}
	m.prefs.SelectedChat = ordered[idx].ID
	return m.switchTo(ordered[idx].ID)
}

// switchTo makes id the active context. The transcript and cursor drop
// immediately; content arrives with the next poll.
func (m *model) switchTo(id string) tea.Cmd {
	if !m.switcher.Switch(id) {
		return nil
	}
	m.transcript.clear()
	m.viewport.SetContent("")
	m.scroll = newScrollState(m.config.UI.ScrollTolerance)
	m.progress = ""
	m.progressActive = false
	m.prefs.CurrentContext = id
	return m.queuePoll()
}

func (m *model) startPoll() tea.Cmd {
	m.pollInFlight = true
	return pollCmd(m.client, m.switcher.Current(), m.transcript.size(), m.config.Poll.Timeout.Std())
}

// queuePoll requests a poll as soon as possible: immediately when idle, or
// right after the in-flight round-trip completes.
func (m *model) queuePoll() tea.Cmd {
	if m.pollInFlight {
		m.pollQueued = true
		return nil
	}
	m.tickSeq++
	return m.startPoll()
}

func (m *model) nextPollCmd(advanced, failed bool) tea.Cmd {
	if m.pollQueued {
		m.pollQueued = false
		return m.startPoll()
	}
	m.tickSeq++
	return pollTickCmd(m.schedule.Next(advanced, failed), m.tickSeq)
}

func (m *model) handlePollResult(msg pollResultMsg) (tea.Model, tea.Cmd) {
	m.pollInFlight = false
	if msg.err != nil {
		if m.connected {
			log.Printf("[poll] lost connection: %v", msg.err)
		}
		m.connected = false
		return m, m.nextPollCmd(false, true)
	}
	wasOffline := !m.connected
	m.connected = true
	m.everConnected = true
	resp := msg.resp

	// Context and task inventories are global, so they refresh from every
	// successful poll, including ones whose log content is stale.
	m.contexts = resp.Contexts
	m.tasks = resp.Tasks

	if m.switcher.Current() == "" && resp.Context != "" {
		m.switcher.Adopt(resp.Context)
		m.prefs.CurrentContext = resp.Context
	}
	// Accepts gates on the context stamped in the response; the context the
	// request went out for must match too, or a slow reply from before a
	// switch could sneak through.
	if !m.switcher.Accepts(resp.Context) {
		return m, m.nextPollCmd(false, false)
	}
	if msg.requested != "" && msg.requested != m.switcher.Current() {
		return m, m.nextPollCmd(false, false)
	}

	prev := m.switcher.Cursor()
	cursor, instructions := logsync.Apply(prev, resp)
	result := m.transcript.apply(instructions, m.renderer)
	// The poll cadence follows the log cursor, not the rendering: a version
	// bump with identical visible text still signals agent activity.
	advanced := cursor != prev
	changed := result.cleared || result.appended || result.updated

	m.paused = resp.Paused
	m.progress = resp.LogProgress
	m.progressActive = resp.LogProgressActive

	if changed || wasOffline {
		m.viewport.SetContent(m.transcript.content())
		if m.scroll.isPinned() {
			m.viewport.GotoBottom()
		}
	}

	cursor = m.narrate(cursor, result.added)
	m.switcher.SetCursor(cursor)

	var cmds []tea.Cmd
	if m.progressActive {
		cmds = append(cmds, m.spinner.Tick)
	}
	cmds = append(cmds, m.nextPollCmd(advanced, false))
	return m, tea.Batch(cmds...)
}

// narrate speaks freshly appended agent responses. The spoken watermark
// advances over every new entry either way, so toggling speech on never
// replays a backlog.
func (m *model) narrate(cursor logsync.Cursor, added []api.LogEntry) logsync.Cursor {
	for _, e := range added {
		if e.No < cursor.NextSpeechNo {
			continue
		}
		cursor.NextSpeechNo = e.No + 1
		if e.Temp || !m.prefs.SpeechEnabled || m.narrator == nil {
			continue
		}
		if render.ParseVariant(e.Type).Speakable() {
			m.narrator.Speak(e.Content)
		}
	}
	return cursor
}

func (m *model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	vpWidth := msg.Width - sidebarWidth - viewportHorizontalPadding
	if vpWidth < minViewportWidth {
		vpWidth = minViewportWidth
	}
	vpHeight := msg.Height - chromeHeight
	if vpHeight < 5 {
		vpHeight = 5
	}
	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
	m.composer.Width = vpWidth - 4

	if m.renderer.Width() != vpWidth {
		m.renderer = render.New(vpWidth, m.prefs.DarkMode)
		m.transcript.rerender(m.renderer)
		m.viewport.SetContent(m.transcript.content())
	}
	if m.scroll.isPinned() {
		m.viewport.GotoBottom()
	}
	return m, nil
}

func (m *model) notify(text string) {
	m.notice = notification{text: text, shownAt: time.Now()}
}

func (m *model) notifyError(text string) {
	m.notice = notification{text: text, isError: true, shownAt: time.Now()}
}

// notifyFailure reports a failed user action. Transport errors rarely say so
// themselves, so when the backend looks unreachable the notice spells it out.
func (m *model) notifyFailure(action string, err error) {
	text := action + " failed: " + err.Error()
	var terr *api.TransportError
	if !m.connected || (errors.As(err, &terr) && terr.Unreachable()) {
		text += " (backend unreachable?)"
	}
	m.notifyError(text)
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
