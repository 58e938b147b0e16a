package update

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/remindd/internal/commands"
	"github.com/sandeepkv93/remindd/internal/feed"
	"github.com/sandeepkv93/remindd/internal/reconcile"
	"github.com/sandeepkv93/remindd/internal/sched"
	"github.com/sandeepkv93/remindd/internal/suppress"
	"github.com/sandeepkv93/remindd/internal/views"
)

const firedLogLimit = 50

const helpDocs = `## How syncing works

The desired reminder list is read from the feed file and reconciled against
the local scheduler: stale entries are cancelled, new ones scheduled, and the
soonest-firing entries win when the capacity limit is hit. A reminder whose
fire time changed shows up as one cancel plus one add.

Turning reminders **off** cancels everything and forgets the synced snapshot;
turning them back **on** schedules nothing until the next sync runs.`

func NewModel() Model {
	m := Model{
		CurrentView: ViewScheduled,
		notifier:    NoopDesktopNotifier{},
		Keys: GlobalKeyMap{
			Scheduled: "1",
			Log:       "2",
			Settings:  "3",
			Sync:      "s",
			Toggle:    "e",
			Help:      "?",
			Quit:      "q",
		},
		syncInterval: 5 * time.Minute,
		log:          slog.Default(),
	}
	m.initBubbleComponents()
	return m
}

func NewModelWithRuntime(rec *reconcile.Engine, eng *sched.Engine, provider feed.Provider, policy *suppress.Policy, notifier DesktopNotifier, cfg RuntimeConfig) Model {
	m := NewModel()
	m.Reconciler = rec
	m.Scheduler = eng
	m.Provider = provider
	m.Policy = policy
	m.DesktopEnabled = cfg.DesktopNotifications
	m.capacity = cfg.Capacity
	if notifier != nil {
		m.notifier = notifier
	}
	if cfg.SyncIntervalMinutes > 0 {
		m.syncInterval = time.Duration(cfg.SyncIntervalMinutes) * time.Minute
	}
	m.refreshScheduledTable()
	return m
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.Scheduler != nil {
		cmds = append(cmds, waitForNotificationCmd(m.Scheduler.C()))
	}
	if m.Reconciler != nil && m.Provider != nil {
		cmds = append(cmds, func() tea.Msg { return syncTickMsg{} })
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed)
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active", IsError: false}
			return m, nil
		case m.Keys.Scheduled:
			m.CurrentView = ViewScheduled
			return m, nil
		case m.Keys.Log:
			m.CurrentView = ViewLog
			return m, nil
		case m.Keys.Settings:
			m.CurrentView = ViewSettings
			return m, nil
		case m.Keys.Sync:
			return m.startSync()
		case m.Keys.Toggle:
			return m, func() tea.Msg { return ToggleRemindersMsg{} }
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown", IsError: false}
			} else {
				m.Status = StatusBar{Text: "help hidden", IsError: false}
			}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		if m.CurrentView == ViewScheduled {
			var cmd tea.Cmd
			m.scheduledTable, cmd = m.scheduledTable.Update(typed)
			return m, cmd
		}
	case spinner.TickMsg:
		if m.spinnerActive {
			var cmd tea.Cmd
			m.syncSpinner, cmd = m.syncSpinner.Update(typed)
			return m, cmd
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	case syncTickMsg:
		next, cmd := m.startSync()
		if next.Reconciler == nil || next.Provider == nil {
			return next, cmd
		}
		rearm := tea.Tick(next.syncInterval, func(time.Time) tea.Msg { return syncTickMsg{} })
		if cmd == nil {
			return next, rearm
		}
		return next, tea.Batch(cmd, rearm)
	case syncDoneMsg:
		return m.onSyncDone(typed)
	case NotificationDueMsg:
		return m.onNotificationDue(typed.Notification)
	case ToggleRemindersMsg:
		return m.onToggleReminders()
	}

	return m, nil
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	mainPane := ""
	switch m.CurrentView {
	case ViewScheduled:
		mainPane = m.renderScheduledView()
	case ViewLog:
		mainPane = m.renderLogView()
	case ViewSettings:
		mainPane = m.renderSettingsView()
	}

	sidePane := strings.TrimSpace(strings.Join([]string{
		m.renderCommandPalette(),
		m.renderHelpIfVisible(),
	}, "\n"))

	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("remindd | view: %s | reminders: %s", m.CurrentView, onOffLabel(m.remindersEnabled())),
		MainPane:   mainPane,
		SidePane:   sidePane,
		StatusLine: status,
		Footer:     fmt.Sprintf("keys: %s scheduled | %s log | %s settings | %s sync | %s toggle | %s help | %s quit", m.Keys.Scheduled, m.Keys.Log, m.Keys.Settings, m.Keys.Sync, m.Keys.Toggle, m.Keys.Help, m.Keys.Quit),
	})
}

func isKnownView(v View) bool {
	switch v {
	case ViewScheduled, ViewLog, ViewSettings:
		return true
	default:
		return false
	}
}

func (m *Model) initBubbleComponents() {
	cols := []table.Column{
		{Title: "ID", Width: 28},
		{Title: "Fires", Width: 17},
		{Title: "Title", Width: 24},
	}
	m.scheduledTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(10))

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 40

	m.syncSpinner = spinner.New()
	m.syncSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
}

func (m *Model) refreshScheduledTable() {
	if m.Scheduler == nil {
		return
	}
	pending, err := m.Scheduler.ListScheduled(context.Background())
	if err != nil {
		return
	}
	rows := make([]table.Row, 0, len(pending))
	for _, n := range pending {
		rows = append(rows, table.Row{n.ID, n.FireAt.Format("2006-01-02 15:04"), n.Title})
	}
	m.scheduledTable.SetRows(rows)
}

func (m Model) startSync() (Model, tea.Cmd) {
	if m.Reconciler == nil || m.Provider == nil {
		m.Status = StatusBar{Text: "sync unavailable: no reconciler wired", IsError: true}
		return m, nil
	}
	if m.spinnerActive {
		return m, nil
	}
	m.spinnerActive = true
	m.Status = StatusBar{Text: "sync started", IsError: false}
	return m, tea.Batch(m.syncSpinner.Tick, syncCmd(m.Reconciler, m.Provider))
}

func syncCmd(rec *reconcile.Engine, provider feed.Provider) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		desired, err := provider.FetchDesired(ctx)
		if err != nil {
			return syncDoneMsg{Err: err}
		}
		res, err := rec.Sync(ctx, desired)
		if err != nil {
			return syncDoneMsg{Err: err}
		}
		return syncDoneMsg{Scheduled: res.ScheduledCount}
	}
}

func (m Model) onSyncDone(msg syncDoneMsg) (Model, tea.Cmd) {
	m.spinnerActive = false
	if m.Policy != nil {
		m.Policy.Invalidate()
	}
	if msg.Err != nil {
		m.LastError = msg.Err
		m.Status = StatusBar{Text: fmt.Sprintf("sync failed: %v", msg.Err), IsError: true}
		m.log.Warn("sync failed", "error", msg.Err)
		return m, nil
	}
	m.Status = StatusBar{Text: fmt.Sprintf("sync complete: %d scheduled", msg.Scheduled), IsError: false}
	m.refreshScheduledTable()
	return m, nil
}

func (m Model) onNotificationDue(n sched.Notification) (Model, tea.Cmd) {
	display := true
	if m.Policy != nil {
		display = m.Policy.ShouldDisplay(context.Background(), n.ID)
	}

	m.FiredLog = append(m.FiredLog, LogEntry{
		ID:         n.ID,
		Title:      n.Title,
		FiredAt:    n.FireAt,
		Suppressed: !display,
	})
	if len(m.FiredLog) > firedLogLimit {
		m.FiredLog = m.FiredLog[len(m.FiredLog)-firedLogLimit:]
	}

	if display {
		m.Status = StatusBar{Text: fmt.Sprintf("reminder fired: %s", n.Title), IsError: false}
		if m.DesktopEnabled && m.notifier != nil {
			if err := m.notifier.Send(DesktopNotification{Title: n.Title, Body: n.Body}); err != nil {
				m.log.Warn("desktop notification failed", "id", n.ID, "error", err)
			}
		}
	} else {
		m.Status = StatusBar{Text: fmt.Sprintf("reminder suppressed: %s", n.Title), IsError: false}
	}

	m.refreshScheduledTable()
	if m.Scheduler != nil {
		return m, waitForNotificationCmd(m.Scheduler.C())
	}
	return m, nil
}

func (m Model) onToggleReminders() (Model, tea.Cmd) {
	if m.Reconciler == nil {
		m.Status = StatusBar{Text: "reminders toggle unavailable: no reconciler wired", IsError: true}
		return m, nil
	}
	next := !m.Reconciler.Enabled()
	if err := m.Reconciler.SetRemindersEnabled(context.Background(), next); err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: fmt.Sprintf("reminders toggle failed: %v", err), IsError: true}
		return m, nil
	}
	if m.Policy != nil {
		m.Policy.Invalidate()
	}
	m.refreshScheduledTable()
	m.Status = StatusBar{Text: fmt.Sprintf("reminders %s", onOffLabel(next)), IsError: false}
	if next {
		// Turning reminders back on does not replay the old list; the next
		// sync rebuilds the scheduled set from the server's desired list.
		return m.startSync()
	}
	return m, nil
}

func waitForNotificationCmd(ch <-chan sched.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return NotificationDueMsg{Notification: n}
	}
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m, nil
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var followUp tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Sync: func() (commands.Result, error) {
			followUp = func() tea.Msg { return syncTickMsg{} }
			return commands.Result{Message: "sync requested"}, nil
		},
		Reminders: func(a commands.RemindersArgs) (commands.Result, error) {
			followUp = func() tea.Msg { return ToggleRemindersMsg{} }
			if m.Reconciler != nil && m.Reconciler.Enabled() == a.Enabled {
				followUp = nil
				return commands.Result{Message: fmt.Sprintf("reminders already %s", onOffLabel(a.Enabled))}, nil
			}
			return commands.Result{Message: fmt.Sprintf("reminders %s requested", onOffLabel(a.Enabled))}, nil
		},
		Show: func(s commands.ShowArgs) (commands.Result, error) {
			switch s.Subject {
			case "scheduled":
				m.CurrentView = ViewScheduled
			case "log":
				m.CurrentView = ViewLog
			case "settings":
				m.CurrentView = ViewSettings
			}
			return commands.Result{Message: fmt.Sprintf("show %s", s.Subject)}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message, IsError: false}
	return m, followUp
}

func (m Model) renderCommandPalette() string {
	if !m.Palette.Active {
		return ""
	}
	return "command palette:\n" + m.commandInput.View() + "\ncommands: sync | reminders on|off | show scheduled|log|settings"
}

func (m Model) renderScheduledView() string {
	spinnerView := ""
	if m.spinnerActive {
		spinnerView = m.syncSpinner.View()
	}
	count := 0
	if m.Scheduler != nil {
		if pending, err := m.Scheduler.ListScheduled(context.Background()); err == nil {
			count = len(pending)
		}
	}
	return views.RenderScheduledPanel(views.ScheduledPanelData{
		TableView:      m.scheduledTable.View(),
		ScheduledCount: count,
		Capacity:       m.capacity,
		SyncSpinner:    spinnerView,
	})
}

func (m Model) renderLogView() string {
	entries := make([]views.LogEntryData, 0, len(m.FiredLog))
	for i := len(m.FiredLog) - 1; i >= 0; i-- {
		e := m.FiredLog[i]
		entries = append(entries, views.LogEntryData{
			ID:         e.ID,
			Title:      e.Title,
			FiredAt:    e.FiredAt.Format("15:04:05"),
			Suppressed: e.Suppressed,
		})
	}
	return views.RenderLogPanel(views.LogPanelData{Entries: entries})
}

func (m Model) renderSettingsView() string {
	lastSync := ""
	hasPermission := false
	count := 0
	if m.Reconciler != nil {
		if at := m.Reconciler.LastSyncTime(); at != nil {
			lastSync = at.Format(time.RFC3339)
		}
	}
	if m.Scheduler != nil {
		hasPermission = m.Scheduler.HasPermission(context.Background())
		if pending, err := m.Scheduler.ListScheduled(context.Background()); err == nil {
			count = len(pending)
		}
	}
	return views.RenderSettingsPanel(views.SettingsPanelData{
		Enabled:        m.remindersEnabled(),
		HasPermission:  hasPermission,
		Capacity:       m.capacity,
		SyncInterval:   m.syncInterval.String(),
		LastSyncAt:     lastSync,
		ScheduledCount: count,
	})
}

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	helpView := m.helpModel.View(helpKeyMap{
		short: bindings,
		full:  [][]key.Binding{bindings},
	})
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		HelpView:    helpView + "\n" + views.RenderMarkdown(helpDocs),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Scheduled, Action: "switch to Scheduled"},
		{Key: m.Keys.Log, Action: "switch to Log"},
		{Key: m.Keys.Settings, Action: "switch to Settings"},
		{Key: m.Keys.Sync, Action: "sync now"},
		{Key: m.Keys.Toggle, Action: "toggle reminders"},
		{Key: "/", Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewScheduled:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
		}
	case ViewLog:
		return []KeyBinding{
			{Key: "-", Action: "newest entries first"},
		}
	case ViewSettings:
		return []KeyBinding{
			{Key: m.Keys.Toggle, Action: "toggle reminders"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.viewBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.viewBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}

func (m Model) remindersEnabled() bool {
	if m.Reconciler == nil {
		return true
	}
	return m.Reconciler.Enabled()
}

func onOffLabel(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
