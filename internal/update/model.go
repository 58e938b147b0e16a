package update

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/sandeepkv93/remindd/internal/feed"
	"github.com/sandeepkv93/remindd/internal/reconcile"
	"github.com/sandeepkv93/remindd/internal/sched"
	"github.com/sandeepkv93/remindd/internal/suppress"
)

type View string

const (
	ViewScheduled View = "Scheduled"
	ViewLog       View = "Log"
	ViewSettings  View = "Settings"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Scheduled string
	Log       string
	Settings  string
	Sync      string
	Toggle    string
	Help      string
	Quit      string
}

// LogEntry records one fired notification and the display decision that
// was made for it while the app was in the foreground.
type LogEntry struct {
	ID         string
	Title      string
	FiredAt    time.Time
	Suppressed bool
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Model struct {
	CurrentView View
	Reconciler  *reconcile.Engine
	Scheduler   *sched.Engine
	Provider    feed.Provider
	Policy      *suppress.Policy
	FiredLog    []LogEntry
	Palette     CommandPaletteState
	HelpVisible bool

	DesktopEnabled bool
	notifier       DesktopNotifier

	Status    StatusBar
	Keys      GlobalKeyMap
	Quitting  bool
	LastError error

	// Bubble components used for rich TUI controls
	scheduledTable table.Model
	commandInput   textinput.Model
	syncSpinner    spinner.Model
	helpModel      help.Model
	spinnerActive  bool

	capacity     int
	syncInterval time.Duration
	log          *slog.Logger
}

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

type DesktopNotification struct {
	Title string
	Body  string
}

type DesktopNotifier interface {
	Send(DesktopNotification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(DesktopNotification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n DesktopNotification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type NotificationDueMsg struct {
	Notification sched.Notification
}

type syncTickMsg struct{}

type syncDoneMsg struct {
	Scheduled int
	Err       error
}

type ToggleRemindersMsg struct{}
