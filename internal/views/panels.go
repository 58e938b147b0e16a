package views

import (
	"fmt"
	"strings"
)

type ScheduledPanelData struct {
	TableView      string
	ScheduledCount int
	Capacity       int
	SyncSpinner    string
}

type LogEntryData struct {
	ID         string
	Title      string
	FiredAt    string
	Suppressed bool
}

type LogPanelData struct {
	Entries []LogEntryData
}

type SettingsPanelData struct {
	Enabled        bool
	HasPermission  bool
	Capacity       int
	SyncInterval   string
	LastSyncAt     string
	ScheduledCount int
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderScheduledPanel(data ScheduledPanelData) string {
	var b strings.Builder
	b.WriteString("scheduled:\n")
	capacity := "unlimited"
	if data.Capacity > 0 {
		capacity = fmt.Sprintf("%d", data.Capacity)
	}
	b.WriteString(fmt.Sprintf("pending: %d | capacity: %s\n", data.ScheduledCount, capacity))
	if data.SyncSpinner != "" {
		b.WriteString("sync: " + data.SyncSpinner + " running\n")
	}
	b.WriteString("actions: [s]sync now [e]toggle reminders [j/k]move\n")
	b.WriteString(data.TableView)
	return strings.TrimSpace(b.String())
}

func RenderLogPanel(data LogPanelData) string {
	var b strings.Builder
	b.WriteString("log:\n")
	if len(data.Entries) == 0 {
		b.WriteString("(no notifications fired yet)")
		return strings.TrimSpace(b.String())
	}
	for _, entry := range data.Entries {
		marker := "SHOWN"
		if entry.Suppressed {
			marker = "SUPPRESSED"
		}
		b.WriteString(fmt.Sprintf("- %s [%s] %s @ %s\n", marker, entry.ID, entry.Title, entry.FiredAt))
	}
	return strings.TrimSpace(b.String())
}

func RenderSettingsPanel(data SettingsPanelData) string {
	var b strings.Builder
	b.WriteString("settings:\n")
	b.WriteString(fmt.Sprintf("reminders enabled: %s\n", onOff(data.Enabled)))
	b.WriteString(fmt.Sprintf("notification permission: %s\n", onOff(data.HasPermission)))
	capacity := "unlimited"
	if data.Capacity > 0 {
		capacity = fmt.Sprintf("%d", data.Capacity)
	}
	b.WriteString(fmt.Sprintf("scheduling capacity: %s\n", capacity))
	b.WriteString(fmt.Sprintf("sync interval: %s\n", data.SyncInterval))
	lastSync := data.LastSyncAt
	if lastSync == "" {
		lastSync = "never"
	}
	b.WriteString(fmt.Sprintf("last sync: %s\n", lastSync))
	b.WriteString(fmt.Sprintf("currently scheduled: %d\n", data.ScheduledCount))
	b.WriteString("actions: [e]toggle reminders [s]sync now")
	return strings.TrimSpace(b.String())
}

func RenderHelpPanel(data HelpPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("help (%s):\n", data.CurrentView))
	for _, binding := range data.Bindings {
		b.WriteString(binding + "\n")
	}
	if data.HelpView != "" {
		b.WriteString(data.HelpView)
	}
	return strings.TrimSpace(b.String())
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
