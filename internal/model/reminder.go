package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidReminderKind = errors.New("model: invalid reminder kind")

// ReminderKind mirrors the server's vocabulary for why a reminder exists.
type ReminderKind string

const (
	ReminderKindDeadline  ReminderKind = "deadline"
	ReminderKindScheduled ReminderKind = "scheduled"
	ReminderKindEvent     ReminderKind = "event"
)

func (k ReminderKind) IsValid() bool {
	switch k {
	case ReminderKindDeadline, ReminderKindScheduled, ReminderKindEvent:
		return true
	default:
		return false
	}
}

// DesiredReminder is one entry of the server-authoritative reminder list.
// It lives for a single sync cycle; only its derived scheduling side effects
// persist. Identity is SourceID when the server has one, else the File and
// Position pair, else the ordinal position in the fetched list.
type DesiredReminder struct {
	SourceID      string
	File          string
	Position      *int
	FireAt        time.Time
	Title         string
	Kind          ReminderKind
	MinutesBefore int
	EventTime     *time.Time
}

func (r DesiredReminder) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("model: reminder title is required")
	}
	if r.FireAt.IsZero() {
		return errors.New("model: reminder fire_at is required")
	}
	if r.Kind != "" && !r.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidReminderKind, r.Kind)
	}
	return nil
}

// Body composes the notification body shown to the user. The fields are
// opaque to the reconciler; only the scheduler adapter ever renders them.
func (r DesiredReminder) Body() string {
	var parts []string
	switch r.Kind {
	case ReminderKindDeadline:
		parts = append(parts, "due")
	case ReminderKindScheduled:
		parts = append(parts, "scheduled")
	case ReminderKindEvent:
		parts = append(parts, "event")
	}
	if r.EventTime != nil {
		parts = append(parts, "at "+r.EventTime.UTC().Format("15:04"))
	}
	if r.MinutesBefore > 0 {
		parts = append(parts, fmt.Sprintf("in %d min", r.MinutesBefore))
	}
	if len(parts) == 0 {
		return r.Title
	}
	return strings.Join(parts, " ")
}
