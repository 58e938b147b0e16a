// Package ident derives the identifiers the reconciler hands to the local
// notification scheduler. A base identifier names a reminder independent of
// when it fires; a scheduling identifier appends the fire time, so a
// reschedule surfaces in the diff as cancel-old plus add-new without the
// scheduler needing an update primitive.
package ident

import (
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
)

const ordinalPrefix = "notif-"

// Base returns the stable identity of a desired reminder. Two reminders for
// the same underlying task produce the same base across sync cycles even
// when their fire time changes.
func Base(r model.DesiredReminder, index int) string {
	if r.SourceID != "" {
		return r.SourceID
	}
	if r.File != "" && r.Position != nil {
		return r.File + ":" + strconv.Itoa(*r.Position)
	}
	return ordinalPrefix + strconv.Itoa(index)
}

// Scheduling returns the key given to the scheduler adapter.
func Scheduling(base string, fireAt time.Time) string {
	return base + ":" + strconv.FormatInt(fireAt.UnixMilli(), 10)
}

// BaseOf inverts Scheduling by dropping the trailing epoch-millis segment.
// Everything up to the last colon is the base, which keeps the inverse
// correct when file paths themselves contain colons. Inputs without a colon
// (the ordinal notif-{i} form) are their own base.
func BaseOf(schedulingID string) string {
	i := strings.LastIndexByte(schedulingID, ':')
	if i < 0 {
		return schedulingID
	}
	return schedulingID[:i]
}
