package commands

import (
	"errors"
	"testing"
)

func TestParseValidCommands(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, cmd Command)
	}{
		{
			name:  "sync",
			input: "sync",
			check: func(t *testing.T, cmd Command) {
				if cmd.Type != TypeSync {
					t.Fatalf("expected sync command, got %s", cmd.Type)
				}
			},
		},
		{
			name:  "sync with leading slash",
			input: "/sync",
			check: func(t *testing.T, cmd Command) {
				if cmd.Type != TypeSync {
					t.Fatalf("expected sync command, got %s", cmd.Type)
				}
			},
		},
		{
			name:  "reminders on",
			input: "reminders on",
			check: func(t *testing.T, cmd Command) {
				if cmd.Type != TypeReminders || cmd.Reminders == nil || !cmd.Reminders.Enabled {
					t.Fatalf("expected reminders on, got %#v", cmd)
				}
			},
		},
		{
			name:  "reminders off uppercase",
			input: "REMINDERS OFF",
			check: func(t *testing.T, cmd Command) {
				if cmd.Type != TypeReminders || cmd.Reminders == nil || cmd.Reminders.Enabled {
					t.Fatalf("expected reminders off, got %#v", cmd)
				}
			},
		},
		{
			name:  "show scheduled",
			input: "show scheduled",
			check: func(t *testing.T, cmd Command) {
				if cmd.Type != TypeShow || cmd.Show == nil || cmd.Show.Subject != "scheduled" {
					t.Fatalf("expected show scheduled, got %#v", cmd)
				}
			},
		},
		{
			name:  "show log with whitespace",
			input: "  show   log  ",
			check: func(t *testing.T, cmd Command) {
				if cmd.Type != TypeShow || cmd.Show == nil || cmd.Show.Subject != "log" {
					t.Fatalf("expected show log, got %#v", cmd)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("parse %q: %v", tt.input, err)
			}
			tt.check(t, cmd)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  ErrorCode
	}{
		{name: "empty input", input: "   ", code: ErrCodeEmptyInput},
		{name: "bare slash", input: "/", code: ErrCodeEmptyInput},
		{name: "unknown command", input: "frobnicate", code: ErrCodeUnknownCommand},
		{name: "sync with args", input: "sync now", code: ErrCodeInvalidArgument},
		{name: "reminders missing arg", input: "reminders", code: ErrCodeInvalidArgument},
		{name: "reminders bad arg", input: "reminders maybe", code: ErrCodeInvalidArgument},
		{name: "show missing subject", input: "show", code: ErrCodeInvalidArgument},
		{name: "show bad subject", input: "show everything", code: ErrCodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
			var cmdErr *CommandError
			if !errors.As(err, &cmdErr) {
				t.Fatalf("expected *CommandError, got %T", err)
			}
			if cmdErr.Code != tt.code {
				t.Fatalf("expected code %s, got %s", tt.code, cmdErr.Code)
			}
		})
	}
}

func TestExecuteDispatches(t *testing.T) {
	var synced bool
	var toggled *bool
	var shown string

	handlers := Handlers{
		Sync: func() (Result, error) {
			synced = true
			return Result{Message: "sync started"}, nil
		},
		Reminders: func(args RemindersArgs) (Result, error) {
			toggled = &args.Enabled
			return Result{Message: "reminders updated"}, nil
		},
		Show: func(args ShowArgs) (Result, error) {
			shown = args.Subject
			return Result{Message: "showing " + args.Subject}, nil
		},
	}

	for _, input := range []string{"sync", "reminders off", "show settings"} {
		cmd, err := Parse(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		res, err := Execute(cmd, handlers)
		if err != nil {
			t.Fatalf("execute %q: %v", input, err)
		}
		if res.Message == "" {
			t.Fatalf("expected result message for %q", input)
		}
	}

	if !synced {
		t.Fatal("sync handler not called")
	}
	if toggled == nil || *toggled {
		t.Fatal("reminders handler not called with off")
	}
	if shown != "settings" {
		t.Fatalf("show handler got %q", shown)
	}
}

func TestExecuteHandlerMissing(t *testing.T) {
	cmd, err := Parse("sync")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) || cmdErr.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected handler_missing error, got %v", err)
	}
}
