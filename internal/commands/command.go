package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeSync      Type = "sync"
	TypeReminders Type = "reminders"
	TypeShow      Type = "show"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type RemindersArgs struct {
	Enabled bool
}

type ShowArgs struct {
	Subject string
}

type Command struct {
	Type      Type
	Raw       string
	Reminders *RemindersArgs
	Show      *ShowArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeSync:
		if len(args) != 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "sync takes no arguments"}
		}
		return Command{Type: TypeSync, Raw: input}, nil
	case TypeReminders:
		return parseReminders(input, args)
	case TypeShow:
		return parseShow(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseReminders(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "reminders requires on or off"}
	}
	switch strings.ToLower(args[0]) {
	case "on":
		return Command{Type: TypeReminders, Raw: raw, Reminders: &RemindersArgs{Enabled: true}}, nil
	case "off":
		return Command{Type: TypeReminders, Raw: raw, Reminders: &RemindersArgs{Enabled: false}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("reminders argument must be on or off, got %q", args[0])}
	}
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires a subject"}
	}
	subject := strings.ToLower(args[0])
	switch subject {
	case "scheduled", "log", "settings":
		return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown show subject: %s", subject)}
	}
}
