package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Sync      func() (Result, error)
	Reminders func(args RemindersArgs) (Result, error)
	Show      func(args ShowArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeSync:
		if handlers.Sync == nil {
			return Result{}, handlerMissing(cmd.Type)
		}
		return handlers.Sync()
	case TypeReminders:
		if handlers.Reminders == nil {
			return Result{}, handlerMissing(cmd.Type)
		}
		if cmd.Reminders == nil {
			return Result{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "reminders command missing arguments"}
		}
		return handlers.Reminders(*cmd.Reminders)
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, handlerMissing(cmd.Type)
		}
		if cmd.Show == nil {
			return Result{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show command missing arguments"}
		}
		return handlers.Show(*cmd.Show)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command type: %s", cmd.Type)}
	}
}

func handlerMissing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("no handler registered for %s", t)}
}
