package cli

import (
	"errors"
	"fmt"
)

// Command enumerates the subcommands gnome-randr can dispatch.
type Command int

const (
	// CommandQuery prints the current display state. It is the default.
	CommandQuery Command = iota
)

// ErrUnknownCommand is returned by ResolveCommand for unsupported names.
var ErrUnknownCommand = errors.New("unknown command")

// String returns the subcommand name.
func (c Command) String() string {
	switch c {
	case CommandQuery:
		return "query"
	default:
		return fmt.Sprintf("command(%d)", int(c))
	}
}

// ResolveCommand maps a subcommand name to a Command. An empty name
// selects the default command.
func ResolveCommand(name string) (Command, error) {
	switch name {
	case "", "query":
		return CommandQuery, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
}
