package core

import "context"

type CmdRouter interface {
	Execute(ctx context.Context, input string) (string, bool)
	ListCommands() []Command
}

// Command is a slash command shared by the chat transports. Args is the raw
// text after the command name.
type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, args string) (string, error)
}
