package command

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sandevgo/scoutbot/internal/core"
)

type Router struct {
	commands map[string]core.Command
	fallback string
}

// New builds a router. Input without a leading slash is handed to the
// fallback command when one is set.
func New(commands []core.Command, fallback string) *Router {
	c := &Router{
		commands: make(map[string]core.Command),
		fallback: fallback,
	}

	for _, cmd := range commands {
		c.commands[cmd.Name()] = cmd
	}
	return c
}

func (c *Router) Execute(ctx context.Context, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}

	name, args := c.fallback, input
	if strings.HasPrefix(input, "/") {
		name, args, _ = strings.Cut(strings.TrimPrefix(input, "/"), " ")
		// Telegram appends the bot name in groups: /ask@scout_bot
		name, _, _ = strings.Cut(name, "@")
		args = strings.TrimSpace(args)
	} else if name == "" {
		return "", false
	}

	cmd, ok := c.commands[strings.ToLower(name)]
	if !ok {
		return fmt.Sprintf("Unknown command: /%s", name), true
	}

	result, err := cmd.Execute(ctx, args)
	if err != nil {
		return NewResponseFormatter().Error(name, err), true
	}
	return result, true
}

func (c *Router) ListCommands() []core.Command {
	res := make([]core.Command, 0, len(c.commands))
	for _, cmd := range c.commands {
		res = append(res, cmd)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name() < res[j].Name() })
	return res
}
