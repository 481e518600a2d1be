package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandevgo/scoutbot/internal/core"
	"github.com/sandevgo/scoutbot/internal/heartbeat"
	"github.com/sandevgo/scoutbot/internal/ingest/news"
	"github.com/sandevgo/scoutbot/internal/service/analyst"
)

type Analyst interface {
	Analyze(ctx context.Context, prompt string) analyst.Report
	Ask(ctx context.Context, question string) analyst.Report
	Inject(title, content, category string) (string, string)
}

type TopicLister interface {
	Topics() news.TopicSet
}

type AnalyzeCommand struct {
	analyst   Analyst
	formatter *ResponseFormatter
}

func NewAnalyzeCommand(a Analyst) *AnalyzeCommand {
	return &AnalyzeCommand{analyst: a, formatter: NewResponseFormatter()}
}

func (c *AnalyzeCommand) Name() string        { return "analyze" }
func (c *AnalyzeCommand) Description() string { return "Steer the news stream and write a report" }

func (c *AnalyzeCommand) Execute(ctx context.Context, args string) (string, error) {
	if args == "" {
		return c.formatter.Combine(
			c.formatter.Usage("/analyze <topic or question>"),
			c.formatter.Examples([]string{"/analyze semiconductor export controls"}),
		), nil
	}
	return c.analyst.Analyze(ctx, args).Markdown(), nil
}

type AskCommand struct {
	analyst   Analyst
	formatter *ResponseFormatter
}

func NewAskCommand(a Analyst) *AskCommand {
	return &AskCommand{analyst: a, formatter: NewResponseFormatter()}
}

func (c *AskCommand) Name() string        { return "ask" }
func (c *AskCommand) Description() string { return "Answer from memory and recent news" }

func (c *AskCommand) Execute(ctx context.Context, args string) (string, error) {
	if args == "" {
		return c.formatter.Usage("/ask <question>"), nil
	}
	return c.analyst.Ask(ctx, args).Markdown(), nil
}

type InjectCommand struct {
	analyst   Analyst
	formatter *ResponseFormatter
}

func NewInjectCommand(a Analyst) *InjectCommand {
	return &InjectCommand{analyst: a, formatter: NewResponseFormatter()}
}

func (c *InjectCommand) Name() string        { return "inject" }
func (c *InjectCommand) Description() string { return "Store a memory note" }

func (c *InjectCommand) Execute(ctx context.Context, args string) (string, error) {
	title, content, category, err := ParseInjection(args)
	if err != nil {
		return c.formatter.Combine(
			c.formatter.Usage("/inject title | content | category"),
			c.formatter.Examples([]string{"/inject Q3 plan | Ship the scout API | work"}),
		), nil
	}

	id, msg := c.analyst.Inject(title, content, category)
	return c.formatter.Combine(
		c.formatter.Success(msg),
		c.formatter.Label("ID", id),
	), nil
}

// ParseInjection splits "title | content | category". The category is
// optional and defaults to "general".
func ParseInjection(args string) (string, string, string, error) {
	parts := strings.SplitN(args, "|", 3)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", errors.New("expected title | content | category")
	}
	category := "general"
	if len(parts) == 3 && parts[2] != "" {
		category = parts[2]
	}
	return parts[0], parts[1], category, nil
}

type HeartbeatCommand struct {
	hb *heartbeat.Log
}

func NewHeartbeatCommand(hb *heartbeat.Log) *HeartbeatCommand {
	return &HeartbeatCommand{hb: hb}
}

func (c *HeartbeatCommand) Name() string        { return "heartbeat" }
func (c *HeartbeatCommand) Description() string { return "Show recent ingestion activity" }

func (c *HeartbeatCommand) Execute(ctx context.Context, args string) (string, error) {
	return "```\n" + strings.TrimSpace(c.hb.String()) + "\n```", nil
}

type TopicsCommand struct {
	topics    TopicLister
	formatter *ResponseFormatter
}

func NewTopicsCommand(t TopicLister) *TopicsCommand {
	return &TopicsCommand{topics: t, formatter: NewResponseFormatter()}
}

func (c *TopicsCommand) Name() string        { return "topics" }
func (c *TopicsCommand) Description() string { return "List the tracked news topics" }

func (c *TopicsCommand) Execute(ctx context.Context, args string) (string, error) {
	topics := c.topics.Topics()
	return c.formatter.Combine(
		c.formatter.Info(fmt.Sprintf("Tracking %d streams", len(topics))),
		c.formatter.List(topics),
	), nil
}

type HelpCommand struct {
	commands  []core.Command
	formatter *ResponseFormatter
}

func NewHelpCommand(commands []core.Command) *HelpCommand {
	return &HelpCommand{commands: commands, formatter: NewResponseFormatter()}
}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "List commands" }

func (c *HelpCommand) Execute(ctx context.Context, args string) (string, error) {
	items := make([]string, 0, len(c.commands)+1)
	for _, cmd := range c.commands {
		items = append(items, fmt.Sprintf("/%s - %s", cmd.Name(), cmd.Description()))
	}
	items = append(items, fmt.Sprintf("/%s - %s", c.Name(), c.Description()))
	return c.formatter.Combine(
		c.formatter.Info("Commands"),
		c.formatter.List(items),
		c.formatter.Tip("plain text is treated as /analyze"),
	), nil
}
