package command

import (
	"github.com/sandevgo/scoutbot/internal/core"
	"github.com/sandevgo/scoutbot/internal/heartbeat"
)

func NewCommands(analyst Analyst, topics TopicLister, hb *heartbeat.Log) []core.Command {
	return []core.Command{
		NewAnalyzeCommand(analyst),
		NewAskCommand(analyst),
		NewInjectCommand(analyst),
		NewHeartbeatCommand(hb),
		NewTopicsCommand(topics),
	}
}

// NewRouter wires the standard command set; plain text is analyzed.
func NewRouter(analyst Analyst, topics TopicLister, hb *heartbeat.Log) *Router {
	cmds := NewCommands(analyst, topics, hb)
	cmds = append(cmds, NewHelpCommand(cmds))
	return New(cmds, "analyze")
}
