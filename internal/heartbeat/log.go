// Package heartbeat keeps a short, bounded status trail of ingestion activity.
package heartbeat

import (
	"strings"
	"sync"
)

const (
	DefaultBudget = 2000
	initialLine   = "Intelligence Engine Initializing...\n"
)

// Log is an append-only status string trimmed to a trailing character budget
// on every append. Safe for concurrent use.
type Log struct {
	mu     sync.RWMutex
	buf    string
	budget int
}

func New(budget int) *Log {
	if budget <= 0 {
		budget = DefaultBudget
	}
	l := &Log{budget: budget}
	l.buf = trimTail(initialLine, budget)
	return l
}

// Append adds a line. A trailing newline is added if missing.
func (l *Log) Append(line string) {
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf = trimTail(l.buf+line, l.budget)
}

// String returns the current snapshot.
func (l *Log) String() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.buf
}

func (l *Log) Budget() int {
	return l.budget
}

// trimTail keeps the last budget bytes without splitting a UTF-8 sequence.
func trimTail(s string, budget int) string {
	if len(s) <= budget {
		return s
	}
	cut := len(s) - budget
	for cut < len(s) && !isRuneStart(s[cut]) {
		cut++
	}
	return s[cut:]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
