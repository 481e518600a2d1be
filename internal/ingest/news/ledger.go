package news

// Ledger is the bounded set of source keys already emitted. It is owned by
// the poll loop and is not safe for concurrent use.
type Ledger struct {
	seen  map[string]struct{}
	cap   int
	epoch int
}

func NewLedger(cap int) *Ledger {
	return &Ledger{
		seen: make(map[string]struct{}),
		cap:  cap,
	}
}

func (l *Ledger) Seen(key string) bool {
	_, ok := l.seen[key]
	return ok
}

func (l *Ledger) Add(key string) {
	l.seen[key] = struct{}{}
}

func (l *Ledger) Len() int {
	return len(l.seen)
}

// Epoch counts how many times the ledger has been cleared.
func (l *Ledger) Epoch() int {
	return l.epoch
}

// ClearIfFull drops every key once the ledger has grown past its cap.
// Forgetting old URLs is accepted in exchange for bounded memory.
func (l *Ledger) ClearIfFull() bool {
	if len(l.seen) <= l.cap {
		return false
	}
	l.seen = make(map[string]struct{})
	l.epoch++
	return true
}
