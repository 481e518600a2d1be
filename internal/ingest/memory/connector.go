package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sandevgo/scoutbot/internal/config"
	"github.com/sandevgo/scoutbot/internal/core"
	"github.com/sandevgo/scoutbot/pkg/log"
)

const (
	DefaultFlushInterval = 500 * time.Millisecond

	FieldID   = "id"
	FieldTime = "time"
)

// Connector buffers injected notes and flushes them into the sink on a short
// fixed period.
type Connector struct {
	sink     core.Sink
	interval time.Duration

	// pending is guarded by mu. Emission happens after the queue is swapped
	// out, never while the lock is held.
	mu      sync.Mutex
	pending []core.Payload

	// lastMillis and seq keep generated ids unique within one millisecond.
	lastMillis int64
	seq        int

	now func() time.Time
}

func NewConnector(cfg *config.MemoryConfig, sink core.Sink) *Connector {
	c := &Connector{
		sink:     sink,
		interval: DefaultFlushInterval,
		now:      time.Now,
	}
	if cfg != nil && cfg.FlushInterval > 0 {
		c.interval = cfg.FlushInterval
	}
	return c
}

func (c *Connector) Start(ctx context.Context) error {
	logger := log.Component(ctx, "memory_connector")
	logger.Info().Dur("interval", c.interval).Msg("starting memory connector")

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down memory connector")
			return nil
		case <-ticker.C:
			c.Flush(logger.WithContext(ctx))
		}
	}
}

// Shutdown emits whatever is still queued.
func (c *Connector) Shutdown(ctx context.Context) error {
	if n := c.Pending(); n > 0 {
		logger := log.Component(ctx, "memory_connector")
		logger.Info().Int("pending", n).Msg("flushing memory notes before shutdown")
		c.Flush(ctx)
	}
	return nil
}

// Inject queues a note and returns its id. An id of the form mem_<millis> and
// the current time are filled in when the caller did not supply them. The
// payload map is copied; later changes by the caller are not seen.
func (c *Connector) Inject(payload core.Payload) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	p := make(core.Payload, len(payload)+2)
	for k, v := range payload {
		p[k] = v
	}
	if idOf(p) == "" {
		p[FieldID] = c.nextID(now)
	}
	if _, ok := p[FieldTime]; !ok {
		p[FieldTime] = now.Format(time.ANSIC)
	}

	c.pending = append(c.pending, p)
	return idOf(p)
}

// nextID returns mem_<millis>, adding a _<n> suffix for further notes in the
// same millisecond. Callers hold mu.
func (c *Connector) nextID(now time.Time) string {
	ms := now.UnixMilli()
	if ms != c.lastMillis {
		c.lastMillis = ms
		c.seq = 0
		return fmt.Sprintf("mem_%d", ms)
	}
	c.seq++
	return fmt.Sprintf("mem_%d_%d", ms, c.seq)
}

// Pending reports how many notes wait for the next flush.
func (c *Connector) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Flush emits every queued note in injection order and returns how many were
// accepted by the sink. Rejected notes are logged and dropped.
func (c *Connector) Flush(ctx context.Context) int {
	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	c.mu.Unlock()

	if len(batch) == 0 {
		return 0
	}

	logger := log.FromCtx(ctx)
	now := c.now()
	emitted := 0

	for _, p := range batch {
		id := idOf(p)
		data, err := json.Marshal(p)
		if err != nil {
			logger.Warn().Err(err).Str("id", id).Msg("failed to serialize memory note")
			continue
		}

		rec := core.IngestedRecord{
			Text:       string(data),
			SourceKey:  id,
			IngestedAt: now,
			Metadata: core.Metadata{
				Source:     core.SourceUserJSON,
				ID:         id,
				IngestedAt: now,
			},
		}
		if err := c.sink.Ingest(ctx, rec); err != nil {
			logger.Warn().Err(err).Str("id", id).Msg("failed to emit memory note")
			continue
		}
		emitted++
	}

	logger.Debug().Int("count", emitted).Msg("memory notes flushed")
	return emitted
}

func idOf(p core.Payload) string {
	switch v := p[FieldID].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
