// Package coord watches the server for changes made elsewhere and asks the
// affected list screens to refetch.
package coord

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/peopledesk/internal/api"
	"github.com/abelbrown/peopledesk/internal/hr"
	"github.com/abelbrown/peopledesk/internal/logging"
	"github.com/abelbrown/peopledesk/internal/ui"
)

// DefaultInterval is the time between polls.
const DefaultInterval = 15 * time.Second

// pollTimeout bounds one Summary round.
const pollTimeout = 10 * time.Second

// summarizer interface for dependency injection (testing).
type summarizer interface {
	Summary(ctx context.Context, kinds ...hr.Kind) (map[hr.Kind]api.Stats, error)
}

// requester is satisfied by *collection.Registry.
type requester interface {
	Request(kind string)
}

// sender is satisfied by *tea.Program.
type sender interface {
	Send(msg tea.Msg)
}

// Coordinator polls per-kind counts and requests a refetch of every kind
// whose counts moved. Uses context cancellation as the ONLY stop mechanism.
type Coordinator struct {
	client   summarizer
	signals  requester
	kinds    []hr.Kind // IMMUTABLE: set at construction, never modified
	interval time.Duration

	last map[hr.Kind]api.Stats // owned by the poll goroutine
	wg   sync.WaitGroup
}

// New creates a Coordinator. interval <= 0 uses DefaultInterval.
func New(client summarizer, signals requester, kinds []hr.Kind, interval time.Duration) *Coordinator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	kindsCopy := make([]hr.Kind, len(kinds))
	copy(kindsCopy, kinds)

	return &Coordinator{
		client:   client,
		signals:  signals,
		kinds:    kindsCopy,
		interval: interval,
	}
}

// Start polls immediately, then on every interval, until ctx is cancelled.
// program may be nil.
func (c *Coordinator) Start(ctx context.Context, program sender) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		c.poll(ctx, program)

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.poll(ctx, program)
			}
		}
	}()
}

// Wait blocks until the background goroutine exits.
// Call after canceling the context passed to Start.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// poll fetches one summary. The first successful poll only records a
// baseline; later ones request a refetch for each kind that changed.
// Returns the kinds that were signalled.
func (c *Coordinator) poll(ctx context.Context, program sender) []hr.Kind {
	if ctx.Err() != nil {
		return nil
	}
	pollCtx, cancel := context.WithTimeout(ctx, pollTimeout)
	defer cancel()

	stats, err := c.client.Summary(pollCtx, c.kinds...)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		logging.Warn("coord: summary failed", "err", err)
		if program != nil {
			program.Send(ui.SummaryMsg{Err: err})
		}
		return nil
	}

	var changed []hr.Kind
	if c.last != nil {
		for _, k := range c.kinds {
			prev, ok := c.last[k]
			if cur, has := stats[k]; has && (!ok || !prev.Equal(cur)) {
				changed = append(changed, k)
				c.signals.Request(string(k))
			}
		}
	}
	c.last = stats

	if len(changed) > 0 {
		logging.Debug("coord: remote changes", "kinds", changed)
	}
	if program != nil {
		program.Send(ui.SummaryMsg{Stats: stats, Changed: changed})
	}
	return changed
}
