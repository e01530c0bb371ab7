package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/peopledesk/internal/api"
	"github.com/abelbrown/peopledesk/internal/hr"
)

// Commands turns API calls into Bubble Tea commands. Every call is bounded
// by Timeout and cancelled with Ctx.
type Commands struct {
	Ctx     context.Context
	Client  *api.Client
	Timeout time.Duration
}

func (c Commands) context() (context.Context, context.CancelFunc) {
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if c.Timeout > 0 {
		return context.WithTimeout(ctx, c.Timeout)
	}
	return context.WithCancel(ctx)
}

// Act runs a row action and reports ActionDone.
func (c Commands) Act(kind hr.Kind, id string, a hr.Action) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.context()
		defer cancel()
		msg, err := c.Client.Run(ctx, kind, id, a)
		return ActionDone{Kind: kind, Action: a.Name, Message: msg, Err: err}
	}
}

// LoadStats fetches the stat cards of kind.
func (c Commands) LoadStats(kind hr.Kind) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.context()
		defer cancel()
		s, err := c.Client.Stats(ctx, kind)
		return StatsLoaded{Kind: kind, Stats: s, Err: err}
	}
}

// Create submits a validated form and reports Created.
func (c Commands) Create(kind hr.Kind, form any) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.context()
		defer cancel()
		msg, err := c.Client.Create(ctx, kind, form)
		return Created{Kind: kind, Message: msg, Err: err}
	}
}
