// Package ui provides the Bubble Tea TUI for peopledesk.
package ui

import (
	"github.com/abelbrown/peopledesk/internal/api"
	"github.com/abelbrown/peopledesk/internal/hr"
)

// SummaryMsg is sent by the background watcher after each poll.
type SummaryMsg struct {
	Stats   map[hr.Kind]api.Stats
	Changed []hr.Kind
	Err     error
}

// StatsLoaded carries the stat cards of one kind.
type StatsLoaded struct {
	Kind  hr.Kind
	Stats api.Stats
	Err   error
}

// ActionDone is sent when a row action finishes.
type ActionDone struct {
	Kind    hr.Kind
	Action  string
	Message string
	Err     error
}

// Created is sent when a create form submission finishes.
type Created struct {
	Kind    hr.Kind
	Message string
	Err     error
}

// ReadFailed is sent when a list or search read fails.
type ReadFailed struct {
	Kind    hr.Kind
	Message string
}

// DetailRendered carries a record rendered for the detail view.
type DetailRendered struct {
	Kind     hr.Kind
	ID       string
	Title    string
	Rendered string
	Err      error
}

// formInvalid reports client-side validation issues of the open form.
type formInvalid struct {
	Kind   hr.Kind
	Issues []hr.Issue
}
