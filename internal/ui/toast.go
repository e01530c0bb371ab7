package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DefaultToastTTL is how long a notification stays on screen.
const DefaultToastTTL = 4 * time.Second

// maxToasts caps the stack; the oldest is dropped first.
const maxToasts = 5

// Level is a notification's severity.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

// Toast is one notification.
type Toast struct {
	ID          int
	Level       Level
	Title       string
	Description string
}

type toastExpired struct{ ID int }

// Toasts is a stack of auto-dismissed notifications.
type Toasts struct {
	items []Toast
	next  int
	ttl   time.Duration
}

// NewToasts returns an empty stack. ttl <= 0 uses DefaultToastTTL.
func NewToasts(ttl time.Duration) *Toasts {
	if ttl <= 0 {
		ttl = DefaultToastTTL
	}
	return &Toasts{ttl: ttl}
}

// Push adds a notification and returns the command that dismisses it.
func (t *Toasts) Push(level Level, title, desc string) tea.Cmd {
	id := t.next
	t.next++
	t.items = append(t.items, Toast{ID: id, Level: level, Title: title, Description: desc})
	if len(t.items) > maxToasts {
		t.items = t.items[len(t.items)-maxToasts:]
	}
	return tea.Tick(t.ttl, func(time.Time) tea.Msg { return toastExpired{ID: id} })
}

// Expire removes the notification with id, if still shown.
func (t *Toasts) Expire(id int) {
	for i, it := range t.items {
		if it.ID == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return
		}
	}
}

// Items returns the shown notifications, oldest first.
func (t *Toasts) Items() []Toast {
	return append([]Toast(nil), t.items...)
}

// View renders the stack right-aligned within width.
func (t *Toasts) View(width int) string {
	if len(t.items) == 0 {
		return ""
	}
	boxes := make([]string, 0, len(t.items))
	for _, it := range t.items {
		title := toastTitleStyle(it.Level).Render(it.Title)
		body := title
		if it.Description != "" {
			body += "\n" + it.Description
		}
		boxes = append(boxes, ToastBox.BorderForeground(toastColor(it.Level)).Render(body))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, boxes...)
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
}

func toastTitleStyle(l Level) lipgloss.Style {
	switch l {
	case LevelSuccess:
		return ToastSuccess
	case LevelWarn:
		return ToastWarn
	case LevelError:
		return ToastError
	}
	return ToastInfo
}

func toastColor(l Level) lipgloss.Color {
	switch l {
	case LevelSuccess:
		return colorSuccess
	case LevelWarn:
		return colorWarn
	case LevelError:
		return colorError
	}
	return colorPrimary
}

// String is a plain rendering for logs and tests.
func (t Toast) String() string {
	return strings.TrimSpace(t.Title + ": " + t.Description)
}
