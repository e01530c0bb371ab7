package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorError     = lipgloss.Color("196") // Red
	colorWarn      = lipgloss.Color("214") // Orange
)

// TabActive style for the selected tab.
var TabActive = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// TabInactive style for the other tabs.
var TabInactive = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// TabBadge marks tabs changed remotely since they were last viewed.
var TabBadge = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatCard style for the per-status counters above the table.
var StatCard = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(0, 1).
	MarginRight(1)

// StatCardValue style for the number inside a stat card.
var StatCardValue = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// StatCardLabel style for the status name inside a stat card.
var StatCardLabel = lipgloss.NewStyle().
	Foreground(colorSecondary)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle for the error state that replaces the table.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorError).
	Bold(true).
	Padding(1, 2)

// SkeletonStyle for placeholder rows while the first page loads.
var SkeletonStyle = lipgloss.NewStyle().
	Foreground(colorMuted)

// HelpStyle for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(0, 1)

// SearchBar style for the search input bar.
var SearchBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// FilterChipOn style for an active status filter.
var FilterChipOn = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// FilterChipOff style for an inactive status filter.
var FilterChipOff = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// ToastBox is the frame of one notification.
var ToastBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(0, 1).
	Width(40)

// ToastTitle styles by level.
var (
	ToastSuccess = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	ToastError   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	ToastWarn    = lipgloss.NewStyle().Bold(true).Foreground(colorWarn)
	ToastInfo    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
)

// FormPanel frames the create form.
var FormPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// FormLabel style for field labels.
var FormLabel = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Width(14)

// FormLabelFocused style for the focused field's label.
var FormLabelFocused = FormLabel.
	Foreground(colorHighlight).
	Bold(true)

// DetailPanel frames the record detail view.
var DetailPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(0, 1)

// DebugPanel frames the debug overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorHighlight).
	Padding(1, 2)

// DebugHeaderStyle for section headers inside the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
