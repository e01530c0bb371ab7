package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/peopledesk/internal/hr"
)

// FormModel is a create form built from an hr.FormSpec.
type FormModel struct {
	spec       hr.FormSpec
	inputs     []textinput.Model
	focus      int
	submitting bool
	create     func(kind hr.Kind, form any) tea.Cmd
}

// NewFormModel builds the inputs of spec. create sends a validated form.
func NewFormModel(spec hr.FormSpec, create func(kind hr.Kind, form any) tea.Cmd) FormModel {
	inputs := make([]textinput.Model, len(spec.Fields))
	for i, f := range spec.Fields {
		in := textinput.New()
		in.Placeholder = f.Placeholder
		in.CharLimit = 200
		if f.Multiline {
			in.CharLimit = 2000
		}
		in.Width = 40
		inputs[i] = in
	}
	m := FormModel{spec: spec, inputs: inputs, create: create}
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
	return m
}

// Kind returns the kind being created.
func (m FormModel) Kind() hr.Kind { return m.spec.Kind }

// Submitting reports whether a submission is in flight.
func (m FormModel) Submitting() bool { return m.submitting }

// Values returns the raw text of every field by name.
func (m FormModel) Values() map[string]string {
	out := make(map[string]string, len(m.inputs))
	for i, f := range m.spec.Fields {
		out[f.Name] = m.inputs[i].Value()
	}
	return out
}

// SetValue fills a field by name.
func (m *FormModel) SetValue(name, value string) {
	for i, f := range m.spec.Fields {
		if f.Name == name {
			m.inputs[i].SetValue(value)
			return
		}
	}
}

// Failed re-enables the form after a rejected submission.
func (m *FormModel) Failed() { m.submitting = false }

// Update handles focus movement and submission; other keys go to the
// focused input.
func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "tab", "down":
			return m.moveFocus(1), nil
		case "shift+tab", "up":
			return m.moveFocus(-1), nil
		case "enter":
			if m.focus < len(m.inputs)-1 {
				return m.moveFocus(1), nil
			}
			return m.submit()
		case "ctrl+s":
			return m.submit()
		}
	}
	if m.submitting || len(m.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m FormModel) moveFocus(delta int) FormModel {
	if len(m.inputs) == 0 {
		return m
	}
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
	return m
}

// submit validates locally and sends the form. Invalid input yields one
// issue per failed field and nothing is sent.
func (m FormModel) submit() (FormModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	form, issues := m.spec.Build(m.Values())
	if len(issues) > 0 {
		kind := m.spec.Kind
		return m, func() tea.Msg { return formInvalid{Kind: kind, Issues: issues} }
	}
	if m.create == nil {
		return m, nil
	}
	m.submitting = true
	return m, m.create(m.spec.Kind, form)
}

// View renders the form.
func (m FormModel) View() string {
	var b strings.Builder
	b.WriteString(DebugHeaderStyle.Render(m.spec.Title))
	b.WriteString("\n\n")
	for i, f := range m.spec.Fields {
		label := FormLabel
		if i == m.focus {
			label = FormLabelFocused
		}
		b.WriteString(label.Render(f.Label))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.submitting {
		b.WriteString(StatusBarText.Render("Saving..."))
	} else {
		b.WriteString(StatusBarKey.Render("tab") + StatusBarText.Render(":next  ") +
			StatusBarKey.Render("ctrl+s") + StatusBarText.Render(":save  ") +
			StatusBarKey.Render("esc") + StatusBarText.Render(":cancel"))
	}
	return FormPanel.Render(b.String())
}
