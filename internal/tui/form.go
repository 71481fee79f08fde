package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yigit/schoolbook/internal/app/models"
)

func newInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = 120
	ti.Width = 40
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.SetValue(value)
	return ti
}

// form edits one record. editID is empty when adding.
type form struct {
	kind   models.Kind
	editID string
	labels []string
	inputs []textinput.Model
	focus  int
}

func formLabels(kind models.Kind) []string {
	switch kind {
	case models.KindCourse:
		return []string{"Course ID", "Title", "Instructor ID"}
	case models.KindInstructor:
		return []string{"Instructor ID", "Name", "Age", "Email"}
	default:
		return []string{"Student ID", "Name", "Age", "Email"}
	}
}

func newForm(kind models.Kind, editID string, values []string) *form {
	f := &form{kind: kind, editID: editID, labels: formLabels(kind)}
	for i, label := range f.labels {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		f.inputs = append(f.inputs, newInput(strings.ToLower(label), v))
	}
	f.inputs[0].Focus()
	return f
}

func (f *form) title() string {
	if f.editID == "" {
		return "New " + string(f.kind)
	}
	return "Edit " + string(f.kind) + " " + f.editID
}

// move shifts focus by delta, wrapping around
func (f *form) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

// last reports whether the focused field is the final one
func (f *form) last() bool {
	return f.focus == len(f.inputs)-1
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) values() []string {
	out := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		out[i] = strings.TrimSpace(in.Value())
	}
	return out
}

func (f *form) view() string {
	lines := []string{titleStyle.Render(f.title()), ""}
	for i, in := range f.inputs {
		style := labelStyle
		if i == f.focus {
			style = focusLabelStyle
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, style.Render(f.labels[i]), in.View()))
	}
	lines = append(lines, "", helpStyle.Render("enter next/submit • tab move • esc cancel"))
	return strings.Join(lines, "\n")
}

// prompt asks for one value and hands it to submit
type prompt struct {
	label  string
	input  textinput.Model
	submit func(value string) tea.Cmd
}

func newPrompt(label, placeholder string, submit func(string) tea.Cmd) *prompt {
	p := &prompt{label: label, input: newInput(placeholder, ""), submit: submit}
	p.input.Focus()
	return p
}

func (p *prompt) view() string {
	return focusLabelStyle.UnsetWidth().Render(p.label+": ") + p.input.View()
}
