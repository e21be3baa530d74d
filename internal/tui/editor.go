package tui

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/leads-admin/internal/lead"
)

const editorLabelWidth = 18

// editor is the lead form. It edits a draft built either blank or from the
// lead being edited, one text input per entry of lead.Fields.
type editor struct {
	target *lead.Lead
	draft  lead.CreateLeadPayload
	inputs []textinput.Model
	focus  int
	err    string
}

func newEditor() *editor {
	e := &editor{}
	e.reset()
	return e
}

// Open starts a fresh draft for target. A nil target means a new lead. The
// previous draft is discarded so edits never carry over between leads.
func (e *editor) Open(target *lead.Lead) {
	if target != nil {
		copied := *target
		target = &copied
	}
	e.target = target
	e.reset()
}

// Target returns the lead being edited, or nil when creating.
func (e *editor) Target() *lead.Lead {
	return e.target
}

// Creating reports whether the draft is for a new lead.
func (e *editor) Creating() bool {
	return e.target == nil
}

// SetField replaces exactly one draft field and keeps its input in sync.
func (e *editor) SetField(name, value string) error {
	if err := e.draft.Set(name, value); err != nil {
		return err
	}
	for i, f := range lead.Fields {
		if f.Name == name && e.inputs[i].Value() != value {
			e.inputs[i].SetValue(value)
		}
	}
	return nil
}

// Draft returns a copy of the current draft.
func (e *editor) Draft() lead.CreateLeadPayload {
	return e.draft
}

// Submit hands back the target and draft as they are.
func (e *editor) Submit() (*lead.Lead, lead.CreateLeadPayload) {
	return e.target, e.draft
}

func (e *editor) reset() {
	if e.target != nil {
		e.draft = lead.PayloadFrom(*e.target)
	} else {
		e.draft = lead.CreateLeadPayload{}
	}
	e.inputs = make([]textinput.Model, len(lead.Fields))
	for i, f := range lead.Fields {
		input := textinput.New()
		input.Prompt = ""
		input.Placeholder = strings.ToLower(f.Label)
		input.CharLimit = 512
		input.Width = 48
		input.Cursor.SetMode(cursor.CursorStatic)
		if value, err := e.draft.Value(f.Name); err == nil {
			if f.Kind == lead.KindNumber && value == "0" && e.target == nil {
				value = ""
			}
			input.SetValue(value)
		}
		e.inputs[i] = input
	}
	e.focus = 0
	e.err = ""
	e.inputs[0].Focus()
}

func (e *editor) moveFocus(delta int) {
	e.inputs[e.focus].Blur()
	e.focus = (e.focus + delta + len(e.inputs)) % len(e.inputs)
	e.inputs[e.focus].Focus()
}

// Update routes navigation keys and typing into the focused input.
func (e *editor) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "tab", "down":
		e.moveFocus(1)
		return nil
	case "shift+tab", "up":
		e.moveFocus(-1)
		return nil
	}
	field := lead.Fields[e.focus]
	if field.Kind == lead.KindNumber && key.Type == tea.KeyRunes {
		key.Runes = digitsOnly(key.Runes)
		if len(key.Runes) == 0 {
			return nil
		}
	}
	previous := e.inputs[e.focus].Value()
	var cmd tea.Cmd
	e.inputs[e.focus], cmd = e.inputs[e.focus].Update(key)
	value := e.inputs[e.focus].Value()
	if value == previous {
		return cmd
	}
	if err := e.draft.Set(field.Name, value); err != nil {
		e.inputs[e.focus].SetValue(previous)
		e.err = err.Error()
		return cmd
	}
	e.err = ""
	return cmd
}

func digitsOnly(runes []rune) []rune {
	out := runes[:0:0]
	for _, r := range runes {
		if unicode.IsDigit(r) {
			out = append(out, r)
		}
	}
	return out
}

func (e *editor) View() string {
	title := "New lead"
	if e.target != nil {
		title = fmt.Sprintf("Edit lead #%d", e.target.ID)
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		MarginBottom(1).
		Render(title)
	label := lipgloss.NewStyle().Width(editorLabelWidth).Foreground(lipgloss.Color("#AAAAAA"))
	active := label.Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	lines := []string{head}
	for i, f := range lead.Fields {
		style := label
		if i == e.focus {
			style = active
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, style.Render(f.Label), e.inputs[i].View()))
	}
	if e.err != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Render(e.err))
	}
	return strings.Join(lines, "\n")
}
