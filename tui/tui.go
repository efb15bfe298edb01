/*
 * tui.go, part of pyxtalstep.
 *
 * Copyright 2024 The pyxtalstep Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package tui is a terminal editor for the parameters of the PyXtal step.
//
// Arrow keys (or j/k) move between fields, left/right (or h/l) cycle
// through the choices of a field, enter edits a field as text, ctrl+s saves
// and q or esc leaves without saving.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rmera/pyxtalstep/form"
	"github.com/rmera/pyxtalstep/params"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	frameStyle  = lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("14"))
	labelStyle  = lipgloss.NewStyle().Width(26)
	exprStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	helpStyle   = lipgloss.NewStyle().Faint(true).MarginTop(1)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type field struct {
	frame string
	name  string
}

// Model is the bubbletea model of the editor.
type Model struct {
	title   string
	set     *params.Set
	fields  []field
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	err     string
}

// New returns an editor working on set, which it modifies.
func New(title string, set *params.Set) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	m := Model{title: title, set: set, input: ti}
	m.relayout()
	return m
}

// Saved reports whether the user asked to save.
func (m Model) Saved() bool {
	return m.saved
}

// Set returns the parameters being edited.
func (m Model) Set() *params.Set {
	return m.set
}

func (m *Model) relayout() {
	current := ""
	if m.cursor < len(m.fields) {
		current = m.fields[m.cursor].name
	}
	var fields []field
	for _, f := range form.Layout(m.set) {
		for _, name := range f.Fields {
			fields = append(fields, field{frame: f.Title, name: name})
		}
	}
	m.fields = fields
	m.cursor = 0
	for i, f := range m.fields {
		if f.name == current {
			m.cursor = i
		}
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// choices returns the values a field can cycle through.
func (m Model) choices(name string) []string {
	if name == "symmetry" {
		return form.Groups(m.set.Get("dimensionality").Text)
	}
	d, _ := m.set.Schema().Lookup(name)
	return d.Enumeration
}

func (m *Model) cycle(step int) {
	name := m.fields[m.cursor].name
	opts := m.choices(name)
	if len(opts) == 0 {
		return
	}
	cur := m.set.Get(name).Text
	next := 0
	for i, o := range opts {
		if strings.EqualFold(o, cur) {
			next = (i + step + len(opts)) % len(opts)
			break
		}
	}
	m.change(name, opts[next])
}

func (m *Model) change(name, text string) {
	if err := m.set.SetText(name, text); err != nil {
		m.err = err.Error()
		return
	}
	m.err = ""
	if name == "dimensionality" {
		if _, err := form.Normalize(m.set); err != nil {
			m.err = err.Error()
		}
	}
	m.relayout()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.editing {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	if m.editing {
		switch key.Type {
		case tea.KeyEnter:
			m.editing = false
			m.input.Blur()
			m.change(m.fields[m.cursor].name, strings.TrimSpace(m.input.Value()))
			return m, nil
		case tea.KeyEsc:
			m.editing = false
			m.input.Blur()
			return m, nil
		case tea.KeyCtrlC:
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	switch key.String() {
	case "ctrl+c", "esc", "q":
		return m, tea.Quit
	case "ctrl+s":
		m.saved = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j", "tab":
		if m.cursor < len(m.fields)-1 {
			m.cursor++
		}
	case "left", "h":
		m.cycle(-1)
	case "right", "l", " ":
		m.cycle(1)
	case "enter":
		m.editing = true
		m.input.SetValue(m.set.Get(m.fields[m.cursor].name).Text)
		m.input.CursorEnd()
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteByte('\n')
	frame := ""
	for i, f := range m.fields {
		if f.frame != frame {
			frame = f.frame
			b.WriteString(frameStyle.Render(frame))
			b.WriteByte('\n')
		}
		d, _ := m.set.Schema().Lookup(f.name)
		v := m.set.Get(f.name)
		value := v.String()
		if i == m.cursor && m.editing {
			value = m.input.View()
		} else if v.IsExpr() {
			value = exprStyle.Render(value)
		}
		line := labelStyle.Render(d.Description) + " " + value
		if i == m.cursor && !m.editing {
			line = cursorStyle.Render(labelStyle.Render(d.Description)) + " " + value
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if m.cursor < len(m.fields) {
		d, _ := m.set.Schema().Lookup(m.fields[m.cursor].name)
		b.WriteString(helpStyle.Render(d.Help))
		b.WriteByte('\n')
	}
	if m.err != "" {
		b.WriteString(errStyle.Render(m.err))
		b.WriteByte('\n')
	}
	b.WriteString(helpStyle.Render("↑/↓ move • ←/→ choose • enter edit • ctrl+s save • q quit"))
	return b.String()
}

// Edit runs the editor on a copy of set. It returns the edited parameters
// and whether the user saved them.
func Edit(title string, set *params.Set) (*params.Set, bool, error) {
	p := tea.NewProgram(New(title, set.Clone()))
	result, err := p.Run()
	if err != nil {
		return nil, false, err
	}
	final, ok := result.(Model)
	if !ok {
		return nil, false, fmt.Errorf("tui: unexpected model %T", result)
	}
	return final.set, final.saved, nil
}
