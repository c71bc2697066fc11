package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
)

// Timeframe is a preset received-date range.
type Timeframe int

const (
	TimeframeAll Timeframe = iota
	TimeframeThisMonth
	TimeframeLastMonth
	TimeframeLast30Days
	TimeframeOlderThanAlert
	TimeframeOlderThanOverdue
	TimeframeCustom
)

var timeframeLabels = map[Timeframe]string{
	TimeframeAll:              "All Time",
	TimeframeThisMonth:        "This Month",
	TimeframeLastMonth:        "Last Month",
	TimeframeLast30Days:       "Last 30 Days",
	TimeframeOlderThanAlert:   fmt.Sprintf("Received %d+ Days Ago", invoice.AlertDays),
	TimeframeOlderThanOverdue: fmt.Sprintf("Received %d+ Days Ago", invoice.OverdueDays),
	TimeframeCustom:           "Custom Range",
}

func (t Timeframe) String() string {
	if l, ok := timeframeLabels[t]; ok {
		return l
	}

	return "Unknown"
}

// Bounds returns the first and last received day of the preset, relative to
// now. A zero start means unbounded.
func (t Timeframe) Bounds(now time.Time) (time.Time, time.Time) {
	today := dayStart(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	switch t {
	case TimeframeThisMonth:
		return monthStart, today
	case TimeframeLastMonth:
		return monthStart.AddDate(0, -1, 0), monthStart.AddDate(0, 0, -1)
	case TimeframeLast30Days:
		return today.AddDate(0, 0, -29), today
	case TimeframeOlderThanAlert:
		return time.Time{}, today.AddDate(0, 0, -invoice.AlertDays)
	case TimeframeOlderThanOverdue:
		return time.Time{}, today.AddDate(0, 0, -invoice.OverdueDays)
	}

	return time.Time{}, time.Time{}
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}

// TimeframeSelectedMsg is emitted when the user has picked a received-date
// range. A zero Start or End leaves that side open; All clears both.
type TimeframeSelectedMsg struct {
	Start time.Time
	End   time.Time
	All   bool
}

func selectedRange(tf Timeframe, now time.Time) TimeframeSelectedMsg {
	if tf == TimeframeAll {
		return TimeframeSelectedMsg{All: true}
	}

	start, end := tf.Bounds(now)
	if !end.IsZero() {
		end = dayEnd(end)
	}

	return TimeframeSelectedMsg{Start: start, End: end}
}

// Apply narrows f to the selected received-date range.
func (msg TimeframeSelectedMsg) Apply(f *invoice.ListFilter) {
	f.ReceivedFrom, f.ReceivedTo = nil, nil

	if msg.All {
		return
	}

	if !msg.Start.IsZero() {
		f.ReceivedFrom = new(msg.Start)
	}

	if !msg.End.IsZero() {
		f.ReceivedTo = new(msg.End)
	}
}

// Describe renders the range for headers and summaries.
func (msg TimeframeSelectedMsg) Describe() string {
	switch {
	case msg.All:
		return TimeframeAll.String()
	case msg.Start.IsZero():
		return "up to " + FormatDate(msg.End)
	case msg.End.IsZero():
		return "from " + FormatDate(msg.Start)
	}

	return FormatDate(msg.Start) + " to " + FormatDate(msg.End)
}

// TimeframePicker lists the presets and falls back to two date inputs for a
// custom range.
type TimeframePicker struct {
	presets []Timeframe
	cursor  int
	custom  bool
	now     func() time.Time

	inputs [2]textinput.Model
	focus  int

	err error
}

func NewTimeframePicker(initial Timeframe) TimeframePicker {
	var inputs [2]textinput.Model

	for i, prompt := range []string{"From: ", "To:   "} {
		in := textinput.New()
		in.Placeholder = "YYYY-MM-DD"
		in.CharLimit = 10
		in.Width = 12
		in.Prompt = prompt
		inputs[i] = in
	}

	p := TimeframePicker{
		presets: []Timeframe{
			TimeframeThisMonth,
			TimeframeLastMonth,
			TimeframeLast30Days,
			TimeframeOlderThanAlert,
			TimeframeOlderThanOverdue,
			TimeframeAll,
			TimeframeCustom,
		},
		now:    time.Now,
		inputs: inputs,
	}

	for i, tf := range p.presets {
		if tf == initial {
			p.cursor = i
		}
	}

	return p
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)

	if !m.custom {
		if ok {
			return m.updatePresets(keyMsg)
		}
		return m, nil
	}

	if ok {
		switch keyMsg.String() {
		case "esc":
			m.custom = false
			m.err = nil
			return m, nil
		case "tab", "shift+tab":
			m.focus = 1 - m.focus
			return m, m.focusInput()
		case "enter":
			return m.submitCustom()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m TimeframePicker) updatePresets(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter":
		tf := m.presets[m.cursor]
		if tf == TimeframeCustom {
			m.custom = true
			m.focus = 0
			return m, m.focusInput()
		}

		selected := selectedRange(tf, m.now())
		return m, func() tea.Msg { return selected }
	}

	return m, nil
}

func (m *TimeframePicker) focusInput() tea.Cmd {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}

	return m.inputs[m.focus].Focus()
}

func (m TimeframePicker) submitCustom() (TimeframePicker, tea.Cmd) {
	var bounds [2]time.Time

	for i, in := range m.inputs {
		v := strings.TrimSpace(in.Value())
		if v == "" {
			continue
		}

		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			m.err = fmt.Errorf("%q is not a YYYY-MM-DD date", v)
			return m, nil
		}

		bounds[i] = t
	}

	start, end := bounds[0], bounds[1]
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		m.err = fmt.Errorf("end date is before start date")
		return m, nil
	}

	if start.IsZero() && end.IsZero() {
		m.err = fmt.Errorf("enter at least one date")
		return m, nil
	}

	if !end.IsZero() {
		end = dayEnd(end)
	}

	m.err = nil
	selected := TimeframeSelectedMsg{Start: start, End: end}

	return m, func() tea.Msg { return selected }
}

func (m TimeframePicker) View() string {
	var b strings.Builder

	if m.custom {
		b.WriteString("Custom received-date range (either side may be blank):\n\n")
		b.WriteString(m.inputs[0].View() + "\n")
		b.WriteString(m.inputs[1].View() + "\n\n")
		b.WriteString(faintStyle.Render("Enter: confirm | Tab: switch | Esc: presets"))
	} else {
		b.WriteString("Invoices received:\n\n")

		for i, tf := range m.presets {
			cursor := "  "
			label := tf.String()

			if i == m.cursor {
				cursor = "> "
				label = activeStyle(label)
			}

			b.WriteString(cursor + label + "\n")
		}

		b.WriteString("\n" + faintStyle.Render("Enter: select | Esc: back"))
	}

	if m.err != nil {
		b.WriteString("\n\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return b.String()
}

// IsSelecting reports whether the picker shows presets rather than the
// custom inputs.
func (m TimeframePicker) IsSelecting() bool {
	return !m.custom
}

// Reset returns the picker to the preset list with empty inputs.
func (m *TimeframePicker) Reset() {
	m.custom = false
	m.err = nil

	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
}
