package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matthieukhl/quotedesk/internal/intake"
)

func (m *Model) extract(text string) tea.Cmd {
	ctx, extractor := m.ctx, m.extractor
	return func() tea.Msg {
		resp, err := extractor.Process(ctx, text)
		return extractedMsg{resp: resp, err: err}
	}
}

func waitForHandoff(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return handoffReadyMsg{}
	})
}

func (m *Model) updateIntake(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// input is disabled while the request is in flight and while the
	// confirmation is on screen
	switch m.handoff.State().(type) {
	case intake.Pending, intake.Succeeded:
		return m, nil
	}

	switch msg.String() {
	case "ctrl+s":
		return m.submitIntake()
	case "ctrl+n":
		m.openQuotation(nil)
		return m, nil
	case "ctrl+o":
		return m.openInventory()
	case "ctrl+l":
		m.textarea.Reset()
		m.handoff.Edit()
		m.setStatus("", false)
		return m, nil
	}

	before := m.textarea.Value()
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	if m.textarea.Value() != before {
		m.handoff.Edit()
		if _, ok := m.handoff.State().(intake.Idle); ok {
			m.setStatus("", false)
		}
	}
	return m, cmd
}

func (m *Model) submitIntake() (tea.Model, tea.Cmd) {
	text := m.textarea.Value()
	if err := m.handoff.Begin(text); err != nil {
		if errors.Is(err, intake.ErrBlankText) {
			m.setStatus("Please enter some text", true)
		}
		return m, nil
	}
	m.textarea.Blur()
	m.setStatus("", false)
	return m, tea.Batch(m.spinner.Tick, m.extract(text))
}

func (m *Model) handleExtracted(msg extractedMsg) (tea.Model, tea.Cmd) {
	st, err := m.handoff.Complete(msg.resp, msg.err)
	if err != nil {
		m.log.Warn("dropping stale extraction result")
		return m, nil
	}
	m.textarea.Focus()

	switch s := st.(type) {
	case intake.Succeeded:
		m.setStatus(s.Message, false)
		return m, waitForHandoff(m.handoff.Delay())
	case intake.Failed:
		m.setStatus(s.Message, true)
	}
	return m, nil
}

// handleReady opens the quotation once the confirmation has been shown.
// A result that was edited away or replaced by a blank quotation is not
// handed over.
func (m *Model) handleReady() (tea.Model, tea.Cmd) {
	s, ok := m.handoff.State().(intake.Succeeded)
	if !ok {
		return m, nil
	}
	now := m.now()
	items, ok := m.handoff.Take(now)
	if !ok {
		return m, waitForHandoff(s.ReadyAt.Sub(now))
	}
	m.openQuotation(items)
	return m, nil
}

func (m *Model) renderIntake() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(" CCTV Quotation ") + "\n\n")
	b.WriteString(mutedStyle.Render("Describe the job below and press ctrl+s to submit") + "\n\n")
	b.WriteString(m.textarea.View() + "\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d characters", len([]rune(m.textarea.Value())))) + "\n\n")

	if _, pending := m.handoff.State().(intake.Pending); pending {
		b.WriteString(m.spinner.View() + " Processing...\n")
	} else if status := m.renderStatus(); status != "" {
		b.WriteString(headerStyle.Render("Result") + "\n")
		b.WriteString(status + "\n")
	}

	b.WriteString("\n" + mutedStyle.Render("ctrl+s submit • ctrl+n blank quotation • ctrl+o inventory • ctrl+l clear • ctrl+c quit"))
	return boxStyle.Render(b.String())
}
