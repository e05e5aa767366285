package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/matthieukhl/quotedesk/internal/export"
	"github.com/matthieukhl/quotedesk/internal/quotation"
	"github.com/matthieukhl/quotedesk/internal/types"
)

var columns = []quotation.Field{
	quotation.FieldDescription,
	quotation.FieldQuantity,
	quotation.FieldRate,
}

var customerLabels = []string{"Name:", "Phone:", "Email:", "Address:", "Date (YYYY-MM-DD):"}

func (m *Model) openQuotation(seed []types.ItemPayload) {
	m.ctrl.OpenWithSeed(seed)
	m.handoff.Edit()
	m.textarea.Reset()
	m.textarea.Blur()
	m.row, m.col = 0, 0
	m.editing = false
	m.custOpen = false
	m.setStatus("", false)
}

func (m *Model) backToIntake() {
	m.ctrl.Back()
	m.editing = false
	m.custOpen = false
	m.setStatus("", false)
	m.textarea.Focus()
}

func (m *Model) selected() (quotation.LineItem, bool) {
	q, ok := m.ctrl.Quotation()
	if !ok {
		return quotation.LineItem{}, false
	}
	items := q.Items()
	if m.row < 0 || m.row >= len(items) {
		return quotation.LineItem{}, false
	}
	return items[m.row], true
}

func (m *Model) updateQuotation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	q, _ := m.ctrl.Quotation()
	if m.editing {
		return m.updateCell(msg)
	}
	if m.custOpen {
		return m.updateCustomer(msg)
	}

	n := len(q.Items())
	switch msg.String() {
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < n-1 {
			m.row++
		}
	case "left", "h", "shift+tab":
		m.col = (m.col + len(columns) - 1) % len(columns)
	case "right", "l", "tab":
		m.col = (m.col + 1) % len(columns)
	case "enter":
		m.startCellEdit(q)
	case "a":
		if _, err := q.AddItem(); err != nil {
			m.reportEditError(err)
			break
		}
		m.row = len(q.Items()) - 1
	case "d", "delete":
		li, ok := m.selected()
		if !ok {
			break
		}
		if err := q.RemoveItem(li.ID); err != nil {
			m.reportEditError(err)
			break
		}
		if m.row >= len(q.Items()) && m.row > 0 {
			m.row--
		}
	case "c":
		if q.Mode() == quotation.ModeSaved {
			m.reportEditError(quotation.ErrLocked)
			break
		}
		m.initCustomerForm(q)
	case "s":
		q.Save()
		m.setStatus("Quotation saved successfully!", false)
	case "e":
		q.Edit()
		m.setStatus("", false)
	case "p":
		if m.exporting {
			break
		}
		return m.exportPDF(q)
	case "esc", "b":
		m.backToIntake()
	}
	return m, nil
}

func (m *Model) reportEditError(err error) {
	if errors.Is(err, quotation.ErrLocked) {
		m.setStatus("Quotation is saved, press e to edit", true)
		return
	}
	m.setStatus(err.Error(), true)
}

func (m *Model) startCellEdit(q *quotation.Quotation) {
	li, ok := m.selected()
	if !ok {
		return
	}
	if q.Mode() == quotation.ModeSaved {
		m.reportEditError(quotation.ErrLocked)
		return
	}

	ti := textinput.New()
	ti.Prompt = ""
	switch columns[m.col] {
	case quotation.FieldDescription:
		ti.Placeholder = "Item description"
		ti.SetValue(li.Description)
	case quotation.FieldQuantity:
		ti.SetValue(strconv.Itoa(li.Quantity))
	case quotation.FieldRate:
		ti.SetValue(strconv.FormatFloat(li.Rate, 'f', -1, 64))
	}
	ti.CursorEnd()
	ti.Focus()
	m.cell = ti
	m.editing = true
}

// updateCell applies every keystroke to the item so totals follow the input
func (m *Model) updateCell(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.editing = false
		m.cell.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.cell, cmd = m.cell.Update(msg)

	q, _ := m.ctrl.Quotation()
	li, ok := m.selected()
	if !ok {
		m.editing = false
		return m, cmd
	}
	field := columns[m.col]
	value, err := quotation.ParseFieldValue(field, m.cell.Value())
	if err == nil {
		err = q.UpdateItem(li.ID, field, value)
	}
	if err != nil {
		m.reportEditError(err)
	}
	return m, cmd
}

func (m *Model) initCustomerForm(q *quotation.Quotation) {
	c := q.Customer()
	values := []string{c.Name, c.Phone, c.Email, c.Address, q.Date()}
	placeholders := []string{"Enter customer name", "Enter phone number", "Enter email address", "Enter address", "YYYY-MM-DD"}

	m.customer = make([]textinput.Model, len(values))
	for i := range m.customer {
		m.customer[i] = textinput.New()
		m.customer[i].Placeholder = placeholders[i]
		m.customer[i].SetValue(values[i])
	}
	m.customer[0].Focus()
	m.focusIndex = 0
	m.custOpen = true
}

func (m *Model) updateCustomer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.custOpen = false
		return m, nil
	case "ctrl+s":
		m.submitCustomer()
		return m, nil
	case "tab", "down":
		m.focusCustomer(m.focusIndex + 1)
		return m, nil
	case "shift+tab", "up":
		m.focusCustomer(m.focusIndex - 1)
		return m, nil
	case "enter":
		if m.focusIndex == len(m.customer)-1 {
			m.submitCustomer()
			return m, nil
		}
		m.focusCustomer(m.focusIndex + 1)
		return m, nil
	}

	var cmd tea.Cmd
	m.customer[m.focusIndex], cmd = m.customer[m.focusIndex].Update(msg)
	return m, cmd
}

func (m *Model) focusCustomer(i int) {
	n := len(m.customer)
	m.customer[m.focusIndex].Blur()
	m.focusIndex = (i + n) % n
	m.customer[m.focusIndex].Focus()
}

func (m *Model) submitCustomer() {
	q, _ := m.ctrl.Quotation()
	// the date is the only field that can be rejected; nothing is applied
	// unless it passes
	err := q.SetDate(strings.TrimSpace(m.customer[4].Value()))
	if err == nil {
		err = q.SetCustomer(quotation.Customer{
			Name:    m.customer[0].Value(),
			Phone:   m.customer[1].Value(),
			Email:   m.customer[2].Value(),
			Address: m.customer[3].Value(),
		})
	}
	if err != nil {
		m.reportEditError(err)
		return
	}
	m.custOpen = false
	m.setStatus("", false)
}

// exportPDF snapshots the quotation so edits made while the request is in
// flight do not race with it
func (m *Model) exportPDF(q *quotation.Quotation) (tea.Model, tea.Cmd) {
	number, req := q.Number(), export.BuildRequest(q)
	ctx, exporter := m.ctx, m.exporter

	m.exporting = true
	m.setStatus("", false)
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		path, err := exporter.ExportRequest(ctx, number, req)
		return exportedMsg{path: path, err: err}
	})
}

func (m *Model) renderQuotation() string {
	q, _ := m.ctrl.Quotation()
	var b strings.Builder

	badge := editingBadge.Render("EDITING")
	if q.Mode() == quotation.ModeSaved {
		badge = savedBadge.Render("SAVED")
	}
	b.WriteString(titleStyle.Render(" QUOTATION ") + " " + badge + "\n\n")
	b.WriteString(fmt.Sprintf("Quotation No: %s    Date: %s\n\n", q.Number(), q.Date()))

	if m.custOpen {
		b.WriteString(m.renderCustomerForm())
	} else {
		c := q.Customer()
		b.WriteString(headerStyle.Render("Customer Details") + "\n")
		b.WriteString(fmt.Sprintf("  Name: %s\n  Phone: %s\n  Email: %s\n  Address: %s\n\n",
			orDash(c.Name), orDash(c.Phone), orDash(c.Email), orDash(c.Address)))
	}

	b.WriteString(headerStyle.Render("Items & Services") + "\n")
	b.WriteString(fmt.Sprintf("  %-3s %-36s %6s %12s %14s\n", "#", "Description", "Qty", "Rate (₹)", "Amount (₹)"))

	items := q.Items()
	if len(items) == 0 {
		b.WriteString(mutedStyle.Render("  No items yet, press a to add one") + "\n")
	}
	for i, li := range items {
		b.WriteString(m.renderRow(i, li) + "\n")
	}

	t := q.Totals()
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%50s %14s\n", "Subtotal:", "₹"+quotation.FormatMoney(t.Subtotal)))
	b.WriteString(fmt.Sprintf("%50s %14s\n", "GST ("+quotation.FormatPercent(t.TaxRate)+"%):", "₹"+quotation.FormatMoney(t.Tax)))
	b.WriteString(totalStyle.Render(fmt.Sprintf("%50s %14s", "Total:", "₹"+quotation.FormatMoney(t.Total))) + "\n\n")

	b.WriteString(headerStyle.Render("Terms & Conditions:") + "\n")
	for _, term := range quotation.Terms {
		b.WriteString(mutedStyle.Render("  • "+term) + "\n")
	}
	b.WriteString("\n")

	if m.exporting {
		b.WriteString(m.spinner.View() + " Generating PDF...\n")
	} else if status := m.renderStatus(); status != "" {
		b.WriteString(status + "\n")
	}

	help := "↑/↓ row • ←/→ column • enter edit • a add • d delete • c customer • s save • e edit • p pdf • esc back"
	if m.editing {
		help = "type to change the cell • enter/esc done"
	}
	if m.custOpen {
		help = "tab next • enter/ctrl+s save • esc cancel"
	}
	b.WriteString("\n" + mutedStyle.Render(help))
	return boxStyle.Render(b.String())
}

func (m *Model) renderRow(i int, li quotation.LineItem) string {
	cells := []string{
		fmt.Sprintf("%-36s", truncate(li.Description, 36)),
		fmt.Sprintf("%6d", li.Quantity),
		fmt.Sprintf("%12s", quotation.FormatMoney(li.Rate)),
	}

	if i == m.row {
		if m.editing {
			cells[m.col] = cellStyle.Render(m.cell.View())
		} else {
			cells[m.col] = cellStyle.Render(cells[m.col])
		}
	}

	line := fmt.Sprintf("  %-3d %s %s %s %14s", i+1, cells[0], cells[1], cells[2], quotation.FormatMoney(li.Amount))
	if i == m.row && !m.editing {
		return selectedStyle.Render(line)
	}
	return line
}

func (m *Model) renderCustomerForm() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Customer Details") + "\n")
	for i, input := range m.customer {
		b.WriteString(fmt.Sprintf("  %s\n  %s\n", customerLabels[i], input.View()))
	}
	return b.String() + "\n"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
