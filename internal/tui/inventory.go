package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/matthieukhl/quotedesk/internal/inventory"
)

var inventoryLabels = []string{"Item Name *", "Category", "Price (₹) *", "Unit", "Description"}

// inventoryModal is the overlay for managing the backend catalog
type inventoryModal struct {
	open       bool
	busy       bool
	cursor     int
	adding     bool
	inputs     []textinput.Model
	focusIndex int
	status     string
	statusErr  bool
}

func (im *inventoryModal) setStatus(text string, isErr bool) {
	im.status = text
	im.statusErr = isErr
}

func (im *inventoryModal) clampCursor(n int) {
	if im.cursor >= n {
		im.cursor = n - 1
	}
	if im.cursor < 0 {
		im.cursor = 0
	}
}

func (im *inventoryModal) initForm() {
	placeholders := []string{"e.g., CCTV Camera", "camera, nvr, cable, accessory, installation, other", "0", "piece, meter, job", "Optional description"}
	im.inputs = make([]textinput.Model, len(placeholders))
	for i := range im.inputs {
		im.inputs[i] = textinput.New()
		im.inputs[i].Placeholder = placeholders[i]
	}
	im.inputs[1].SetValue(string(inventory.CategoryOther))
	im.inputs[3].SetValue(inventory.DefaultUnit)
	im.inputs[0].Focus()
	im.focusIndex = 0
	im.adding = true
}

func (im *inventoryModal) focus(i int) {
	n := len(im.inputs)
	im.inputs[im.focusIndex].Blur()
	im.focusIndex = (i + n) % n
	im.inputs[im.focusIndex].Focus()
}

// draft reads the form. An unparseable price is left at zero and rejected
// by validation.
func (im *inventoryModal) draft() inventory.Draft {
	price, _ := strconv.ParseFloat(strings.TrimSpace(im.inputs[2].Value()), 64)
	return inventory.Draft{
		Name:        im.inputs[0].Value(),
		Category:    inventory.Category(strings.ToLower(strings.TrimSpace(im.inputs[1].Value()))),
		Price:       price,
		Unit:        im.inputs[3].Value(),
		Description: strings.TrimSpace(im.inputs[4].Value()),
	}
}

func (m *Model) refreshInventory() tea.Cmd {
	ctx, inv := m.ctx, m.inv
	return func() tea.Msg {
		return inventoryLoadedMsg{err: inv.Refresh(ctx)}
	}
}

func (m *Model) openInventory() (tea.Model, tea.Cmd) {
	m.inventory = inventoryModal{open: true, busy: true}
	m.textarea.Blur()
	return m, tea.Batch(m.spinner.Tick, m.refreshInventory())
}

func (m *Model) closeInventory() {
	m.inventory = inventoryModal{}
	m.textarea.Focus()
}

func (m *Model) updateInventory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	im := &m.inventory
	if im.adding {
		return m.updateInventoryForm(msg)
	}

	items := m.inv.Items()
	switch msg.String() {
	case "esc", "q":
		m.closeInventory()
	case "up", "k":
		if im.cursor > 0 {
			im.cursor--
		}
	case "down", "j":
		if im.cursor < len(items)-1 {
			im.cursor++
		}
	case "n", "a":
		im.initForm()
		im.setStatus("", false)
	case "r":
		if im.busy {
			break
		}
		im.busy = true
		return m, tea.Batch(m.spinner.Tick, m.refreshInventory())
	case "d", "delete":
		if im.busy || len(items) == 0 {
			break
		}
		item := items[im.cursor]
		im.busy = true
		ctx, inv := m.ctx, m.inv
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			if err := inv.Delete(ctx, item.ID); err != nil {
				return inventoryDoneMsg{err: err}
			}
			return inventoryDoneMsg{text: "Deleted " + item.Name}
		})
	}
	return m, nil
}

func (m *Model) updateInventoryForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	im := &m.inventory
	switch msg.String() {
	case "esc":
		im.adding = false
		return m, nil
	case "tab", "down":
		im.focus(im.focusIndex + 1)
		return m, nil
	case "shift+tab", "up":
		im.focus(im.focusIndex - 1)
		return m, nil
	case "enter", "ctrl+s":
		if msg.String() == "enter" && im.focusIndex < len(im.inputs)-1 {
			im.focus(im.focusIndex + 1)
			return m, nil
		}
		if im.busy {
			return m, nil
		}
		draft := im.draft()
		im.busy = true
		ctx, inv := m.ctx, m.inv
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			item, err := inv.Create(ctx, draft)
			if err != nil {
				return inventoryDoneMsg{err: err}
			}
			return inventoryDoneMsg{text: "Added " + item.Name}
		})
	}

	var cmd tea.Cmd
	im.inputs[im.focusIndex], cmd = im.inputs[im.focusIndex].Update(msg)
	return m, cmd
}

func (m *Model) handleInventoryDone(msg inventoryDoneMsg) (tea.Model, tea.Cmd) {
	im := &m.inventory
	im.busy = false
	if !im.open {
		return m, nil
	}
	if msg.err != nil {
		if errors.Is(msg.err, inventory.ErrInvalidDraft) {
			im.setStatus("Please fill in a name and a price above zero", true)
		} else {
			im.setStatus(msg.err.Error(), true)
		}
		return m, nil
	}
	im.adding = false
	im.setStatus(msg.text, false)
	im.clampCursor(len(m.inv.Items()))
	return m, nil
}

func (m *Model) renderInventory() string {
	im := &m.inventory
	var b strings.Builder
	b.WriteString(titleStyle.Render(" Inventory Management ") + "\n\n")

	if im.adding {
		b.WriteString(headerStyle.Render("Add New Item") + "\n")
		for i, input := range im.inputs {
			b.WriteString(fmt.Sprintf("  %s\n  %s\n", inventoryLabels[i], input.View()))
		}
		b.WriteString("\n")
	}

	items := m.inv.Items()
	switch {
	case im.busy && len(items) == 0:
		b.WriteString(m.spinner.View() + " Loading...\n")
	case len(items) == 0:
		b.WriteString(mutedStyle.Render("No items in inventory") + "\n")
	default:
		b.WriteString(fmt.Sprintf("  %-28s %-14s %12s %-8s\n", "Item Name", "Category", "Price (₹)", "Unit"))
		for i, it := range items {
			marker := "  "
			name := fmt.Sprintf("%-28s", truncate(it.Name, 28))
			if i == im.cursor && !im.adding {
				marker = "▸ "
				name = selectedStyle.Render(name)
			}
			b.WriteString(fmt.Sprintf("%s%s %s %12s %-8s\n", marker, name, renderCategory(it.Category, 14), "₹"+formatPrice(it.Price), it.Unit))
			if it.Description != "" && i == im.cursor {
				b.WriteString(mutedStyle.Render("    "+it.Description) + "\n")
			}
		}
		if im.busy {
			b.WriteString(m.spinner.View() + " Working...\n")
		}
	}

	if im.status != "" {
		style := successStyle
		if im.statusErr {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(im.status) + "\n")
	}

	help := "↑/↓ select • n add • d delete • r refresh • esc close"
	if im.adding {
		help = "tab next field • enter save • esc cancel"
	}
	b.WriteString("\n" + mutedStyle.Render(help))
	return boxStyle.Render(b.String())
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
