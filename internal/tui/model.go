package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/matthieukhl/quotedesk/internal/export"
	"github.com/matthieukhl/quotedesk/internal/intake"
	"github.com/matthieukhl/quotedesk/internal/inventory"
	"github.com/matthieukhl/quotedesk/internal/types"
	"github.com/matthieukhl/quotedesk/internal/view"
	"go.uber.org/zap"
)

// Deps are the pieces of the session the terminal UI drives
type Deps struct {
	Extractor  types.Extractor
	Controller *view.Controller
	Handoff    *intake.Handoff
	Inventory  *inventory.Client
	Exporter   *export.Exporter
	Log        *zap.Logger
}

// Messages produced by commands
type (
	extractedMsg struct {
		resp *types.ProcessResponse
		err  error
	}
	handoffReadyMsg    struct{}
	inventoryLoadedMsg struct{ err error }
	inventoryDoneMsg   struct {
		text string
		err  error
	}
	exportedMsg struct {
		path string
		err  error
	}
)

// Model is the bubbletea model for the whole application. Every state
// change happens in Update; commands only talk to the backend.
type Model struct {
	ctx        context.Context
	extractor  types.Extractor
	ctrl       *view.Controller
	handoff    *intake.Handoff
	inv        *inventory.Client
	exporter   *export.Exporter
	log        *zap.Logger
	now        func() time.Time
	width      int
	height     int
	textarea   textarea.Model
	spinner    spinner.Model
	status     string
	statusErr  bool
	row        int
	col        int
	editing    bool
	cell       textinput.Model
	customer   []textinput.Model
	custOpen   bool
	focusIndex int
	exporting  bool
	inventory  inventoryModal
}

func New(ctx context.Context, deps Deps) *Model {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	ta := textarea.New()
	ta.Placeholder = "Type something here..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(72)
	ta.SetHeight(8)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = headerStyle

	return &Model{
		ctx:       ctx,
		extractor: deps.Extractor,
		ctrl:      deps.Controller,
		handoff:   deps.Handoff,
		inv:       deps.Inventory,
		exporter:  deps.Exporter,
		log:       log.Named("tui"),
		now:       time.Now,
		textarea:  ta,
		spinner:   sp,
	}
}

func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if w := msg.Width - 8; w > 20 && w < 100 {
			m.textarea.SetWidth(w)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case extractedMsg:
		return m.handleExtracted(msg)

	case handoffReadyMsg:
		return m.handleReady()

	case inventoryLoadedMsg:
		m.inventory.busy = false
		if msg.err != nil {
			m.inventory.setStatus("Error fetching inventory: "+msg.err.Error(), true)
		}
		m.inventory.clampCursor(len(m.inv.Items()))
		return m, nil

	case inventoryDoneMsg:
		return m.handleInventoryDone(msg)

	case exportedMsg:
		m.exporting = false
		if msg.err != nil {
			m.setStatus(export.ErrExportFailed.Error(), true)
			return m, nil
		}
		m.setStatus("PDF saved to "+msg.path, false)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.inventory.open {
			return m.updateInventory(msg)
		}
		switch m.ctrl.Current().(type) {
		case view.QuotationView:
			return m.updateQuotation(msg)
		default:
			return m.updateIntake(msg)
		}
	}

	if _, ok := m.ctrl.Current().(view.IntakeView); ok && !m.inventory.open {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) View() string {
	var body string
	switch m.ctrl.Current().(type) {
	case view.QuotationView:
		body = m.renderQuotation()
	default:
		body = m.renderIntake()
	}
	if m.inventory.open {
		body = m.renderInventory()
	}
	return body
}

func (m *Model) busy() bool {
	if _, pending := m.handoff.State().(intake.Pending); pending {
		return true
	}
	return m.exporting || m.inventory.busy
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return errorStyle.Render(m.status)
	}
	return successStyle.Render(m.status)
}
