package tui

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/matthieukhl/quotedesk/internal/backend"
	"github.com/matthieukhl/quotedesk/internal/export"
	"github.com/matthieukhl/quotedesk/internal/intake"
	"github.com/matthieukhl/quotedesk/internal/inventory"
	"github.com/matthieukhl/quotedesk/internal/quotation"
	"github.com/matthieukhl/quotedesk/internal/types"
	"github.com/matthieukhl/quotedesk/internal/view"
	"github.com/spf13/afero"
)

type countingExtractor struct {
	calls atomic.Int32
	next  types.Extractor
}

func (c *countingExtractor) Process(ctx context.Context, text string) (*types.ProcessResponse, error) {
	c.calls.Add(1)
	return c.next.Process(ctx, text)
}

type harness struct {
	m         *Model
	extractor *countingExtractor
	fs        afero.Fs
	inv       *inventory.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mock := backend.NewMockBackend(0, []types.InventoryItem{
		{ID: "1", Name: "Dome Camera", Category: "camera", Price: 3500, Unit: "piece"},
	})
	ext := &countingExtractor{next: mock}
	inv, err := inventory.NewClient(mock, 7, nil)
	if err != nil {
		t.Fatalf("inventory client: %v", err)
	}
	fs := afero.NewMemMapFs()

	m := New(context.Background(), Deps{
		Extractor:  ext,
		Controller: view.NewController(quotation.Options{}),
		Handoff:    intake.NewHandoff(ext, mock.Origin(), 0, nil),
		Inventory:  inv,
		Exporter:   export.NewExporter(mock, fs, "/out", nil),
	})
	return &harness{m: m, extractor: ext, fs: fs, inv: inv}
}

func (h *harness) key(t tea.KeyType) tea.Cmd {
	_, cmd := h.m.Update(tea.KeyMsg{Type: t})
	return cmd
}

func (h *harness) typeText(s string) {
	h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// run executes a command synchronously, expands batches and feeds every
// resulting message back into the model. Spinner ticks are dropped.
func (h *harness) run(cmd tea.Cmd) {
	for _, msg := range drain(cmd) {
		if _, tick := msg.(spinner.TickMsg); tick {
			continue
		}
		_, next := h.m.Update(msg)
		if _, ok := msg.(extractedMsg); ok {
			h.run(next)
		}
	}
}

func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestIntake_SubmitOpensSeededQuotation(t *testing.T) {
	h := newHarness(t)
	h.typeText("2 camera high quality")

	cmd := h.key(tea.KeyCtrlS)
	if _, ok := h.m.handoff.State().(intake.Pending); !ok {
		t.Fatalf("expected pending, got %s", h.m.handoff.State().Name())
	}
	if !h.m.busy() {
		t.Fatal("model should report busy while pending")
	}

	h.run(cmd)

	q, ok := h.m.ctrl.Quotation()
	if !ok {
		t.Fatalf("expected quotation view, got %s", h.m.ctrl.Current().Name())
	}
	items := q.Items()
	if len(items) != 1 || items[0].Amount != 10000 {
		t.Fatalf("unexpected seeded items: %+v", items)
	}
	if h.m.textarea.Value() != "" {
		t.Fatal("intake text should be cleared once the quotation opens")
	}
	if h.extractor.calls.Load() != 1 {
		t.Fatalf("expected one backend call, got %d", h.extractor.calls.Load())
	}
}

func TestIntake_BlankTextNeverCallsBackend(t *testing.T) {
	h := newHarness(t)
	h.typeText("   ")

	if cmd := h.key(tea.KeyCtrlS); cmd != nil {
		h.run(cmd)
	}
	if h.extractor.calls.Load() != 0 {
		t.Fatalf("expected no backend call, got %d", h.extractor.calls.Load())
	}
	if !h.m.statusErr || h.m.status != "Please enter some text" {
		t.Fatalf("unexpected status %q", h.m.status)
	}
}

func TestIntake_FailureStaysOnIntake(t *testing.T) {
	h := newHarness(t)
	h.typeText("1 nvr 4 channel")
	h.key(tea.KeyCtrlS)

	h.m.Update(extractedMsg{err: errors.New("connection refused")})

	if _, ok := h.m.ctrl.Current().(view.IntakeView); !ok {
		t.Fatal("failure must keep the intake view")
	}
	if !h.m.statusErr || !strings.Contains(h.m.status, "mock://local") {
		t.Fatalf("unexpected status %q", h.m.status)
	}
	if h.m.textarea.Value() != "1 nvr 4 channel" {
		t.Fatal("text must be kept for a retry")
	}

	// editing clears the failure
	h.typeText("!")
	if _, ok := h.m.handoff.State().(intake.Idle); !ok || h.m.status != "" {
		t.Fatalf("expected idle with no status, got %s %q", h.m.handoff.State().Name(), h.m.status)
	}
}

func TestQuotation_EditCellsRecomputesTotals(t *testing.T) {
	h := newHarness(t)
	h.key(tea.KeyCtrlN)
	q, ok := h.m.ctrl.Quotation()
	if !ok {
		t.Fatal("expected blank quotation")
	}

	h.typeText("a")
	if len(q.Items()) != 1 {
		t.Fatalf("expected one item, got %d", len(q.Items()))
	}

	// quantity column
	h.key(tea.KeyRight)
	h.key(tea.KeyEnter)
	h.key(tea.KeyBackspace)
	h.typeText("3")
	h.key(tea.KeyEnter)

	// rate column
	h.key(tea.KeyRight)
	h.key(tea.KeyEnter)
	h.key(tea.KeyBackspace)
	h.typeText("100")
	h.key(tea.KeyEnter)

	li := q.Items()[0]
	if li.Quantity != 3 || li.Rate != 100 || li.Amount != 300 {
		t.Fatalf("unexpected item %+v", li)
	}
	if tot := q.Totals(); math.Abs(tot.Total-354) > 1e-9 {
		t.Fatalf("expected total 354, got %v", tot.Total)
	}
	if !strings.Contains(h.m.View(), "354.00") {
		t.Fatal("view should show the rounded total")
	}
}

func TestQuotation_NonFiniteInputNeverReachesTotals(t *testing.T) {
	h := newHarness(t)
	h.key(tea.KeyCtrlN)
	q, _ := h.m.ctrl.Quotation()
	h.typeText("a")

	// rate column
	h.key(tea.KeyRight)
	h.key(tea.KeyRight)
	h.key(tea.KeyEnter)
	h.key(tea.KeyBackspace)
	h.typeText("inf")
	h.key(tea.KeyEnter)
	if li := q.Items()[0]; li.Rate != 0 || li.Amount != 0 {
		t.Fatalf("inf must read as 0, got %+v", li)
	}

	h.key(tea.KeyEnter)
	h.key(tea.KeyBackspace)
	h.typeText("9e307")
	h.key(tea.KeyEnter)

	// quantity column: 9 x 9e307 overflows
	h.key(tea.KeyLeft)
	h.key(tea.KeyEnter)
	h.key(tea.KeyBackspace)
	h.typeText("9")
	h.key(tea.KeyEnter)

	li := q.Items()[0]
	if li.Quantity != 0 || li.Rate != 9e307 {
		t.Fatalf("overflowing quantity must be rejected, got %+v", li)
	}
	if !h.m.statusErr {
		t.Fatal("expected an error status")
	}
	if tot := q.Totals(); math.IsInf(tot.Total, 0) || math.IsNaN(tot.Total) {
		t.Fatalf("total must stay finite, got %v", tot.Total)
	}
	_ = h.m.View()
}

func TestQuotation_BadDateLeavesCustomerUntouched(t *testing.T) {
	h := newHarness(t)
	h.key(tea.KeyCtrlN)
	q, _ := h.m.ctrl.Quotation()
	date := q.Date()

	h.typeText("c")
	if !h.m.custOpen {
		t.Fatal("expected the customer form")
	}
	h.m.customer[0].SetValue("Anand Stores")
	h.m.customer[4].SetValue("15-10-2026")
	h.key(tea.KeyCtrlS)

	if !h.m.custOpen || !h.m.statusErr {
		t.Fatal("form must stay open with an error")
	}
	if q.Customer().Name != "" || q.Date() != date {
		t.Fatalf("nothing may be applied on a bad date: %+v %s", q.Customer(), q.Date())
	}

	h.m.customer[4].SetValue("2026-10-15")
	h.key(tea.KeyCtrlS)
	if h.m.custOpen {
		t.Fatal("form should close once saved")
	}
	if q.Customer().Name != "Anand Stores" || q.Date() != "2026-10-15" {
		t.Fatalf("customer not applied: %+v %s", q.Customer(), q.Date())
	}
}

func TestQuotation_SavedIsLocked(t *testing.T) {
	h := newHarness(t)
	h.key(tea.KeyCtrlN)
	q, _ := h.m.ctrl.Quotation()

	h.typeText("s")
	h.typeText("a")
	if len(q.Items()) != 0 {
		t.Fatal("saved quotation must reject new items")
	}
	if !h.m.statusErr {
		t.Fatal("expected an error status")
	}

	h.typeText("e")
	h.typeText("a")
	if len(q.Items()) != 1 {
		t.Fatal("edit mode should accept new items")
	}
}

func TestQuotation_BackDiscards(t *testing.T) {
	h := newHarness(t)
	h.key(tea.KeyCtrlN)
	h.typeText("a")
	h.key(tea.KeyEsc)

	if _, ok := h.m.ctrl.Current().(view.IntakeView); !ok {
		t.Fatal("expected intake after esc")
	}
	h.key(tea.KeyCtrlN)
	q, _ := h.m.ctrl.Quotation()
	if len(q.Items()) != 0 {
		t.Fatal("a new blank quotation must start empty")
	}
}

func TestQuotation_ExportWritesFile(t *testing.T) {
	h := newHarness(t)
	h.key(tea.KeyCtrlN)
	h.typeText("a")
	q, _ := h.m.ctrl.Quotation()

	_, cmd := h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	if cmd == nil || !h.m.exporting {
		t.Fatal("expected exporting flag")
	}
	// a second request is ignored while the first is in flight
	if _, again := h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")}); again != nil {
		t.Fatal("export must not be triggered twice")
	}

	h.run(cmd)
	if h.m.exporting {
		t.Fatal("exporting flag should be cleared")
	}
	path := "/out/" + export.FileName(q.Number())
	if ok, _ := afero.Exists(h.fs, path); !ok {
		t.Fatalf("expected %s to exist", path)
	}
	if !strings.Contains(h.m.status, path) {
		t.Fatalf("unexpected status %q", h.m.status)
	}
}

func TestInventory_ModalCreateAndDelete(t *testing.T) {
	h := newHarness(t)
	h.run(h.key(tea.KeyCtrlO))

	if !h.m.inventory.open || h.m.inventory.busy {
		t.Fatalf("expected open idle modal, got %+v", h.m.inventory)
	}
	if len(h.inv.Items()) != 1 {
		t.Fatalf("expected catalog loaded, got %d", len(h.inv.Items()))
	}

	// missing price is rejected
	h.typeText("n")
	h.typeText("PoE Switch")
	h.run(h.key(tea.KeyCtrlS))
	if !h.m.inventory.statusErr || len(h.inv.Items()) != 1 {
		t.Fatalf("expected rejection, status %q", h.m.inventory.status)
	}

	h.key(tea.KeyTab)
	h.key(tea.KeyTab)
	h.typeText("4200")
	h.run(h.key(tea.KeyCtrlS))
	if h.m.inventory.statusErr || len(h.inv.Items()) != 2 {
		t.Fatalf("expected item added, status %q", h.m.inventory.status)
	}
	if h.m.inventory.adding {
		t.Fatal("form should close after a successful add")
	}

	_, cmd := h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if !h.m.inventory.busy {
		t.Fatal("delete should mark the modal busy")
	}
	h.run(cmd)
	items := h.inv.Items()
	if len(items) != 1 || items[0].Name != "PoE Switch" {
		t.Fatalf("expected only the new item left, got %+v", items)
	}
}

func TestInventory_CloseReturnsToIntake(t *testing.T) {
	h := newHarness(t)
	h.run(h.key(tea.KeyCtrlO))
	h.key(tea.KeyEsc)

	if h.m.inventory.open {
		t.Fatal("modal should be closed")
	}
	if _, ok := h.m.ctrl.Current().(view.IntakeView); !ok {
		t.Fatal("expected intake view")
	}
}
