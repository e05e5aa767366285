package backend

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/matthieukhl/quotedesk/internal/types"
	"github.com/phpdave11/gofpdf"
)

// MockBackend is an in-process stand-in for the quotation backend. It
// extracts items with keyword rules instead of a model and keeps inventory
// in memory.
type MockBackend struct {
	mu        sync.Mutex
	inventory []types.InventoryItem
	latency   time.Duration
}

var quantityPattern = regexp.MustCompile(`(\d+)\s*(?:x|pcs|piece|pieces|mtr|meter|meters)?`)

func NewMockBackend(latency time.Duration, seed []types.InventoryItem) *MockBackend {
	inv := make([]types.InventoryItem, len(seed))
	copy(inv, seed)
	return &MockBackend{inventory: inv, latency: latency}
}

func (m *MockBackend) Origin() string {
	return "mock://local"
}

func (m *MockBackend) Ping(ctx context.Context) (string, error) {
	if err := m.wait(ctx); err != nil {
		return "", err
	}
	return "CCTV Quotation API is running (mock)", nil
}

func (m *MockBackend) Process(ctx context.Context, rawText string) (*types.ProcessResponse, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	items := parseKeywords(rawText)
	return &types.ProcessResponse{
		Items:   items,
		Success: true,
		Message: fmt.Sprintf("Generated %d items using basic parsing", len(items)),
	}, nil
}

func (m *MockBackend) ListInventory(ctx context.Context) ([]types.InventoryItem, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.InventoryItem, len(m.inventory))
	copy(out, m.inventory)
	return out, nil
}

func (m *MockBackend) CreateInventory(ctx context.Context, item types.InventoryItem) error {
	if err := m.wait(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inventory = append(m.inventory, item)
	return nil
}

func (m *MockBackend) DeleteInventory(ctx context.Context, id string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.inventory {
		if it.ID == id {
			m.inventory = append(m.inventory[:i], m.inventory[i+1:]...)
			return nil
		}
	}
	return &StatusError{Op: "delete inventory", StatusCode: http.StatusNotFound, Body: "item not found"}
}

// GeneratePDF renders a plain single-page document listing the rows.
// Compression is off so the text stays searchable.
func (m *MockBackend) GeneratePDF(ctx context.Context, req types.PDFRequest) ([]byte, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "QUOTATION")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	if req.CustomerName != "" {
		pdf.Cell(0, 6, tr("Customer: "+req.CustomerName))
		pdf.Ln(6)
	}
	if req.CustomerLocation != "" {
		pdf.Cell(0, 6, tr("Location: "+req.CustomerLocation))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	widths := []float64{95, 20, 35, 35}
	pdf.SetFont("Helvetica", "B", 11)
	for i, h := range []string{"Description", "Qty", "Rate", "Amount"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 7, h, "B", 0, align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, it := range req.Items {
		pdf.CellFormat(widths[0], 7, tr(it.Description), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", it.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprintf("%.2f", it.Rate), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%.2f", it.Amount), "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (m *MockBackend) wait(ctx context.Context) error {
	if m.latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(m.latency):
		return nil
	}
}

// parseKeywords recognises the common intake phrasings line by line,
// e.g. "3 cctv low quality" or "700mtr cable"
func parseKeywords(rawText string) []types.ItemPayload {
	items := []types.ItemPayload{}
	add := func(desc string, qty int, rate float64) {
		items = append(items, types.ItemPayload{
			Description: desc,
			Quantity:    qty,
			Rate:        rate,
			Amount:      float64(qty) * rate,
		})
	}

	for _, line := range strings.Split(strings.ToLower(rawText), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		qty := 1
		if match := quantityPattern.FindStringSubmatch(line); match != nil {
			if n, err := strconv.Atoi(match[1]); err == nil {
				qty = n
			}
		}

		if strings.Contains(line, "cctv") || strings.Contains(line, "camera") {
			switch {
			case strings.Contains(line, "low"):
				add("CCTV Camera - Low Quality", qty, 2500)
			case strings.Contains(line, "high"):
				add("CCTV Camera - High Quality", qty, 5000)
			default:
				add("CCTV Camera - Medium Quality", qty, 3500)
			}
		}

		if strings.Contains(line, "adaptor") {
			add("Adaptor", qty, 300)
		}

		if strings.Contains(line, "cable") {
			if strings.Contains(line, "coax") {
				add("Coaxial Cable", qty, 20)
			} else {
				add("Cat6 Cable", qty, 25)
			}
		}

		if strings.Contains(line, "nvr") || strings.Contains(line, "dvr") {
			switch {
			case strings.Contains(line, "4"):
				add("4 Channel NVR", 1, 8000)
			case strings.Contains(line, "8"):
				add("8 Channel NVR", 1, 12000)
			case strings.Contains(line, "16"):
				add("16 Channel NVR", 1, 18000)
			}
		}

		if strings.Contains(line, "install") {
			add("Installation Basic", 1, 5000)
		}
	}

	return items
}

// Compile-time interface check
var _ types.Backend = (*MockBackend)(nil)
