package quotation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/matthieukhl/quotedesk/internal/types"
)

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)
)

var (
	ErrLocked       = errors.New("quotation is saved; switch to edit mode first")
	ErrUnknownField = errors.New("unknown line item field")
	ErrInvalidValue = errors.New("invalid value for line item field")
)

// Mode is the editing/locked flag of a quotation
type Mode string

const (
	ModeEditing Mode = "editing"
	ModeSaved   Mode = "saved"
)

// Field names an editable column of a line item
type Field string

const (
	FieldDescription Field = "description"
	FieldQuantity    Field = "quantity"
	FieldRate        Field = "rate"
)

// Terms are printed under every quotation
var Terms = []string{
	"Payment terms: 50% advance, 50% on completion",
	"Quotation valid for 30 days from the date of issue",
	"1 year warranty on all equipment",
	"Installation will be completed within 7 working days",
	"Free technical support for 6 months",
}

// LineItem is one row of a quotation. Amount is only ever written by the
// quotation itself.
type LineItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// Payload strips the local identifier for transmission
func (li LineItem) Payload() types.ItemPayload {
	return types.ItemPayload{
		Description: li.Description,
		Quantity:    li.Quantity,
		Rate:        li.Rate,
		Amount:      li.Amount,
	}
}

// Customer holds the free-text customer details
type Customer struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Options controls how a quotation is created
type Options struct {
	Prefix  string
	TaxRate float64
	Now     func() time.Time
	NewID   func() string
}

func (o Options) withDefaults() Options {
	if o.Prefix == "" {
		o.Prefix = "QT"
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

type Quotation struct {
	number   string
	date     string
	customer Customer
	items    []LineItem
	mode     Mode
	taxRate  float64
	newID    func() string
}

// New creates an empty quotation in editing mode. A zero TaxRate in opts
// falls back to DefaultTaxRate.
func New(opts Options) *Quotation {
	opts = opts.withDefaults()
	now := opts.Now()

	rate := opts.TaxRate
	if rate == 0 {
		rate = DefaultTaxRate
	}

	return &Quotation{
		number:  GenerateNumber(opts.Prefix, now),
		date:    now.Format(time.DateOnly),
		items:   []LineItem{},
		mode:    ModeEditing,
		taxRate: rate,
		newID:   opts.NewID,
	}
}

// NewSeeded creates a quotation holding the extracted rows in order. Every
// row gets a fresh local identifier; amounts are kept as provided.
func NewSeeded(opts Options, seed []types.ItemPayload) *Quotation {
	q := New(opts)
	for _, it := range seed {
		q.items = append(q.items, LineItem{
			ID:          q.newID(),
			Description: it.Description,
			Quantity:    it.Quantity,
			Rate:        it.Rate,
			Amount:      it.Amount,
		})
	}
	return q
}

// GenerateNumber derives a display number from the last six digits of the
// millisecond timestamp, e.g. QT-482913
func GenerateNumber(prefix string, now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return fmt.Sprintf("%s-%s", prefix, ms)
}

func (q *Quotation) Number() string     { return q.number }
func (q *Quotation) Date() string       { return q.date }
func (q *Quotation) Customer() Customer { return q.customer }
func (q *Quotation) Mode() Mode         { return q.mode }
func (q *Quotation) TaxRate() float64   { return q.taxRate }

// Items returns a copy of the rows in display order
func (q *Quotation) Items() []LineItem {
	out := make([]LineItem, len(q.items))
	copy(out, q.items)
	return out
}

// Item looks up a row by identifier
func (q *Quotation) Item(id string) (LineItem, bool) {
	if i := q.indexOf(id); i >= 0 {
		return q.items[i], true
	}
	return LineItem{}, false
}

func (q *Quotation) Totals() Totals {
	return ComputeTotals(q.items, q.taxRate)
}

// Save locks the quotation. Nothing is sent anywhere.
func (q *Quotation) Save() {
	q.mode = ModeSaved
}

// Edit unlocks the quotation
func (q *Quotation) Edit() {
	q.mode = ModeEditing
}

func (q *Quotation) SetCustomer(c Customer) error {
	if q.mode != ModeEditing {
		return ErrLocked
	}
	q.customer = c
	return nil
}

// SetDate accepts YYYY-MM-DD
func (q *Quotation) SetDate(date string) error {
	if q.mode != ModeEditing {
		return ErrLocked
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidValue, date)
	}
	q.date = date
	return nil
}

// AddItem appends a blank row and returns it
func (q *Quotation) AddItem() (LineItem, error) {
	if q.mode != ModeEditing {
		return LineItem{}, ErrLocked
	}
	item := LineItem{
		ID:       q.newID(),
		Quantity: 1,
	}
	q.items = append(q.items, item)
	return item, nil
}

// RemoveItem deletes the row with the given identifier. Unknown
// identifiers are ignored.
func (q *Quotation) RemoveItem(id string) error {
	if q.mode != ModeEditing {
		return ErrLocked
	}
	if i := q.indexOf(id); i >= 0 {
		q.items = append(q.items[:i], q.items[i+1:]...)
	}
	return nil
}

// UpdateItem sets one field of a row. Quantity and rate changes recompute
// the amount before returning. Unknown identifiers are ignored.
func (q *Quotation) UpdateItem(id string, field Field, value any) error {
	if q.mode != ModeEditing {
		return ErrLocked
	}
	i := q.indexOf(id)
	if i < 0 {
		return nil
	}

	updated := q.items[i]
	switch field {
	case FieldDescription:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: description must be text", ErrInvalidValue)
		}
		updated.Description = s
	case FieldQuantity:
		n, ok := value.(int)
		if !ok || n < 0 {
			return fmt.Errorf("%w: quantity must be a non-negative integer", ErrInvalidValue)
		}
		updated.Quantity = n
		updated.Amount = float64(updated.Quantity) * updated.Rate
	case FieldRate:
		r, ok := toFloat(value)
		if !ok || r < 0 || !finite(r) {
			return fmt.Errorf("%w: rate must be a non-negative number", ErrInvalidValue)
		}
		updated.Rate = r
		updated.Amount = float64(updated.Quantity) * updated.Rate
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	next := make([]LineItem, len(q.items))
	copy(next, q.items)
	next[i] = updated
	if t := ComputeTotals(next, q.taxRate); !finite(t.Total) {
		return fmt.Errorf("%w: %d x %v puts the total out of range", ErrInvalidValue, updated.Quantity, updated.Rate)
	}

	q.items[i] = updated
	return nil
}

// ParseFieldValue converts form input the way the quotation form does.
// Numbers are read from the leading numeric prefix ("12abc" is 12, "3.5"
// is 3 for a quantity); anything unparseable becomes 0.
func ParseFieldValue(field Field, text string) (any, error) {
	number := strings.TrimLeftFunc(text, unicode.IsSpace)
	switch field {
	case FieldDescription:
		return text, nil
	case FieldQuantity:
		n, err := strconv.Atoi(intPrefix.FindString(number))
		if err != nil {
			return 0, nil
		}
		return n, nil
	case FieldRate:
		r, err := strconv.ParseFloat(floatPrefix.FindString(number), 64)
		if err != nil || !finite(r) {
			return 0.0, nil
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

// Payloads returns the rows without identifiers, in display order
func (q *Quotation) Payloads() []types.ItemPayload {
	out := make([]types.ItemPayload, 0, len(q.items))
	for _, it := range q.items {
		out = append(out, it.Payload())
	}
	return out
}

func (q *Quotation) indexOf(id string) int {
	for i := range q.items {
		if q.items[i].ID == id {
			return i
		}
	}
	return -1
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, finite(n)
	case float32:
		return float64(n), finite(float64(n))
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
