package view

import (
	"github.com/matthieukhl/quotedesk/internal/quotation"
	"github.com/matthieukhl/quotedesk/internal/types"
)

// State is either IntakeView or QuotationView
type State interface {
	isView()
	Name() string
}

type IntakeView struct{}

// QuotationView owns the quotation being edited. It is dropped on Back.
type QuotationView struct {
	Quotation *quotation.Quotation
}

func (IntakeView) isView()    {}
func (QuotationView) isView() {}

func (IntakeView) Name() string    { return "intake" }
func (QuotationView) Name() string { return "quotation" }

// Controller switches between the intake and quotation screens
type Controller struct {
	opts  quotation.Options
	state State
}

// NewController starts on the intake screen. opts is used for every
// quotation the controller creates.
func NewController(opts quotation.Options) *Controller {
	return &Controller{opts: opts, state: IntakeView{}}
}

func (c *Controller) Current() State {
	return c.state
}

// Quotation returns the quotation on screen, if any
func (c *Controller) Quotation() (*quotation.Quotation, bool) {
	qv, ok := c.state.(QuotationView)
	if !ok {
		return nil, false
	}
	return qv.Quotation, true
}

// OpenBlank opens a new, empty quotation
func (c *Controller) OpenBlank() *quotation.Quotation {
	return c.OpenWithSeed(nil)
}

// OpenWithSeed opens a new quotation filled from seed. The controller keeps
// no reference to seed, so a later entry without one starts empty.
func (c *Controller) OpenWithSeed(seed []types.ItemPayload) *quotation.Quotation {
	q := quotation.NewSeeded(c.opts, seed)
	c.state = QuotationView{Quotation: q}
	return q
}

// Back returns to intake and discards the quotation along with any
// unsaved edits
func (c *Controller) Back() {
	c.state = IntakeView{}
}
