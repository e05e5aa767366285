package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/matthieukhl/quotedesk/internal/export"
	"github.com/matthieukhl/quotedesk/internal/intake"
	"github.com/matthieukhl/quotedesk/internal/quotation"
	"github.com/matthieukhl/quotedesk/internal/types"
	"github.com/matthieukhl/quotedesk/internal/view"
)

var errNoQuotation = errors.New("no quotation is open")

// Session is the single view/handoff pair served over HTTP. All access goes
// through the mutex so events are handled one at a time.
type Session struct {
	mu        sync.Mutex
	extractor types.Extractor
	ctrl      *view.Controller
	handoff   *intake.Handoff
	now       func() time.Time
}

func NewSession(extractor types.Extractor, ctrl *view.Controller, handoff *intake.Handoff) *Session {
	return &Session{
		extractor: extractor,
		ctrl:      ctrl,
		handoff:   handoff,
		now:       time.Now,
	}
}

// advance opens the quotation once a successful extraction has been on
// display for the configured delay. Callers hold the lock.
func (s *Session) advance() {
	if items, ok := s.handoff.Take(s.now()); ok {
		s.ctrl.OpenWithSeed(items)
	}
}

// Submit runs one extraction. The lock is released during the remote call
// so the session stays readable; a second submit is refused meanwhile.
func (s *Session) Submit(ctx context.Context, text string) (intake.State, error) {
	s.mu.Lock()
	s.advance()
	if _, ok := s.ctrl.Current().(view.IntakeView); !ok {
		s.mu.Unlock()
		return nil, errNotOnIntake
	}
	if err := s.handoff.Begin(text); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	resp, err := s.extractor.Process(ctx, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handoff.Complete(resp, err)
}

// Snapshot renders the session for the API
func (s *Session) Snapshot() sessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advance()
	return s.snapshotLocked()
}

// Do runs fn against the current view and returns the resulting snapshot
func (s *Session) Do(fn func(ctrl *view.Controller, h *intake.Handoff) error) (sessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advance()
	if err := fn(s.ctrl, s.handoff); err != nil {
		return sessionView{}, err
	}
	return s.snapshotLocked(), nil
}

// WithQuotation is Do for calls that need an open quotation
func (s *Session) WithQuotation(fn func(q *quotation.Quotation) error) (sessionView, error) {
	return s.Do(func(ctrl *view.Controller, _ *intake.Handoff) error {
		q, ok := ctrl.Quotation()
		if !ok {
			return errNoQuotation
		}
		return fn(q)
	})
}

// PDFRequest snapshots the open quotation for export
func (s *Session) PDFRequest() (string, types.PDFRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advance()
	q, ok := s.ctrl.Quotation()
	if !ok {
		return "", types.PDFRequest{}, errNoQuotation
	}
	return q.Number(), export.BuildRequest(q), nil
}

func (s *Session) snapshotLocked() sessionView {
	out := sessionView{
		View:   s.ctrl.Current().Name(),
		Intake: intakeView{State: s.handoff.State().Name()},
	}

	switch st := s.handoff.State().(type) {
	case intake.Succeeded:
		readyAt := st.ReadyAt
		out.Intake.Message = st.Message
		out.Intake.ReadyAt = &readyAt
		out.Intake.Items = len(st.Items)
	case intake.Failed:
		out.Intake.Message = st.Message
		out.Intake.Error = true
	}

	if q, ok := s.ctrl.Quotation(); ok {
		t := q.Totals()
		out.Quotation = &quotationView{
			Number:   q.Number(),
			Date:     q.Date(),
			Mode:     q.Mode(),
			Customer: q.Customer(),
			Items:    q.Items(),
			Subtotal: t.Subtotal,
			Tax:      t.Tax,
			Total:    t.Total,
			TaxRate:  t.TaxRate,
			Display: totalsDisplay{
				Subtotal: quotation.FormatMoney(t.Subtotal),
				Tax:      quotation.FormatMoney(t.Tax),
				Total:    quotation.FormatMoney(t.Total),
			},
			Terms: quotation.Terms,
		}
	}
	return out
}

type sessionView struct {
	View      string         `json:"view"`
	Intake    intakeView     `json:"intake"`
	Quotation *quotationView `json:"quotation,omitempty"`
}

type intakeView struct {
	State   string     `json:"state"`
	Message string     `json:"message,omitempty"`
	Error   bool       `json:"error,omitempty"`
	Items   int        `json:"items,omitempty"`
	ReadyAt *time.Time `json:"ready_at,omitempty"`
}

type quotationView struct {
	Number   string               `json:"number"`
	Date     string               `json:"date"`
	Mode     quotation.Mode       `json:"mode"`
	Customer quotation.Customer   `json:"customer"`
	Items    []quotation.LineItem `json:"items"`
	Subtotal float64              `json:"subtotal"`
	Tax      float64              `json:"tax"`
	Total    float64              `json:"total"`
	TaxRate  float64              `json:"tax_rate"`
	Display  totalsDisplay        `json:"display"`
	Terms    []string             `json:"terms"`
}

type totalsDisplay struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}
