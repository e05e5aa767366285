package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matthieukhl/quotedesk/internal/types"
	"go.uber.org/zap"
)

// DefaultSuccessDelay is how long the confirmation stays on screen before
// the quotation view opens
const DefaultSuccessDelay = time.Second

var (
	ErrBlankText  = errors.New("intake text is blank")
	ErrPending    = errors.New("an extraction request is already in flight")
	ErrNotPending = errors.New("no extraction request is in flight")
)

// State is one of Idle, Pending, Succeeded or Failed
type State interface {
	isState()
	Name() string
}

// Idle: nothing submitted since the last edit
type Idle struct{}

// Pending: a request is outstanding and input is disabled
type Pending struct {
	Text string
}

// Succeeded carries the extracted rows until the display window closes
type Succeeded struct {
	Message string
	Items   []types.ItemPayload
	ReadyAt time.Time
}

// Failed keeps input enabled and shows Message inline
type Failed struct {
	Err     error
	Message string
}

func (Idle) isState()      {}
func (Pending) isState()   {}
func (Succeeded) isState() {}
func (Failed) isState()    {}

func (Idle) Name() string      { return "idle" }
func (Pending) Name() string   { return "pending" }
func (Succeeded) Name() string { return "succeeded" }
func (Failed) Name() string    { return "failed" }

// Settled reports whether s is a terminal state of a request
func Settled(s State) bool {
	switch s.(type) {
	case Succeeded, Failed:
		return true
	default:
		return false
	}
}

// Handoff drives one intake form. It is not safe for concurrent use; the
// owner serializes events.
type Handoff struct {
	extractor types.Extractor
	origin    string
	delay     time.Duration
	now       func() time.Time
	log       *zap.Logger
	state     State
}

// NewHandoff creates a handoff in the Idle state. origin is only used in
// the failure message shown to the user.
func NewHandoff(extractor types.Extractor, origin string, delay time.Duration, log *zap.Logger) *Handoff {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handoff{
		extractor: extractor,
		origin:    origin,
		delay:     delay,
		now:       time.Now,
		log:       log.Named("intake"),
		state:     Idle{},
	}
}

func (h *Handoff) State() State {
	return h.state
}

func (h *Handoff) Delay() time.Duration {
	return h.delay
}

// Edit is called whenever the text changes. A settled request returns to
// Idle; edits are impossible while Pending.
func (h *Handoff) Edit() {
	if Settled(h.state) {
		h.state = Idle{}
	}
}

// Begin moves to Pending. Blank text and duplicate submissions are refused
// without touching the network.
func (h *Handoff) Begin(text string) error {
	if _, busy := h.state.(Pending); busy {
		return ErrPending
	}
	if strings.TrimSpace(text) == "" {
		return ErrBlankText
	}
	h.state = Pending{Text: text}
	return nil
}

// Complete settles the outstanding request with the result of the remote
// call
func (h *Handoff) Complete(resp *types.ProcessResponse, err error) (State, error) {
	if _, ok := h.state.(Pending); !ok {
		return h.state, ErrNotPending
	}

	if err == nil && resp == nil {
		err = errors.New("empty response from backend")
	}

	if err != nil {
		h.log.Error("error processing intake", zap.Error(err))
		h.state = Failed{
			Err:     err,
			Message: fmt.Sprintf("Error: Make sure backend is running at %s", h.origin),
		}
		return h.state, nil
	}

	items := make([]types.ItemPayload, len(resp.Items))
	copy(items, resp.Items)

	h.log.Info("intake processed", zap.Int("items", len(items)))
	h.state = Succeeded{
		Message: fmt.Sprintf("%s - Generated %d items", resp.Message, len(items)),
		Items:   items,
		ReadyAt: h.now().Add(h.delay),
	}
	return h.state, nil
}

// Submit runs Begin, the remote call and Complete in one go
func (h *Handoff) Submit(ctx context.Context, text string) (State, error) {
	if err := h.Begin(text); err != nil {
		return h.state, err
	}
	resp, err := h.extractor.Process(ctx, text)
	return h.Complete(resp, err)
}

// Ready reports whether a successful result has been on display long
// enough to open the quotation
func (h *Handoff) Ready(now time.Time) bool {
	s, ok := h.state.(Succeeded)
	return ok && !now.Before(s.ReadyAt)
}

// Take hands over the extracted rows once the display window has elapsed
// and resets to Idle. The rows are handed over at most once.
func (h *Handoff) Take(now time.Time) ([]types.ItemPayload, bool) {
	if !h.Ready(now) {
		return nil, false
	}
	s := h.state.(Succeeded)
	h.state = Idle{}
	return s.Items, true
}
