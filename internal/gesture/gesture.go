// Package gesture disambiguates tap, drag and long-press over table rows on
// touch layouts. The recognizer is a plain state machine driven by pointer
// events that carry their own timestamps, so timing behavior is deterministic
// under test; no wall clock is read internally.
package gesture

import "time"

const (
	// PressDelay is how long a press must be held before the delete affordance
	// is revealed. DragThreshold is the movement (either axis) that turns a
	// press into a drag. Both values are load-bearing for interaction feel and
	// must not drift.
	PressDelay    = 600 * time.Millisecond
	DragThreshold = 10.0
)

type State int

const (
	StateIdle State = iota
	StateArmed
	StateFired
	StateCancelled
)

// Action tells the caller what the UI should do in response to an event.
type Action int

const (
	ActionNone    Action = iota
	ActionOpen           // open the row's edit form
	ActionReveal         // show the delete affordance on the gesture's row
	ActionDismiss        // hide the currently revealed affordance
)

// Recognizer tracks at most one in-flight press gesture plus the identity of
// the single row whose delete affordance is currently revealed.
type Recognizer struct {
	pressDelay    time.Duration
	dragThreshold float64

	state          State
	row            int64
	startX, startY float64
	deadline       time.Time

	revealedRow int64
	hasReveal   bool
}

func NewRecognizer() *Recognizer {
	return &Recognizer{pressDelay: PressDelay, dragThreshold: DragThreshold}
}

// Down starts a new gesture over row. Any previous gesture state is discarded;
// the machine resets per press.
func (r *Recognizer) Down(row int64, x, y float64, now time.Time) Action {
	r.state = StateArmed
	r.row = row
	r.startX, r.startY = x, y
	r.deadline = now.Add(r.pressDelay)
	return ActionNone
}

// Move cancels an armed gesture once the pointer drifts past the drag
// threshold in either axis. An expired timer wins over a late move event.
func (r *Recognizer) Move(x, y float64, now time.Time) Action {
	if r.state != StateArmed {
		return ActionNone
	}
	if !now.Before(r.deadline) {
		return r.fire()
	}
	if abs(x-r.startX) > r.dragThreshold || abs(y-r.startY) > r.dragThreshold {
		r.state = StateCancelled
	}
	return ActionNone
}

// Tick is the timer edge: delivered by the caller when the press delay
// elapses. Firing reveals the delete affordance for the gesture's row.
func (r *Recognizer) Tick(now time.Time) Action {
	if r.state != StateArmed || now.Before(r.deadline) {
		return ActionNone
	}
	return r.fire()
}

// Up ends the gesture. A fired long-press swallows the click that pointer-up
// would otherwise generate. A plain tap either dismisses the revealed
// affordance (when tapping the revealed row) or opens the row's record.
func (r *Recognizer) Up(now time.Time) Action {
	switch r.state {
	case StateFired:
		r.state = StateIdle
		return ActionNone
	case StateArmed:
		r.state = StateIdle
		if !now.Before(r.deadline) {
			// Timer elapsed but no Tick was delivered before release.
			return r.fire()
		}
		if r.hasReveal && r.revealedRow == r.row {
			r.hasReveal = false
			return ActionDismiss
		}
		// Opening a record drops any reveal attached to another row.
		r.hasReveal = false
		return ActionOpen
	default:
		r.state = StateIdle
		return ActionNone
	}
}

// Cancel handles pointer-leave and pointer-cancel: the gesture dies without a
// tap and without touching any revealed affordance.
func (r *Recognizer) Cancel(now time.Time) Action {
	if r.state == StateArmed {
		r.state = StateCancelled
	}
	return ActionNone
}

// Revealed reports the row whose delete affordance is currently shown.
func (r *Recognizer) Revealed() (int64, bool) {
	return r.revealedRow, r.hasReveal
}

// DismissReveal hides the affordance, e.g. after the destructive action ran.
func (r *Recognizer) DismissReveal() {
	r.hasReveal = false
}

func (r *Recognizer) State() State {
	return r.state
}

// fire moves Armed to Fired. The reveal is attached to at most one row, so
// firing on a new row implicitly dismisses the previous reveal.
func (r *Recognizer) fire() Action {
	r.state = StateFired
	r.revealedRow = r.row
	r.hasReveal = true
	return ActionReveal
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
