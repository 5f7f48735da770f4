package seating

import "math"

// Input identifies the device that started a drag.
type Input int

const (
	InputMouse Input = iota
	InputTouch
)

func (i Input) String() string {
	switch i {
	case InputMouse:
		return "mouse"
	case InputTouch:
		return "touch"
	default:
		return "unknown"
	}
}

// Hooks owns the global listeners a drag needs while it is in flight.
// Attach runs on entering Dragging and Detach on leaving it, whatever the
// outcome. For touch input the implementation is expected to lock scrolling
// between the two calls.
type Hooks interface {
	Attach(in Input)
	Detach(in Input)
}

type noHooks struct{}

func (noHooks) Attach(Input) {}
func (noHooks) Detach(Input) {}

// State is the controller's interaction mode.
type State int

const (
	Idle State = iota
	Dragging
	Editing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Editing:
		return "editing"
	default:
		return "unknown"
	}
}

// Drop is the reorder committed when a drag ends over a gap.
type Drop struct {
	PlayerID int
	Gap      int
}

// Controller tracks one drag gesture at a time. Dragging and inline name
// editing exclude each other.
type Controller struct {
	hooks    Hooks
	state    State
	input    Input
	playerID int
	pointer  Point
	gap      int
	hasGap   bool
}

// NewController returns an idle controller. hooks may be nil.
func NewController(hooks Hooks) *Controller {
	if hooks == nil {
		hooks = noHooks{}
	}
	return &Controller{hooks: hooks}
}

func (c *Controller) State() State     { return c.state }
func (c *Controller) Pointer() Point   { return c.pointer }
func (c *Controller) PlayerID() int    { return c.playerID }
func (c *Controller) Dragging() bool   { return c.state == Dragging }
func (c *Controller) Gap() (int, bool) { return c.gap, c.hasGap }

// Begin starts dragging playerID from pointer p. It refuses when a drag or a
// name edit is already active.
func (c *Controller) Begin(playerID int, p Point, in Input) bool {
	if c.state != Idle {
		return false
	}
	c.state = Dragging
	c.input = in
	c.playerID = playerID
	c.pointer = p
	c.hasGap = false
	c.hooks.Attach(in)
	return true
}

// Move records the pointer and recomputes the nearest gap around center.
func (c *Controller) Move(p Point, center Point, total int) {
	if c.state != Dragging {
		return
	}
	c.pointer = p
	if total < 1 {
		return
	}
	c.gap = GapIndex(p, center, total)
	c.hasGap = true
}

// End leaves Dragging and returns the drop, if a gap was ever recorded.
// Listeners are released even when there is nothing to commit.
func (c *Controller) End() (Drop, bool) {
	if c.state != Dragging {
		return Drop{}, false
	}
	defer c.release()
	if !c.hasGap {
		return Drop{}, false
	}
	return Drop{PlayerID: c.playerID, Gap: c.gap}, true
}

// Cancel abandons an in-flight drag without committing.
func (c *Controller) Cancel() {
	if c.state == Dragging {
		c.release()
	}
}

func (c *Controller) release() {
	in := c.input
	c.state = Idle
	c.playerID = 0
	c.hasGap = false
	c.hooks.Detach(in)
}

// BeginEdit enters name-edit mode. It is refused while dragging.
func (c *Controller) BeginEdit() bool {
	if c.state != Idle {
		return false
	}
	c.state = Editing
	return true
}

// EndEdit leaves name-edit mode.
func (c *Controller) EndEdit() {
	if c.state == Editing {
		c.state = Idle
	}
}

// GapIndex returns the gap nearest to p by angle around center, with gap 0
// at the top and indices growing clockwise. Exact ties round up.
func GapIndex(p, center Point, total int) int {
	if total < 1 {
		return 0
	}
	angle := math.Atan2(p.Y-center.Y, p.X-center.X) + math.Pi/2
	if angle < 0 {
		angle += 2 * math.Pi
	}
	step := 2 * math.Pi / float64(total)
	return int(math.Floor(angle/step+0.5)) % total
}

// Reorder moves the element at from so it lands in gap, where gap g is the
// slot in front of the element currently at g. A drop on its own index leaves
// the list unchanged. The input slice is not modified.
func Reorder[T any](list []T, from, gap int) []T {
	out := make([]T, len(list))
	copy(out, list)
	if from < 0 || from >= len(list) || gap < 0 || gap > len(list) || from == gap {
		return out
	}
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	insert := gap
	if from < gap {
		insert--
	}
	out = append(out, moved)
	copy(out[insert+1:], out[insert:len(out)-1])
	out[insert] = moved
	return out
}
